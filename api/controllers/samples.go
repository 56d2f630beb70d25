package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmarable/wavecrate-backend/api/responses"
	"github.com/dmarable/wavecrate-backend/api/validators"
	"github.com/dmarable/wavecrate-backend/internal/catalog"
	"github.com/dmarable/wavecrate-backend/pkg/db/models"
	pkgerrors "github.com/dmarable/wavecrate-backend/pkg/errors"
	"github.com/dmarable/wavecrate-backend/pkg/logger"
)

type sampleDTO struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ArtistName    string    `json:"artist_name"`
	Genre         string    `json:"genre"`
	BPM           int       `json:"bpm"`
	MusicalKey    string    `json:"musical_key"`
	DurationSecs  float64   `json:"duration_secs"`
	Tags          []string  `json:"tags"`
	DownloadCount int       `json:"download_count"`
	LikeCount     int       `json:"like_count"`
	IsPremium     bool      `json:"is_premium"`
	CreatedAt     time.Time `json:"created_at"`
}

func toSampleDTO(row models.Sample) sampleDTO {
	return sampleDTO{
		ID:            row.ID.String(),
		Name:          row.Name,
		ArtistName:    row.ArtistName,
		Genre:         row.Genre,
		BPM:           row.BPM,
		MusicalKey:    row.MusicalKey,
		DurationSecs:  row.DurationSecs,
		Tags:          row.Tags,
		DownloadCount: row.DownloadCount,
		LikeCount:     row.LikeCount,
		IsPremium:     row.IsPremium,
		CreatedAt:     row.CreatedAt,
	}
}

type sampleListDTO struct {
	Items      []sampleDTO `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

type downloadRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type downloadResponse struct {
	URL string `json:"url"`
}

// ListSamples browses the catalog with optional genre filter and cursor
// pagination.
func ListSamples(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service not configured"))
			return
		}

		limit, err := validators.QueryInt(r, "limit", 0)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.ListSamples(ctx, catalog.ListParams{
			Genre:  r.URL.Query().Get("genre"),
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items := make([]sampleDTO, 0, len(result.Items))
		for _, row := range result.Items {
			items = append(items, toSampleDTO(row))
		}
		responses.WriteSuccess(w, sampleListDTO{Items: items, NextCursor: result.Cursor})
	}
}

// GetSample returns a single catalog row.
func GetSample(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service not configured"))
			return
		}

		id, err := sampleIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		row, err := svc.GetSample(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, toSampleDTO(*row))
	}
}

// LikeSample bumps the like counter.
func LikeSample(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service not configured"))
			return
		}

		id, err := sampleIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.LikeSample(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "liked"})
	}
}

// DownloadSample records the download and hands back a short-lived signed URL.
func DownloadSample(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service not configured"))
			return
		}

		id, err := sampleIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body downloadRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			ctx = logg.WithSampleID(ctx, id.String())
		}

		url, err := svc.Download(ctx, catalog.DownloadInput{
			SampleID: id,
			Email:    body.Email,
			IP:       r.RemoteAddr,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, downloadResponse{URL: url})
	}
}

func sampleIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "sample id must be a valid uuid")
	}
	return id, nil
}
