package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmarable/wavecrate-backend/pkg/db/models"
	pkgerrors "github.com/dmarable/wavecrate-backend/pkg/errors"
	"github.com/dmarable/wavecrate-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type samplesRepository interface {
	List(ctx context.Context, opts listQuery) ([]models.Sample, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Sample, error)
	IncrementDownloads(ctx context.Context, id uuid.UUID) error
	IncrementLikes(ctx context.Context, id uuid.UUID) error
	RecordDownload(ctx context.Context, download *models.UserDownload) error
}

type purchaseChecker interface {
	HasCompletedForSample(ctx context.Context, email string, sampleID uuid.UUID) (bool, error)
}

type objectSigner interface {
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
}

// ListParams holds the browse inputs from the controller.
type ListParams struct {
	Genre  string
	Limit  int
	Cursor string
}

// ListResult is one page of samples plus the cursor for the next page.
type ListResult struct {
	Items  []models.Sample
	Cursor string
}

// DownloadInput identifies who is downloading which sample.
type DownloadInput struct {
	SampleID uuid.UUID
	Email    string
	IP       string
}

// Service exposes catalog browsing, likes, and download recording.
type Service interface {
	ListSamples(ctx context.Context, params ListParams) (*ListResult, error)
	GetSample(ctx context.Context, id uuid.UUID) (*models.Sample, error)
	LikeSample(ctx context.Context, id uuid.UUID) error
	Download(ctx context.Context, input DownloadInput) (string, error)
}

type service struct {
	repo        samplesRepository
	purchases   purchaseChecker
	signer      objectSigner
	bucket      string
	downloadTTL time.Duration
}

// NewService builds the catalog service backed by the provided repositories
// and object-store signer.
func NewService(repo samplesRepository, purchases purchaseChecker, signer objectSigner, bucket string, downloadTTL time.Duration) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sample repository required")
	}
	if purchases == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "purchase checker required")
	}
	if signer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "object signer required")
	}
	if bucket == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "bucket required")
	}
	if downloadTTL <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "download ttl must be positive")
	}
	return &service{
		repo:        repo,
		purchases:   purchases,
		signer:      signer,
		bucket:      bucket,
		downloadTTL: downloadTTL,
	}, nil
}

func (s *service) ListSamples(ctx context.Context, params ListParams) (*ListResult, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := listQuery{
		genre: strings.TrimSpace(params.Genre),
		limit: pagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list samples")
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: rows[limit].CreatedAt,
			ID:        rows[limit].ID,
		})
		rows = rows[:limit]
	}

	return &ListResult{Items: rows, Cursor: nextCursor}, nil
}

func (s *service) GetSample(ctx context.Context, id uuid.UUID) (*models.Sample, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sample id is required")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sample not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup sample")
	}
	return row, nil
}

func (s *service) LikeSample(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetSample(ctx, id); err != nil {
		return err
	}
	if err := s.repo.IncrementLikes(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment likes")
	}
	return nil
}

func (s *service) Download(ctx context.Context, input DownloadInput) (string, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	sample, err := s.GetSample(ctx, input.SampleID)
	if err != nil {
		return "", err
	}

	if sample.IsPremium {
		owned, err := s.purchases.HasCompletedForSample(ctx, email, sample.ID)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check purchase")
		}
		if !owned {
			return "", pkgerrors.New(pkgerrors.CodeForbidden, "premium sample requires a completed purchase")
		}
	}

	if err := s.repo.RecordDownload(ctx, &models.UserDownload{
		Email:    email,
		IP:       input.IP,
		SampleID: sample.ID,
	}); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record download")
	}
	if err := s.repo.IncrementDownloads(ctx, sample.ID); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment downloads")
	}

	url, err := s.signer.SignedReadURL(s.bucket, sample.GCSKey, s.downloadTTL)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "generate signed read url")
	}
	return url, nil
}
