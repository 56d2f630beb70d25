package controllers

import (
	"net/http"

	"github.com/dmarable/wavecrate-backend/api/responses"
	"github.com/dmarable/wavecrate-backend/internal/licenses"
	"github.com/dmarable/wavecrate-backend/pkg/db/models"
	pkgerrors "github.com/dmarable/wavecrate-backend/pkg/errors"
	"github.com/dmarable/wavecrate-backend/pkg/logger"
)

type licenseDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Price     int      `json:"price"`
	Features  []string `json:"features"`
	IsPopular bool     `json:"is_popular"`
}

func toLicenseDTO(row models.License) licenseDTO {
	return licenseDTO{
		ID:        row.ID.String(),
		Name:      row.Name,
		Price:     row.Price,
		Features:  row.Features,
		IsPopular: row.IsPopular,
	}
}

// ListLicenses returns all active license tiers, cheapest first.
func ListLicenses(svc licenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "license service not configured"))
			return
		}

		rows, err := svc.ListLicenses(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := make([]licenseDTO, 0, len(rows))
		for _, row := range rows {
			out = append(out, toLicenseDTO(row))
		}
		responses.WriteSuccess(w, out)
	}
}
