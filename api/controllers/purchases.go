package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmarable/wavecrate-backend/api/responses"
	"github.com/dmarable/wavecrate-backend/pkg/db/models"
	pkgerrors "github.com/dmarable/wavecrate-backend/pkg/errors"
	"github.com/dmarable/wavecrate-backend/pkg/logger"
)

type purchaseLister interface {
	ListByEmail(ctx context.Context, email string) ([]models.Purchase, error)
}

type purchaseDTO struct {
	ID              string     `json:"id"`
	SampleID        string     `json:"sample_id"`
	LicenseID       string     `json:"license_id"`
	PaymentIntentID string     `json:"payment_intent_id"`
	Amount          string     `json:"amount"`
	Status          string     `json:"status"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toPurchaseDTO(row models.Purchase) purchaseDTO {
	return purchaseDTO{
		ID:              row.ID.String(),
		SampleID:        row.SampleID.String(),
		LicenseID:       row.LicenseID.String(),
		PaymentIntentID: row.PaymentIntentID,
		Amount:          row.Amount().StringFixed(2),
		Status:          string(row.Status),
		CompletedAt:     row.CompletedAt,
		CreatedAt:       row.CreatedAt,
	}
}

// ListPurchases returns a buyer's purchase history, newest first.
func ListPurchases(repo purchaseLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if repo == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchase repository not configured"))
			return
		}

		email := strings.TrimSpace(strings.ToLower(r.URL.Query().Get("email")))
		if email == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "email query parameter is required"))
			return
		}

		rows, err := repo.ListByEmail(ctx, email)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchases"))
			return
		}

		out := make([]purchaseDTO, 0, len(rows))
		for _, row := range rows {
			out = append(out, toPurchaseDTO(row))
		}
		responses.WriteSuccess(w, out)
	}
}
