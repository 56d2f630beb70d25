package webhooks

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmarable/wavecrate-backend/api/responses"
	"github.com/dmarable/wavecrate-backend/pkg/db/models"
	pkgerrors "github.com/dmarable/wavecrate-backend/pkg/errors"
	"github.com/dmarable/wavecrate-backend/pkg/logger"
)

type deadLetterLister interface {
	ListPending(ctx context.Context) ([]models.WebhookDeadLetter, error)
}

type deadLetterReplayer interface {
	ReplayDeadLetter(ctx context.Context, id uuid.UUID) error
}

type deadLetterDTO struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ListDeadLetters returns unresolved dead-lettered events, oldest first.
func ListDeadLetters(repo deadLetterLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if repo == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dead letter repository not configured"))
			return
		}

		rows, err := repo.ListPending(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list dead letters"))
			return
		}

		out := make([]deadLetterDTO, 0, len(rows))
		for _, row := range rows {
			out = append(out, deadLetterDTO{
				ID:        row.ID.String(),
				EventID:   row.EventID,
				EventType: row.EventType,
				Reason:    row.Reason,
				Status:    string(row.Status),
				CreatedAt: row.CreatedAt,
			})
		}
		responses.WriteSuccess(w, out)
	}
}

// ReplayDeadLetter reprocesses one dead-lettered event.
func ReplayDeadLetter(svc deadLetterReplayer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service not configured"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "dead letter id must be a valid uuid"))
			return
		}

		if err := svc.ReplayDeadLetter(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "replayed"})
	}
}
