package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/dmarable/wavecrate-backend/api/responses"
	pkgerrors "github.com/dmarable/wavecrate-backend/pkg/errors"
	"github.com/dmarable/wavecrate-backend/pkg/logger"
)

// maxBodyBytes caps webhook payloads, mirroring Stripe's own limit.
const maxBodyBytes = int64(65536)

type eventHandler interface {
	HandleEvent(ctx context.Context, event *stripe.Event, payload []byte) error
}

type idempotencyGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type webhookMetrics interface {
	IncWebhookEvent(disposition string)
}

type StripeParams struct {
	Service       eventHandler
	Guard         idempotencyGuard
	SigningSecret string
	Metrics       webhookMetrics
	Logger        *logger.Logger
}

// Stripe receives provider webhooks: verify the signature, claim the event id,
// then apply the event. Returning 200 tells the provider the event is settled,
// either applied, already seen, or dead-lettered.
func Stripe(params StripeParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logg := params.Logger

		if params.Service == nil || params.Guard == nil || params.SigningSecret == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook receiver not configured"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read webhook body"))
			return
		}

		event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), params.SigningSecret)
		if err != nil {
			if params.Metrics != nil {
				params.Metrics.IncWebhookEvent("signature_rejected")
			}
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid webhook signature"))
			return
		}

		if logg != nil {
			ctx = logg.WithEventID(ctx, event.ID)
		}

		alreadyProcessed, err := params.Guard.CheckAndMark(ctx, event.ID)
		if err != nil {
			// Claiming failed, so nothing was marked; a 5xx makes the
			// provider redeliver.
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check event idempotency"))
			return
		}
		if alreadyProcessed {
			if params.Metrics != nil {
				params.Metrics.IncWebhookEvent("duplicate")
			}
			responses.WriteSuccess(w, map[string]string{"status": "already_processed"})
			return
		}

		if err := params.Service.HandleEvent(ctx, &event, payload); err != nil {
			// Release the claim so the provider's retry is not treated as a
			// duplicate of an event that never applied.
			if delErr := params.Guard.Delete(ctx, event.ID); delErr != nil && logg != nil {
				logg.Error(ctx, "failed to release idempotency claim", delErr)
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "received"})
	}
}
