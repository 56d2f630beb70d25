package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/dmarable/wavecrate-backend/internal/purchases"
	"github.com/dmarable/wavecrate-backend/pkg/db"
	"github.com/dmarable/wavecrate-backend/pkg/db/models"
	"github.com/dmarable/wavecrate-backend/pkg/enums"
	pkgerrors "github.com/dmarable/wavecrate-backend/pkg/errors"
	"github.com/dmarable/wavecrate-backend/pkg/logger"
)

// sentinelEmail is recorded when the provider reports no buyer address.
const sentinelEmail = "unknown@example.com"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type deadLetterStore interface {
	Create(ctx context.Context, row *models.WebhookDeadLetter) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.WebhookDeadLetter, error)
	MarkResolved(ctx context.Context, id uuid.UUID, at time.Time) error
}

type paymentMetrics interface {
	IncWebhookEvent(disposition string)
	IncDeadLetter()
}

type ServiceParams struct {
	Purchases         *purchases.Repository
	DeadLetters       deadLetterStore
	TransactionRunner txRunner
	Metrics           paymentMetrics
	Logger            *logger.Logger
}

// Service applies verified Stripe events to the purchase ledger.
type Service struct {
	purchases   *purchases.Repository
	deadLetters deadLetterStore
	txRunner    txRunner
	metrics     paymentMetrics
	logg        *logger.Logger
	now         func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Purchases == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "purchase repo required")
	}
	if params.DeadLetters == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "dead letter repo required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &Service{
		purchases:   params.Purchases,
		deadLetters: params.DeadLetters,
		txRunner:    params.TransactionRunner,
		metrics:     params.Metrics,
		logg:        params.Logger,
		now:         time.Now,
	}, nil
}

// HandleEvent applies one verified event. payload is the raw body as received,
// kept byte-for-byte so a dead-lettered event can be replayed later.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event, payload []byte) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session")
		}
		if err := s.recordCompletedCheckout(ctx, &session); err != nil {
			return s.deadLetter(ctx, event, payload, err)
		}
		if s.metrics != nil {
			s.metrics.IncWebhookEvent("processed")
		}
		return nil
	default:
		// Acknowledged but irrelevant to the purchase ledger.
		if s.metrics != nil {
			s.metrics.IncWebhookEvent("ignored")
		}
		return nil
	}
}

// ReplayDeadLetter reprocesses a dead-lettered event; success resolves it.
func (s *Service) ReplayDeadLetter(ctx context.Context, id uuid.UUID) error {
	row, err := s.deadLetters.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "dead letter not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup dead letter")
	}
	if row.Status == enums.DeadLetterStatusResolved {
		return pkgerrors.New(pkgerrors.CodeConflict, "dead letter already resolved")
	}

	var event stripe.Event
	if err := json.Unmarshal(row.Payload, &event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode stored event")
	}

	if event.Type == stripe.EventTypeCheckoutSessionCompleted {
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session")
		}
		if err := s.recordCompletedCheckout(ctx, &session); err != nil {
			return err
		}
	}

	if err := s.deadLetters.MarkResolved(ctx, row.ID, s.now()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve dead letter")
	}
	return nil
}

func (s *Service) recordCompletedCheckout(ctx context.Context, session *stripe.CheckoutSession) error {
	intentID := paymentIntentID(session)
	if intentID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent id missing")
	}
	email := buyerEmail(session)
	amountCents := session.AmountTotal

	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.purchases.WithTx(tx)

		stored, err := repo.FindByIntentID(ctx, intentID)
		switch {
		case err == nil:
			return repo.Complete(ctx, stored, email, amountCents, s.now())
		case errors.Is(err, gorm.ErrRecordNotFound):
			// No pending row: the intent was created elsewhere or its insert
			// was lost. Build the completed row from the session metadata.
			purchase, buildErr := purchaseFromSession(session, intentID, email, amountCents, s.now())
			if buildErr != nil {
				return buildErr
			}
			if _, err := repo.Create(ctx, purchase); err != nil {
				if db.IsUniqueViolation(err, "") {
					// A concurrent delivery won the insert race.
					return nil
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase")
			}
			return nil
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup purchase")
		}
	})
}

func (s *Service) deadLetter(ctx context.Context, event *stripe.Event, payload []byte, cause error) error {
	row := &models.WebhookDeadLetter{
		EventID:   event.ID,
		EventType: string(event.Type),
		Payload:   payload,
		Reason:    cause.Error(),
	}
	if err := s.deadLetters.Create(ctx, row); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil
		}
		// Nowhere durable to put the event; let the provider redeliver.
		return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "persist event")
	}
	if s.metrics != nil {
		s.metrics.IncDeadLetter()
	}
	if s.logg != nil {
		ctx = s.logg.WithEventID(ctx, event.ID)
		s.logg.Error(ctx, "webhook event dead-lettered", cause)
	}
	return nil
}

func paymentIntentID(session *stripe.CheckoutSession) string {
	if session == nil {
		return ""
	}
	if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
		return session.PaymentIntent.ID
	}
	return ""
}

func buyerEmail(session *stripe.CheckoutSession) string {
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		return strings.ToLower(session.CustomerDetails.Email)
	}
	if session.CustomerEmail != "" {
		return strings.ToLower(session.CustomerEmail)
	}
	return sentinelEmail
}

func purchaseFromSession(session *stripe.CheckoutSession, intentID, email string, amountCents int64, at time.Time) (*models.Purchase, error) {
	sampleID, err := uuid.Parse(session.Metadata["sample_id"])
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sample_id metadata missing or invalid")
	}
	licenseID, err := uuid.Parse(session.Metadata["license_id"])
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "license_id metadata missing or invalid")
	}
	completedAt := at
	return &models.Purchase{
		BuyerEmail:      email,
		SampleID:        sampleID,
		LicenseID:       licenseID,
		PaymentIntentID: intentID,
		AmountCents:     amountCents,
		Status:          enums.PurchaseStatusCompleted,
		CompletedAt:     &completedAt,
	}, nil
}
