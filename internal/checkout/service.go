package checkout

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/dmarable/wavecrate-backend/pkg/db/models"
	"github.com/dmarable/wavecrate-backend/pkg/enums"
	pkgerrors "github.com/dmarable/wavecrate-backend/pkg/errors"
)

type sampleFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Sample, error)
}

type licenseFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.License, error)
}

type purchaseCreator interface {
	Create(ctx context.Context, purchase *models.Purchase) (*models.Purchase, error)
}

type paymentIntentCreator interface {
	CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error)
}

type paymentMetrics interface {
	IncIntentCreated(result string)
}

// Input identifies the sample/license pair being bought and the buyer.
type Input struct {
	SampleID  uuid.UUID
	LicenseID uuid.UUID
	UserEmail string
}

// Result carries what the browser needs to confirm the payment.
type Result struct {
	ClientSecret    string
	PaymentIntentID string
}

// Service creates payment intents and the pending purchase row that anchors
// the checkout lifecycle.
type Service interface {
	CreateIntent(ctx context.Context, input Input) (*Result, error)
}

type ServiceParams struct {
	Samples   sampleFinder
	Licenses  licenseFinder
	Purchases purchaseCreator
	Stripe    paymentIntentCreator
	Metrics   paymentMetrics
}

type service struct {
	samples   sampleFinder
	licenses  licenseFinder
	purchases purchaseCreator
	stripe    paymentIntentCreator
	metrics   paymentMetrics
}

func NewService(params ServiceParams) (Service, error) {
	if params.Samples == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sample repo required")
	}
	if params.Licenses == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "license repo required")
	}
	if params.Purchases == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "purchase repo required")
	}
	if params.Stripe == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	return &service{
		samples:   params.Samples,
		licenses:  params.Licenses,
		purchases: params.Purchases,
		stripe:    params.Stripe,
		metrics:   params.Metrics,
	}, nil
}

func (s *service) CreateIntent(ctx context.Context, input Input) (*Result, error) {
	email := strings.TrimSpace(strings.ToLower(input.UserEmail))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user email is required")
	}
	if input.SampleID == uuid.Nil || input.LicenseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sample and license ids are required")
	}

	// Both lookups are independent; fire them together.
	var (
		sample  *models.Sample
		license *models.License
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		row, err := s.samples.FindByID(groupCtx, input.SampleID)
		if err != nil {
			return lookupError(err, "sample")
		}
		sample = row
		return nil
	})
	group.Go(func() error {
		row, err := s.licenses.FindByID(groupCtx, input.LicenseID)
		if err != nil {
			return lookupError(err, "license")
		}
		license = row
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	amountCents := int64(license.Price) * 100

	intent, err := s.stripe.CreatePaymentIntent(ctx, &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		Metadata: map[string]string{
			"sample_id":    sample.ID.String(),
			"license_id":   license.ID.String(),
			"sample_name":  sample.Name,
			"license_name": license.Name,
			"user_email":   email,
		},
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncIntentCreated("provider_error")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent")
	}

	_, err = s.purchases.Create(ctx, &models.Purchase{
		BuyerEmail:      email,
		SampleID:        sample.ID,
		LicenseID:       license.ID,
		PaymentIntentID: intent.ID,
		AmountCents:     amountCents,
		Status:          enums.PurchaseStatusPending,
	})
	if err != nil {
		// The intent already exists at the provider; surfacing the failure
		// lets the client retry rather than losing the lifecycle row. The
		// orphaned intent is never confirmed and expires on its own.
		if s.metrics != nil {
			s.metrics.IncIntentCreated("persist_error")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record pending purchase")
	}

	if s.metrics != nil {
		s.metrics.IncIntentCreated("ok")
	}
	return &Result{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, nil
}

func lookupError(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup "+entity)
}
