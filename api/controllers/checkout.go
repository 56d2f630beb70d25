package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dmarable/wavecrate-backend/api/responses"
	"github.com/dmarable/wavecrate-backend/api/validators"
	"github.com/dmarable/wavecrate-backend/internal/checkout"
	pkgerrors "github.com/dmarable/wavecrate-backend/pkg/errors"
	"github.com/dmarable/wavecrate-backend/pkg/logger"
)

type createIntentRequest struct {
	SampleID  string `json:"sample_id" validate:"required,uuid4"`
	LicenseID string `json:"license_id" validate:"required,uuid4"`
	UserEmail string `json:"user_email" validate:"required,email"`
}

type createIntentResponse struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
}

// CreatePaymentIntent starts a checkout: it prices the sample/license pair,
// opens an intent at the provider, and records the pending purchase.
func CreatePaymentIntent(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service not configured"))
			return
		}

		var body createIntentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sampleID, err := uuid.Parse(body.SampleID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "sample_id must be a valid uuid"))
			return
		}
		licenseID, err := uuid.Parse(body.LicenseID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "license_id must be a valid uuid"))
			return
		}

		if logg != nil {
			ctx = logg.WithSampleID(ctx, sampleID.String())
		}

		result, err := svc.CreateIntent(ctx, checkout.Input{
			SampleID:  sampleID,
			LicenseID: licenseID,
			UserEmail: body.UserEmail,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, createIntentResponse{
			ClientSecret:    result.ClientSecret,
			PaymentIntentID: result.PaymentIntentID,
		})
	}
}
