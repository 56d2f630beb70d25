package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dmarable/wavecrate-backend/pkg/db/models"
	"github.com/dmarable/wavecrate-backend/pkg/enums"
)

type fakePurchaseLister struct {
	email string
	rows  []models.Purchase
	err   error
}

func (f *fakePurchaseLister) ListByEmail(_ context.Context, email string) ([]models.Purchase, error) {
	f.email = email
	return f.rows, f.err
}

func getPurchases(lister *fakePurchaseLister, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/purchases"+query, nil)
	rec := httptest.NewRecorder()
	ListPurchases(lister, nil)(rec, req)
	return rec
}

func TestPurchaseDTOExposesMajorUnits(t *testing.T) {
	completedAt := time.Now()
	row := models.Purchase{
		ID:              uuid.New(),
		BuyerEmail:      "buyer@example.com",
		SampleID:        uuid.New(),
		LicenseID:       uuid.New(),
		PaymentIntentID: "pi_123",
		AmountCents:     2500,
		Status:          enums.PurchaseStatusCompleted,
		CompletedAt:     &completedAt,
	}

	// A 2500-cent charge reads back as 25 dollars.
	dto := toPurchaseDTO(row)
	if dto.Amount != "25.00" {
		t.Fatalf("amount = %q, want \"25.00\"", dto.Amount)
	}
	if dto.Status != "completed" {
		t.Fatalf("unexpected status %q", dto.Status)
	}

	odd := row
	odd.AmountCents = 1099
	if got := toPurchaseDTO(odd).Amount; got != "10.99" {
		t.Fatalf("amount = %q, want \"10.99\"", got)
	}
}

func TestListPurchasesNormalizesEmail(t *testing.T) {
	lister := &fakePurchaseLister{rows: []models.Purchase{
		{
			ID:              uuid.New(),
			BuyerEmail:      "buyer@example.com",
			SampleID:        uuid.New(),
			LicenseID:       uuid.New(),
			PaymentIntentID: "pi_123",
			AmountCents:     2500,
			Status:          enums.PurchaseStatusCompleted,
		},
	}}

	rec := getPurchases(lister, "?email=Buyer@Example.com")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if lister.email != "buyer@example.com" {
		t.Fatalf("email not normalized: %q", lister.email)
	}

	var envelope struct {
		Data []struct {
			Amount string `json:"amount"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].Amount != "25.00" {
		t.Fatalf("unexpected payload %s", rec.Body.String())
	}
}

func TestListPurchasesRequiresEmail(t *testing.T) {
	rec := getPurchases(&fakePurchaseLister{}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListPurchasesMapsRepoError(t *testing.T) {
	rec := getPurchases(&fakePurchaseLister{err: errors.New("db down")}, "?email=buyer@example.com")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
