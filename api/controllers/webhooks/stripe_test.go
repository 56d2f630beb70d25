package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v84"
)

const testSigningSecret = "whsec_test_secret"

type fakeHandler struct {
	events []*stripe.Event
	err    error
}

func (f *fakeHandler) HandleEvent(_ context.Context, event *stripe.Event, _ []byte) error {
	f.events = append(f.events, event)
	return f.err
}

type fakeGuard struct {
	seen      map[string]bool
	markErr   error
	deleted   []string
	deleteErr error
}

func (f *fakeGuard) CheckAndMark(_ context.Context, eventID string) (bool, error) {
	if f.markErr != nil {
		return false, f.markErr
	}
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	already := f.seen[eventID]
	f.seen[eventID] = true
	return already, nil
}

func (f *fakeGuard) Delete(_ context.Context, eventID string) error {
	f.deleted = append(f.deleted, eventID)
	return f.deleteErr
}

type fakeMetrics struct {
	dispositions []string
}

func (f *fakeMetrics) IncWebhookEvent(disposition string) {
	f.dispositions = append(f.dispositions, disposition)
}

func buildSignedEvent(t *testing.T, eventID, eventType string, data map[string]any) ([]byte, string) {
	t.Helper()

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal event data: %v", err)
	}
	payload, err := json.Marshal(map[string]any{
		"id":          eventID,
		"object":      "event",
		"api_version": stripe.APIVersion,
		"type":        eventType,
		"created":     time.Now().Unix(),
		"data":        map[string]any{"object": json.RawMessage(raw)},
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return payload, buildStripeSignatureHeader(payload, testSigningSecret, time.Now())
}

func buildStripeSignatureHeader(payload []byte, secret string, at time.Time) string {
	timestamp := fmt.Sprintf("%d", at.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "." + string(payload)))
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func postWebhook(params StripeParams, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", signature)
	rec := httptest.NewRecorder()
	Stripe(params)(rec, req)
	return rec
}

func TestStripeWebhookProcessesVerifiedEvent(t *testing.T) {
	handler := &fakeHandler{}
	guard := &fakeGuard{}

	payload, sig := buildSignedEvent(t, "evt_1", "checkout.session.completed", map[string]any{
		"id":           "cs_1",
		"amount_total": 2500,
	})

	rec := postWebhook(StripeParams{
		Service:       handler,
		Guard:         guard,
		SigningSecret: testSigningSecret,
	}, payload, sig)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(handler.events) != 1 {
		t.Fatalf("expected one handled event, got %d", len(handler.events))
	}
	if handler.events[0].ID != "evt_1" {
		t.Fatalf("unexpected event id %q", handler.events[0].ID)
	}
	if len(guard.deleted) != 0 {
		t.Fatalf("claim should not be released on success")
	}
}

func TestStripeWebhookRejectsBadSignature(t *testing.T) {
	handler := &fakeHandler{}
	guard := &fakeGuard{}
	metrics := &fakeMetrics{}

	payload, _ := buildSignedEvent(t, "evt_1", "checkout.session.completed", map[string]any{"id": "cs_1"})
	badSig := buildStripeSignatureHeader(payload, "whsec_wrong", time.Now())

	rec := postWebhook(StripeParams{
		Service:       handler,
		Guard:         guard,
		SigningSecret: testSigningSecret,
		Metrics:       metrics,
	}, payload, badSig)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(handler.events) != 0 {
		t.Fatalf("handler should not run on bad signature")
	}
	if len(metrics.dispositions) != 1 || metrics.dispositions[0] != "signature_rejected" {
		t.Fatalf("unexpected dispositions %v", metrics.dispositions)
	}
}

func TestStripeWebhookRejectsTamperedPayload(t *testing.T) {
	handler := &fakeHandler{}
	guard := &fakeGuard{}

	payload, sig := buildSignedEvent(t, "evt_1", "checkout.session.completed", map[string]any{
		"id":           "cs_1",
		"amount_total": 2500,
	})

	// Flip one byte after signing; the original header no longer matches.
	tampered := append([]byte(nil), payload...)
	tampered[len(tampered)/2] ^= 0x01

	rec := postWebhook(StripeParams{
		Service:       handler,
		Guard:         guard,
		SigningSecret: testSigningSecret,
	}, tampered, sig)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(handler.events) != 0 {
		t.Fatalf("handler should not run on tampered payload")
	}
}

func TestStripeWebhookShortCircuitsDuplicates(t *testing.T) {
	handler := &fakeHandler{}
	guard := &fakeGuard{seen: map[string]bool{"evt_dup": true}}
	metrics := &fakeMetrics{}

	payload, sig := buildSignedEvent(t, "evt_dup", "checkout.session.completed", map[string]any{"id": "cs_1"})

	rec := postWebhook(StripeParams{
		Service:       handler,
		Guard:         guard,
		SigningSecret: testSigningSecret,
		Metrics:       metrics,
	}, payload, sig)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(handler.events) != 0 {
		t.Fatalf("handler should not run for a duplicate")
	}
	if !strings.Contains(rec.Body.String(), "already_processed") {
		t.Fatalf("expected duplicate ack, got %s", rec.Body.String())
	}
}

func TestStripeWebhookReleasesClaimOnHandlerError(t *testing.T) {
	handler := &fakeHandler{err: errors.New("db down")}
	guard := &fakeGuard{}

	payload, sig := buildSignedEvent(t, "evt_fail", "checkout.session.completed", map[string]any{"id": "cs_1"})

	rec := postWebhook(StripeParams{
		Service:       handler,
		Guard:         guard,
		SigningSecret: testSigningSecret,
	}, payload, sig)

	if rec.Code == http.StatusOK {
		t.Fatalf("expected error status, got 200")
	}
	if len(guard.deleted) != 1 || guard.deleted[0] != "evt_fail" {
		t.Fatalf("expected claim release for evt_fail, got %v", guard.deleted)
	}
}

func TestStripeWebhookFailsClosedWhenGuardUnavailable(t *testing.T) {
	handler := &fakeHandler{}
	guard := &fakeGuard{markErr: errors.New("redis down")}

	payload, sig := buildSignedEvent(t, "evt_1", "checkout.session.completed", map[string]any{"id": "cs_1"})

	rec := postWebhook(StripeParams{
		Service:       handler,
		Guard:         guard,
		SigningSecret: testSigningSecret,
	}, payload, sig)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if len(handler.events) != 0 {
		t.Fatalf("handler should not run when claim fails")
	}
}
