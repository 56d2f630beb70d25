package db

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{"nil error", nil, "", false},
		{"postgres message", errors.New(`duplicate key value violates unique constraint "purchases_payment_intent_id_key"`), "", true},
		{"sqlite message", errors.New("UNIQUE constraint failed: purchases.payment_intent_id"), "", true},
		{"named constraint match", errors.New(`duplicate key value violates unique constraint "purchases_payment_intent_id_key"`), "purchases_payment_intent_id_key", true},
		{"named constraint mismatch", errors.New(`duplicate key value violates unique constraint "other_key"`), "purchases_payment_intent_id_key", false},
		{"unrelated error", errors.New("connection refused"), "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsUniqueViolation(tc.err, tc.constraint); got != tc.want {
				t.Fatalf("IsUniqueViolation(%v, %q) = %v, want %v", tc.err, tc.constraint, got, tc.want)
			}
		})
	}
}
