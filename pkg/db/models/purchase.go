package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarable/wavecrate-backend/pkg/enums"
)

// Purchase is the single lifecycle row for one checkout. It is inserted as
// pending when the payment intent is created and transitioned to completed by
// the webhook, keyed on the provider's payment intent id.
type Purchase struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerEmail      string               `gorm:"column:buyer_email;not null"`
	SampleID        uuid.UUID            `gorm:"column:sample_id;type:uuid;not null"`
	LicenseID       uuid.UUID            `gorm:"column:license_id;type:uuid;not null"`
	PaymentIntentID string               `gorm:"column:payment_intent_id;not null;unique"`
	AmountCents     int64                `gorm:"column:amount_cents;not null"`
	Status          enums.PurchaseStatus `gorm:"column:status;not null;default:'pending'"`
	CompletedAt     *time.Time           `gorm:"column:completed_at"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// Amount returns the purchase amount in major currency units.
func (p Purchase) Amount() decimal.Decimal {
	return decimal.NewFromInt(p.AmountCents).Div(decimal.NewFromInt(100))
}
