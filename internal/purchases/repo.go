package purchases

import (
	"context"
	"time"

	"github.com/dmarable/wavecrate-backend/pkg/db/models"
	"github.com/dmarable/wavecrate-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository owns the single-table purchase lifecycle.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a purchase repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new purchase row.
func (r *Repository) Create(ctx context.Context, purchase *models.Purchase) (*models.Purchase, error) {
	if err := r.db.WithContext(ctx).Create(purchase).Error; err != nil {
		return nil, err
	}
	return purchase, nil
}

// FindByIntentID returns the purchase keyed by the provider's payment intent id.
func (r *Repository) FindByIntentID(ctx context.Context, intentID string) (*models.Purchase, error) {
	var row models.Purchase
	if err := r.db.WithContext(ctx).First(&row, "payment_intent_id = ?", intentID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Complete transitions a purchase to completed, recording the final amount and
// buyer identity reported by the provider.
func (r *Repository) Complete(ctx context.Context, purchase *models.Purchase, buyerEmail string, amountCents int64, at time.Time) error {
	purchase.BuyerEmail = buyerEmail
	purchase.AmountCents = amountCents
	purchase.Status = enums.PurchaseStatusCompleted
	purchase.CompletedAt = &at
	return r.db.WithContext(ctx).Save(purchase).Error
}

// ListByEmail returns a buyer's purchases, newest first.
func (r *Repository) ListByEmail(ctx context.Context, email string) ([]models.Purchase, error) {
	var rows []models.Purchase
	err := r.db.WithContext(ctx).
		Where("buyer_email = ?", email).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// HasCompletedForSample reports whether the buyer holds a completed purchase
// for the sample. Premium downloads gate on this.
func (r *Repository) HasCompletedForSample(ctx context.Context, email string, sampleID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("buyer_email = ? AND sample_id = ? AND status = ?", email, sampleID, enums.PurchaseStatusCompleted).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
