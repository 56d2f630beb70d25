package stripewebhook

import (
	"context"
	"time"

	"github.com/dmarable/wavecrate-backend/pkg/db/models"
	"github.com/dmarable/wavecrate-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeadLetterRepository persists verified events whose local write failed.
type DeadLetterRepository struct {
	db *gorm.DB
}

func NewDeadLetterRepository(db *gorm.DB) *DeadLetterRepository {
	return &DeadLetterRepository{db: db}
}

// Create inserts a dead-letter row.
func (r *DeadLetterRepository) Create(ctx context.Context, row *models.WebhookDeadLetter) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// FindByID returns a single dead-letter row.
func (r *DeadLetterRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.WebhookDeadLetter, error) {
	var row models.WebhookDeadLetter
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListPending returns unresolved rows, oldest first.
func (r *DeadLetterRepository) ListPending(ctx context.Context) ([]models.WebhookDeadLetter, error) {
	var rows []models.WebhookDeadLetter
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.DeadLetterStatusPending).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkResolved flags a dead-letter row as replayed.
func (r *DeadLetterRepository) MarkResolved(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.WebhookDeadLetter{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      enums.DeadLetterStatusResolved,
			"resolved_at": at,
		}).Error
}
