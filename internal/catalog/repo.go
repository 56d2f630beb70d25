package catalog

import (
	"context"

	"github.com/dmarable/wavecrate-backend/pkg/db/models"
	"github.com/dmarable/wavecrate-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type listQuery struct {
	genre  string
	cursor *pagination.Cursor
	limit  int
}

// Repository exposes sample catalog persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns samples using cursor pagination, optionally filtered by genre.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Sample, error) {
	query := r.db.WithContext(ctx).Model(&models.Sample{})

	if opts.genre != "" {
		query = query.Where("genre = ?", opts.genre)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.Sample
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID returns a single sample row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Sample, error) {
	var row models.Sample
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// IncrementDownloads bumps the download counter in a single statement so
// concurrent downloads never lose updates.
func (r *Repository) IncrementDownloads(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Sample{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error
}

// IncrementLikes bumps the like counter in a single statement.
func (r *Repository) IncrementLikes(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Sample{}).
		Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
}

// RecordDownload appends a row to the download log.
func (r *Repository) RecordDownload(ctx context.Context, download *models.UserDownload) error {
	return r.db.WithContext(ctx).Create(download).Error
}
