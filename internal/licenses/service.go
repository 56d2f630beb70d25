package licenses

import (
	"context"

	"github.com/dmarable/wavecrate-backend/pkg/db/models"
	pkgerrors "github.com/dmarable/wavecrate-backend/pkg/errors"
	"github.com/google/uuid"
)

type licensesRepository interface {
	List(ctx context.Context) ([]models.License, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.License, error)
}

// Service exposes read-only license lookups.
type Service interface {
	ListLicenses(ctx context.Context) ([]models.License, error)
}

type service struct {
	repo licensesRepository
}

// NewService builds a license service backed by the provided repository.
func NewService(repo licensesRepository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "license repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListLicenses(ctx context.Context) ([]models.License, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list licenses")
	}
	return rows, nil
}
