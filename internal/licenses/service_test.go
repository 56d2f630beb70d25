package licenses

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmarable/wavecrate-backend/pkg/db/models"
	pkgerrors "github.com/dmarable/wavecrate-backend/pkg/errors"
)

type fakeLicensesRepo struct {
	rows []models.License
	err  error
}

func (f *fakeLicensesRepo) List(context.Context) ([]models.License, error) {
	return f.rows, f.err
}

func (f *fakeLicensesRepo) FindByID(context.Context, uuid.UUID) (*models.License, error) {
	return nil, errors.New("not used")
}

func TestListLicenses(t *testing.T) {
	repo := &fakeLicensesRepo{rows: []models.License{
		{ID: uuid.New(), Name: "Basic", Price: 5},
		{ID: uuid.New(), Name: "Premium", Price: 25},
	}}
	svc, err := NewService(repo)
	require.NoError(t, err)

	rows, err := svc.ListLicenses(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Basic", rows[0].Name)
}

func TestListLicensesWrapsRepoError(t *testing.T) {
	svc, err := NewService(&fakeLicensesRepo{err: errors.New("db down")})
	require.NoError(t, err)

	_, err = svc.ListLicenses(context.Background())
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}

func TestNewServiceRequiresRepo(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}
