package purchases

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dmarable/wavecrate-backend/pkg/db"
	"github.com/dmarable/wavecrate-backend/pkg/db/models"
	"github.com/dmarable/wavecrate-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	require.NoError(t, conn.Exec(`CREATE TABLE purchases (
		id TEXT PRIMARY KEY,
		buyer_email TEXT NOT NULL,
		sample_id TEXT NOT NULL,
		license_id TEXT NOT NULL,
		payment_intent_id TEXT NOT NULL UNIQUE,
		amount_cents INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		completed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)

	t.Cleanup(func() {
		sqlDB, err := conn.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func pendingPurchase(intentID, email string) *models.Purchase {
	return &models.Purchase{
		ID:              uuid.New(),
		BuyerEmail:      email,
		SampleID:        uuid.New(),
		LicenseID:       uuid.New(),
		PaymentIntentID: intentID,
		AmountCents:     2500,
		Status:          enums.PurchaseStatusPending,
	}
}

func TestCreateAndFindByIntentID(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, pendingPurchase("pi_1", "buyer@example.com"))
	require.NoError(t, err)

	found, err := repo.FindByIntentID(ctx, "pi_1")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)
	require.Equal(t, enums.PurchaseStatusPending, found.Status)
}

func TestCreateRejectsDuplicateIntentID(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, pendingPurchase("pi_1", "buyer@example.com"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, pendingPurchase("pi_1", "other@example.com"))
	require.Error(t, err)
	require.True(t, db.IsUniqueViolation(err, ""))
}

func TestFindByIntentIDNotFound(t *testing.T) {
	repo := NewRepository(newTestDB(t))

	_, err := repo.FindByIntentID(context.Background(), "pi_missing")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCompleteTransitionsPurchase(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, pendingPurchase("pi_1", "placeholder@example.com"))
	require.NoError(t, err)

	completedAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.Complete(ctx, created, "buyer@example.com", 3000, completedAt))

	stored, err := repo.FindByIntentID(ctx, "pi_1")
	require.NoError(t, err)
	require.Equal(t, enums.PurchaseStatusCompleted, stored.Status)
	require.Equal(t, "buyer@example.com", stored.BuyerEmail)
	require.Equal(t, int64(3000), stored.AmountCents)
	require.NotNil(t, stored.CompletedAt)
}

func TestListByEmailNewestFirst(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	older := pendingPurchase("pi_old", "buyer@example.com")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := pendingPurchase("pi_new", "buyer@example.com")
	newer.CreatedAt = time.Now()
	other := pendingPurchase("pi_other", "someone@example.com")

	for _, row := range []*models.Purchase{older, newer, other} {
		_, err := repo.Create(ctx, row)
		require.NoError(t, err)
	}

	rows, err := repo.ListByEmail(ctx, "buyer@example.com")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "pi_new", rows[0].PaymentIntentID)
	require.Equal(t, "pi_old", rows[1].PaymentIntentID)
}

func TestHasCompletedForSample(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	row := pendingPurchase("pi_1", "buyer@example.com")
	_, err := repo.Create(ctx, row)
	require.NoError(t, err)

	owned, err := repo.HasCompletedForSample(ctx, "buyer@example.com", row.SampleID)
	require.NoError(t, err)
	require.False(t, owned, "pending purchases do not grant access")

	require.NoError(t, repo.Complete(ctx, row, "buyer@example.com", 2500, time.Now()))

	owned, err = repo.HasCompletedForSample(ctx, "buyer@example.com", row.SampleID)
	require.NoError(t, err)
	require.True(t, owned)

	owned, err = repo.HasCompletedForSample(ctx, "other@example.com", row.SampleID)
	require.NoError(t, err)
	require.False(t, owned)
}
