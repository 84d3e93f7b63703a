package inventory

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sareenotsorry/shop/internal/models"
)

func newTestLedger(t *testing.T) (*Ledger, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}))
	return &Ledger{DB: db}, db
}

func seedProduct(t *testing.T, db *gorm.DB, stock uint) *models.Product {
	t.Helper()
	product := models.Product{
		VendorID:    1,
		Title:       "kanjivaram",
		Slug:        "kanjivaram",
		Description: "handwoven",
		Price:       100,
		Stock:       stock,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

func stockOf(t *testing.T, db *gorm.DB, id uint) uint {
	t.Helper()
	var product models.Product
	require.NoError(t, db.First(&product, id).Error)
	return product.Stock
}

func TestDecrement(t *testing.T) {
	ledger, db := newTestLedger(t)
	ctx := context.Background()
	p := seedProduct(t, db, 5)

	require.NoError(t, ledger.Decrement(ctx, p.ID, 3))
	require.Equal(t, uint(2), stockOf(t, db, p.ID))

	// Exact drain to zero is allowed.
	require.NoError(t, ledger.Decrement(ctx, p.ID, 2))
	require.Equal(t, uint(0), stockOf(t, db, p.ID))
}

func TestDecrementInsufficient(t *testing.T) {
	ledger, db := newTestLedger(t)
	ctx := context.Background()
	p := seedProduct(t, db, 2)

	err := ledger.Decrement(ctx, p.ID, 3)
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Contains(t, err.Error(), "kanjivaram")
	require.Contains(t, err.Error(), "Available: 2")
	require.Contains(t, err.Error(), "Required: 3")
	require.Equal(t, uint(2), stockOf(t, db, p.ID))
}

func TestDecrementMissingProduct(t *testing.T) {
	ledger, _ := newTestLedger(t)
	err := ledger.Decrement(context.Background(), 404, 1)
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestIncrement(t *testing.T) {
	ledger, db := newTestLedger(t)
	ctx := context.Background()
	p := seedProduct(t, db, 1)

	require.NoError(t, ledger.Increment(ctx, p.ID, 4))
	require.Equal(t, uint(5), stockOf(t, db, p.ID))

	require.ErrorIs(t, ledger.Increment(ctx, 404, 1), ErrProductNotFound)
}
