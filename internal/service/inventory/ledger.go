package inventory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sareenotsorry/shop/internal/models"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Ledger adjusts product stock with conditional single-statement updates,
// so two concurrent decrements can never drive stock below zero.
type Ledger struct {
	DB *gorm.DB
}

// WithTx returns a ledger bound to the given transaction handle.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return &Ledger{DB: tx}
}

func (l *Ledger) Increment(ctx context.Context, productID, delta uint) error {
	res := l.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrProductNotFound, productID)
	}
	return nil
}

// Decrement subtracts delta from the product's stock only if enough is
// available. ErrInsufficientStock carries the product title and counts.
func (l *Ledger) Decrement(ctx context.Context, productID, delta uint) error {
	res := l.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, delta).
		UpdateColumn("stock", gorm.Expr("stock - ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var product models.Product
	if err := l.DB.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: id %d", ErrProductNotFound, productID)
		}
		return err
	}
	return fmt.Errorf("%w for %s. Available: %d, Required: %d",
		ErrInsufficientStock, product.Title, product.Stock, delta)
}
