package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brewhaven/brewhaven-backend/pkg/db/models"
	pkgerrors "github.com/brewhaven/brewhaven-backend/pkg/errors"
)

// Repository owns the stock counts stored on coffee rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Decrement(ctx context.Context, coffeeID uuid.UUID, qty int) error
	Restock(ctx context.Context, coffeeID uuid.UUID, qty int) (int, error)
	Get(ctx context.Context, coffeeID uuid.UUID) (int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Decrement atomically subtracts qty from the coffee's inventory. The guard in
// the WHERE clause makes the check and the write a single statement, so two
// competing decrements can never both succeed past the available stock.
func (r *repository) Decrement(ctx context.Context, coffeeID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	res := r.db.WithContext(ctx).
		Model(&models.Coffee{}).
		Where("id = ? AND inventory >= ?", coffeeID, qty).
		Updates(map[string]any{
			"inventory":  gorm.Expr("inventory - ?", qty),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Coffee{}).
		Where("id = ?", coffeeID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "coffee not found").
			WithDetails(map[string]any{"coffee_id": coffeeID.String()})
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientInventory, "insufficient inventory").
		WithDetails(map[string]any{"coffee_id": coffeeID.String(), "requested": qty})
}

// Restock adds qty back to the coffee's inventory and returns the new count.
func (r *repository) Restock(ctx context.Context, coffeeID uuid.UUID, qty int) (int, error) {
	if qty <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	res := r.db.WithContext(ctx).
		Model(&models.Coffee{}).
		Where("id = ?", coffeeID).
		Updates(map[string]any{
			"inventory":  gorm.Expr("inventory + ?", qty),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "coffee not found").
			WithDetails(map[string]any{"coffee_id": coffeeID.String()})
	}
	return r.Get(ctx, coffeeID)
}

func (r *repository) Get(ctx context.Context, coffeeID uuid.UUID) (int, error) {
	var coffee models.Coffee
	err := r.db.WithContext(ctx).
		Select("inventory").
		First(&coffee, "id = ?", coffeeID).Error
	if err != nil {
		return 0, err
	}
	return coffee.Inventory, nil
}
