package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brewhaven/brewhaven-backend/pkg/db/models"
)

// Repository covers the reads checkout performs inside the placement
// transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetCoffeePricing(ctx context.Context, id uuid.UUID) (*models.Coffee, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a checkout repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// GetCoffeePricing loads the authoritative name and price for one coffee.
func (r *repository) GetCoffeePricing(ctx context.Context, id uuid.UUID) (*models.Coffee, error) {
	var coffee models.Coffee
	if err := r.db.WithContext(ctx).
		Select("id", "name", "price", "inventory").
		First(&coffee, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &coffee, nil
}
