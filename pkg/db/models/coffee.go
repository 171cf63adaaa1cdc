package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brewhaven/brewhaven-backend/pkg/enums"
)

// Coffee represents the canonical catalog listing. Inventory carries a
// database-level CHECK (inventory >= 0) so the count can never go negative
// even under concurrent decrements.
type Coffee struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description;not null"`
	Type        enums.DrinkType `gorm:"column:type;not null"`
	CategoryID  uuid.UUID       `gorm:"column:category_id;type:uuid;not null"`
	Category    *Category       `gorm:"foreignKey:CategoryID"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Inventory   int             `gorm:"column:inventory;not null;default:0;check:inventory >= 0"`
	Featured    bool            `gorm:"column:featured;not null;default:false"`
	ImageURL    *string         `gorm:"column:image_url"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
