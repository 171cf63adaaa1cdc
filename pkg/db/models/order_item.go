package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem captures the priced snapshot of one cart line at placement time.
// Rows are never mutated after creation.
type OrderItem struct {
	ID       uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID  uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	CoffeeID uuid.UUID       `gorm:"column:coffee_id;type:uuid;not null"`
	Coffee   *Coffee         `gorm:"foreignKey:CoffeeID"`
	Quantity int             `gorm:"column:quantity;not null"`
	Price    decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Subtotal decimal.Decimal `gorm:"column:subtotal;type:numeric(10,2);not null"`
}
