package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brewhaven/brewhaven-backend/pkg/db/models"
	"github.com/brewhaven/brewhaven-backend/pkg/enums"
)

// CoffeeInput carries the fields accepted when creating a coffee.
type CoffeeInput struct {
	Name        string
	Description string
	Type        enums.DrinkType
	CategoryID  uuid.UUID
	Price       decimal.Decimal
	Inventory   int
	Featured    bool
	ImageURL    *string
}

// CoffeeUpdate carries optional fields for a partial update. Inventory is
// deliberately absent: stock changes go through the restock operation.
type CoffeeUpdate struct {
	Name        *string
	Description *string
	Type        *enums.DrinkType
	CategoryID  *uuid.UUID
	Price       *decimal.Decimal
	Featured    *bool
	ImageURL    *string
}

// CoffeeView is the read model served to the storefront.
type CoffeeView struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        enums.DrinkType `json:"type"`
	CategoryID  uuid.UUID       `json:"category_id"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Inventory   int             `json:"inventory"`
	Available   bool            `json:"available"`
	Featured    bool            `json:"featured"`
	ImageURL    *string         `json:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CategoryView is the read model for category lists.
type CategoryView struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toCoffeeView(coffee *models.Coffee) CoffeeView {
	view := CoffeeView{
		ID:          coffee.ID,
		Name:        coffee.Name,
		Description: coffee.Description,
		Type:        coffee.Type,
		CategoryID:  coffee.CategoryID,
		Price:       coffee.Price,
		Inventory:   coffee.Inventory,
		Available:   coffee.Inventory > 0,
		Featured:    coffee.Featured,
		ImageURL:    coffee.ImageURL,
		CreatedAt:   coffee.CreatedAt,
	}
	if coffee.Category != nil {
		view.Category = coffee.Category.Name
	}
	return view
}

func toCategoryView(category *models.Category) CategoryView {
	return CategoryView{
		ID:        category.ID,
		Name:      category.Name,
		CreatedAt: category.CreatedAt,
	}
}
