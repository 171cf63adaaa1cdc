package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brewhaven/brewhaven-backend/pkg/db/models"
	"github.com/brewhaven/brewhaven-backend/pkg/enums"
)

// OrderItemView is the read model for one priced line on an order.
type OrderItemView struct {
	ID       uuid.UUID       `json:"id"`
	CoffeeID uuid.UUID       `json:"coffee_id"`
	Name     string          `json:"name,omitempty"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// OrderView is the read model served to the order's owner.
type OrderView struct {
	ID              uuid.UUID           `json:"id"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	ShippingAddress string              `json:"shipping_address"`
	ShippingCity    string              `json:"shipping_city"`
	PostalCode      string              `json:"postal_code"`
	Phone           string              `json:"phone"`
	Notes           *string             `json:"notes,omitempty"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	Items           []OrderItemView     `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// AdminOrderView extends the owner view with the shopper's identity.
type AdminOrderView struct {
	OrderView
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
}

// AdminOrderList wraps the paginated admin view plus the next-page cursor.
type AdminOrderList struct {
	Orders     []AdminOrderView `json:"orders"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// NewOrderView builds the owner-facing read model from a loaded order.
func NewOrderView(order *models.Order) OrderView {
	return toOrderView(order)
}

func toOrderView(order *models.Order) OrderView {
	items := make([]OrderItemView, 0, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		view := OrderItemView{
			ID:       item.ID,
			CoffeeID: item.CoffeeID,
			Quantity: item.Quantity,
			Price:    item.Price,
			Subtotal: item.Subtotal,
		}
		if item.Coffee != nil {
			view.Name = item.Coffee.Name
		}
		items = append(items, view)
	}
	return OrderView{
		ID:              order.ID,
		Status:          order.Status,
		PaymentMethod:   order.PaymentMethod,
		ShippingAddress: order.ShippingAddress,
		ShippingCity:    order.ShippingCity,
		PostalCode:      order.PostalCode,
		Phone:           order.Phone,
		Notes:           order.Notes,
		TotalAmount:     order.TotalAmount,
		Items:           items,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}
