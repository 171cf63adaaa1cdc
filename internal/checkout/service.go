package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/brewhaven/brewhaven-backend/internal/cart"
	"github.com/brewhaven/brewhaven-backend/internal/inventory"
	"github.com/brewhaven/brewhaven-backend/internal/orders"
	"github.com/brewhaven/brewhaven-backend/pkg/db/models"
	"github.com/brewhaven/brewhaven-backend/pkg/enums"
	pkgerrors "github.com/brewhaven/brewhaven-backend/pkg/errors"
	"github.com/brewhaven/brewhaven-backend/pkg/logger"
	"github.com/brewhaven/brewhaven-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartClearer interface {
	Clear(shopperID uuid.UUID)
}

// ShippingDetails carries the delivery fields required at placement.
type ShippingDetails struct {
	Address    string
	City       string
	PostalCode string
	Phone      string
}

// PlaceOrderInput is everything needed to turn a cart snapshot into an order.
type PlaceOrderInput struct {
	ShopperID     uuid.UUID
	Lines         []cart.Line
	Shipping      ShippingDetails
	Notes         *string
	PaymentMethod enums.PaymentMethod
}

// Service turns cart snapshots into persisted orders.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*orders.OrderView, error)
}

type service struct {
	tx        txRunner
	repo      Repository
	inventory inventory.Repository
	orders    orders.Repository
	carts     cartClearer
	logg      *logger.Logger
	metrics   *metrics.APIMetrics
}

// NewService wires the checkout service with its dependencies. Metrics may be
// nil.
func NewService(
	tx txRunner,
	repo Repository,
	inventoryRepo inventory.Repository,
	ordersRepo orders.Repository,
	carts cartClearer,
	logg *logger.Logger,
	apiMetrics *metrics.APIMetrics,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("checkout repository is required")
	}
	if inventoryRepo == nil {
		return nil, fmt.Errorf("inventory repository is required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart store is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		tx:        tx,
		repo:      repo,
		inventory: inventoryRepo,
		orders:    ordersRepo,
		carts:     carts,
		logg:      logg,
		metrics:   apiMetrics,
	}, nil
}

// PlaceOrder runs the whole placement inside one transaction: decrement stock
// for every line, insert the order, insert its items. Any failure rolls the
// lot back and leaves the cart untouched. The cart is cleared only after a
// successful commit.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*orders.OrderView, error) {
	if err := validateInput(&input); err != nil {
		s.metrics.IncOrderRejected("validation")
		return nil, err
	}

	var orderID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		stock := s.inventory.WithTx(tx)

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(input.Lines))
		for _, line := range input.Lines {
			coffee, err := repo.GetCoffeePricing(ctx, line.CoffeeID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("coffee %s no longer exists", line.CoffeeID)).
						WithDetails(map[string]any{"coffee_id": line.CoffeeID.String()})
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading coffee pricing")
			}

			if err := stock.Decrement(ctx, line.CoffeeID, line.Quantity); err != nil {
				if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeInsufficientInventory {
					return pkgerrors.New(pkgerrors.CodeInsufficientInventory,
						fmt.Sprintf("insufficient inventory for %s", coffee.Name)).
						WithDetails(map[string]any{
							"coffee_id": line.CoffeeID.String(),
							"requested": line.Quantity,
							"available": coffee.Inventory,
						})
				}
				return err
			}

			subtotal := coffee.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(subtotal)
			items = append(items, models.OrderItem{
				ID:       uuid.New(),
				CoffeeID: line.CoffeeID,
				Quantity: line.Quantity,
				Price:    coffee.Price,
				Subtotal: subtotal,
			})
		}

		order := &models.Order{
			ID:              uuid.New(),
			UserID:          input.ShopperID,
			Status:          enums.OrderStatusPending,
			PaymentMethod:   input.PaymentMethod,
			ShippingAddress: strings.TrimSpace(input.Shipping.Address),
			ShippingCity:    strings.TrimSpace(input.Shipping.City),
			PostalCode:      strings.TrimSpace(input.Shipping.PostalCode),
			Phone:           strings.TrimSpace(input.Shipping.Phone),
			Notes:           input.Notes,
			TotalAmount:     total,
			Items:           items,
		}
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
		}
		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeInsufficientInventory {
			s.metrics.IncOrderRejected("insufficient_inventory")
		}
		return nil, err
	}

	// Only a committed placement consumes the cart.
	s.carts.Clear(input.ShopperID)
	s.metrics.IncOrderPlaced()

	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_id":   orderID,
		"shopper_id": input.ShopperID,
		"line_count": len(input.Lines),
	})
	s.logg.Info(ctx, "order placed")

	placed, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading placed order")
	}
	view := orders.NewOrderView(placed)
	return &view, nil
}

func validateInput(input *PlaceOrderInput) error {
	if input.ShopperID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "shopper identity required")
	}
	if len(input.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
	}
	if strings.TrimSpace(input.Shipping.Address) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}
	if strings.TrimSpace(input.Shipping.City) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping city is required")
	}
	if strings.TrimSpace(input.Shipping.PostalCode) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "postal code is required")
	}
	if strings.TrimSpace(input.Shipping.Phone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = enums.PaymentMethodCOD
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method")
	}
	return nil
}
