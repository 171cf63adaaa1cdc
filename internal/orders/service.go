package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brewhaven/brewhaven-backend/pkg/enums"
	pkgerrors "github.com/brewhaven/brewhaven-backend/pkg/errors"
	"github.com/brewhaven/brewhaven-backend/pkg/logger"
	"github.com/brewhaven/brewhaven-backend/pkg/pagination"
)

// Actor identifies who is requesting a status change.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// Service exposes order status management and the order query views.
type Service interface {
	SetStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus, actor Actor) (*OrderView, error)
	GetForOwner(ctx context.Context, orderID, ownerID uuid.UUID) (*OrderView, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]OrderView, error)
	ListAll(ctx context.Context, params pagination.Params) (*AdminOrderList, error)
	Stats(ctx context.Context) (Stats, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires the orders service with its dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// SetStatus advances the order through the status machine. Only admins may
// change status. Cancellation does not restock inventory.
func (s *service) SetStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus, actor Actor) (*OrderView, error) {
	if actor.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}

	if err := ValidateTransition(order.Status, next); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, orderID, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order status")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_id": orderID,
		"from":     string(order.Status),
		"to":       string(next),
		"actor_id": actor.UserID,
	})
	s.logg.Info(ctx, "order status changed")

	updated, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading order")
	}
	view := toOrderView(updated)
	return &view, nil
}

func (s *service) GetForOwner(ctx context.Context, orderID, ownerID uuid.UUID) (*OrderView, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order.UserID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	view := toOrderView(order)
	return &view, nil
}

func (s *service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]OrderView, error) {
	orders, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, toOrderView(&orders[i]))
	}
	return views, nil
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) (*AdminOrderList, error) {
	orders, owners, nextCursor, err := s.repo.ListAll(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing all orders")
	}

	views := make([]AdminOrderView, 0, len(orders))
	for i := range orders {
		order := &orders[i]
		view := AdminOrderView{OrderView: toOrderView(order)}
		if owner, ok := owners[order.UserID]; ok {
			view.CustomerName = owner.FullName
			view.CustomerEmail = owner.Email
		}
		views = append(views, view)
	}
	return &AdminOrderList{Orders: views, NextCursor: nextCursor}, nil
}

func (s *service) Stats(ctx context.Context) (Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return Stats{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregating order stats")
	}
	return stats, nil
}
