package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service exposes the admin-facing stock operations.
type Service interface {
	Restock(ctx context.Context, coffeeID uuid.UUID, qty int) (int, error)
	Available(ctx context.Context, coffeeID uuid.UUID) (int, error)
}

type service struct {
	repo Repository
}

// NewService wires the inventory service with its repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Restock(ctx context.Context, coffeeID uuid.UUID, qty int) (int, error) {
	return s.repo.Restock(ctx, coffeeID, qty)
}

func (s *service) Available(ctx context.Context, coffeeID uuid.UUID) (int, error) {
	return s.repo.Get(ctx, coffeeID)
}
