package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/brewhaven/brewhaven-backend/pkg/db"
	"github.com/brewhaven/brewhaven-backend/pkg/db/models"
	pkgerrors "github.com/brewhaven/brewhaven-backend/pkg/errors"
	"github.com/brewhaven/brewhaven-backend/pkg/logger"
)

// Coffees below this price are rejected at creation and update.
var minPrice = decimal.NewFromInt(100)

// Service exposes catalog reads for the storefront and writes for admins.
type Service interface {
	ListCoffees(ctx context.Context, filters Filters) ([]CoffeeView, error)
	GetCoffee(ctx context.Context, id uuid.UUID) (*CoffeeView, error)
	CreateCoffee(ctx context.Context, input CoffeeInput) (*CoffeeView, error)
	UpdateCoffee(ctx context.Context, id uuid.UUID, update CoffeeUpdate) (*CoffeeView, error)
	DeleteCoffee(ctx context.Context, id uuid.UUID) error
	CreateCategory(ctx context.Context, name string) (*CategoryView, error)
	ListCategories(ctx context.Context) ([]CategoryView, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires the catalog service with its dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) ListCoffees(ctx context.Context, filters Filters) ([]CoffeeView, error) {
	if filters.Type != nil && !filters.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid drink type")
	}

	coffees, err := s.repo.ListCoffees(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing coffees")
	}

	views := make([]CoffeeView, 0, len(coffees))
	for i := range coffees {
		views = append(views, toCoffeeView(&coffees[i]))
	}
	return views, nil
}

func (s *service) GetCoffee(ctx context.Context, id uuid.UUID) (*CoffeeView, error) {
	coffee, err := s.repo.FindCoffeeByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coffee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading coffee")
	}
	view := toCoffeeView(coffee)
	return &view, nil
}

func (s *service) CreateCoffee(ctx context.Context, input CoffeeInput) (*CoffeeView, error) {
	if err := validateCoffeeInput(input); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindCategoryByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking category")
	}

	coffee := &models.Coffee{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Type:        input.Type,
		CategoryID:  input.CategoryID,
		Price:       input.Price,
		Inventory:   input.Inventory,
		Featured:    input.Featured,
		ImageURL:    input.ImageURL,
	}
	if err := s.repo.CreateCoffee(ctx, coffee); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating coffee")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"coffee_id": coffee.ID}), "coffee created")
	return s.GetCoffee(ctx, coffee.ID)
}

func (s *service) UpdateCoffee(ctx context.Context, id uuid.UUID, update CoffeeUpdate) (*CoffeeView, error) {
	coffee, err := s.repo.FindCoffeeByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coffee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading coffee")
	}

	if update.Name != nil {
		if strings.TrimSpace(*update.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		coffee.Name = strings.TrimSpace(*update.Name)
	}
	if update.Description != nil {
		if strings.TrimSpace(*update.Description) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "description cannot be blank")
		}
		coffee.Description = strings.TrimSpace(*update.Description)
	}
	if update.Type != nil {
		if !update.Type.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid drink type")
		}
		coffee.Type = *update.Type
	}
	if update.CategoryID != nil {
		if _, err := s.repo.FindCategoryByID(ctx, *update.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking category")
		}
		coffee.CategoryID = *update.CategoryID
	}
	if update.Price != nil {
		if update.Price.LessThan(minPrice) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be at least 100")
		}
		coffee.Price = *update.Price
	}
	if update.Featured != nil {
		coffee.Featured = *update.Featured
	}
	if update.ImageURL != nil {
		coffee.ImageURL = update.ImageURL
	}

	coffee.Category = nil
	if err := s.repo.UpdateCoffee(ctx, coffee); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating coffee")
	}
	return s.GetCoffee(ctx, id)
}

func (s *service) DeleteCoffee(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindCoffeeByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "coffee not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading coffee")
	}
	if err := s.repo.DeleteCoffee(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting coffee")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"coffee_id": id}), "coffee deleted")
	return nil
}

func (s *service) CreateCategory(ctx context.Context, name string) (*CategoryView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	category := &models.Category{ID: uuid.New(), Name: name}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating category")
	}
	view := toCategoryView(category)
	return &view, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryView, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing categories")
	}
	views := make([]CategoryView, 0, len(categories))
	for i := range categories {
		views = append(views, toCategoryView(&categories[i]))
	}
	return views, nil
}

func validateCoffeeInput(input CoffeeInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid drink type")
	}
	if input.CategoryID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if input.Price.LessThan(minPrice) {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be at least 100")
	}
	if input.Inventory < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "inventory cannot be negative")
	}
	return nil
}
