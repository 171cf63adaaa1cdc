package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brewhaven/brewhaven-backend/pkg/db/models"
	"github.com/brewhaven/brewhaven-backend/pkg/enums"
)

// Filters narrow the public coffee list.
type Filters struct {
	CategoryID *uuid.UUID
	Type       *enums.DrinkType
	Query      string
}

// Repository defines persistence operations for coffees and categories.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateCoffee(ctx context.Context, coffee *models.Coffee) error
	UpdateCoffee(ctx context.Context, coffee *models.Coffee) error
	DeleteCoffee(ctx context.Context, id uuid.UUID) error
	FindCoffeeByID(ctx context.Context, id uuid.UUID) (*models.Coffee, error)
	ListCoffees(ctx context.Context, filters Filters) ([]models.Coffee, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateCoffee(ctx context.Context, coffee *models.Coffee) error {
	return r.db.WithContext(ctx).Create(coffee).Error
}

func (r *repository) UpdateCoffee(ctx context.Context, coffee *models.Coffee) error {
	return r.db.WithContext(ctx).Save(coffee).Error
}

func (r *repository) DeleteCoffee(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Coffee{}, "id = ?", id).Error
}

func (r *repository) FindCoffeeByID(ctx context.Context, id uuid.UUID) (*models.Coffee, error) {
	var coffee models.Coffee
	if err := r.db.WithContext(ctx).
		Preload("Category").
		First(&coffee, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &coffee, nil
}

// ListCoffees returns the storefront listing: featured first, then newest.
func (r *repository) ListCoffees(ctx context.Context, filters Filters) ([]models.Coffee, error) {
	query := r.db.WithContext(ctx).
		Preload("Category").
		Order("featured DESC, created_at DESC")

	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	var coffees []models.Coffee
	if err := query.Find(&coffees).Error; err != nil {
		return nil, err
	}
	return coffees, nil
}

func (r *repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *repository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
