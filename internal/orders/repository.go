package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/brewhaven/brewhaven-backend/pkg/db/models"
	"github.com/brewhaven/brewhaven-backend/pkg/enums"
	"github.com/brewhaven/brewhaven-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListAll(ctx context.Context, params pagination.Params) ([]models.Order, map[uuid.UUID]OwnerSummary, string, error)
	Stats(ctx context.Context) (Stats, error)
}

// Stats aggregates order activity for the admin dashboard. Revenue excludes
// cancelled orders.
type Stats struct {
	TotalOrders   int64           `json:"total_orders"`
	PendingOrders int64           `json:"pending_orders"`
	Revenue       decimal.Decimal `json:"revenue"`
}

// OwnerSummary carries the shopper identity joined onto admin order rows.
type OwnerSummary struct {
	FullName string
	Email    string
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an orders repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create persists the order together with its line items in one insert chain.
func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Coffee").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus touches only status and updated_at; everything else on the row
// is immutable after creation.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Coffee").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListAll returns the admin view: orders newest-first with the owning
// shopper's name and email, cursor-paginated on (created_at, id).
func (r *repository) ListAll(ctx context.Context, params pagination.Params) ([]models.Order, map[uuid.UUID]OwnerSummary, string, error) {
	limit := pagination.LimitWithBuffer(params.Limit)

	query := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Coffee").
		Order("created_at DESC, id DESC").
		Limit(limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, nil, "", err
	}

	nextCursor := ""
	pageSize := pagination.NormalizeLimit(params.Limit)
	if len(orders) > pageSize {
		orders = orders[:pageSize]
		last := orders[len(orders)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	owners, err := r.ownerSummaries(ctx, orders)
	if err != nil {
		return nil, nil, "", err
	}
	return orders, owners, nextCursor, nil
}

func (r *repository) Stats(ctx context.Context) (Stats, error) {
	var stats Stats

	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Count(&stats.TotalOrders).Error; err != nil {
		return Stats{}, err
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status = ?", enums.OrderStatusPending).
		Count(&stats.PendingOrders).Error; err != nil {
		return Stats{}, err
	}

	var revenue struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("status <> ?", enums.OrderStatusCancelled).
		Scan(&revenue).Error; err != nil {
		return Stats{}, err
	}
	stats.Revenue = revenue.Total

	return stats, nil
}

func (r *repository) ownerSummaries(ctx context.Context, orders []models.Order) (map[uuid.UUID]OwnerSummary, error) {
	owners := make(map[uuid.UUID]OwnerSummary)
	if len(orders) == 0 {
		return owners, nil
	}

	ids := make([]uuid.UUID, 0, len(orders))
	seen := make(map[uuid.UUID]struct{}, len(orders))
	for _, order := range orders {
		if _, ok := seen[order.UserID]; ok {
			continue
		}
		seen[order.UserID] = struct{}{}
		ids = append(ids, order.UserID)
	}

	var users []models.User
	if err := r.db.WithContext(ctx).
		Select("id", "full_name", "email").
		Where("id IN ?", ids).
		Find(&users).Error; err != nil {
		return nil, err
	}
	for _, user := range users {
		owners[user.ID] = OwnerSummary{FullName: user.FullName, Email: user.Email}
	}
	return owners, nil
}
