package checkout

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/brewhaven/brewhaven-backend/internal/cart"
	"github.com/brewhaven/brewhaven-backend/internal/inventory"
	"github.com/brewhaven/brewhaven-backend/internal/orders"
	"github.com/brewhaven/brewhaven-backend/pkg/db"
	"github.com/brewhaven/brewhaven-backend/pkg/db/models"
	"github.com/brewhaven/brewhaven-backend/pkg/enums"
	pkgerrors "github.com/brewhaven/brewhaven-backend/pkg/errors"
	"github.com/brewhaven/brewhaven-backend/pkg/logger"
)

type checkoutEnv struct {
	svc   Service
	db    *gorm.DB
	carts *cart.Store
}

func newEnv(t *testing.T, dsn string) *checkoutEnv {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS coffees (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL,
  type TEXT NOT NULL,
  category_id TEXT NOT NULL,
  price NUMERIC NOT NULL,
  inventory INTEGER NOT NULL DEFAULT 0 CHECK (inventory >= 0),
  featured INTEGER NOT NULL DEFAULT 0,
  image_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT NOT NULL DEFAULT 'COD',
  shipping_address TEXT NOT NULL,
  shipping_city TEXT NOT NULL,
  postal_code TEXT NOT NULL,
  phone TEXT NOT NULL,
  notes TEXT,
  total_amount NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  coffee_id TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity > 0),
  price NUMERIC NOT NULL,
  subtotal NUMERIC NOT NULL
);`}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}

	carts := cart.NewStore()
	svc, err := NewService(
		db.NewFromGorm(conn),
		NewRepository(conn),
		inventory.NewRepository(conn),
		orders.NewRepository(conn),
		carts,
		logger.NewNop(),
		nil,
	)
	require.NoError(t, err)

	return &checkoutEnv{svc: svc, db: conn, carts: carts}
}

func newMemoryEnv(t *testing.T) *checkoutEnv {
	return newEnv(t, "file:checkout_"+uuid.NewString()+"?mode=memory&cache=shared")
}

func seedCoffee(t *testing.T, conn *gorm.DB, name string, price int64, stock int) uuid.UUID {
	t.Helper()
	category := models.Category{ID: uuid.New(), Name: "Category " + uuid.NewString()}
	require.NoError(t, conn.Create(&category).Error)
	coffee := models.Coffee{
		ID:          uuid.New(),
		Name:        name,
		Description: "test roast",
		Type:        enums.DrinkTypeHot,
		CategoryID:  category.ID,
		Price:       decimal.NewFromInt(price),
		Inventory:   stock,
	}
	require.NoError(t, conn.Create(&coffee).Error)
	return coffee.ID
}

func shipping() ShippingDetails {
	return ShippingDetails{
		Address:    "1 Bean St",
		City:       "Roastville",
		PostalCode: "1000",
		Phone:      "555-0100",
	}
}

func TestPlaceOrderHappyPath(t *testing.T) {
	t.Parallel()

	env := newMemoryEnv(t)
	ctx := context.Background()
	shopper := uuid.New()

	coffeeA := seedCoffee(t, env.db, "Americano", 150, 5)
	coffeeB := seedCoffee(t, env.db, "Cold Brew", 300, 1)

	shopperCart := env.carts.Get(shopper)
	// The cart carries a stale display price for A; checkout must re-read it.
	require.NoError(t, shopperCart.Add(coffeeA, "Americano", decimal.NewFromInt(140), 2))
	require.NoError(t, shopperCart.Add(coffeeB, "Cold Brew", decimal.NewFromInt(300), 1))

	view, err := env.svc.PlaceOrder(ctx, PlaceOrderInput{
		ShopperID: shopper,
		Lines:     shopperCart.Lines(),
		Shipping:  shipping(),
	})
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusPending, view.Status)
	assert.Equal(t, enums.PaymentMethodCOD, view.PaymentMethod)
	assert.True(t, view.TotalAmount.Equal(decimal.NewFromInt(600)), "total %s", view.TotalAmount)
	require.Len(t, view.Items, 2)

	byCoffee := map[uuid.UUID]orders.OrderItemView{}
	for _, item := range view.Items {
		byCoffee[item.CoffeeID] = item
	}
	itemA := byCoffee[coffeeA]
	assert.Equal(t, 2, itemA.Quantity)
	assert.True(t, itemA.Price.Equal(decimal.NewFromInt(150)), "catalog price wins over cart price")
	assert.True(t, itemA.Subtotal.Equal(decimal.NewFromInt(300)))
	itemB := byCoffee[coffeeB]
	assert.Equal(t, 1, itemB.Quantity)
	assert.True(t, itemB.Subtotal.Equal(decimal.NewFromInt(300)))

	var orderCount int64
	require.NoError(t, env.db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.EqualValues(t, 1, orderCount)

	var stockA, stockB models.Coffee
	require.NoError(t, env.db.First(&stockA, "id = ?", coffeeA).Error)
	require.NoError(t, env.db.First(&stockB, "id = ?", coffeeB).Error)
	assert.Equal(t, 3, stockA.Inventory)
	assert.Equal(t, 0, stockB.Inventory)

	assert.Empty(t, env.carts.Get(shopper).Lines(), "cart cleared after successful placement")
}

func TestPlaceOrderValidation(t *testing.T) {
	t.Parallel()

	env := newMemoryEnv(t)
	ctx := context.Background()
	shopper := uuid.New()
	coffeeID := seedCoffee(t, env.db, "Latte", 200, 5)
	line := cart.Line{CoffeeID: coffeeID, Quantity: 1, UnitPrice: decimal.NewFromInt(200)}

	cases := []struct {
		name  string
		input PlaceOrderInput
	}{
		{"empty cart", PlaceOrderInput{ShopperID: shopper, Shipping: shipping()}},
		{"blank address", PlaceOrderInput{ShopperID: shopper, Lines: []cart.Line{line}, Shipping: ShippingDetails{City: "c", PostalCode: "p", Phone: "ph"}}},
		{"blank city", PlaceOrderInput{ShopperID: shopper, Lines: []cart.Line{line}, Shipping: ShippingDetails{Address: "a", PostalCode: "p", Phone: "ph"}}},
		{"blank postal code", PlaceOrderInput{ShopperID: shopper, Lines: []cart.Line{line}, Shipping: ShippingDetails{Address: "a", City: "c", Phone: "ph"}}},
		{"blank phone", PlaceOrderInput{ShopperID: shopper, Lines: []cart.Line{line}, Shipping: ShippingDetails{Address: "a", City: "c", PostalCode: "p"}}},
		{"bad payment method", PlaceOrderInput{ShopperID: shopper, Lines: []cart.Line{line}, Shipping: shipping(), PaymentMethod: "CARD"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.PlaceOrder(ctx, tc.input)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}

	_, err := env.svc.PlaceOrder(ctx, PlaceOrderInput{Lines: []cart.Line{line}, Shipping: shipping()})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())

	var orderCount int64
	require.NoError(t, env.db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)
}

func TestPlaceOrderInsufficientStockRollsBackEverything(t *testing.T) {
	t.Parallel()

	env := newMemoryEnv(t)
	ctx := context.Background()
	shopper := uuid.New()

	coffeeA := seedCoffee(t, env.db, "Americano", 150, 5)
	coffeeB := seedCoffee(t, env.db, "Cold Brew", 300, 1)

	shopperCart := env.carts.Get(shopper)
	require.NoError(t, shopperCart.Add(coffeeA, "Americano", decimal.NewFromInt(150), 2))
	require.NoError(t, shopperCart.Add(coffeeB, "Cold Brew", decimal.NewFromInt(300), 2))

	_, err := env.svc.PlaceOrder(ctx, PlaceOrderInput{
		ShopperID: shopper,
		Lines:     shopperCart.Lines(),
		Shipping:  shipping(),
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientInventory, typed.Code())
	assert.Contains(t, typed.Message(), "Cold Brew", "error names the blocking coffee")

	var orderCount, itemCount int64
	require.NoError(t, env.db.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, env.db.Model(&models.OrderItem{}).Count(&itemCount).Error)
	assert.Zero(t, orderCount, "no orphan order")
	assert.Zero(t, itemCount, "no orphan items")

	var stockA, stockB models.Coffee
	require.NoError(t, env.db.First(&stockA, "id = ?", coffeeA).Error)
	require.NoError(t, env.db.First(&stockB, "id = ?", coffeeB).Error)
	assert.Equal(t, 5, stockA.Inventory, "partial decrement rolled back")
	assert.Equal(t, 1, stockB.Inventory)

	assert.Len(t, env.carts.Get(shopper).Lines(), 2, "cart intact after failure")
}

func TestPlaceOrderUnknownCoffee(t *testing.T) {
	t.Parallel()

	env := newMemoryEnv(t)
	shopper := uuid.New()

	_, err := env.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		ShopperID: shopper,
		Lines:     []cart.Line{{CoffeeID: uuid.New(), Quantity: 1, UnitPrice: decimal.NewFromInt(100)}},
		Shipping:  shipping(),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestConcurrentPlacementExactlyOneSucceeds(t *testing.T) {
	// File-backed DB so both placements contend on real sqlite locking.
	dsn := "file:" + filepath.Join(t.TempDir(), "checkout.db") + "?_busy_timeout=5000&_txlock=immediate"
	env := newEnv(t, dsn)
	ctx := context.Background()

	coffeeID := seedCoffee(t, env.db, "Reserve Roast", 500, 3)

	place := func(shopper uuid.UUID) error {
		_, err := env.svc.PlaceOrder(ctx, PlaceOrderInput{
			ShopperID: shopper,
			Lines:     []cart.Line{{CoffeeID: coffeeID, Quantity: 3, UnitPrice: decimal.NewFromInt(500)}},
			Shipping:  shipping(),
		})
		return err
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			errs[slot] = place(uuid.New())
		}(i)
	}
	wg.Wait()

	successes, inventoryFailures := 0, 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeInsufficientInventory {
			inventoryFailures++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes, "exactly one placement wins")
	assert.Equal(t, 1, inventoryFailures, "the loser sees insufficient inventory")

	var stock models.Coffee
	require.NoError(t, env.db.First(&stock, "id = ?", coffeeID).Error)
	assert.Equal(t, 0, stock.Inventory)

	var orderCount int64
	require.NoError(t, env.db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.EqualValues(t, 1, orderCount)
}
