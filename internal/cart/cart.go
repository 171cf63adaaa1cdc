package cart

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/brewhaven/brewhaven-backend/pkg/errors"
)

// Line is one coffee entry in a shopper's cart. UnitPrice is display state
// only; checkout re-reads the catalog price inside the placement transaction.
type Line struct {
	CoffeeID  uuid.UUID       `json:"coffee_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Cart is the in-memory aggregate for a single shopper. All mutation goes
// through the mutex; the aggregate never touches the network or the database.
type Cart struct {
	mu    sync.Mutex
	lines []Line
}

// Add merges qty into an existing line for the coffee or appends a new one.
func (c *Cart) Add(coffeeID uuid.UUID, name string, unitPrice decimal.Decimal, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].CoffeeID == coffeeID {
			c.lines[i].Quantity += qty
			c.lines[i].UnitPrice = unitPrice
			c.lines[i].Name = name
			return nil
		}
	}
	c.lines = append(c.lines, Line{CoffeeID: coffeeID, Name: name, UnitPrice: unitPrice, Quantity: qty})
	return nil
}

// SetQuantity replaces the line's quantity. A quantity of zero or less removes
// the line.
func (c *Cart) SetQuantity(coffeeID uuid.UUID, qty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].CoffeeID != coffeeID {
			continue
		}
		if qty <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
		c.lines[i].Quantity = qty
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "coffee not in cart").
		WithDetails(map[string]any{"coffee_id": coffeeID.String()})
}

// Remove deletes the line for the coffee.
func (c *Cart) Remove(coffeeID uuid.UUID) error {
	return c.SetQuantity(coffeeID, 0)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Lines returns a snapshot copy of the cart contents in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Totals returns the item count and subtotal across all lines.
func (c *Cart) Totals() (int, decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	subtotal := decimal.Zero
	for _, line := range c.lines {
		count += line.Quantity
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return count, subtotal
}
