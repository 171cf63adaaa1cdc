package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/brewhaven/brewhaven-backend/api/responses"
	"github.com/brewhaven/brewhaven-backend/api/validators"
	"github.com/brewhaven/brewhaven-backend/internal/cart"
	"github.com/brewhaven/brewhaven-backend/internal/catalog"
	pkgerrors "github.com/brewhaven/brewhaven-backend/pkg/errors"
	"github.com/brewhaven/brewhaven-backend/pkg/logger"
)

type cartAddRequest struct {
	CoffeeID string `json:"coffee_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

type cartQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

type cartView struct {
	Lines     []cart.Line     `json:"lines"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func snapshotCart(c *cart.Cart) cartView {
	count, subtotal := c.Totals()
	return cartView{Lines: c.Lines(), ItemCount: count, Subtotal: subtotal}
}

// CartFetch returns the shopper's current cart.
func CartFetch(carts *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopperID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshotCart(carts.Get(shopperID)))
	}
}

// CartAdd resolves the coffee from the catalog and merges it into the cart.
// The stored price is display-only; checkout re-reads the catalog.
func CartAdd(carts *cart.Store, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalogSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		shopperID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cartAddRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coffeeID, err := parseUUIDField(body.CoffeeID, "coffee_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coffee, err := catalogSvc.GetCoffee(r.Context(), coffeeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shopperCart := carts.Get(shopperID)
		if err := shopperCart.Add(coffee.ID, coffee.Name, coffee.Price, body.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshotCart(shopperCart))
	}
}

// CartUpdateItem sets a line's quantity; zero removes the line.
func CartUpdateItem(carts *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopperID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coffeeID, err := pathUUID(r, "coffeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cartQuantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shopperCart := carts.Get(shopperID)
		if err := shopperCart.SetQuantity(coffeeID, body.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshotCart(shopperCart))
	}
}

// CartRemoveItem drops a line from the cart.
func CartRemoveItem(carts *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopperID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coffeeID, err := pathUUID(r, "coffeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shopperCart := carts.Get(shopperID)
		if err := shopperCart.Remove(coffeeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshotCart(shopperCart))
	}
}

// CartClear empties the shopper's cart.
func CartClear(carts *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopperID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		carts.Clear(shopperID)
		responses.WriteSuccess(w, snapshotCart(carts.Get(shopperID)))
	}
}
