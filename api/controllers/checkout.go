package controllers

import (
	"net/http"
	"strings"

	"github.com/brewhaven/brewhaven-backend/api/responses"
	"github.com/brewhaven/brewhaven-backend/api/validators"
	"github.com/brewhaven/brewhaven-backend/internal/cart"
	checkoutsvc "github.com/brewhaven/brewhaven-backend/internal/checkout"
	"github.com/brewhaven/brewhaven-backend/pkg/enums"
	pkgerrors "github.com/brewhaven/brewhaven-backend/pkg/errors"
	"github.com/brewhaven/brewhaven-backend/pkg/logger"
)

type checkoutRequest struct {
	ShippingAddress string  `json:"shipping_address" validate:"required"`
	ShippingCity    string  `json:"shipping_city" validate:"required"`
	PostalCode      string  `json:"postal_code" validate:"required"`
	Phone           string  `json:"phone" validate:"required"`
	PaymentMethod   string  `json:"payment_method,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

// Checkout places an order from the shopper's current cart.
func Checkout(svc checkoutsvc.Service, carts *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		shopperID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var paymentMethod enums.PaymentMethod
		if raw := strings.TrimSpace(body.PaymentMethod); raw != "" {
			parsed, err := enums.ParsePaymentMethod(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
				return
			}
			paymentMethod = parsed
		}

		order, err := svc.PlaceOrder(r.Context(), checkoutsvc.PlaceOrderInput{
			ShopperID: shopperID,
			Lines:     carts.Get(shopperID).Lines(),
			Shipping: checkoutsvc.ShippingDetails{
				Address:    body.ShippingAddress,
				City:       body.ShippingCity,
				PostalCode: body.PostalCode,
				Phone:      body.Phone,
			},
			Notes:         body.Notes,
			PaymentMethod: paymentMethod,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
