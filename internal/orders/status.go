package orders

import (
	"github.com/brewhaven/brewhaven-backend/pkg/enums"
	pkgerrors "github.com/brewhaven/brewhaven-backend/pkg/errors"
)

// statusRank orders the fulfillment pipeline. Cancelled sits outside the
// pipeline and is reachable from any non-terminal state.
var statusRank = map[enums.OrderStatus]int{
	enums.OrderStatusPending:        0,
	enums.OrderStatusConfirmed:      1,
	enums.OrderStatusProcessing:     2,
	enums.OrderStatusOutForDelivery: 3,
	enums.OrderStatusDelivered:      4,
}

// ValidateTransition enforces the status machine: terminal states accept no
// further transitions, forward skips are allowed, backward moves are not.
func ValidateTransition(from, to enums.OrderStatus) error {
	if !to.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": string(to)})
	}
	if from.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is in a terminal state").
			WithDetails(map[string]any{"current": string(from), "requested": string(to)})
	}
	if to == enums.OrderStatusCancelled {
		return nil
	}
	if statusRank[to] <= statusRank[from] {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order status cannot move backward").
			WithDetails(map[string]any{"current": string(from), "requested": string(to)})
	}
	return nil
}
