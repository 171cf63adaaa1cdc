package controllers

import (
	"net/http"

	"github.com/brewhaven/brewhaven-backend/api/responses"
	"github.com/brewhaven/brewhaven-backend/internal/chat"
	"github.com/brewhaven/brewhaven-backend/internal/identity"
	"github.com/brewhaven/brewhaven-backend/internal/orders"
	pkgerrors "github.com/brewhaven/brewhaven-backend/pkg/errors"
	"github.com/brewhaven/brewhaven-backend/pkg/logger"
)

type adminStatsResponse struct {
	TotalShoppers int64        `json:"total_shoppers"`
	ChatMessages  int64        `json:"chat_messages"`
	Orders        orders.Stats `json:"orders"`
}

// AdminStats aggregates the dashboard counters.
func AdminStats(identitySvc identity.Service, ordersSvc orders.Service, chatSvc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if identitySvc == nil || ordersSvc == nil || chatSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stats services unavailable"))
			return
		}

		shoppers, err := identitySvc.CountUsers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting users"))
			return
		}

		orderStats, err := ordersSvc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		messages, err := chatSvc.CountMessages(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting chat messages"))
			return
		}

		responses.WriteSuccess(w, adminStatsResponse{
			TotalShoppers: shoppers,
			ChatMessages:  messages,
			Orders:        orderStats,
		})
	}
}
