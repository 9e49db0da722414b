package listorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ordercloud/order/internal/service/models/order"
	"github.com/ordercloud/order/internal/transport/http/apierror"
)

type service interface {
	GetOrdersByAccount(ctx context.Context, accountID string) ([]order.Order, error)
}

// ListOrders handles GET /orders/account/{accountId}. Accounts without
// orders get an empty array, not an error.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	accountID := chi.URLParam(r, "accountId")

	orders, err := service.GetOrdersByAccount(r.Context(), accountID)
	if err != nil {
		apierror.WriteFromErr(w, r, err)
		slog.Error("Error listing orders", "account_id", accountID, "error", err)

		return
	}

	apierror.WriteJSON(w, http.StatusOK, orders)
}
