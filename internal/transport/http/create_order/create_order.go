package createorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ordercloud/order/internal/service/models/order"
	"github.com/ordercloud/order/internal/transport/http/apierror"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, req order.CreateOrderRequest) (order.Order, error)
}

// CreateOrder handles POST /orders.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	var req order.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.Write(w, r, http.StatusBadRequest, "Failed to decode request body")
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}

	created, err := service.CreateOrder(r.Context(), req)
	if err != nil {
		apierror.WriteFromErr(w, r, err)
		slog.Error("Error creating order", "error", err)

		return
	}

	slog.Info("Order created", "order_id", created.ID, "account_id", created.AccountID)
	apierror.WriteJSON(w, http.StatusCreated, created)
}
