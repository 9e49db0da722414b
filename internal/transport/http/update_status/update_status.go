package updatestatus

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ordercloud/order/internal/service/models/order"
	"github.com/ordercloud/order/internal/transport/http/apierror"
)

type service interface {
	UpdateOrderStatus(ctx context.Context, id int64, status order.Status) (order.Order, error)
}

// UpdateStatus handles PUT /orders/{id}/status?status=S.
func UpdateStatus(w http.ResponseWriter, r *http.Request, service service) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		apierror.Write(w, r, http.StatusBadRequest, "Invalid order id")

		return
	}

	status, err := order.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		apierror.WriteFromErr(w, r, err)

		return
	}

	updated, err := service.UpdateOrderStatus(r.Context(), id, status)
	if err != nil {
		apierror.WriteFromErr(w, r, err)
		slog.Error("Error updating order status", "order_id", id, "status", status, "error", err)

		return
	}

	slog.Info("Order status updated", "order_id", id, "status", status)
	apierror.WriteJSON(w, http.StatusOK, updated)
}
