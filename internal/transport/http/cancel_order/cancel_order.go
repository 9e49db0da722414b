package cancelorder

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
	CancelOrder(ctx context.Context, id int64) (order.Order, error)
}

// CancelOrder handles POST /orders/{id}/cancel. Cancellation is a status
// transition, not a delete.
func CancelOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		apierror.Write(w, r, http.StatusBadRequest, "Invalid order id")

		return
	}

	cancelled, err := service.CancelOrder(r.Context(), id)
	if err != nil {
		apierror.WriteFromErr(w, r, err)
		slog.Error("Error cancelling order", "order_id", id, "error", err)

		return
	}

	slog.Info("Order cancelled", "order_id", id)
	apierror.WriteJSON(w, http.StatusOK, cancelled)
}
