package getorder

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
	GetOrderByID(ctx context.Context, id int64) (order.Order, error)
}

// GetOrder handles GET /orders/{id}.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		apierror.Write(w, r, http.StatusBadRequest, "Invalid order id")

		return
	}

	o, err := service.GetOrderByID(r.Context(), id)
	if err != nil {
		apierror.WriteFromErr(w, r, err)
		slog.Error("Error getting order", "order_id", id, "error", err)

		return
	}

	apierror.WriteJSON(w, http.StatusOK, o)
}
