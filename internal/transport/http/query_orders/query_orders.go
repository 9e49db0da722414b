package queryorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/ordercloud/order/internal/service/models/order"
	"github.com/ordercloud/order/internal/transport/http/apierror"
)

type service interface {
	QueryOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error)
}

type queryOrdersRequest struct {
	Ids        []int64  `schema:"ids,omitempty"`
	AccountIds []string `schema:"accountIds,omitempty"`
	Limit      int      `schema:"limit,omitempty"`
	Offset     int      `schema:"offset,omitempty"`
}

func (q *queryOrdersRequest) ToModel() order.QueryOrdersModel {
	return order.QueryOrdersModel{
		Ids:        q.Ids,
		AccountIds: q.AccountIds,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
}

// QueryOrders handles GET /orders, a filtered listing for internal tooling.
func QueryOrders(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	query := &queryOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		apierror.Write(w, r, http.StatusBadRequest, "Invalid query parameters")
		slog.Error("Error decoding request", "error", err)

		return
	}

	orders, err := service.QueryOrders(r.Context(), query.ToModel())
	if err != nil {
		apierror.WriteFromErr(w, r, err)
		slog.Error("Error querying orders", "error", err)

		return
	}

	apierror.WriteJSON(w, http.StatusOK, orders)
}
