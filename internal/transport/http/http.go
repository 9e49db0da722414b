package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ordercloud/order/internal/service/models/order"
	cancelorder "github.com/ordercloud/order/internal/transport/http/cancel_order"
	createorder "github.com/ordercloud/order/internal/transport/http/create_order"
	getorder "github.com/ordercloud/order/internal/transport/http/get_order"
	listorders "github.com/ordercloud/order/internal/transport/http/list_orders"
	queryorders "github.com/ordercloud/order/internal/transport/http/query_orders"
	updatestatus "github.com/ordercloud/order/internal/transport/http/update_status"
	"github.com/ordercloud/order/pkg/http/middleware/trace"
	"github.com/ordercloud/order/pkg/logger"
	"github.com/spf13/viper"
)

type service interface {
	CreateOrder(ctx context.Context, req order.CreateOrderRequest) (order.Order, error)
	GetOrderByID(ctx context.Context, id int64) (order.Order, error)
	GetOrdersByAccount(ctx context.Context, accountID string) ([]order.Order, error)
	QueryOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error)
	CancelOrder(ctx context.Context, id int64) (order.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status order.Status) (order.Order, error)
}

type HTTPTransport struct {
	server  *http.Server
	router  *chi.Mux
	service service
}

func NewHTTPTransport(service service) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:  server,
		router:  router,
		service: service,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.queryOrders)
			r.Post("/", h.createOrder)
			r.Get("/{id}", h.getOrder)
			r.Get("/account/{accountId}", h.listOrders)
			r.Post("/{id}/cancel", h.cancelOrder)
			r.Put("/{id}/status", h.updateStatus)
		})
	})
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.service)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.service)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.service)
}

func (h *HTTPTransport) queryOrders(w http.ResponseWriter, r *http.Request) {
	queryorders.QueryOrders(w, r, h.service)
}

func (h *HTTPTransport) cancelOrder(w http.ResponseWriter, r *http.Request) {
	cancelorder.CancelOrder(w, r, h.service)
}

func (h *HTTPTransport) updateStatus(w http.ResponseWriter, r *http.Request) {
	updatestatus.UpdateStatus(w, r, h.service)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware("order-svc"))

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
