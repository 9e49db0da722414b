package apierror

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ordercloud/order/internal/service/models/order"
	"github.com/ordercloud/order/internal/service/services/ordersvc"
)

// ErrorResponse is the error body shape of the API.
type ErrorResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path,omitempty"`
}

// Write sends an error body with the given status code.
func Write(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	body := ErrorResponse{
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Error writing error response", "error", err)
	}
}

// WriteFromErr maps a service error to a status code and writes the body.
func WriteFromErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrNotFound):
		Write(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, ordersvc.ErrIllegalTransition),
		errors.Is(err, ordersvc.ErrCannotCancel):
		Write(w, r, http.StatusBadRequest, err.Error())
	default:
		var verrs order.ValidationErrors
		if errors.As(err, &verrs) {
			Write(w, r, http.StatusBadRequest, verrs.Error())

			return
		}
		Write(w, r, http.StatusInternalServerError, err.Error())
	}
}

// WriteJSON sends a success body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Error writing response", "error", err)
	}
}
