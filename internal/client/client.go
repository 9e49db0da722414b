package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/ordercloud/order/internal/service/models/order"
)

// DefaultBaseURL is used when neither the option nor the ORDER_API_URL
// environment variable is set.
const DefaultBaseURL = "http://localhost:8080/api/v1"

// ErrNetwork is surfaced when a request got no response at all. The message
// is shown to the user as-is.
var ErrNetwork = errors.New("network error, please check your connection")

// APIError carries the message the server attached to a rejected request.
type APIError struct {
	StatusCode int
	Message    string
	Timestamp  string
	Path       string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client is a typed client for the order API. Errors reaching the caller are
// normalized to one of three forms: an *APIError with the server-supplied
// message, ErrNetwork when no response was received, or the raw transport
// error.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	readRetries int
}

type option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithReadRetries sets how many times a read query is retried after a
// transport failure or a 5xx.
func WithReadRetries(retries int) option {
	return func(c *Client) {
		c.readRetries = retries
	}
}

// NewClient creates a new order API client.
func NewClient(opts ...option) *Client {
	c := &Client{
		baseURL:     os.Getenv("ORDER_API_URL"),
		readRetries: 1,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
			},
		},
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// CreateOrder validates the request locally and submits it. Validation
// failures never reach the network.
func (c *Client) CreateOrder(ctx context.Context, req order.CreateOrderRequest) (order.Order, error) {
	if err := req.Validate(); err != nil {
		return order.Order{}, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return order.Order{}, err
	}

	var created order.Order
	if err := c.do(ctx, http.MethodPost, "/orders", body, &created); err != nil {
		return order.Order{}, err
	}

	return created, nil
}

// GetOrderByID fetches a single order. A missing order is reported as
// order.ErrNotFound, not as a retryable failure.
func (c *Client) GetOrderByID(ctx context.Context, id int64) (order.Order, error) {
	var o order.Order
	path := "/orders/" + strconv.FormatInt(id, 10)
	if err := c.doRead(ctx, path, &o); err != nil {
		return order.Order{}, err
	}

	return o, nil
}

// GetOrdersByAccount fetches every order owned by an account. An account with
// no orders yields an empty slice.
func (c *Client) GetOrdersByAccount(ctx context.Context, accountID string) ([]order.Order, error) {
	orders := []order.Order{}
	path := "/orders/account/" + url.PathEscape(accountID)
	if err := c.doRead(ctx, path, &orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// CancelOrder requests cancellation and returns the server's record.
func (c *Client) CancelOrder(ctx context.Context, id int64) (order.Order, error) {
	var o order.Order
	path := fmt.Sprintf("/orders/%d/cancel", id)
	if err := c.do(ctx, http.MethodPost, path, nil, &o); err != nil {
		return order.Order{}, err
	}

	return o, nil
}

// UpdateOrderStatus submits the requested status unconditionally; the server
// is the authority on legal transitions.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status order.Status) (order.Order, error) {
	var o order.Order
	path := fmt.Sprintf("/orders/%d/status?status=%s", id, url.QueryEscape(status.String()))
	if err := c.do(ctx, http.MethodPut, path, nil, &o); err != nil {
		return order.Order{}, err
	}

	return o, nil
}

// doRead performs a GET with the configured retry.
func (c *Client) doRead(ctx context.Context, path string, out any) error {
	var err error
	for attempt := 0; attempt <= c.readRetries; attempt++ {
		err = c.do(ctx, http.MethodGet, path, nil, out)
		if err == nil || !retryable(err) {
			return err
		}
	}

	return err
}

// retryable reports whether a read should be attempted again. Not-found and
// other 4xx answers are authoritative.
func retryable(err error) bool {
	if errors.Is(err, ErrNetwork) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}

	return false
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// No response was received at all.
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.normalizeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// normalizeError maps a non-2xx response to the error the presentation layer
// shows verbatim.
func (c *Client) normalizeError(resp *http.Response) error {
	var body struct {
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
		Path      string `json:"path"`
	}
	decodeErr := json.NewDecoder(resp.Body).Decode(&body)

	if resp.StatusCode == http.StatusNotFound {
		return order.ErrNotFound
	}

	if decodeErr != nil || body.Message == "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("server returned status %d", resp.StatusCode),
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    body.Message,
		Timestamp:  body.Timestamp,
		Path:       body.Path,
	}
}
