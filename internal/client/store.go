package client

import (
	"context"
	"time"

	"github.com/ordercloud/order/internal/client/querycache"
	"github.com/ordercloud/order/internal/service/models/order"
	"golang.org/x/sync/errgroup"
)

// refetchTimeout bounds the background list refetch triggered by an
// invalidation.
const refetchTimeout = 30 * time.Second

// Store combines the API client with the query cache. Reads go through the
// cache; mutations write the cache only after the server's response, so a
// failed mutation leaves prior cached state untouched.
//
// Two concurrent mutations to the same order race on the cache: whichever
// response arrives last wins.
type Store struct {
	api   *Client
	cache *querycache.Cache

	refetch errgroup.Group
}

// NewStore creates a Store around an owned cache.
func NewStore(api *Client, cache *querycache.Cache) *Store {
	s := &Store{
		api:   api,
		cache: cache,
	}
	s.refetch.SetLimit(4)

	return s
}

// Order returns the order with the given id, read through the detail cache.
func (s *Store) Order(ctx context.Context, id int64) (order.Order, error) {
	if v, ok := s.cache.Get(querycache.Detail(id)); ok {
		return v.(order.Order), nil
	}

	o, err := s.api.GetOrderByID(ctx, id)
	if err != nil {
		return order.Order{}, err
	}
	s.cache.Set(querycache.Detail(id), o)

	return o, nil
}

// OrdersByAccount returns an account's orders, read through the list cache.
func (s *Store) OrdersByAccount(ctx context.Context, accountID string) ([]order.Order, error) {
	if v, ok := s.cache.Get(querycache.List(accountID)); ok {
		return v.([]order.Order), nil
	}

	orders, err := s.api.GetOrdersByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(querycache.List(accountID), orders)

	return orders, nil
}

// CreateOrder submits a new order. On success the detail cache is seeded
// with the server's record and the account's list is invalidated.
func (s *Store) CreateOrder(ctx context.Context, req order.CreateOrderRequest) (order.Order, error) {
	created, err := s.api.CreateOrder(ctx, req)
	if err != nil {
		return order.Order{}, err
	}

	s.cache.Set(querycache.Detail(created.ID), created)
	s.invalidateList(created.AccountID)

	return created, nil
}

// CancelOrder cancels an order. On success the detail cache is replaced with
// the returned record and the account's list is invalidated.
func (s *Store) CancelOrder(ctx context.Context, id int64) (order.Order, error) {
	cancelled, err := s.api.CancelOrder(ctx, id)
	if err != nil {
		return order.Order{}, err
	}

	s.cache.Set(querycache.Detail(cancelled.ID), cancelled)
	s.invalidateList(cancelled.AccountID)

	return cancelled, nil
}

// UpdateOrderStatus submits a status change. The cached record always ends
// up holding the server's answer, never the locally selected status.
func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status order.Status) (order.Order, error) {
	updated, err := s.api.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return order.Order{}, err
	}

	s.cache.Set(querycache.Detail(updated.ID), updated)
	s.invalidateList(updated.AccountID)

	return updated, nil
}

// invalidateList marks an account's list stale and refetches it in the
// background, so the next list read reflects the mutation at the cost of one
// extra round trip.
func (s *Store) invalidateList(accountID string) {
	s.cache.Invalidate(querycache.List(accountID))

	s.refetch.Go(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), refetchTimeout)
		defer cancel()

		orders, err := s.api.GetOrdersByAccount(ctx, accountID)
		if err != nil {
			// The entry stays stale; the next read fetches synchronously.
			return nil
		}
		s.cache.Set(querycache.List(accountID), orders)

		return nil
	})
}

// Flush waits for in-flight background refetches.
func (s *Store) Flush() {
	_ = s.refetch.Wait()
}
