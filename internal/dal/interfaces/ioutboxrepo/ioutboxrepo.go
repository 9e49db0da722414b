package ioutboxrepo

import (
	"context"
	"time"

	"github.com/ordercloud/order/internal/service/models/outbox"
)

// IOutboxRepository is the persistence boundary for pending order events.
type IOutboxRepository interface {
	Insert(ctx context.Context, msg outbox.OutboxMessage) error
	GetPendingMessages(ctx context.Context, limit int) ([]outbox.OutboxMessage, error)
	UpdateRetry(ctx context.Context, id int64, retryCount int, lastError string, nextRetryAt time.Time) error
	Delete(ctx context.Context, id int64) error
}
