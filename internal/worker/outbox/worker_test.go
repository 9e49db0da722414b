package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ordercloud/order/internal/service/models/outbox"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishCall struct {
	exchange   string
	routingKey string
	msg        amqp.Publishing
}

type fakeChannel struct {
	mu        sync.Mutex
	err       error
	published []publishCall
}

func (f *fakeChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishCall{exchange: exchange, routingKey: key, msg: msg})

	return nil
}

type retryCall struct {
	id          int64
	retryCount  int
	lastError   string
	nextRetryAt time.Time
}

type fakeOutboxRepo struct {
	mu      sync.Mutex
	pending []outbox.OutboxMessage
	deleted []int64
	retries []retryCall
}

func (f *fakeOutboxRepo) Insert(ctx context.Context, msg outbox.OutboxMessage) error { return nil }

func (f *fakeOutboxRepo) GetPendingMessages(ctx context.Context, limit int) ([]outbox.OutboxMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.pending, nil
}

func (f *fakeOutboxRepo) UpdateRetry(ctx context.Context, id int64, retryCount int, lastError string, nextRetryAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.retries = append(f.retries, retryCall{id: id, retryCount: retryCount, lastError: lastError, nextRetryAt: nextRetryAt})

	return nil
}

func (f *fakeOutboxRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleted = append(f.deleted, id)
	for i, msg := range f.pending {
		if msg.ID == id {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			break
		}
	}

	return nil
}

func (f *fakeOutboxRepo) deletedIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]int64{}, f.deleted...)
}

func newTestWorker(repo *fakeOutboxRepo, channel *fakeChannel) *Worker {
	return &Worker{
		outboxRepo:   repo,
		channel:      channel,
		pollInterval: 5 * time.Millisecond,
		batchSize:    100,
		stopCh:       make(chan struct{}),
	}
}

func pendingMessage(id int64, retryCount int) outbox.OutboxMessage {
	return outbox.OutboxMessage{
		ID:          id,
		QueueName:   "oms.order.events",
		RoutingKey:  "oms.order.events",
		Payload:     []byte(`{"type":"order.created"}`),
		ContentType: "application/json",
		RetryCount:  retryCount,
		MaxRetries:  5,
	}
}

func TestProcessMessagesPublishesAndDeletes(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []outbox.OutboxMessage{pendingMessage(1, 0)}}
	channel := &fakeChannel{}
	w := newTestWorker(repo, channel)

	w.processMessages(context.Background())

	require.Len(t, channel.published, 1)
	assert.Equal(t, "", channel.published[0].exchange)
	assert.Equal(t, "oms.order.events", channel.published[0].routingKey)
	assert.Equal(t, "application/json", channel.published[0].msg.ContentType)
	assert.JSONEq(t, `{"type":"order.created"}`, string(channel.published[0].msg.Body))

	assert.Equal(t, []int64{1}, repo.deleted)
	assert.Empty(t, repo.retries)
}

func TestProcessMessagesSchedulesRetryOnPublishFailure(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []outbox.OutboxMessage{pendingMessage(1, 0)}}
	channel := &fakeChannel{err: errors.New("channel closed")}
	w := newTestWorker(repo, channel)

	before := time.Now()
	w.processMessages(context.Background())

	require.Len(t, repo.retries, 1)
	assert.Equal(t, int64(1), repo.retries[0].id)
	assert.Equal(t, 1, repo.retries[0].retryCount)
	assert.Equal(t, "channel closed", repo.retries[0].lastError)
	// First retry backs off 2^1 * 30s = 60s.
	assert.WithinDuration(t, before.Add(60*time.Second), repo.retries[0].nextRetryAt, time.Second)

	assert.Empty(t, repo.deleted, "a failed publish keeps the outbox row")
}

func TestProcessMessagesBackoffGrows(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []outbox.OutboxMessage{pendingMessage(3, 2)}}
	channel := &fakeChannel{err: errors.New("channel closed")}
	w := newTestWorker(repo, channel)

	before := time.Now()
	w.processMessages(context.Background())

	require.Len(t, repo.retries, 1)
	assert.Equal(t, 3, repo.retries[0].retryCount)
	// Third retry backs off 2^3 * 30s = 240s.
	assert.WithinDuration(t, before.Add(240*time.Second), repo.retries[0].nextRetryAt, time.Second)
}

func TestProcessMessagesEmptyOutbox(t *testing.T) {
	repo := &fakeOutboxRepo{}
	channel := &fakeChannel{}
	w := newTestWorker(repo, channel)

	w.processMessages(context.Background())

	assert.Empty(t, channel.published)
	assert.Empty(t, repo.deleted)
	assert.Empty(t, repo.retries)
}

func TestStartPublishesOnTick(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []outbox.OutboxMessage{pendingMessage(1, 0)}}
	channel := &fakeChannel{}
	w := newTestWorker(repo, channel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.Eventually(t, func() bool {
		return len(repo.deletedIDs()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestStartHonorsContextCancel(t *testing.T) {
	w := newTestWorker(&fakeOutboxRepo{}, &fakeChannel{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancel")
	}
}

func TestStopStopsTheWorker(t *testing.T) {
	w := newTestWorker(&fakeOutboxRepo{}, &fakeChannel{})

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	w.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
