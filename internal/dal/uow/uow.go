package uow

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/ordercloud/order/internal/dal/interfaces/iorderitemrepo"
	"github.com/ordercloud/order/internal/dal/interfaces/iorderrepo"
	"github.com/ordercloud/order/internal/dal/interfaces/ioutboxrepo"
	"github.com/ordercloud/order/internal/dal/postgres"
	orderrepo "github.com/ordercloud/order/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/ordercloud/order/internal/dal/repositories/orderitem/postgres"
	outboxrepo "github.com/ordercloud/order/internal/dal/repositories/outbox/postgres"
)

type unitOfWork struct {
	client        *postgres.Client
	tx            pgx.Tx
	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
	outboxRepo    ioutboxrepo.IOutboxRepository
}

func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	return &unitOfWork{
		client:        client,
		orderRepo:     orderrepo.NewPostgresOrderRepository(client.Pool()),
		orderItemRepo: orderitemrepo.NewPostgresOrderItemRepository(client.Pool()),
		outboxRepo:    outboxrepo.NewOutboxRepository(client.Pool()),
	}
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *unitOfWork) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return u.orderItemRepo
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.client.Pool().Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	// Rebind the repositories to the transaction
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(tx)
	u.outboxRepo = outboxrepo.NewOutboxRepository(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Commit(ctx)
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Rollback(ctx)
}
