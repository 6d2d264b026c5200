package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mvaldes-dev/storefront/internal/checkout/application"
	"github.com/mvaldes-dev/storefront/internal/checkout/domain"
	"github.com/mvaldes-dev/storefront/pkg/tracing"
)

const uniqueViolation = "23505"

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// ProductBatch reads the current price/stock snapshot for a set of product
// ids in one round trip. Callers index the result by id; absent ids are
// simply absent from the map.
func (r *Repository) ProductBatch(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, price_cents, stock FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	defer rows.Close()

	out := make(map[int64]domain.Product, len(ids))
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Stock); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	return out, nil
}

// OrderForSession looks up the durable session-to-order mapping. Repeated
// confirmations of the same session resolve through this row and see the
// same id and total as the call that created it.
func (r *Repository) OrderForSession(ctx context.Context, sessionID string) (application.MaterializedOrder, bool, error) {
	var ord application.MaterializedOrder
	err := r.pool.QueryRow(ctx,
		`SELECT id, total_cents FROM orders WHERE checkout_session_id = $1`, sessionID).
		Scan(&ord.OrderID, &ord.TotalCents)
	if errors.Is(err, pgx.ErrNoRows) {
		return application.MaterializedOrder{}, false, nil
	}
	if err != nil {
		return application.MaterializedOrder{}, false, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	return ord, true, nil
}

// MaterializeOrder runs the whole confirmation write path in one transaction:
// re-read every manifest product under row locks, re-price from the fresh
// rows, insert the order and its lines, decrement stock, and queue the
// OrderCreated outbox event. Any failure rolls the whole unit back.
func (r *Repository) MaterializeOrder(ctx context.Context, sessionID string, m domain.Manifest) (application.MaterializedOrder, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return application.MaterializedOrder{}, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ids := make([]int64, 0, len(m.Items))
	// A product may appear on several manifest lines; the stock check below
	// compares against the summed quantity.
	needed := make(map[int64]int, len(m.Items))
	for _, it := range m.Items {
		if _, seen := needed[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		needed[it.ProductID] += it.Quantity
	}

	// FOR UPDATE serializes two sessions racing for the same stock: the
	// second blocks here until the first commits, then sees the decremented
	// quantity.
	rows, err := tx.Query(ctx,
		`SELECT id, name, price_cents, stock FROM products WHERE id = ANY($1) FOR UPDATE`, ids)
	if err != nil {
		return application.MaterializedOrder{}, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	locked := make(map[int64]domain.Product, len(ids))
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Stock); err != nil {
			rows.Close()
			return application.MaterializedOrder{}, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
		}
		locked[p.ID] = p
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return application.MaterializedOrder{}, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}

	// Inventory may have changed since session creation; re-check everything
	// before touching any row.
	var total int64
	lines := make([]domain.PricedLine, 0, len(m.Items))
	for _, it := range m.Items {
		p, ok := locked[it.ProductID]
		if !ok {
			return application.MaterializedOrder{}, fmt.Errorf("%w: product %d", domain.ErrProductNotFound, it.ProductID)
		}
		if needed[it.ProductID] > p.Stock {
			return application.MaterializedOrder{}, fmt.Errorf("%w: product %d", domain.ErrInsufficientStock, it.ProductID)
		}
		sub := int64(it.Quantity) * p.PriceCents
		total += sub
		lines = append(lines, domain.PricedLine{
			ProductID:     p.ID,
			Name:          p.Name,
			Quantity:      it.Quantity,
			UnitCents:     p.PriceCents,
			SubtotalCents: sub,
		})
	}

	orderID := uuid.NewString()
	now := time.Now().UTC()
	_, err = tx.Exec(ctx,
		`INSERT INTO orders (id, user_id, checkout_session_id, total_cents, status, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$6)`,
		orderID, m.UserID, sessionID, total, "paid", now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			// Lost a race after the lease expired or was bypassed. The other
			// writer's order is the one and only result for this session.
			if ord, ok, lookErr := r.OrderForSession(ctx, sessionID); lookErr == nil && ok {
				return ord, nil
			}
		}
		return application.MaterializedOrder{}, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}

	batch := &pgx.Batch{}
	for i, ln := range lines {
		batch.Queue(
			`INSERT INTO order_items (order_id, position, product_id, name, quantity, price_at_purchase_cents)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			orderID, i, ln.ProductID, ln.Name, ln.Quantity, ln.UnitCents)
		batch.Queue(
			`UPDATE products SET stock = stock - $1 WHERE id = $2`,
			ln.Quantity, ln.ProductID)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return application.MaterializedOrder{}, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}

	event := domain.OrderCreated{
		OrderID:    orderID,
		UserID:     m.UserID,
		SessionID:  sessionID,
		TotalCents: total,
		Items:      m.Items,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return application.MaterializedOrder{}, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, traceparent, status)
		 VALUES ('order',$1,'order.created',$2,$3,'pending')`,
		orderID, payload, tracing.Traceparent(ctx))
	if err != nil {
		return application.MaterializedOrder{}, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return application.MaterializedOrder{}, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	r.log.Info("order persisted", "order_id", orderID, "session_id", sessionID)
	return application.MaterializedOrder{OrderID: orderID, TotalCents: total, Lines: lines}, nil
}
