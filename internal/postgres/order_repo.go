package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bargainmart/backend/internal/model/order"
)

// OrderRepo persists orders and their item snapshots.
type OrderRepo struct {
	db *pgxpool.Pool
}

// NewOrderRepo wraps a pool into an order repository.
func NewOrderRepo(db *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{db: db}
}

// CreateOrderTx inserts the order row and every item snapshot in a single
// transaction. Either the whole order lands or nothing does, so a failed
// item insert can never leave an orphaned order behind.
func (r *OrderRepo) CreateOrderTx(ctx context.Context, o order.Order) (string, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", fmt.Errorf("begin order tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	orderID := o.ID
	if orderID == "" {
		orderID = uuid.NewString()
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, status, total, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		orderID, o.UserID, o.Status, o.Total, o.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, price, negotiated_price)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.NewString(), orderID, item.ProductID, item.Quantity, item.Price, item.NegotiatedPrice)
		if err != nil {
			return "", fmt.Errorf("insert order item %s: %w", item.ProductID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit order tx: %w", err)
	}
	return orderID, nil
}

// ListByUser returns a user's orders, newest first, items included.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, status, total, created_at
		FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []order.Order
	index := map[string]int{}
	for rows.Next() {
		var o order.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.Total, &o.CreatedAt); err != nil {
			return nil, err
		}
		index[o.ID] = len(out)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(out))
	for _, o := range out {
		ids = append(ids, o.ID)
	}
	itemRows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, quantity, price, negotiated_price
		FROM order_items WHERE order_id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var it order.Item
		if err := itemRows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price, &it.NegotiatedPrice); err != nil {
			return nil, err
		}
		if i, ok := index[it.OrderID]; ok {
			out[i].Items = append(out[i].Items, it)
		}
	}
	return out, itemRows.Err()
}

// UpdateStatus applies a status transition, rejecting moves the lifecycle
// does not allow.
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID string, to order.Status) error {
	var current order.Status
	err := r.db.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, orderID).Scan(&current)
	if err != nil {
		return fmt.Errorf("load order status: %w", err)
	}
	if !order.CanTransition(current, to) {
		return fmt.Errorf("%w: %s -> %s", order.ErrInvalidTransition, current, to)
	}
	_, err = r.db.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, orderID, to)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}
