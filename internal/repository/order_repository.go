package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clothify/shop-api/internal/model"
	"github.com/clothify/shop-api/internal/service"
	"github.com/clothify/shop-api/pkg/database"
)

const orderColumns = `id, code, user_id, status, total_items, subtotal, discount_total,
	shipping_fee, tax, grand_total, payment_method, payment_status,
	shipping_address, coupon_code, placed_at, cancelled_at`

// OrderRepository provides data access for orders using pgx.
type OrderRepository struct {
	pool database.TxQuerier
}

// NewOrderRepository creates a new OrderRepository with the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// NewOrderRepositoryWithQuerier creates an OrderRepository with a custom
// querier. This is primarily used for testing.
func NewOrderRepositoryWithQuerier(q database.TxQuerier) *OrderRepository {
	return &OrderRepository{pool: q}
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	var address []byte
	err := row.Scan(
		&o.ID, &o.Code, &o.UserID, &o.Status, &o.TotalItems,
		&o.Subtotal, &o.DiscountTotal, &o.ShippingFee, &o.Tax, &o.GrandTotal,
		&o.PaymentMethod, &o.PaymentStatus, &address, &o.CouponCode,
		&o.PlacedAt, &o.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	if len(address) > 0 {
		if err := json.Unmarshal(address, &o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("unmarshal shipping address: %w", err)
		}
	}
	return &o, nil
}

// Insert inserts an order and its lines inside the checkout transaction,
// returning the new order id.
func (r *OrderRepository) Insert(ctx context.Context, tx database.TxQuerier, order *model.Order) (int64, error) {
	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return 0, fmt.Errorf("marshal shipping address: %w", err)
	}

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (code, user_id, status, total_items, subtotal, discount_total,
			shipping_fee, tax, grand_total, payment_method, payment_status,
			shipping_address, coupon_code, placed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id`,
		order.Code, order.UserID, order.Status, order.TotalItems,
		order.Subtotal, order.DiscountTotal, order.ShippingFee, order.Tax, order.GrandTotal,
		order.PaymentMethod, order.PaymentStatus, address, order.CouponCode, order.PlacedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		attrs, err := json.Marshal(item.Attributes)
		if err != nil {
			return 0, fmt.Errorf("marshal item attributes: %w", err)
		}
		err = tx.QueryRow(ctx,
			`INSERT INTO order_items (order_id, variant_id, product_name, sku,
				attributes_snapshot, unit_price, quantity, line_total)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id`,
			id, item.VariantID, item.ProductName, item.SKU,
			attrs, item.UnitPrice, item.Quantity, item.LineTotal,
		).Scan(&item.ID)
		if err != nil {
			return 0, fmt.Errorf("insert order item: %w", err)
		}
		item.OrderID = id
	}
	return id, nil
}

// GetByID retrieves one order with its lines.
// Returns nil, nil if the order is not found.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	if err := r.attachItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// ListByUser returns a user's orders, newest first, with their lines.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY placed_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list orders for user %d: %w", userID, err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	for i := range orders {
		if err := r.attachItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *OrderRepository) attachItems(ctx context.Context, o *model.Order) error {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, variant_id, product_name, sku, attributes_snapshot,
			unit_price, quantity, line_total
		 FROM order_items WHERE order_id = $1 ORDER BY id`,
		o.ID)
	if err != nil {
		return fmt.Errorf("list items for order %d: %w", o.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		var attrs []byte
		if err := rows.Scan(&item.ID, &item.OrderID, &item.VariantID, &item.ProductName,
			&item.SKU, &attrs, &item.UnitPrice, &item.Quantity, &item.LineTotal); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &item.Attributes); err != nil {
				return fmt.Errorf("unmarshal item attributes: %w", err)
			}
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate order items: %w", err)
	}
	return nil
}

// Cancel marks an order cancelled. The status check is repeated in the
// WHERE clause so a concurrent status change cannot cancel a shipped order.
// Returns service.ErrOrderNotCancellable when no row was updated.
func (r *OrderRepository) Cancel(ctx context.Context, orderID int64, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2, cancelled_at = $3
		 WHERE id = $1 AND status IN ($4, $5)`,
		orderID, model.OrderStatusCancelled, at,
		model.OrderStatusNew, model.OrderStatusConfirmed)
	if err != nil {
		return fmt.Errorf("cancel order %d: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrOrderNotCancellable
	}
	return nil
}

// UpdateStatus moves an order to a new fulfilment status (admin action).
// Returns service.ErrOrderNotFound when no row matches the id.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1`, orderID, status)
	if err != nil {
		return fmt.Errorf("update order %d status: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrOrderNotFound
	}
	return nil
}
