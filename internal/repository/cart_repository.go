package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clothify/shop-api/internal/model"
	"github.com/clothify/shop-api/pkg/database"
)

// CartRepository provides data access for carts and cart lines using pgx.
type CartRepository struct {
	pool database.TxQuerier
}

// NewCartRepository creates a new CartRepository with the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// NewCartRepositoryWithQuerier creates a CartRepository with a custom
// querier. This is primarily used for testing.
func NewCartRepositoryWithQuerier(q database.TxQuerier) *CartRepository {
	return &CartRepository{pool: q}
}

// GetOrCreateCart returns the user's cart, creating it on first use.
func (r *CartRepository) GetOrCreateCart(ctx context.Context, userID int64) (*model.Cart, error) {
	var cart model.Cart
	err := r.pool.QueryRow(ctx,
		`INSERT INTO carts (user_id) VALUES ($1)
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING id, user_id`,
		userID).Scan(&cart.ID, &cart.UserID)
	if err != nil {
		return nil, fmt.Errorf("get or create cart for user %d: %w", userID, err)
	}
	return &cart, nil
}

// ItemsByCart returns all lines of a cart.
func (r *CartRepository) ItemsByCart(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, cart_id, variant_id, unit_price, quantity
		 FROM cart_items WHERE cart_id = $1 ORDER BY id`,
		cartID)
	if err != nil {
		return nil, fmt.Errorf("list cart items for cart %d: %w", cartID, err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.VariantID, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}
	return items, nil
}

// FindItemByVariant returns the cart line holding the given variant.
// Returns nil, nil when the variant is not in the cart yet.
func (r *CartRepository) FindItemByVariant(ctx context.Context, cartID, variantID int64) (*model.CartItem, error) {
	var item model.CartItem
	err := r.pool.QueryRow(ctx,
		`SELECT id, cart_id, variant_id, unit_price, quantity
		 FROM cart_items WHERE cart_id = $1 AND variant_id = $2`,
		cartID, variantID).Scan(&item.ID, &item.CartID, &item.VariantID, &item.UnitPrice, &item.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find cart item by variant %d: %w", variantID, err)
	}
	return &item, nil
}

// GetItem returns one cart line by id.
// Returns nil, nil if the line is not found.
func (r *CartRepository) GetItem(ctx context.Context, itemID int64) (*model.CartItem, error) {
	var item model.CartItem
	err := r.pool.QueryRow(ctx,
		`SELECT id, cart_id, variant_id, unit_price, quantity
		 FROM cart_items WHERE id = $1`,
		itemID).Scan(&item.ID, &item.CartID, &item.VariantID, &item.UnitPrice, &item.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart item %d: %w", itemID, err)
	}
	return &item, nil
}

// InsertItem adds a new line to a cart and returns its id.
func (r *CartRepository) InsertItem(ctx context.Context, item *model.CartItem) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO cart_items (cart_id, variant_id, unit_price, quantity)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		item.CartID, item.VariantID, item.UnitPrice, item.Quantity).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert cart item: %w", err)
	}
	return id, nil
}

// UpdateItemQuantity sets the quantity of one line.
func (r *CartRepository) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE cart_items SET quantity = $2 WHERE id = $1`, itemID, quantity)
	if err != nil {
		return fmt.Errorf("update cart item %d quantity: %w", itemID, err)
	}
	return nil
}

// DeleteItem removes one line from a cart.
func (r *CartRepository) DeleteItem(ctx context.Context, itemID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("delete cart item %d: %w", itemID, err)
	}
	return nil
}

// ClearCart deletes every line of a cart.
func (r *CartRepository) ClearCart(ctx context.Context, cartID int64) error {
	return clearCart(ctx, r.pool, cartID)
}

// ClearCartIn is ClearCart running on the given querier. The checkout
// transaction uses it as the final step of order placement.
func (r *CartRepository) ClearCartIn(ctx context.Context, q database.TxQuerier, cartID int64) error {
	return clearCart(ctx, q, cartID)
}

func clearCart(ctx context.Context, q database.TxQuerier, cartID int64) error {
	_, err := q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("clear cart %d: %w", cartID, err)
	}
	return nil
}
