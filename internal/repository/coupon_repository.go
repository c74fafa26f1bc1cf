package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/clothify/shop-api/internal/model"
	"github.com/clothify/shop-api/internal/service"
	"github.com/clothify/shop-api/pkg/database"
)

const couponColumns = `id, code, name, description, value, max_uses, max_uses_per_user,
	min_order_total, starts_at, ends_at, is_active`

// CouponRepository provides data access for coupons and their redemptions
// using pgx.
type CouponRepository struct {
	pool database.TxQuerier
}

// NewCouponRepository creates a new CouponRepository with the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// NewCouponRepositoryWithQuerier creates a CouponRepository with a custom
// querier. This is primarily used for testing.
func NewCouponRepositoryWithQuerier(q database.TxQuerier) *CouponRepository {
	return &CouponRepository{pool: q}
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var c model.Coupon
	var minTotal decimal.NullDecimal
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Name,
		&c.Description,
		&c.Value,
		&c.MaxUses,
		&c.MaxUsesPerUser,
		&minTotal,
		&c.StartsAt,
		&c.EndsAt,
		&c.IsActive,
	)
	if err != nil {
		return nil, err
	}
	if minTotal.Valid {
		c.MinOrderTotal = &minTotal.Decimal
	}
	return &c, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

// Insert inserts a new coupon and returns its id.
// Returns service.ErrCouponExists when the code is already taken.
func (r *CouponRepository) Insert(ctx context.Context, coupon *model.Coupon) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO coupons (code, name, description, value, max_uses, max_uses_per_user,
			min_order_total, starts_at, ends_at, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		coupon.Code, coupon.Name, coupon.Description, coupon.Value,
		coupon.MaxUses, coupon.MaxUsesPerUser, nullDecimal(coupon.MinOrderTotal),
		coupon.StartsAt, coupon.EndsAt, coupon.IsActive,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, service.ErrCouponExists
		}
		return 0, fmt.Errorf("insert coupon: %w", err)
	}
	return id, nil
}

// Update overwrites a coupon's fields.
// Returns service.ErrCouponNotFound when no row matches the id.
func (r *CouponRepository) Update(ctx context.Context, id int64, coupon *model.Coupon) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE coupons SET code = $2, name = $3, description = $4, value = $5,
			max_uses = $6, max_uses_per_user = $7, min_order_total = $8,
			starts_at = $9, ends_at = $10, is_active = $11
		 WHERE id = $1`,
		id, coupon.Code, coupon.Name, coupon.Description, coupon.Value,
		coupon.MaxUses, coupon.MaxUsesPerUser, nullDecimal(coupon.MinOrderTotal),
		coupon.StartsAt, coupon.EndsAt, coupon.IsActive,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return service.ErrCouponExists
		}
		return fmt.Errorf("update coupon %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCouponNotFound
	}
	return nil
}

// Delete removes a coupon.
// Returns service.ErrCouponNotFound when no row matches the id.
func (r *CouponRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete coupon %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCouponNotFound
	}
	return nil
}

// GetAll returns every coupon, newest window first.
func (r *CouponRepository) GetAll(ctx context.Context) ([]model.Coupon, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+couponColumns+` FROM coupons ORDER BY starts_at DESC NULLS LAST, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	var coupons []model.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupons: %w", err)
	}
	return coupons, nil
}

// GetByID retrieves a coupon by id.
// Returns nil, nil if the coupon is not found (service layer handles this).
func (r *CouponRepository) GetByID(ctx context.Context, id int64) (*model.Coupon, error) {
	c, err := scanCoupon(r.pool.QueryRow(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get coupon %d: %w", id, err)
	}
	return c, nil
}

// GetByCode retrieves a coupon by its code, case-insensitively.
// Returns nil, nil if the coupon is not found.
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	c, err := scanCoupon(r.pool.QueryRow(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE lower(code) = lower($1)`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coupon by code %s: %w", code, err)
	}
	return c, nil
}

// GetByCodeForUpdate retrieves a coupon with a row lock (SELECT FOR UPDATE)
// so redemption counting stays consistent for the rest of the transaction.
// Returns service.ErrCouponNotFound if the coupon doesn't exist.
func (r *CouponRepository) GetByCodeForUpdate(ctx context.Context, tx database.TxQuerier, code string) (*model.Coupon, error) {
	c, err := scanCoupon(tx.QueryRow(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE lower(code) = lower($1) FOR UPDATE`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon for update %s: %w", code, err)
	}
	return c, nil
}

// CountRedemptions returns the number of times a coupon has been used.
func (r *CouponRepository) CountRedemptions(ctx context.Context, couponID int64) (int, error) {
	return countRedemptions(ctx, r.pool, couponID)
}

// CountRedemptionsIn is CountRedemptions running on the given querier,
// typically the checkout transaction holding the coupon row lock.
func (r *CouponRepository) CountRedemptionsIn(ctx context.Context, q database.TxQuerier, couponID int64) (int, error) {
	return countRedemptions(ctx, q, couponID)
}

func countRedemptions(ctx context.Context, q database.TxQuerier, couponID int64) (int, error) {
	var n int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM coupon_redemptions WHERE coupon_id = $1`, couponID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count redemptions for coupon %d: %w", couponID, err)
	}
	return n, nil
}

// CountRedemptionsByUser returns the number of times a user has used a coupon.
func (r *CouponRepository) CountRedemptionsByUser(ctx context.Context, couponID, userID int64) (int, error) {
	return countRedemptionsByUser(ctx, r.pool, couponID, userID)
}

// CountRedemptionsByUserIn is CountRedemptionsByUser running on the given
// querier.
func (r *CouponRepository) CountRedemptionsByUserIn(ctx context.Context, q database.TxQuerier, couponID, userID int64) (int, error) {
	return countRedemptionsByUser(ctx, q, couponID, userID)
}

func countRedemptionsByUser(ctx context.Context, q database.TxQuerier, couponID, userID int64) (int, error) {
	var n int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM coupon_redemptions WHERE coupon_id = $1 AND user_id = $2`,
		couponID, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count redemptions for coupon %d user %d: %w", couponID, userID, err)
	}
	return n, nil
}

// InsertRedemption records one use of a coupon on an order.
// Must be called within the checkout transaction.
func (r *CouponRepository) InsertRedemption(ctx context.Context, tx database.TxQuerier, couponID, userID, orderID int64) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO coupon_redemptions (coupon_id, user_id, order_id, used_at)
		 VALUES ($1, $2, $3, $4)`,
		couponID, userID, orderID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert redemption for coupon %d: %w", couponID, err)
	}
	return nil
}
