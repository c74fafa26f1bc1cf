package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coupon is a percentage discount code. Value is the percent taken off the
// order subtotal. Optional fields are nil when the coupon has no such
// constraint.
type Coupon struct {
	ID             int64            `json:"id"`
	Code           string           `json:"code"`
	Name           string           `json:"name"`
	Description    string           `json:"description,omitempty"`
	Value          decimal.Decimal  `json:"value"`
	MaxUses        *int             `json:"max_uses,omitempty"`
	MaxUsesPerUser *int             `json:"max_uses_per_user,omitempty"`
	MinOrderTotal  *decimal.Decimal `json:"min_order_total,omitempty"`
	StartsAt       *time.Time       `json:"starts_at,omitempty"`
	EndsAt         *time.Time       `json:"ends_at,omitempty"`
	IsActive       bool             `json:"is_active"`
}

// CouponRedemption records one use of a coupon on an order.
type CouponRedemption struct {
	ID       int64     `json:"id"`
	CouponID int64     `json:"coupon_id"`
	UserID   int64     `json:"user_id"`
	OrderID  int64     `json:"order_id"`
	UsedAt   time.Time `json:"used_at"`
}

// CreateCouponRequest is the DTO for admin coupon create and update.
type CreateCouponRequest struct {
	Code           string     `json:"code" validate:"required,notblank,max=50"`
	Name           string     `json:"name" validate:"required,notblank,max=255"`
	Description    string     `json:"description" validate:"max=5000"`
	Value          *float64   `json:"value" validate:"required,gt=0,lte=100"`
	MaxUses        *int       `json:"max_uses" validate:"omitempty,gte=1"`
	MaxUsesPerUser *int       `json:"max_uses_per_user" validate:"omitempty,gte=1"`
	MinOrderTotal  *float64   `json:"min_order_total" validate:"omitempty,gte=0"`
	StartsAt       *time.Time `json:"starts_at"`
	EndsAt         *time.Time `json:"ends_at"`
	IsActive       *bool      `json:"is_active"`
}
