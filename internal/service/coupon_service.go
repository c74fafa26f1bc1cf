package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clothify/shop-api/internal/model"
	"github.com/clothify/shop-api/internal/pricing"
)

// CouponRepositoryInterface defines the interface for coupon data access.
type CouponRepositoryInterface interface {
	Insert(ctx context.Context, coupon *model.Coupon) (int64, error)
	Update(ctx context.Context, id int64, coupon *model.Coupon) error
	Delete(ctx context.Context, id int64) error
	GetAll(ctx context.Context) ([]model.Coupon, error)
	GetByID(ctx context.Context, id int64) (*model.Coupon, error)
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	CountRedemptions(ctx context.Context, couponID int64) (int, error)
	CountRedemptionsByUser(ctx context.Context, couponID, userID int64) (int, error)
}

// CouponService provides business logic for coupon administration and the
// storefront's "available coupons" listing.
type CouponService struct {
	coupons CouponRepositoryInterface
	now     func() time.Time
}

// NewCouponService creates a new CouponService.
func NewCouponService(coupons CouponRepositoryInterface) *CouponService {
	return NewCouponServiceWithClock(coupons, time.Now)
}

// NewCouponServiceWithClock creates a CouponService with a custom clock.
// Primarily used for testing time-window rules.
func NewCouponServiceWithClock(coupons CouponRepositoryInterface, now func() time.Time) *CouponService {
	return &CouponService{coupons: coupons, now: now}
}

func couponFromRequest(req *model.CreateCouponRequest) *model.Coupon {
	coupon := &model.Coupon{
		Code:           req.Code,
		Name:           req.Name,
		Description:    req.Description,
		Value:          decimal.NewFromFloat(*req.Value),
		MaxUses:        req.MaxUses,
		MaxUsesPerUser: req.MaxUsesPerUser,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
		IsActive:       true,
	}
	if req.MinOrderTotal != nil {
		min := decimal.NewFromFloat(*req.MinOrderTotal)
		coupon.MinOrderTotal = &min
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}
	return coupon
}

// Create creates a new coupon from the request.
// Returns ErrCouponExists if the code is already taken.
func (s *CouponService) Create(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error) {
	// Defense-in-depth: check for nil pointer even though handler validates
	if req == nil || req.Value == nil {
		return nil, ErrInvalidRequest
	}

	coupon := couponFromRequest(req)
	id, err := s.coupons.Insert(ctx, coupon)
	if err != nil {
		return nil, err
	}
	coupon.ID = id
	return coupon, nil
}

// Update overwrites an existing coupon from the request.
func (s *CouponService) Update(ctx context.Context, id int64, req *model.CreateCouponRequest) (*model.Coupon, error) {
	if req == nil || req.Value == nil {
		return nil, ErrInvalidRequest
	}

	coupon := couponFromRequest(req)
	if err := s.coupons.Update(ctx, id, coupon); err != nil {
		return nil, err
	}
	coupon.ID = id
	return coupon, nil
}

// Delete removes a coupon.
func (s *CouponService) Delete(ctx context.Context, id int64) error {
	return s.coupons.Delete(ctx, id)
}

// GetAll returns every coupon for the admin list.
func (s *CouponService) GetAll(ctx context.Context) ([]model.Coupon, error) {
	coupons, err := s.coupons.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get coupons: %w", err)
	}
	return coupons, nil
}

// GetByID retrieves a coupon by id.
// Returns ErrCouponNotFound if the coupon doesn't exist.
func (s *CouponService) GetByID(ctx context.Context, id int64) (*model.Coupon, error) {
	coupon, err := s.coupons.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return coupon, nil
}

// Available returns the coupons a user may apply to an order of the given
// total: active, inside their time window, minimum order total satisfied,
// and with global and per-user usage caps not yet reached.
func (s *CouponService) Available(ctx context.Context, userID int64, orderTotal decimal.Decimal) ([]model.Coupon, error) {
	coupons, err := s.coupons.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get coupons: %w", err)
	}

	available := make([]model.Coupon, 0, len(coupons))
	for _, c := range pricing.Eligible(coupons, s.now()) {
		if c.MinOrderTotal != nil && orderTotal.LessThan(*c.MinOrderTotal) {
			continue
		}
		if c.MaxUses != nil {
			used, err := s.coupons.CountRedemptions(ctx, c.ID)
			if err != nil {
				return nil, fmt.Errorf("count redemptions: %w", err)
			}
			if used >= *c.MaxUses {
				continue
			}
		}
		if c.MaxUsesPerUser != nil {
			used, err := s.coupons.CountRedemptionsByUser(ctx, c.ID, userID)
			if err != nil {
				return nil, fmt.Errorf("count user redemptions: %w", err)
			}
			if used >= *c.MaxUsesPerUser {
				continue
			}
		}
		available = append(available, c)
	}
	return available, nil
}
