package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clothify/shop-api/internal/model"
)

// mockCouponRepository is a mock implementation of CouponRepositoryInterface.
type mockCouponRepository struct {
	insertFn                 func(ctx context.Context, coupon *model.Coupon) (int64, error)
	updateFn                 func(ctx context.Context, id int64, coupon *model.Coupon) error
	deleteFn                 func(ctx context.Context, id int64) error
	getAllFn                 func(ctx context.Context) ([]model.Coupon, error)
	getByIDFn                func(ctx context.Context, id int64) (*model.Coupon, error)
	getByCodeFn              func(ctx context.Context, code string) (*model.Coupon, error)
	countRedemptionsFn       func(ctx context.Context, couponID int64) (int, error)
	countRedemptionsByUserFn func(ctx context.Context, couponID, userID int64) (int, error)
}

func (m *mockCouponRepository) Insert(ctx context.Context, coupon *model.Coupon) (int64, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, coupon)
	}
	return 1, nil
}

func (m *mockCouponRepository) Update(ctx context.Context, id int64, coupon *model.Coupon) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, coupon)
	}
	return nil
}

func (m *mockCouponRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockCouponRepository) GetAll(ctx context.Context) ([]model.Coupon, error) {
	if m.getAllFn != nil {
		return m.getAllFn(ctx)
	}
	return nil, nil
}

func (m *mockCouponRepository) GetByID(ctx context.Context, id int64) (*model.Coupon, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockCouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	if m.getByCodeFn != nil {
		return m.getByCodeFn(ctx, code)
	}
	return nil, nil
}

func (m *mockCouponRepository) CountRedemptions(ctx context.Context, couponID int64) (int, error) {
	if m.countRedemptionsFn != nil {
		return m.countRedemptionsFn(ctx, couponID)
	}
	return 0, nil
}

func (m *mockCouponRepository) CountRedemptionsByUser(ctx context.Context, couponID, userID int64) (int, error) {
	if m.countRedemptionsByUserFn != nil {
		return m.countRedemptionsByUserFn(ctx, couponID, userID)
	}
	return 0, nil
}

func intPtr(i int) *int {
	return &i
}

func int64Ptr(i int64) *int64 {
	return &i
}

func floatPtr(f float64) *float64 {
	return &f
}

func boolPtr(b bool) *bool {
	return &b
}

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func TestCouponService_Create_Success(t *testing.T) {
	var captured *model.Coupon
	mockRepo := &mockCouponRepository{
		insertFn: func(ctx context.Context, coupon *model.Coupon) (int64, error) {
			captured = coupon
			return 5, nil
		},
	}

	svc := NewCouponService(mockRepo)
	req := &model.CreateCouponRequest{
		Code:          "SUMMER15",
		Name:          "Summer Sale",
		Value:         floatPtr(15),
		MinOrderTotal: floatPtr(200000),
	}

	coupon, err := svc.Create(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, int64(5), coupon.ID)
	assert.Equal(t, "SUMMER15", captured.Code)
	assert.True(t, captured.Value.Equal(decimal.NewFromInt(15)))
	require.NotNil(t, captured.MinOrderTotal)
	assert.True(t, captured.MinOrderTotal.Equal(decimal.NewFromInt(200000)))
	assert.True(t, captured.IsActive, "coupons default to active")
}

func TestCouponService_Create_ExplicitlyInactive(t *testing.T) {
	var captured *model.Coupon
	mockRepo := &mockCouponRepository{
		insertFn: func(ctx context.Context, coupon *model.Coupon) (int64, error) {
			captured = coupon
			return 5, nil
		},
	}

	svc := NewCouponService(mockRepo)
	req := &model.CreateCouponRequest{
		Code:     "DRAFT",
		Name:     "Draft promo",
		Value:    floatPtr(10),
		IsActive: boolPtr(false),
	}

	_, err := svc.Create(context.Background(), req)

	require.NoError(t, err)
	assert.False(t, captured.IsActive)
}

func TestCouponService_Create_DuplicateCode(t *testing.T) {
	mockRepo := &mockCouponRepository{
		insertFn: func(ctx context.Context, coupon *model.Coupon) (int64, error) {
			return 0, ErrCouponExists
		},
	}

	svc := NewCouponService(mockRepo)
	req := &model.CreateCouponRequest{Code: "SUMMER15", Name: "Summer Sale", Value: floatPtr(15)}

	_, err := svc.Create(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCouponExists), "error should be ErrCouponExists")
}

func TestCouponService_Create_NilRequest(t *testing.T) {
	svc := NewCouponService(&mockCouponRepository{})

	_, err := svc.Create(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestCouponService_Update_NotFound(t *testing.T) {
	mockRepo := &mockCouponRepository{
		updateFn: func(ctx context.Context, id int64, coupon *model.Coupon) error {
			return ErrCouponNotFound
		},
	}

	svc := NewCouponService(mockRepo)
	req := &model.CreateCouponRequest{Code: "SUMMER15", Name: "Summer Sale", Value: floatPtr(15)}

	_, err := svc.Update(context.Background(), 404, req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCouponNotFound))
}

func TestCouponService_GetByID_NotFound(t *testing.T) {
	svc := NewCouponService(&mockCouponRepository{})

	_, err := svc.GetByID(context.Background(), 404)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCouponNotFound))
}

func TestCouponService_Available_FiltersRules(t *testing.T) {
	past := fixedNow().Add(-24 * time.Hour)
	mockRepo := &mockCouponRepository{
		getAllFn: func(ctx context.Context) ([]model.Coupon, error) {
			return []model.Coupon{
				{ID: 1, Code: "OK", Value: decimal.NewFromInt(10), IsActive: true},
				{ID: 2, Code: "INACTIVE", Value: decimal.NewFromInt(10), IsActive: false},
				{ID: 3, Code: "EXPIRED", Value: decimal.NewFromInt(10), IsActive: true, EndsAt: &past},
				{ID: 4, Code: "TOO_SMALL", Value: decimal.NewFromInt(10), IsActive: true, MinOrderTotal: decPtr(900000)},
			}, nil
		},
	}

	svc := NewCouponServiceWithClock(mockRepo, fixedNow)
	available, err := svc.Available(context.Background(), 7, decimal.NewFromInt(500000))

	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "OK", available[0].Code)
}

func TestCouponService_Available_GlobalCapReached(t *testing.T) {
	mockRepo := &mockCouponRepository{
		getAllFn: func(ctx context.Context) ([]model.Coupon, error) {
			return []model.Coupon{
				{ID: 1, Code: "CAPPED", Value: decimal.NewFromInt(10), IsActive: true, MaxUses: intPtr(100)},
			}, nil
		},
		countRedemptionsFn: func(ctx context.Context, couponID int64) (int, error) {
			return 100, nil
		},
	}

	svc := NewCouponServiceWithClock(mockRepo, fixedNow)
	available, err := svc.Available(context.Background(), 7, decimal.NewFromInt(500000))

	require.NoError(t, err)
	assert.Empty(t, available)
}

func TestCouponService_Available_PerUserCapReached(t *testing.T) {
	mockRepo := &mockCouponRepository{
		getAllFn: func(ctx context.Context) ([]model.Coupon, error) {
			return []model.Coupon{
				{ID: 1, Code: "ONCE", Value: decimal.NewFromInt(10), IsActive: true, MaxUsesPerUser: intPtr(1)},
			}, nil
		},
		countRedemptionsByUserFn: func(ctx context.Context, couponID, userID int64) (int, error) {
			return 1, nil
		},
	}

	svc := NewCouponServiceWithClock(mockRepo, fixedNow)
	available, err := svc.Available(context.Background(), 7, decimal.NewFromInt(500000))

	require.NoError(t, err)
	assert.Empty(t, available)
}

func TestCouponService_Available_CapNotReached(t *testing.T) {
	mockRepo := &mockCouponRepository{
		getAllFn: func(ctx context.Context) ([]model.Coupon, error) {
			return []model.Coupon{
				{ID: 1, Code: "CAPPED", Value: decimal.NewFromInt(10), IsActive: true, MaxUses: intPtr(100), MaxUsesPerUser: intPtr(2)},
			}, nil
		},
		countRedemptionsFn: func(ctx context.Context, couponID int64) (int, error) {
			return 99, nil
		},
		countRedemptionsByUserFn: func(ctx context.Context, couponID, userID int64) (int, error) {
			return 1, nil
		},
	}

	svc := NewCouponServiceWithClock(mockRepo, fixedNow)
	available, err := svc.Available(context.Background(), 7, decimal.NewFromInt(500000))

	require.NoError(t, err)
	require.Len(t, available, 1)
}

func TestCouponService_Available_RepositoryError(t *testing.T) {
	dbErr := errors.New("database connection failed")
	mockRepo := &mockCouponRepository{
		getAllFn: func(ctx context.Context) ([]model.Coupon, error) {
			return nil, dbErr
		},
	}

	svc := NewCouponService(mockRepo)
	_, err := svc.Available(context.Background(), 7, decimal.NewFromInt(500000))

	require.Error(t, err)
	assert.True(t, errors.Is(err, dbErr))
}
