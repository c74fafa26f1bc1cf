package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clothify/shop-api/internal/model"
)

func testPolicy() Policy {
	return Policy{
		ShippingFee:           decimal.NewFromInt(30000),
		FreeShippingThreshold: decimal.NewFromInt(500000),
		TaxRatePercent:        decimal.Zero,
	}
}

func line(id int64, unitPrice int64, quantity int) model.EnrichedCartItem {
	return model.EnrichedCartItem{
		CartItem: model.CartItem{
			ID:        id,
			VariantID: id,
			UnitPrice: decimal.NewFromInt(unitPrice),
			Quantity:  quantity,
		},
	}
}

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestSummarize_TwoLines_ShippingCharged(t *testing.T) {
	items := []model.EnrichedCartItem{
		line(1, 100000, 1),
		line(2, 75000, 2),
	}

	summary := Summarize(items, nil, testPolicy())

	assert.True(t, summary.Subtotal.Equal(decimal.NewFromInt(250000)), "subtotal %s", summary.Subtotal)
	assert.True(t, summary.Discount.IsZero())
	assert.True(t, summary.ShippingFee.Equal(decimal.NewFromInt(30000)))
	assert.True(t, summary.Tax.IsZero())
	assert.True(t, summary.Total.Equal(decimal.NewFromInt(280000)), "total %s", summary.Total)
	assert.Equal(t, 3, summary.ItemCount)
}

func TestSummarize_CouponAndFreeShipping(t *testing.T) {
	items := []model.EnrichedCartItem{
		line(1, 250000, 2),
	}
	coupon := &model.Coupon{
		Code:          "SUMMER15",
		Value:         decimal.NewFromInt(15),
		MinOrderTotal: decPtr(200000),
		IsActive:      true,
	}

	summary := Summarize(items, coupon, testPolicy())

	assert.True(t, summary.Subtotal.Equal(decimal.NewFromInt(500000)))
	assert.True(t, summary.Discount.Equal(decimal.NewFromInt(75000)), "discount %s", summary.Discount)
	assert.True(t, summary.ShippingFee.IsZero(), "shipping should be free at the threshold")
	assert.True(t, summary.Total.Equal(decimal.NewFromInt(425000)), "total %s", summary.Total)
}

func TestSummarize_CouponBelowMinOrderTotal(t *testing.T) {
	items := []model.EnrichedCartItem{
		line(1, 100000, 1),
	}
	coupon := &model.Coupon{
		Code:          "SUMMER15",
		Value:         decimal.NewFromInt(15),
		MinOrderTotal: decPtr(200000),
		IsActive:      true,
	}

	summary := Summarize(items, coupon, testPolicy())

	assert.True(t, summary.Discount.IsZero(), "no discount below the minimum order total")
	assert.True(t, summary.Total.Equal(decimal.NewFromInt(130000)))
}

func TestSummarize_EmptyCart_AllZero(t *testing.T) {
	summary := Summarize(nil, nil, testPolicy())

	assert.True(t, summary.Subtotal.IsZero())
	assert.True(t, summary.ShippingFee.IsZero(), "no shipping charged on an empty cart")
	assert.True(t, summary.Tax.IsZero())
	assert.True(t, summary.Total.IsZero())
	assert.Equal(t, 0, summary.ItemCount)
}

func TestSummarize_UnavailableLinesExcluded(t *testing.T) {
	gone := line(2, 999999, 5)
	gone.Unavailable = true
	items := []model.EnrichedCartItem{
		line(1, 100000, 1),
		gone,
	}

	summary := Summarize(items, nil, testPolicy())

	assert.True(t, summary.Subtotal.Equal(decimal.NewFromInt(100000)), "unavailable lines contribute nothing")
	assert.Equal(t, 1, summary.ItemCount)
}

func TestSummarize_AllUnavailable_AllZero(t *testing.T) {
	gone := line(1, 100000, 2)
	gone.Unavailable = true

	summary := Summarize([]model.EnrichedCartItem{gone}, nil, testPolicy())

	assert.True(t, summary.Total.IsZero())
	assert.True(t, summary.ShippingFee.IsZero())
	assert.Equal(t, 0, summary.ItemCount)
}

func TestSummarize_TaxOnSubtotal(t *testing.T) {
	policy := testPolicy()
	policy.TaxRatePercent = decimal.NewFromInt(10)
	items := []model.EnrichedCartItem{
		line(1, 100000, 1),
	}

	summary := Summarize(items, nil, policy)

	assert.True(t, summary.Tax.Equal(decimal.NewFromInt(10000)), "tax %s", summary.Tax)
	assert.True(t, summary.Total.Equal(decimal.NewFromInt(140000)))
}

func TestDiscount_FullPercentClampedToSubtotal(t *testing.T) {
	subtotal := decimal.NewFromInt(100000)
	coupon := &model.Coupon{Code: "FREE", Value: decimal.NewFromInt(100), IsActive: true}

	discount := Discount(subtotal, coupon)

	assert.True(t, discount.Equal(subtotal), "discount never exceeds the subtotal")
}

func TestDiscount_NilCoupon(t *testing.T) {
	assert.True(t, Discount(decimal.NewFromInt(100000), nil).IsZero())
}

func TestEligible_FiltersInactiveAndOutOfWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	coupons := []model.Coupon{
		{Code: "LIVE", IsActive: true},
		{Code: "WINDOWED", IsActive: true, StartsAt: &past, EndsAt: &future},
		{Code: "INACTIVE", IsActive: false},
		{Code: "NOT_YET", IsActive: true, StartsAt: &future},
		{Code: "EXPIRED", IsActive: true, EndsAt: &past},
	}

	eligible := Eligible(coupons, now)

	require.Len(t, eligible, 2)
	assert.Equal(t, "LIVE", eligible[0].Code)
	assert.Equal(t, "WINDOWED", eligible[1].Code)
}
