package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/clothify/shop-api/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Policy holds the pricing knobs that are configuration, not logic: the flat
// shipping fee, the subtotal at which shipping becomes free, and the tax rate
// charged on the subtotal.
type Policy struct {
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	TaxRatePercent        decimal.Decimal
}

// Summarize reduces enriched cart lines plus an optional applied coupon into
// a CartSummary. It is a pure function of its inputs.
//
// Unavailable lines contribute nothing to the subtotal or the item count.
// The discount is a percentage of the subtotal, zero when no coupon is
// applied or when the subtotal is below the coupon's minimum order total,
// and never exceeds the subtotal. An empty (or fully unavailable) cart
// yields an all-zero summary: no shipping or tax is charged on nothing.
func Summarize(items []model.EnrichedCartItem, coupon *model.Coupon, policy Policy) model.CartSummary {
	subtotal := decimal.Zero
	itemCount := 0
	for _, item := range items {
		if item.Unavailable {
			continue
		}
		line := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
		itemCount += item.Quantity
	}

	if itemCount == 0 {
		return model.CartSummary{
			Subtotal:    decimal.Zero,
			Discount:    decimal.Zero,
			ShippingFee: decimal.Zero,
			Tax:         decimal.Zero,
			Total:       decimal.Zero,
		}
	}

	discount := Discount(subtotal, coupon)

	shipping := policy.ShippingFee
	if subtotal.GreaterThanOrEqual(policy.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(policy.TaxRatePercent).Div(hundred)

	afterDiscount := subtotal.Sub(discount)
	if afterDiscount.IsNegative() {
		afterDiscount = decimal.Zero
	}

	return model.CartSummary{
		Subtotal:    subtotal,
		Discount:    discount,
		ShippingFee: shipping,
		Tax:         tax,
		Total:       afterDiscount.Add(shipping).Add(tax),
		ItemCount:   itemCount,
	}
}

// Discount computes the coupon discount against a subtotal. It returns zero
// when no coupon is applied or when the subtotal does not meet the coupon's
// minimum order total, and is clamped so it never exceeds the subtotal.
func Discount(subtotal decimal.Decimal, coupon *model.Coupon) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}
	if coupon.MinOrderTotal != nil && subtotal.LessThan(*coupon.MinOrderTotal) {
		return decimal.Zero
	}
	discount := subtotal.Mul(coupon.Value).Div(hundred)
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}

// Eligible filters coupons down to those that may be shown to the user:
// active, and with the given time inside their start/end window when one is
// set. Minimum order totals and usage caps are checked at application time,
// not here.
func Eligible(coupons []model.Coupon, now time.Time) []model.Coupon {
	eligible := make([]model.Coupon, 0, len(coupons))
	for _, c := range coupons {
		if !c.IsActive {
			continue
		}
		if c.StartsAt != nil && now.Before(*c.StartsAt) {
			continue
		}
		if c.EndsAt != nil && now.After(*c.EndsAt) {
			continue
		}
		eligible = append(eligible, c)
	}
	return eligible
}
