package pricing

import "errors"

var (
	// ErrCouponNotFound is returned when no eligible coupon matches the code
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrCouponNotEligible is returned when the order subtotal is below the
	// coupon's minimum order total
	ErrCouponNotEligible = errors.New("coupon not eligible for this order")

	// ErrExceedsStock is returned when a quantity change would exceed the
	// stock cap of the line's variant
	ErrExceedsStock = errors.New("quantity exceeds available stock")

	// ErrItemNotFound is returned when a quantity change targets a line that
	// is not in the cart
	ErrItemNotFound = errors.New("cart item not found")
)
