package service

import "errors"

var (
	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrCouponExists is returned when attempting to create a coupon whose code is taken
	ErrCouponExists = errors.New("coupon already exists")

	// ErrCouponNotFound is returned when a coupon cannot be found
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrCouponNotEligible is returned when a coupon's constraints (active flag,
	// time window, minimum order total) reject the current order
	ErrCouponNotEligible = errors.New("coupon not eligible for this order")

	// ErrCouponExhausted is returned when a coupon's global or per-user usage cap is reached
	ErrCouponExhausted = errors.New("coupon usage limit reached")

	// ErrProductExists is returned when a product SKU is already taken
	ErrProductExists = errors.New("product already exists")

	// ErrCategoryExists is returned when a category name is already taken
	ErrCategoryExists = errors.New("category already exists")

	// ErrCategoryNotFound is returned when a category cannot be found
	ErrCategoryNotFound = errors.New("category not found")

	// ErrVariantExists is returned when a variant SKU is already taken
	ErrVariantExists = errors.New("product variant already exists")

	// ErrProductNotFound is returned when a product cannot be found
	ErrProductNotFound = errors.New("product not found")

	// ErrVariantNotFound is returned when a product variant cannot be found
	ErrVariantNotFound = errors.New("product variant not found")

	// ErrCartItemNotFound is returned when a cart line cannot be found in the user's cart
	ErrCartItemNotFound = errors.New("cart item not found")

	// ErrInsufficientStock is returned when a quantity change or checkout
	// asks for more units than the variant has in stock
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrCartEmpty is returned when checkout is attempted on a cart with no priceable lines
	ErrCartEmpty = errors.New("cart is empty")

	// ErrItemsUnavailable is returned when checkout is attempted while the
	// cart holds lines whose variant no longer exists in the catalog
	ErrItemsUnavailable = errors.New("cart contains unavailable items")

	// ErrOrderNotFound is returned when an order cannot be found
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderNotCancellable is returned when cancellation is requested after packing started
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")
)
