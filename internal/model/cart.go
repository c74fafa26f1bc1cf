package model

import "github.com/shopspring/decimal"

// Cart is the per-user cart header. Lines live in CartItem.
type Cart struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
}

// CartItem is a single cart line. UnitPrice is a snapshot of the variant
// price at the time the line was added.
type CartItem struct {
	ID        int64           `json:"id"`
	CartID    int64           `json:"cart_id"`
	VariantID int64           `json:"variant_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// EnrichedCartItem is a cart line joined with its resolved catalog data.
// MaxStock is nil when no inventory record exists for the variant, which
// means the quantity is unbounded. Unavailable is set when the variant or
// its product can no longer be resolved; such lines are kept so the UI can
// tell the user, but they are excluded from totals.
type EnrichedCartItem struct {
	CartItem
	Product     *Product        `json:"product,omitempty"`
	Variant     *ProductVariant `json:"variant,omitempty"`
	Color       *Color          `json:"color,omitempty"`
	Size        *Size           `json:"size,omitempty"`
	MaxStock    *int            `json:"max_stock,omitempty"`
	Unavailable bool            `json:"unavailable,omitempty"`
}

// CartSummary is the derived pricing aggregate rendered at checkout.
type CartSummary struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"item_count"`
}

// AddCartItemRequest is the DTO for POST /api/carts/:userId/items.
type AddCartItemRequest struct {
	VariantID int64 `json:"variant_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

// UpdateCartItemRequest is the DTO for PUT /api/carts/:userId/items/:itemId.
// A quantity below 1 is treated as a removal request.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// CartResponse bundles the enriched lines with their summary so the two
// frontends render totals from a single authoritative computation.
type CartResponse struct {
	Items   []EnrichedCartItem `json:"items"`
	Summary CartSummary        `json:"summary"`
}
