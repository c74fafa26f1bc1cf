package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "NEW"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusPacking   OrderStatus = "PACKING"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Cancellable reports whether the order may still be cancelled by the
// customer. Once packing starts the order is committed.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusNew || s == OrderStatusConfirmed
}

// PaymentMethod is how the customer pays for an order.
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "COD"
	PaymentMethodWallet PaymentMethod = "WALLET"
)

// PaymentStatus tracks settlement of an order.
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "UNPAID"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
	PaymentStatusPartial  PaymentStatus = "PARTIAL"
)

// ShippingAddress is the delivery address snapshot stored with each order.
type ShippingAddress struct {
	FullName string `json:"full_name" validate:"required,notblank,max=255"`
	Phone    string `json:"phone" validate:"required,notblank,max=20"`
	Address  string `json:"address" validate:"required,notblank,max=500"`
	Ward     string `json:"ward" validate:"required,notblank,max=100"`
	Province string `json:"province" validate:"required,notblank,max=100"`
	Note     string `json:"note,omitempty" validate:"max=1000"`
}

// ItemAttributes is the color/size snapshot stored with each order line.
type ItemAttributes struct {
	Color string `json:"color,omitempty"`
	Size  string `json:"size,omitempty"`
}

// OrderItem is an immutable order line. Product name, SKU and attributes are
// snapshotted so later catalog edits do not rewrite order history.
type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	VariantID   int64           `json:"variant_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Attributes  ItemAttributes  `json:"attributes"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Order is a placed order with its totals snapshot.
type Order struct {
	ID              int64           `json:"id"`
	Code            string          `json:"code"`
	UserID          int64           `json:"user_id"`
	Status          OrderStatus     `json:"status"`
	TotalItems      int             `json:"total_items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountTotal   decimal.Decimal `json:"discount_total"`
	ShippingFee     decimal.Decimal `json:"shipping_fee"`
	Tax             decimal.Decimal `json:"tax"`
	GrandTotal      decimal.Decimal `json:"grand_total"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	CouponCode      *string         `json:"coupon_code,omitempty"`
	PlacedAt        time.Time       `json:"placed_at"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	Items           []OrderItem     `json:"items,omitempty"`
}

// CheckoutRequest is the DTO for POST /api/orders/:userId.
type CheckoutRequest struct {
	CouponCode      string          `json:"coupon_code" validate:"omitempty,max=50"`
	PaymentMethod   string          `json:"payment_method" validate:"required,oneof=COD WALLET"`
	ShippingAddress ShippingAddress `json:"shipping_address" validate:"required"`
}

// UpdateOrderStatusRequest is the DTO for the admin status transition
// endpoint. Cancellation goes through its own endpoint, so CANCELLED is
// not accepted here.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=CONFIRMED PACKING SHIPPED DELIVERED"`
}
