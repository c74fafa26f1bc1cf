package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/clothify/shop-api/internal/model"
	"github.com/clothify/shop-api/internal/pricing"
	"github.com/clothify/shop-api/pkg/database"
)

// OrderRepositoryInterface defines the interface for order data access.
type OrderRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, order *model.Order) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	Cancel(ctx context.Context, orderID int64, at time.Time) error
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
}

// CheckoutCartRepository is the cart access checkout needs.
type CheckoutCartRepository interface {
	GetOrCreateCart(ctx context.Context, userID int64) (*model.Cart, error)
	ItemsByCart(ctx context.Context, cartID int64) ([]model.CartItem, error)
	ClearCartIn(ctx context.Context, q database.TxQuerier, cartID int64) error
}

// CheckoutCouponRepository is the coupon access checkout needs. The
// for-update lookup and the in-transaction counts keep the usage-cap check
// race-free against concurrent checkouts of the same code.
type CheckoutCouponRepository interface {
	GetByCodeForUpdate(ctx context.Context, tx database.TxQuerier, code string) (*model.Coupon, error)
	CountRedemptionsIn(ctx context.Context, q database.TxQuerier, couponID int64) (int, error)
	CountRedemptionsByUserIn(ctx context.Context, q database.TxQuerier, couponID, userID int64) (int, error)
	InsertRedemption(ctx context.Context, tx database.TxQuerier, couponID, userID, orderID int64) error
}

// CheckoutCatalogRepository is the catalog access checkout needs.
type CheckoutCatalogRepository interface {
	GetAll(ctx context.Context) ([]model.Product, error)
	Colors(ctx context.Context) ([]model.Color, error)
	Sizes(ctx context.Context) ([]model.Size, error)
	DecrementInventory(ctx context.Context, tx database.TxQuerier, variantID int64, quantity int) error
}

// OrderService provides the order lifecycle: checkout, listing and
// cancellation.
type OrderService struct {
	pool    database.TxBeginner
	orders  OrderRepositoryInterface
	carts   CheckoutCartRepository
	coupons CheckoutCouponRepository
	catalog CheckoutCatalogRepository
	policy  pricing.Policy
	now     func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	pool database.TxBeginner,
	orders OrderRepositoryInterface,
	carts CheckoutCartRepository,
	coupons CheckoutCouponRepository,
	catalog CheckoutCatalogRepository,
	policy pricing.Policy,
) *OrderService {
	return &OrderService{
		pool:    pool,
		orders:  orders,
		carts:   carts,
		coupons: coupons,
		catalog: catalog,
		policy:  policy,
		now:     time.Now,
	}
}

// NewOrderServiceWithClock creates an OrderService with a custom clock.
// Primarily used for testing.
func NewOrderServiceWithClock(
	pool database.TxBeginner,
	orders OrderRepositoryInterface,
	carts CheckoutCartRepository,
	coupons CheckoutCouponRepository,
	catalog CheckoutCatalogRepository,
	policy pricing.Policy,
	now func() time.Time,
) *OrderService {
	svc := NewOrderService(pool, orders, carts, coupons, catalog, policy)
	svc.now = now
	return svc
}

// Checkout turns the user's cart into an order in a single transaction:
// coupon eligibility is re-validated at submission time (not just when the
// user picked it), totals are computed by the pricing engine, inventory is
// decremented with an oversell guard, the redemption is recorded, and the
// cart is cleared. Any failure rolls the whole thing back.
//
// Returns ErrCartEmpty, ErrItemsUnavailable, ErrCouponNotFound,
// ErrCouponNotEligible, ErrCouponExhausted or ErrInsufficientStock.
func (s *OrderService) Checkout(ctx context.Context, userID int64, req *model.CheckoutRequest) (*model.Order, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	items, err := s.carts.ItemsByCart(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	enriched, err := s.enrich(ctx, items)
	if err != nil {
		return nil, err
	}
	// An order must not silently skip lines the catalog no longer resolves;
	// the user removes them or the order doesn't happen.
	for _, item := range enriched {
		if item.Unavailable {
			return nil, ErrItemsUnavailable
		}
	}

	var order *model.Order
	err = database.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var coupon *model.Coupon
		if req.CouponCode != "" {
			subtotal := pricing.Summarize(enriched, nil, s.policy).Subtotal
			coupon, err = s.validateCoupon(ctx, tx, req.CouponCode, userID, subtotal)
			if err != nil {
				return err
			}
		}

		summary := pricing.Summarize(enriched, coupon, s.policy)
		order = s.buildOrder(userID, req, enriched, summary, coupon)

		orderID, err := s.orders.Insert(ctx, tx, order)
		if err != nil {
			return err
		}
		order.ID = orderID

		if coupon != nil {
			if err := s.coupons.InsertRedemption(ctx, tx, coupon.ID, userID, orderID); err != nil {
				return err
			}
		}

		for _, item := range enriched {
			if err := s.catalog.DecrementInventory(ctx, tx, item.VariantID, item.Quantity); err != nil {
				return err
			}
		}

		return s.carts.ClearCartIn(ctx, tx, cart.ID)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// validateCoupon re-runs the full eligibility check inside the checkout
// transaction: active flag, time window, minimum order total, and the
// global and per-user usage caps, with the coupon row locked. Picking a
// coupon at the start of checkout guarantees nothing by the time the order
// is submitted, so nothing from selection time is trusted here.
func (s *OrderService) validateCoupon(ctx context.Context, tx database.TxQuerier, code string, userID int64, subtotal decimal.Decimal) (*model.Coupon, error) {
	coupon, err := s.coupons.GetByCodeForUpdate(ctx, tx, code)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !coupon.IsActive {
		return nil, ErrCouponNotEligible
	}
	if coupon.StartsAt != nil && now.Before(*coupon.StartsAt) {
		return nil, ErrCouponNotEligible
	}
	if coupon.EndsAt != nil && now.After(*coupon.EndsAt) {
		return nil, ErrCouponNotEligible
	}
	if coupon.MinOrderTotal != nil && subtotal.LessThan(*coupon.MinOrderTotal) {
		return nil, ErrCouponNotEligible
	}

	if coupon.MaxUses != nil {
		used, err := s.coupons.CountRedemptionsIn(ctx, tx, coupon.ID)
		if err != nil {
			return nil, fmt.Errorf("count redemptions: %w", err)
		}
		if used >= *coupon.MaxUses {
			return nil, ErrCouponExhausted
		}
	}
	if coupon.MaxUsesPerUser != nil {
		used, err := s.coupons.CountRedemptionsByUserIn(ctx, tx, coupon.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("count user redemptions: %w", err)
		}
		if used >= *coupon.MaxUsesPerUser {
			return nil, ErrCouponExhausted
		}
	}

	return coupon, nil
}

func (s *OrderService) enrich(ctx context.Context, items []model.CartItem) ([]model.EnrichedCartItem, error) {
	products, err := s.catalog.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	colors, err := s.catalog.Colors(ctx)
	if err != nil {
		return nil, fmt.Errorf("load colors: %w", err)
	}
	sizes, err := s.catalog.Sizes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sizes: %w", err)
	}
	return pricing.Enrich(items, pricing.Catalog{
		Products: products,
		Colors:   colors,
		Sizes:    sizes,
	}), nil
}

func (s *OrderService) buildOrder(
	userID int64,
	req *model.CheckoutRequest,
	enriched []model.EnrichedCartItem,
	summary model.CartSummary,
	coupon *model.Coupon,
) *model.Order {
	order := &model.Order{
		Code:            newOrderCode(),
		UserID:          userID,
		Status:          model.OrderStatusNew,
		TotalItems:      summary.ItemCount,
		Subtotal:        summary.Subtotal,
		DiscountTotal:   summary.Discount,
		ShippingFee:     summary.ShippingFee,
		Tax:             summary.Tax,
		GrandTotal:      summary.Total,
		PaymentMethod:   model.PaymentMethod(req.PaymentMethod),
		PaymentStatus:   model.PaymentStatusUnpaid,
		ShippingAddress: req.ShippingAddress,
		PlacedAt:        s.now().UTC(),
	}
	if coupon != nil {
		code := coupon.Code
		order.CouponCode = &code
	}

	for _, item := range enriched {
		line := model.OrderItem{
			VariantID: item.VariantID,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
		}
		if item.Variant != nil {
			line.SKU = item.Variant.SKU
		}
		if item.Color != nil {
			line.Attributes.Color = item.Color.Name
		}
		if item.Size != nil {
			line.Attributes.Size = item.Size.Name
		}
		order.Items = append(order.Items, line)
	}
	return order
}

// newOrderCode generates a short human-readable order code.
func newOrderCode() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

// Get retrieves one of the user's orders.
// Returns ErrOrderNotFound for missing orders and for orders owned by
// someone else.
func (s *OrderService) Get(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil || order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListByUser returns the user's orders, newest first.
func (s *OrderService) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Cancel cancels one of the user's orders while it is still cancellable
// (before packing starts). Returns ErrOrderNotFound or
// ErrOrderNotCancellable.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID int64) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if order == nil || order.UserID != userID {
		return ErrOrderNotFound
	}
	if !order.Status.Cancellable() {
		return ErrOrderNotCancellable
	}
	return s.orders.Cancel(ctx, orderID, s.now().UTC())
}

// UpdateStatus moves an order to a new fulfilment status. Used by the
// admin dashboard; cancellation has its own flow.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}
