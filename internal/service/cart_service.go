package service

import (
	"context"
	"fmt"

	"github.com/clothify/shop-api/internal/model"
	"github.com/clothify/shop-api/internal/pricing"
)

// CartRepositoryInterface defines the interface for cart data access.
type CartRepositoryInterface interface {
	GetOrCreateCart(ctx context.Context, userID int64) (*model.Cart, error)
	ItemsByCart(ctx context.Context, cartID int64) ([]model.CartItem, error)
	FindItemByVariant(ctx context.Context, cartID, variantID int64) (*model.CartItem, error)
	GetItem(ctx context.Context, itemID int64) (*model.CartItem, error)
	InsertItem(ctx context.Context, item *model.CartItem) (int64, error)
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error
	DeleteItem(ctx context.Context, itemID int64) error
	ClearCart(ctx context.Context, cartID int64) error
}

// CatalogReader defines the catalog lookups the cart needs.
type CatalogReader interface {
	GetAll(ctx context.Context) ([]model.Product, error)
	VariantByID(ctx context.Context, id int64) (*model.ProductVariant, error)
	InventoryByVariant(ctx context.Context, variantID int64) (*model.Inventory, error)
	Colors(ctx context.Context) ([]model.Color, error)
	Sizes(ctx context.Context) ([]model.Size, error)
}

// CartService provides business logic for cart operations. Every mutation
// enforces the per-variant stock cap; pricing is delegated to the pure
// pricing package so the storefront, the admin dashboard and checkout all
// see the same numbers.
type CartService struct {
	carts   CartRepositoryInterface
	catalog CatalogReader
	policy  pricing.Policy
}

// NewCartService creates a new CartService.
func NewCartService(carts CartRepositoryInterface, catalog CatalogReader, policy pricing.Policy) *CartService {
	return &CartService{carts: carts, catalog: catalog, policy: policy}
}

// GetCart returns the user's enriched cart lines with their summary.
// Lines whose variant has vanished from the catalog come back marked
// unavailable rather than silently dropped.
func (s *CartService) GetCart(ctx context.Context, userID int64) (*model.CartResponse, error) {
	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	items, err := s.carts.ItemsByCart(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}

	enriched, err := s.enrich(ctx, items)
	if err != nil {
		return nil, err
	}

	return &model.CartResponse{
		Items:   enriched,
		Summary: pricing.Summarize(enriched, nil, s.policy),
	}, nil
}

func (s *CartService) enrich(ctx context.Context, items []model.CartItem) ([]model.EnrichedCartItem, error) {
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

// AddItem puts a variant into the user's cart, merging into an existing
// line when the variant is already there. The unit price is snapshotted
// from the variant at add time. Returns ErrVariantNotFound or
// ErrInsufficientStock.
func (s *CartService) AddItem(ctx context.Context, userID int64, req *model.AddCartItemRequest) (*model.CartItem, error) {
	if req == nil || req.Quantity < 1 {
		return nil, ErrInvalidRequest
	}

	variant, err := s.catalog.VariantByID(ctx, req.VariantID)
	if err != nil {
		return nil, fmt.Errorf("get variant: %w", err)
	}
	if variant == nil {
		return nil, ErrVariantNotFound
	}

	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	existing, err := s.carts.FindItemByVariant(ctx, cart.ID, req.VariantID)
	if err != nil {
		return nil, fmt.Errorf("find cart item: %w", err)
	}

	newQuantity := req.Quantity
	if existing != nil {
		newQuantity += existing.Quantity
	}
	if err := s.checkStock(ctx, req.VariantID, newQuantity); err != nil {
		return nil, err
	}

	if existing != nil {
		if err := s.carts.UpdateItemQuantity(ctx, existing.ID, newQuantity); err != nil {
			return nil, fmt.Errorf("update cart item: %w", err)
		}
		existing.Quantity = newQuantity
		return existing, nil
	}

	item := &model.CartItem{
		CartID:    cart.ID,
		VariantID: variant.ID,
		UnitPrice: variant.Price,
		Quantity:  req.Quantity,
	}
	id, err := s.carts.InsertItem(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("insert cart item: %w", err)
	}
	item.ID = id
	return item, nil
}

// UpdateItemQuantity applies the quantity guard to one of the user's cart
// lines: a quantity below 1 removes the line, a quantity above the
// variant's stock is rejected with ErrInsufficientStock and changes
// nothing. The update is atomic per line.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, itemID int64, quantity int) error {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return err
	}

	if quantity < 1 {
		if err := s.carts.DeleteItem(ctx, item.ID); err != nil {
			return fmt.Errorf("delete cart item: %w", err)
		}
		return nil
	}

	if err := s.checkStock(ctx, item.VariantID, quantity); err != nil {
		return err
	}
	if err := s.carts.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	return nil
}

// RemoveItem deletes one of the user's cart lines.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID int64) error {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if err := s.carts.DeleteItem(ctx, item.ID); err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return nil
}

// Clear empties the user's cart.
func (s *CartService) Clear(ctx context.Context, userID int64) error {
	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return fmt.Errorf("get cart: %w", err)
	}
	if err := s.carts.ClearCart(ctx, cart.ID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// ownedItem loads a cart line and verifies it belongs to the user's cart.
// A line in someone else's cart is reported as not found, not as forbidden.
func (s *CartService) ownedItem(ctx context.Context, userID, itemID int64) (*model.CartItem, error) {
	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	item, err := s.carts.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	if item == nil || item.CartID != cart.ID {
		return nil, ErrCartItemNotFound
	}
	return item, nil
}

// checkStock rejects quantities above the variant's inventory. A variant
// without an inventory record is unbounded.
func (s *CartService) checkStock(ctx context.Context, variantID int64, quantity int) error {
	inv, err := s.catalog.InventoryByVariant(ctx, variantID)
	if err != nil {
		return fmt.Errorf("get inventory: %w", err)
	}
	if inv != nil && quantity > inv.Quantity {
		return ErrInsufficientStock
	}
	return nil
}
