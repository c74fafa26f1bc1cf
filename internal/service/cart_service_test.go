package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clothify/shop-api/internal/model"
	"github.com/clothify/shop-api/internal/pricing"
)

// mockCartRepository is a mock implementation of CartRepositoryInterface.
type mockCartRepository struct {
	getOrCreateCartFn    func(ctx context.Context, userID int64) (*model.Cart, error)
	itemsByCartFn        func(ctx context.Context, cartID int64) ([]model.CartItem, error)
	findItemByVariantFn  func(ctx context.Context, cartID, variantID int64) (*model.CartItem, error)
	getItemFn            func(ctx context.Context, itemID int64) (*model.CartItem, error)
	insertItemFn         func(ctx context.Context, item *model.CartItem) (int64, error)
	updateItemQuantityFn func(ctx context.Context, itemID int64, quantity int) error
	deleteItemFn         func(ctx context.Context, itemID int64) error
	clearCartFn          func(ctx context.Context, cartID int64) error
}

func (m *mockCartRepository) GetOrCreateCart(ctx context.Context, userID int64) (*model.Cart, error) {
	if m.getOrCreateCartFn != nil {
		return m.getOrCreateCartFn(ctx, userID)
	}
	return &model.Cart{ID: 1, UserID: userID}, nil
}

func (m *mockCartRepository) ItemsByCart(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	if m.itemsByCartFn != nil {
		return m.itemsByCartFn(ctx, cartID)
	}
	return nil, nil
}

func (m *mockCartRepository) FindItemByVariant(ctx context.Context, cartID, variantID int64) (*model.CartItem, error) {
	if m.findItemByVariantFn != nil {
		return m.findItemByVariantFn(ctx, cartID, variantID)
	}
	return nil, nil
}

func (m *mockCartRepository) GetItem(ctx context.Context, itemID int64) (*model.CartItem, error) {
	if m.getItemFn != nil {
		return m.getItemFn(ctx, itemID)
	}
	return nil, nil
}

func (m *mockCartRepository) InsertItem(ctx context.Context, item *model.CartItem) (int64, error) {
	if m.insertItemFn != nil {
		return m.insertItemFn(ctx, item)
	}
	return 1, nil
}

func (m *mockCartRepository) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	if m.updateItemQuantityFn != nil {
		return m.updateItemQuantityFn(ctx, itemID, quantity)
	}
	return nil
}

func (m *mockCartRepository) DeleteItem(ctx context.Context, itemID int64) error {
	if m.deleteItemFn != nil {
		return m.deleteItemFn(ctx, itemID)
	}
	return nil
}

func (m *mockCartRepository) ClearCart(ctx context.Context, cartID int64) error {
	if m.clearCartFn != nil {
		return m.clearCartFn(ctx, cartID)
	}
	return nil
}

// mockCatalogReader is a mock implementation of CatalogReader.
type mockCatalogReader struct {
	getAllFn             func(ctx context.Context) ([]model.Product, error)
	variantByIDFn        func(ctx context.Context, id int64) (*model.ProductVariant, error)
	inventoryByVariantFn func(ctx context.Context, variantID int64) (*model.Inventory, error)
	colorsFn             func(ctx context.Context) ([]model.Color, error)
	sizesFn              func(ctx context.Context) ([]model.Size, error)
}

func (m *mockCatalogReader) GetAll(ctx context.Context) ([]model.Product, error) {
	if m.getAllFn != nil {
		return m.getAllFn(ctx)
	}
	return nil, nil
}

func (m *mockCatalogReader) VariantByID(ctx context.Context, id int64) (*model.ProductVariant, error) {
	if m.variantByIDFn != nil {
		return m.variantByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockCatalogReader) InventoryByVariant(ctx context.Context, variantID int64) (*model.Inventory, error) {
	if m.inventoryByVariantFn != nil {
		return m.inventoryByVariantFn(ctx, variantID)
	}
	return nil, nil
}

func (m *mockCatalogReader) Colors(ctx context.Context) ([]model.Color, error) {
	if m.colorsFn != nil {
		return m.colorsFn(ctx)
	}
	return nil, nil
}

func (m *mockCatalogReader) Sizes(ctx context.Context) ([]model.Size, error) {
	if m.sizesFn != nil {
		return m.sizesFn(ctx)
	}
	return nil, nil
}

func testPolicy() pricing.Policy {
	return pricing.Policy{
		ShippingFee:           decimal.NewFromInt(30000),
		FreeShippingThreshold: decimal.NewFromInt(500000),
		TaxRatePercent:        decimal.Zero,
	}
}

func testProducts() []model.Product {
	return []model.Product{
		{
			ID:   1,
			Name: "Oxford Shirt",
			Variants: []model.ProductVariant{
				{ID: 10, ProductID: 1, SKU: "OXF-NVY-M", Price: decimal.NewFromInt(250000), ColorID: 1, SizeID: 2},
			},
			Inventories: []model.Inventory{
				{ID: 100, VariantID: 10, Quantity: 5},
			},
		},
	}
}

func TestCartService_GetCart_EnrichedWithSummary(t *testing.T) {
	mockCarts := &mockCartRepository{
		itemsByCartFn: func(ctx context.Context, cartID int64) ([]model.CartItem, error) {
			return []model.CartItem{
				{ID: 1, CartID: 1, VariantID: 10, UnitPrice: decimal.NewFromInt(250000), Quantity: 2},
			}, nil
		},
	}
	mockCatalog := &mockCatalogReader{
		getAllFn: func(ctx context.Context) ([]model.Product, error) {
			return testProducts(), nil
		},
	}

	svc := NewCartService(mockCarts, mockCatalog, testPolicy())
	resp, err := svc.GetCart(context.Background(), 7)

	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.False(t, resp.Items[0].Unavailable)
	require.NotNil(t, resp.Items[0].MaxStock)
	assert.Equal(t, 5, *resp.Items[0].MaxStock)
	assert.True(t, resp.Summary.Subtotal.Equal(decimal.NewFromInt(500000)))
	assert.True(t, resp.Summary.ShippingFee.IsZero(), "free shipping at the threshold")
}

func TestCartService_GetCart_VanishedVariantMarkedUnavailable(t *testing.T) {
	mockCarts := &mockCartRepository{
		itemsByCartFn: func(ctx context.Context, cartID int64) ([]model.CartItem, error) {
			return []model.CartItem{
				{ID: 1, CartID: 1, VariantID: 999, UnitPrice: decimal.NewFromInt(100000), Quantity: 1},
			}, nil
		},
	}
	mockCatalog := &mockCatalogReader{
		getAllFn: func(ctx context.Context) ([]model.Product, error) {
			return testProducts(), nil
		},
	}

	svc := NewCartService(mockCarts, mockCatalog, testPolicy())
	resp, err := svc.GetCart(context.Background(), 7)

	require.NoError(t, err)
	require.Len(t, resp.Items, 1, "vanished line is surfaced, not dropped")
	assert.True(t, resp.Items[0].Unavailable)
	assert.True(t, resp.Summary.Total.IsZero(), "unavailable lines are excluded from totals")
}

func TestCartService_AddItem_NewLine(t *testing.T) {
	var inserted *model.CartItem
	mockCarts := &mockCartRepository{
		insertItemFn: func(ctx context.Context, item *model.CartItem) (int64, error) {
			inserted = item
			return 42, nil
		},
	}
	mockCatalog := &mockCatalogReader{
		variantByIDFn: func(ctx context.Context, id int64) (*model.ProductVariant, error) {
			return &model.ProductVariant{ID: 10, ProductID: 1, Price: decimal.NewFromInt(250000)}, nil
		},
		inventoryByVariantFn: func(ctx context.Context, variantID int64) (*model.Inventory, error) {
			return &model.Inventory{VariantID: 10, Quantity: 5}, nil
		},
	}

	svc := NewCartService(mockCarts, mockCatalog, testPolicy())
	item, err := svc.AddItem(context.Background(), 7, &model.AddCartItemRequest{VariantID: 10, Quantity: 2})

	require.NoError(t, err)
	require.NotNil(t, inserted)
	assert.Equal(t, int64(42), item.ID)
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(250000)), "unit price snapshotted from the variant")
}

func TestCartService_AddItem_MergesExistingLine(t *testing.T) {
	var updatedQuantity int
	mockCarts := &mockCartRepository{
		findItemByVariantFn: func(ctx context.Context, cartID, variantID int64) (*model.CartItem, error) {
			return &model.CartItem{ID: 3, CartID: 1, VariantID: 10, UnitPrice: decimal.NewFromInt(250000), Quantity: 2}, nil
		},
		updateItemQuantityFn: func(ctx context.Context, itemID int64, quantity int) error {
			updatedQuantity = quantity
			return nil
		},
	}
	mockCatalog := &mockCatalogReader{
		variantByIDFn: func(ctx context.Context, id int64) (*model.ProductVariant, error) {
			return &model.ProductVariant{ID: 10, Price: decimal.NewFromInt(250000)}, nil
		},
		inventoryByVariantFn: func(ctx context.Context, variantID int64) (*model.Inventory, error) {
			return &model.Inventory{VariantID: 10, Quantity: 5}, nil
		},
	}

	svc := NewCartService(mockCarts, mockCatalog, testPolicy())
	item, err := svc.AddItem(context.Background(), 7, &model.AddCartItemRequest{VariantID: 10, Quantity: 1})

	require.NoError(t, err)
	assert.Equal(t, 3, updatedQuantity, "quantities merge onto the existing line")
	assert.Equal(t, int64(3), item.ID)
	assert.Equal(t, 3, item.Quantity)
}

func TestCartService_AddItem_MergeExceedingStockRejected(t *testing.T) {
	mockCarts := &mockCartRepository{
		findItemByVariantFn: func(ctx context.Context, cartID, variantID int64) (*model.CartItem, error) {
			return &model.CartItem{ID: 3, CartID: 1, VariantID: 10, Quantity: 4}, nil
		},
	}
	mockCatalog := &mockCatalogReader{
		variantByIDFn: func(ctx context.Context, id int64) (*model.ProductVariant, error) {
			return &model.ProductVariant{ID: 10, Price: decimal.NewFromInt(250000)}, nil
		},
		inventoryByVariantFn: func(ctx context.Context, variantID int64) (*model.Inventory, error) {
			return &model.Inventory{VariantID: 10, Quantity: 5}, nil
		},
	}

	svc := NewCartService(mockCarts, mockCatalog, testPolicy())
	_, err := svc.AddItem(context.Background(), 7, &model.AddCartItemRequest{VariantID: 10, Quantity: 2})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
}

func TestCartService_AddItem_UnknownVariant(t *testing.T) {
	svc := NewCartService(&mockCartRepository{}, &mockCatalogReader{}, testPolicy())

	_, err := svc.AddItem(context.Background(), 7, &model.AddCartItemRequest{VariantID: 999, Quantity: 1})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVariantNotFound))
}

func TestCartService_AddItem_NoInventoryRecordUnbounded(t *testing.T) {
	mockCatalog := &mockCatalogReader{
		variantByIDFn: func(ctx context.Context, id int64) (*model.ProductVariant, error) {
			return &model.ProductVariant{ID: 10, Price: decimal.NewFromInt(250000)}, nil
		},
	}

	svc := NewCartService(&mockCartRepository{}, mockCatalog, testPolicy())
	item, err := svc.AddItem(context.Background(), 7, &model.AddCartItemRequest{VariantID: 10, Quantity: 9999})

	require.NoError(t, err)
	assert.Equal(t, 9999, item.Quantity)
}

func TestCartService_UpdateItemQuantity_BelowOneRemoves(t *testing.T) {
	deleted := false
	mockCarts := &mockCartRepository{
		getItemFn: func(ctx context.Context, itemID int64) (*model.CartItem, error) {
			return &model.CartItem{ID: 3, CartID: 1, VariantID: 10, Quantity: 2}, nil
		},
		deleteItemFn: func(ctx context.Context, itemID int64) error {
			deleted = true
			return nil
		},
	}

	svc := NewCartService(mockCarts, &mockCatalogReader{}, testPolicy())
	err := svc.UpdateItemQuantity(context.Background(), 7, 3, 0)

	require.NoError(t, err)
	assert.True(t, deleted, "quantity below 1 removes the line")
}

func TestCartService_UpdateItemQuantity_ExceedsStock(t *testing.T) {
	updated := false
	mockCarts := &mockCartRepository{
		getItemFn: func(ctx context.Context, itemID int64) (*model.CartItem, error) {
			return &model.CartItem{ID: 3, CartID: 1, VariantID: 10, Quantity: 2}, nil
		},
		updateItemQuantityFn: func(ctx context.Context, itemID int64, quantity int) error {
			updated = true
			return nil
		},
	}
	mockCatalog := &mockCatalogReader{
		inventoryByVariantFn: func(ctx context.Context, variantID int64) (*model.Inventory, error) {
			return &model.Inventory{VariantID: 10, Quantity: 5}, nil
		},
	}

	svc := NewCartService(mockCarts, mockCatalog, testPolicy())
	err := svc.UpdateItemQuantity(context.Background(), 7, 3, 6)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.False(t, updated, "stored quantity stays unchanged on rejection")
}

func TestCartService_UpdateItemQuantity_OtherUsersItem(t *testing.T) {
	mockCarts := &mockCartRepository{
		getItemFn: func(ctx context.Context, itemID int64) (*model.CartItem, error) {
			return &model.CartItem{ID: 3, CartID: 99, VariantID: 10, Quantity: 2}, nil
		},
	}

	svc := NewCartService(mockCarts, &mockCatalogReader{}, testPolicy())
	err := svc.UpdateItemQuantity(context.Background(), 7, 3, 2)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCartItemNotFound), "someone else's line reads as not found")
}

func TestCartService_RemoveItem_Missing(t *testing.T) {
	svc := NewCartService(&mockCartRepository{}, &mockCatalogReader{}, testPolicy())

	err := svc.RemoveItem(context.Background(), 7, 404)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCartItemNotFound))
}

func TestCartService_Clear(t *testing.T) {
	var clearedCart int64
	mockCarts := &mockCartRepository{
		clearCartFn: func(ctx context.Context, cartID int64) error {
			clearedCart = cartID
			return nil
		},
	}

	svc := NewCartService(mockCarts, &mockCatalogReader{}, testPolicy())
	err := svc.Clear(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, int64(1), clearedCart)
}
