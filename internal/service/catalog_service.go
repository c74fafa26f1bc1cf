package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/clothify/shop-api/internal/model"
)

// CatalogRepositoryInterface defines the interface for catalog data access.
type CatalogRepositoryInterface interface {
	CatalogReader
	Insert(ctx context.Context, p *model.Product) (int64, error)
	Update(ctx context.Context, id int64, p *model.Product) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	InsertColor(ctx context.Context, c *model.Color) (int64, error)
	InsertSize(ctx context.Context, s *model.Size) (int64, error)
	Categories(ctx context.Context) ([]model.Category, error)
	InsertCategory(ctx context.Context, c *model.Category) (int64, error)
	UpdateCategory(ctx context.Context, id int64, c *model.Category) error
	DeleteCategory(ctx context.Context, id int64) error
	InsertVariant(ctx context.Context, v *model.ProductVariant) (int64, error)
	UpsertInventory(ctx context.Context, variantID int64, quantity int) (*model.Inventory, error)
}

// CatalogService provides the catalog screens of both frontends: storefront
// reads and admin CRUD over products, categories, variants, stock, colors
// and sizes.
type CatalogService struct {
	catalog CatalogRepositoryInterface
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(catalog CatalogRepositoryInterface) *CatalogService {
	return &CatalogService{catalog: catalog}
}

// ListProducts returns every active product with variants and inventory.
func (s *CatalogService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.catalog.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetProduct retrieves one product.
// Returns ErrProductNotFound if the product doesn't exist.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func productFromRequest(req *model.CreateProductRequest) *model.Product {
	product := &model.Product{
		Name:        req.Name,
		SKU:         req.SKU,
		Description: req.Description,
		BasePrice:   decimal.NewFromFloat(*req.BasePrice),
		CategoryID:  req.CategoryID,
		IsActive:    true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	return product
}

// CreateProduct creates a product from the request.
// Returns ErrProductExists if the SKU is already taken.
func (s *CatalogService) CreateProduct(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	if req == nil || req.BasePrice == nil {
		return nil, ErrInvalidRequest
	}
	product := productFromRequest(req)
	id, err := s.catalog.Insert(ctx, product)
	if err != nil {
		return nil, err
	}
	product.ID = id
	return product, nil
}

// UpdateProduct overwrites a product's editable fields.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, req *model.CreateProductRequest) (*model.Product, error) {
	if req == nil || req.BasePrice == nil {
		return nil, ErrInvalidRequest
	}
	product := productFromRequest(req)
	if err := s.catalog.Update(ctx, id, product); err != nil {
		return nil, err
	}
	product.ID = id
	return product, nil
}

// DeleteProduct removes a product.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	return s.catalog.Delete(ctx, id)
}

// ListCategories returns the category tree as a flat list.
func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.catalog.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// CreateCategory adds a category to the navigation tree.
// Returns ErrCategoryExists if the name is already taken.
func (s *CatalogService) CreateCategory(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	category := &model.Category{Name: req.Name, ParentID: req.ParentID}
	id, err := s.catalog.InsertCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	category.ID = id
	return category, nil
}

// UpdateCategory renames a category or moves it under a new parent.
func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, req *model.CreateCategoryRequest) (*model.Category, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	category := &model.Category{ID: id, Name: req.Name, ParentID: req.ParentID}
	if err := s.catalog.UpdateCategory(ctx, id, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	return s.catalog.DeleteCategory(ctx, id)
}

// CreateVariant adds a sellable color/size combination to a product.
// Returns ErrProductNotFound if the product doesn't exist and
// ErrVariantExists if the variant SKU is taken.
func (s *CatalogService) CreateVariant(ctx context.Context, productID int64, req *model.CreateVariantRequest) (*model.ProductVariant, error) {
	if req == nil || req.Price == nil {
		return nil, ErrInvalidRequest
	}
	variant := &model.ProductVariant{
		ProductID: productID,
		SKU:       req.SKU,
		Price:     decimal.NewFromFloat(*req.Price),
		ColorID:   req.ColorID,
		SizeID:    req.SizeID,
	}
	id, err := s.catalog.InsertVariant(ctx, variant)
	if err != nil {
		return nil, err
	}
	variant.ID = id
	return variant, nil
}

// SetInventory sets a variant's on-hand stock, creating the record on first
// write. Variants without a record stay unbounded, so stock caps only exist
// for variants an admin has counted.
// Returns ErrVariantNotFound if the variant doesn't exist.
func (s *CatalogService) SetInventory(ctx context.Context, variantID int64, req *model.SetInventoryRequest) (*model.Inventory, error) {
	if req == nil || req.Quantity == nil {
		return nil, ErrInvalidRequest
	}
	inv, err := s.catalog.UpsertInventory(ctx, variantID, *req.Quantity)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// ListColors returns the color reference list.
func (s *CatalogService) ListColors(ctx context.Context) ([]model.Color, error) {
	colors, err := s.catalog.Colors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list colors: %w", err)
	}
	return colors, nil
}

// ListSizes returns the size reference list.
func (s *CatalogService) ListSizes(ctx context.Context) ([]model.Size, error) {
	sizes, err := s.catalog.Sizes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sizes: %w", err)
	}
	return sizes, nil
}

// CreateColor adds a color to the catalog.
func (s *CatalogService) CreateColor(ctx context.Context, req *model.CreateColorRequest) (*model.Color, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	color := &model.Color{Name: req.Name, Code: req.Code}
	id, err := s.catalog.InsertColor(ctx, color)
	if err != nil {
		return nil, err
	}
	color.ID = id
	return color, nil
}

// CreateSize adds a size to the catalog.
func (s *CatalogService) CreateSize(ctx context.Context, req *model.CreateSizeRequest) (*model.Size, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	size := &model.Size{Code: req.Code, Name: req.Name}
	id, err := s.catalog.InsertSize(ctx, size)
	if err != nil {
		return nil, err
	}
	size.ID = id
	return size, nil
}
