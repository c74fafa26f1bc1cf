package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products for the storefront navigation tree.
type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

// Color is a catalog reference value shared by product variants.
type Color struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"` // hex code, e.g. "#1e3a8a"
}

// Size is a catalog reference value shared by product variants.
type Size struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// ProductVariant is a sellable combination of product, color and size.
type ProductVariant struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	SKU       string          `json:"sku"`
	Price     decimal.Decimal `json:"price"`
	ColorID   int64           `json:"color_id"`
	SizeID    int64           `json:"size_id"`
}

// Inventory tracks on-hand stock for a single variant.
type Inventory struct {
	ID        int64 `json:"id"`
	VariantID int64 `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}

// Product is a catalog entry with its variants and their inventory.
type Product struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	SKU         string           `json:"sku"`
	Description string           `json:"description,omitempty"`
	BasePrice   decimal.Decimal  `json:"base_price"`
	CategoryID  *int64           `json:"category_id,omitempty"`
	IsActive    bool             `json:"is_active"`
	Variants    []ProductVariant `json:"variants,omitempty"`
	Inventories []Inventory      `json:"inventories,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// CreateProductRequest is the DTO for creating or updating a product.
type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required,notblank,max=255"`
	SKU         string   `json:"sku" validate:"required,notblank,max=100"`
	Description string   `json:"description" validate:"max=5000"`
	BasePrice   *float64 `json:"base_price" validate:"required,gte=0"`
	CategoryID  *int64   `json:"category_id" validate:"omitempty,gt=0"`
	IsActive    *bool    `json:"is_active"`
}

// CreateCategoryRequest is the DTO for creating or updating a category.
type CreateCategoryRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=100"`
	ParentID *int64 `json:"parent_id" validate:"omitempty,gt=0"`
}

// CreateVariantRequest is the DTO for adding a sellable variant to a product.
type CreateVariantRequest struct {
	SKU     string   `json:"sku" validate:"required,notblank,max=100"`
	Price   *float64 `json:"price" validate:"required,gte=0"`
	ColorID int64    `json:"color_id" validate:"required,gt=0"`
	SizeID  int64    `json:"size_id" validate:"required,gt=0"`
}

// SetInventoryRequest is the DTO for setting a variant's on-hand stock.
// Quantity is a pointer so an explicit zero survives validation.
type SetInventoryRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

// CreateColorRequest is the DTO for adding a color to the catalog.
type CreateColorRequest struct {
	Name string `json:"name" validate:"required,notblank,max=100"`
	Code string `json:"code" validate:"required,hexcolor"`
}

// CreateSizeRequest is the DTO for adding a size to the catalog.
type CreateSizeRequest struct {
	Code string `json:"code" validate:"required,notblank,max=20"`
	Name string `json:"name" validate:"required,notblank,max=100"`
}
