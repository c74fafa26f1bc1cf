package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/clothify/shop-api/internal/model"
	"github.com/clothify/shop-api/internal/service"
)

// CatalogServiceInterface defines the interface for catalog business logic.
type CatalogServiceInterface interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	CreateProduct(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, id int64, req *model.CreateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error)
	UpdateCategory(ctx context.Context, id int64, req *model.CreateCategoryRequest) (*model.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	CreateVariant(ctx context.Context, productID int64, req *model.CreateVariantRequest) (*model.ProductVariant, error)
	SetInventory(ctx context.Context, variantID int64, req *model.SetInventoryRequest) (*model.Inventory, error)
	ListColors(ctx context.Context) ([]model.Color, error)
	ListSizes(ctx context.Context) ([]model.Size, error)
	CreateColor(ctx context.Context, req *model.CreateColorRequest) (*model.Color, error)
	CreateSize(ctx context.Context, req *model.CreateSizeRequest) (*model.Size, error)
}

// CatalogHandler handles HTTP requests for products, colors and sizes.
type CatalogHandler struct {
	service   CatalogServiceInterface
	validator *validator.Validate
}

// NewCatalogHandler creates a new CatalogHandler with the given service and validator.
func NewCatalogHandler(svc CatalogServiceInterface, v *validator.Validate) *CatalogHandler {
	return &CatalogHandler{service: svc, validator: v}
}

// ListProducts handles GET /api/products requests. Products come back with
// their variants and per-variant inventory so the storefront can render
// option pickers without extra round trips.
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list products")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(fiber.Map{"products": products})
}

// GetProduct handles GET /api/products/:id requests.
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}

	product, err := h.service.GetProduct(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
		}
		log.Error().Err(err).Int64("product_id", id).Msg("failed to get product")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(product)
}

// CreateProduct handles POST /api/products requests from the admin dashboard.
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var req model.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	product, err := h.service.CreateProduct(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrProductExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "product already exists"})
		}
		log.Error().Err(err).Str("name", req.Name).Msg("failed to create product")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// UpdateProduct handles PUT /api/products/:id requests.
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}

	var req model.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	product, err := h.service.UpdateProduct(c.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
		}
		log.Error().Err(err).Int64("product_id", id).Msg("failed to update product")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(product)
}

// DeleteProduct handles DELETE /api/products/:id requests.
func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}

	if err := h.service.DeleteProduct(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
		}
		log.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListCategories handles GET /api/categories requests.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list categories")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// CreateCategory handles POST /api/categories requests.
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req model.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	category, err := h.service.CreateCategory(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrCategoryExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "category already exists"})
		}
		log.Error().Err(err).Str("name", req.Name).Msg("failed to create category")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// UpdateCategory handles PUT /api/categories/:id requests.
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category id"})
	}

	var req model.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	category, err := h.service.UpdateCategory(c.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "category not found"})
		}
		if errors.Is(err, service.ErrCategoryExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "category already exists"})
		}
		log.Error().Err(err).Int64("category_id", id).Msg("failed to update category")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(category)
}

// DeleteCategory handles DELETE /api/categories/:id requests.
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category id"})
	}

	if err := h.service.DeleteCategory(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "category not found"})
		}
		log.Error().Err(err).Int64("category_id", id).Msg("failed to delete category")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateVariant handles POST /api/products/:id/variants requests from the
// admin dashboard.
func (h *CatalogHandler) CreateVariant(c *fiber.Ctx) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}

	var req model.CreateVariantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	variant, err := h.service.CreateVariant(c.Context(), productID, &req)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
		}
		if errors.Is(err, service.ErrVariantExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "variant already exists"})
		}
		log.Error().Err(err).Int64("product_id", productID).Msg("failed to create variant")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(fiber.StatusCreated).JSON(variant)
}

// SetInventory handles PUT /api/variants/:variantId/inventory requests.
// Writing stock here is what turns a variant from unbounded into capped.
func (h *CatalogHandler) SetInventory(c *fiber.Ctx) error {
	variantID, err := parseID(c, "variantId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid variant id"})
	}

	var req model.SetInventoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	inv, err := h.service.SetInventory(c.Context(), variantID, &req)
	if err != nil {
		if errors.Is(err, service.ErrVariantNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "variant not found"})
		}
		log.Error().Err(err).Int64("variant_id", variantID).Msg("failed to set inventory")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(inv)
}

// ListColors handles GET /api/colors requests.
func (h *CatalogHandler) ListColors(c *fiber.Ctx) error {
	colors, err := h.service.ListColors(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list colors")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(fiber.Map{"colors": colors})
}

// ListSizes handles GET /api/sizes requests.
func (h *CatalogHandler) ListSizes(c *fiber.Ctx) error {
	sizes, err := h.service.ListSizes(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list sizes")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(fiber.Map{"sizes": sizes})
}

// CreateColor handles POST /api/colors requests.
func (h *CatalogHandler) CreateColor(c *fiber.Ctx) error {
	var req model.CreateColorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	color, err := h.service.CreateColor(c.Context(), &req)
	if err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("failed to create color")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(fiber.StatusCreated).JSON(color)
}

// CreateSize handles POST /api/sizes requests.
func (h *CatalogHandler) CreateSize(c *fiber.Ctx) error {
	var req model.CreateSizeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	size, err := h.service.CreateSize(c.Context(), &req)
	if err != nil {
		log.Error().Err(err).Str("code", req.Code).Msg("failed to create size")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(fiber.StatusCreated).JSON(size)
}
