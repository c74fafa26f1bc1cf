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

// CartServiceInterface defines the interface for cart business logic.
type CartServiceInterface interface {
	GetCart(ctx context.Context, userID int64) (*model.CartResponse, error)
	AddItem(ctx context.Context, userID int64, req *model.AddCartItemRequest) (*model.CartItem, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID int64, quantity int) error
	RemoveItem(ctx context.Context, userID, itemID int64) error
	Clear(ctx context.Context, userID int64) error
}

// CartHandler handles HTTP requests for cart operations.
type CartHandler struct {
	service   CartServiceInterface
	validator *validator.Validate
}

// NewCartHandler creates a new CartHandler with the given service and validator.
func NewCartHandler(svc CartServiceInterface, v *validator.Validate) *CartHandler {
	return &CartHandler{service: svc, validator: v}
}

// GetCart handles GET /api/carts/:userId requests. The response carries the
// enriched lines (including any marked unavailable) and the summary both
// frontends render.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	cart, err := h.service.GetCart(c.Context(), userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("failed to get cart")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(cart)
}

// GetSummary handles GET /api/carts/:userId/summary requests. It returns
// only the computed totals, which the checkout page polls while the full
// cart page uses GetCart.
func (h *CartHandler) GetSummary(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	cart, err := h.service.GetCart(c.Context(), userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("failed to get cart summary")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(cart.Summary)
}

// AddItem handles POST /api/carts/:userId/items requests.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	var req model.AddCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	item, err := h.service.AddItem(c.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrVariantNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product variant not found"})
		}
		if errors.Is(err, service.ErrInsufficientStock) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "insufficient stock"})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		log.Error().Err(err).Int64("user_id", userID).Int64("variant_id", req.VariantID).Msg("failed to add cart item")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateItem handles PUT /api/carts/:userId/items/:itemId requests.
// A quantity below 1 removes the line; a quantity above the variant's
// stock is rejected and the stored quantity stays unchanged.
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}
	itemID, err := parseID(c, "itemId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid item id"})
	}

	var req model.UpdateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	if err := h.service.UpdateItemQuantity(c.Context(), userID, itemID, *req.Quantity); err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "cart item not found"})
		}
		if errors.Is(err, service.ErrInsufficientStock) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "insufficient stock"})
		}
		log.Error().Err(err).Int64("user_id", userID).Int64("item_id", itemID).Msg("failed to update cart item")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveItem handles DELETE /api/carts/:userId/items/:itemId requests.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}
	itemID, err := parseID(c, "itemId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid item id"})
	}

	if err := h.service.RemoveItem(c.Context(), userID, itemID); err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "cart item not found"})
		}
		log.Error().Err(err).Int64("user_id", userID).Int64("item_id", itemID).Msg("failed to remove cart item")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ClearCart handles DELETE /api/carts/:userId requests.
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	if err := h.service.Clear(c.Context(), userID); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("failed to clear cart")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
