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

// OrderServiceInterface defines the interface for order business logic.
type OrderServiceInterface interface {
	Checkout(ctx context.Context, userID int64, req *model.CheckoutRequest) (*model.Order, error)
	Get(ctx context.Context, userID, orderID int64) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	Cancel(ctx context.Context, userID, orderID int64) error
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
}

// OrderHandler handles HTTP requests for order operations.
type OrderHandler struct {
	service   OrderServiceInterface
	validator *validator.Validate
}

// NewOrderHandler creates a new OrderHandler with the given service and validator.
func NewOrderHandler(svc OrderServiceInterface, v *validator.Validate) *OrderHandler {
	return &OrderHandler{service: svc, validator: v}
}

// Checkout handles POST /api/orders/:userId requests. It submits the
// user's cart as an order; the coupon on the request body, if any, is
// re-validated inside the checkout transaction.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	var req model.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	order, err := h.service.Checkout(c.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartEmpty):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "cart is empty"})
		case errors.Is(err, service.ErrItemsUnavailable):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "some items are no longer available"})
		case errors.Is(err, service.ErrCouponNotFound):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "coupon not found"})
		case errors.Is(err, service.ErrCouponNotEligible):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "coupon is not eligible for this order"})
		case errors.Is(err, service.ErrCouponExhausted):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "coupon usage limit reached"})
		case errors.Is(err, service.ErrInsufficientStock):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "insufficient stock"})
		}
		log.Error().Err(err).Int64("user_id", userID).Msg("failed to checkout")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// ListOrders handles GET /api/orders/user/:userId requests.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	orders, err := h.service.ListByUser(c.Context(), userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("failed to list orders")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// GetOrder handles GET /api/orders/:userId/:orderId requests.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}
	orderID, err := parseID(c, "orderId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}

	order, err := h.service.Get(c.Context(), userID, orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
		}
		log.Error().Err(err).Int64("order_id", orderID).Msg("failed to get order")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(order)
}

// CancelOrder handles PATCH /api/orders/:userId/:orderId/cancel requests.
// Orders can only be cancelled before packing starts.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}
	orderID, err := parseID(c, "orderId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}

	if err := h.service.Cancel(c.Context(), userID, orderID); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
		}
		if errors.Is(err, service.ErrOrderNotCancellable) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "order can no longer be cancelled"})
		}
		log.Error().Err(err).Int64("order_id", orderID).Msg("failed to cancel order")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateOrderStatus handles PATCH /api/orders/:orderId/status requests
// from the admin dashboard.
func (h *OrderHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	orderID, err := parseID(c, "orderId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}

	var req model.UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	if err := h.service.UpdateStatus(c.Context(), orderID, model.OrderStatus(req.Status)); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
		}
		log.Error().Err(err).Int64("order_id", orderID).Msg("failed to update order status")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
