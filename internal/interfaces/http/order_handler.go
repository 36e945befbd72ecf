package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/textil-ledger/internal/application/dto"
	"github.com/tu-usuario/textil-ledger/internal/application/orders"
)

// OrderHandler maneja las peticiones HTTP de órdenes.
type OrderHandler struct {
	uc *orders.SubmitOrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.SubmitOrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Submit registra una orden. Si la idempotency key ya fue procesada devuelve
// la orden original con 200 en lugar de 201; el inventario no se toca dos
// veces.
func (h *OrderHandler) Submit(c *fiber.Ctx) error {
	var in dto.SubmitOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.IdempotencyKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Field: "idempotency_key", Message: "es obligatorio"})
	}
	out, created, err := h.uc.SubmitOrder(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	if !created {
		return c.Status(fiber.StatusOK).JSON(out)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID devuelve una orden con sus líneas y pagos.
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
