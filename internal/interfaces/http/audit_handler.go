package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/textil-ledger/internal/application/audit"
	"github.com/tu-usuario/textil-ledger/internal/application/dto"
)

// AuditHandler validación de consistencia cruzada.
type AuditHandler struct {
	uc *audit.ValidateRunUseCase
}

// NewAuditHandler construye el handler.
func NewAuditHandler(uc *audit.ValidateRunUseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// ValidateRun revisa una corrida contra el inventario y el libro: replay de
// asientos vs cantidad actual, referencias rotas y estados sin asientos.
// Siempre acumula advertencias, nunca corta en la primera.
func (h *AuditHandler) ValidateRun(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	warnings, err := h.uc.ValidateRun(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"run_id":     id,
		"consistent": len(warnings) == 0,
		"warnings":   warnings,
	})
}
