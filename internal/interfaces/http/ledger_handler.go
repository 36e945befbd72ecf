package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/textil-ledger/internal/application/dto"
	"github.com/tu-usuario/textil-ledger/internal/application/ledgerview"
)

// LedgerHandler consulta genérica de entidades del libro por tipo e id.
type LedgerHandler struct {
	uc *ledgerview.ViewUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *ledgerview.ViewUseCase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// GetEntry devuelve la vista de una entidad referenciable por el libro
// (ledger | order | production | payment). Fuera de producción, una
// referencia inexistente vuelve como placeholder en lugar de 404.
func (h *LedgerHandler) GetEntry(c *fiber.Ctx) error {
	kind := c.Params("kind")
	id := c.Params("id")
	if kind == "" || id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "kind e id son requeridos"})
	}
	out, err := h.uc.GetEntry(c.Context(), kind, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
