package orders

import (
	"context"

	"github.com/tu-usuario/textil-ledger/internal/domain/repository"
)

// TxRunner ejecuta la unidad de trabajo de una orden: ajustes de inventario,
// asientos de venta, orden, líneas y pago, todo commit o todo rollback.
// Ante conflicto de concurrencia reintenta la función completa una vez.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		itemRepo repository.ItemRepository,
		ledgerRepo repository.LedgerRepository,
		orderRepo repository.OrderRepository,
	) error) error
}
