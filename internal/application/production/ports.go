package production

import (
	"context"

	"github.com/tu-usuario/textil-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repos del
// procesador de producción. Reintenta una vez ante conflicto de concurrencia.
type TxRunner interface {
	RunProduction(ctx context.Context, fn func(
		itemRepo repository.ItemRepository,
		ledgerRepo repository.LedgerRepository,
		runRepo repository.ProductionRepository,
	) error) error
}
