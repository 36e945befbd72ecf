package inventory

import (
	"context"

	"github.com/tu-usuario/textil-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad entre el ajuste de
// cantidad y su asiento en el libro; ante conflicto de concurrencia reintenta
// la unidad de trabajo completa una vez antes de reportar el fallo.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.ItemRepository,
		ledgerRepo repository.LedgerRepository,
	) error) error
}
