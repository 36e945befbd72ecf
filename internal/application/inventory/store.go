package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/textil-ledger/internal/domain"
	"github.com/tu-usuario/textil-ledger/internal/domain/repository"
)

// AdjustMode modo del ajuste de cantidad.
type AdjustMode int

const (
	// Strict falla con InsufficientStockError si current + delta < 0.
	// Es el modo de las ventas y del consumo de producción.
	Strict AdjustMode = iota
	// Clamp fija la cantidad en max(0, current + delta). Reservado para
	// correcciones compensatorias.
	Clamp
)

// Store es la única puerta de mutación de cantidades de inventario: ningún
// componente escribe quantity directamente. No escribe asientos del libro:
// ese par ajuste/asiento es decisión atómica del caso de uso que llama,
// dentro de su misma transacción.
type Store struct{}

// NewStore construye el store.
func NewStore() *Store {
	return &Store{}
}

// AdjustInTx bloquea la fila del ítem (SELECT FOR UPDATE), aplica el delta
// según el modo y devuelve la cantidad resultante, que el caller usa como
// snapshot Remaining de su asiento. Debe ejecutarse con repositorios atados
// a la transacción del caller.
func (s *Store) AdjustInTx(
	itemRepo repository.ItemRepository,
	itemID string,
	delta decimal.Decimal,
	mode AdjustMode,
	now time.Time,
) (decimal.Decimal, error) {
	item, err := itemRepo.GetByIDForUpdate(itemID)
	if err != nil {
		return decimal.Zero, err
	}
	if item == nil {
		return decimal.Zero, domain.ErrNotFound
	}

	newQty := item.Quantity.Add(delta)
	if newQty.LessThan(decimal.Zero) {
		if mode == Strict {
			return decimal.Zero, &domain.InsufficientStockError{
				ItemID:    itemID,
				Available: item.Quantity,
				Requested: delta.Neg(),
			}
		}
		newQty = decimal.Zero
	}

	var lastRestocked *time.Time
	if delta.GreaterThan(decimal.Zero) {
		lastRestocked = &now
	}
	if err := itemRepo.UpdateQuantity(itemID, newQty, lastRestocked); err != nil {
		return decimal.Zero, err
	}
	return newQty, nil
}
