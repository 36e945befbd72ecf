package ledgerbook

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/textil-ledger/internal/domain/entity"
)

// Replay suma los deltas de los asientos en orden de commit (el orden en que
// llegan) y devuelve la cantidad resultante. La propiedad que audita el
// validador: para cualquier ítem, Replay de todos sus asientos reproduce
// exactamente su cantidad actual.
func Replay(entries []*entity.LedgerEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Quantity)
	}
	return total
}

// SnapshotsConsistent verifica que el snapshot Remaining de cada asiento
// coincida con la suma acumulada de deltas hasta ese punto.
func SnapshotsConsistent(entries []*entity.LedgerEntry) bool {
	running := decimal.Zero
	for _, e := range entries {
		running = running.Add(e.Quantity)
		if !e.Remaining.Equal(running) {
			return false
		}
	}
	return true
}
