package repository

import "github.com/tu-usuario/textil-ledger/internal/domain/entity"

// LedgerRepository puerto del libro de movimientos (append-only).
// Create es inserción pura, sin lógica de negocio: el par asiento/ajuste es
// una decisión atómica del caso de uso, no del repositorio.
type LedgerRepository interface {
	Create(entry *entity.LedgerEntry) error
	GetByID(id string) (*entity.LedgerEntry, error)
	// ListByItem devuelve los asientos de un ítem del más antiguo al más
	// reciente, para replay y auditoría.
	ListByItem(itemID string) ([]*entity.LedgerEntry, error)
	// FindByReference busca asientos por entidad causante (señal de
	// idempotencia a nivel de entidad, independiente de la idempotency key).
	FindByReference(refKind, refID string) ([]*entity.LedgerEntry, error)
}
