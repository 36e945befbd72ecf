package inventory

import (
	"context"

	"github.com/tu-usuario/textil-ledger/internal/application/dto"
	"github.com/tu-usuario/textil-ledger/internal/domain"
	"github.com/tu-usuario/textil-ledger/internal/domain/entity"
	"github.com/tu-usuario/textil-ledger/internal/domain/repository"
)

// QueryUseCase consultas de solo lectura sobre ítems y su libro de
// movimientos. No abre transacciones: lee el estado confirmado.
type QueryUseCase struct {
	itemRepo   repository.ItemRepository
	ledgerRepo repository.LedgerRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(itemRepo repository.ItemRepository, ledgerRepo repository.LedgerRepository) *QueryUseCase {
	return &QueryUseCase{itemRepo: itemRepo, ledgerRepo: ledgerRepo}
}

// Get devuelve un ítem por id.
func (uc *QueryUseCase) Get(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := uc.itemRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return ItemToResponse(item), nil
}

// List devuelve ítems paginados.
func (uc *QueryUseCase) List(ctx context.Context, limit, offset int) ([]*dto.ItemResponse, error) {
	items, err := uc.itemRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ItemToResponse(item))
	}
	return out, nil
}

// Movements devuelve el libro de un ítem del más antiguo al más reciente.
// El libro es la fuente de verdad auditable: la cantidad actual del ítem
// debe coincidir con el replay de estos asientos.
func (uc *QueryUseCase) Movements(ctx context.Context, itemID string) ([]*dto.MovementResponse, error) {
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	entries, err := uc.ledgerRepo.ListByItem(itemID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.MovementResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, movementToResponse(e))
	}
	return out, nil
}

func movementToResponse(e *entity.LedgerEntry) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:        e.ID,
		Kind:      e.Kind,
		Quantity:  e.Quantity,
		Remaining: e.Remaining,
		RefKind:   e.RefKind,
		RefID:     e.RefID,
		Note:      e.Note,
		Date:      e.Date.Format("2006-01-02"),
	}
}
