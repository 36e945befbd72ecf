package audit

import (
	"context"
	"fmt"

	"github.com/tu-usuario/textil-ledger/internal/domain"
	"github.com/tu-usuario/textil-ledger/internal/domain/entity"
	"github.com/tu-usuario/textil-ledger/internal/domain/ledgerbook"
	"github.com/tu-usuario/textil-ledger/internal/domain/repository"
)

// ValidateRunUseCase barrido de consistencia de solo lectura sobre una corrida
// de producción ya comprometida. Devuelve advertencias, nunca error por
// inconsistencia de negocio (el error queda para fallos de I/O). Es
// advisory: señala deriva de integridad, no la repara.
type ValidateRunUseCase struct {
	runRepo    repository.ProductionRepository
	itemRepo   repository.ItemRepository
	ledgerRepo repository.LedgerRepository
}

// NewValidateRunUseCase construye el validador.
func NewValidateRunUseCase(
	runRepo repository.ProductionRepository,
	itemRepo repository.ItemRepository,
	ledgerRepo repository.LedgerRepository,
) *ValidateRunUseCase {
	return &ValidateRunUseCase{runRepo: runRepo, itemRepo: itemRepo, ledgerRepo: ledgerRepo}
}

// ValidateRun cruza la corrida contra sus entidades referenciadas y el libro.
func (uc *ValidateRunUseCase) ValidateRun(ctx context.Context, runID string) ([]string, error) {
	run, err := uc.runRepo.GetByID(runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, domain.ErrNotFound
	}

	warnings := []string{}

	source, err := uc.itemRepo.GetByID(run.SourceItemID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		warnings = append(warnings, fmt.Sprintf("ítem fuente %s no existe", run.SourceItemID))
	}

	entries, err := uc.ledgerRepo.FindByReference(entity.RefKindProduction, runID)
	if err != nil {
		return nil, err
	}

	consumption, production := 0, 0
	checkedItems := make(map[string]bool)
	for _, e := range entries {
		switch e.Kind {
		case entity.EntryKindConsumption:
			consumption++
		case entity.EntryKindProduction:
			production++
		}
		if checkedItems[e.ItemID] {
			continue
		}
		checkedItems[e.ItemID] = true
		item, err := uc.itemRepo.GetByID(e.ItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			warnings = append(warnings, fmt.Sprintf("asiento %s apunta a ítem inexistente %s", e.ID, e.ItemID))
			continue
		}
		// Propiedad del libro: reproducir los deltas en orden de commit
		// debe dar exactamente la cantidad actual del ítem.
		all, err := uc.ledgerRepo.ListByItem(item.ID)
		if err != nil {
			return nil, err
		}
		if replayed := ledgerbook.Replay(all); !replayed.Equal(item.Quantity) {
			warnings = append(warnings, fmt.Sprintf(
				"ítem %s desbalanceado: replay del libro=%s cantidad actual=%s",
				item.Code, replayed, item.Quantity))
		}
	}

	if run.Status == entity.ProductionCompleted {
		if consumption == 0 {
			warnings = append(warnings, "corrida COMPLETED sin asiento de consumo")
		}
		if production == 0 {
			warnings = append(warnings, "corrida COMPLETED sin asiento de producción")
		}
	}
	if run.Status != entity.ProductionPending && len(entries) == 0 {
		warnings = append(warnings, fmt.Sprintf("corrida %s sin asientos en el libro", run.Status))
	}

	return warnings, nil
}
