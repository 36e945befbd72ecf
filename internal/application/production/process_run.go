package production

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/textil-ledger/internal/application/dto"
	"github.com/tu-usuario/textil-ledger/internal/application/inventory"
	"github.com/tu-usuario/textil-ledger/internal/domain"
	"github.com/tu-usuario/textil-ledger/internal/domain/dyeing"
	"github.com/tu-usuario/textil-ledger/internal/domain/entity"
	"github.com/tu-usuario/textil-ledger/internal/domain/repository"
	"github.com/tu-usuario/textil-ledger/pkg/logger"
)

// ProcessRunUseCase procesa corridas de teñido: consume materia prima, calcula
// merma y, al completar, da de alta el ítem derivado con su asiento
// PRODUCTION — todo dentro de una unidad de trabajo. El reprocesamiento de una
// corrida ya COMPLETED es idempotente: se consulta el libro por referencia
// antes de cada efecto secundario.
type ProcessRunUseCase struct {
	txRunner     TxRunner
	itemRepo     repository.ItemRepository
	runRepo      repository.ProductionRepository
	store        *inventory.Store
	minViablePct decimal.Decimal
	log          *logger.Logger
}

// NewProcessRunUseCase construye el caso de uso. minViablePct es el porcentaje
// mínimo de salida para no degradar una corrida COMPLETED a FAILED.
func NewProcessRunUseCase(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	runRepo repository.ProductionRepository,
	store *inventory.Store,
	minViablePct decimal.Decimal,
	log *logger.Logger,
) *ProcessRunUseCase {
	return &ProcessRunUseCase{
		txRunner:     txRunner,
		itemRepo:     itemRepo,
		runRepo:      runRepo,
		store:        store,
		minViablePct: minViablePct,
		log:          log,
	}
}

// Record registra una corrida nueva.
func (uc *ProcessRunUseCase) Record(ctx context.Context, in dto.RecordProductionRequest) (*dto.ProductionRunResponse, error) {
	status := in.Status
	if status == "" {
		status = entity.ProductionPending
	}
	if !validStatus(status) {
		return nil, domain.NewValidationError("status", "estado desconocido")
	}

	now := time.Now()
	run := &entity.ProductionRecord{
		ID:           uuid.New().String(),
		SourceItemID: in.SourceItemID,
		Date:         parseDate(in.Date, now),
		InputQty:     in.InputQty,
		OutputQty:    in.OutputQty,
		Status:       status,
		Color:        in.Color,
		LaborCost:    in.LaborCost,
		MaterialCost: in.MaterialCost,
		Params:       in.Params,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return uc.process(ctx, run, false, in.CommitToInventory, now)
}

// Update actualiza una corrida existente (típicamente PENDING/PARTIAL ->
// COMPLETED o FAILED). Sobre una corrida terminal solo se admite reasertar el
// mismo estado, y eso devuelve el estado vigente sin tocar cantidades, merma
// ni inventario: el historial de una corrida cerrada no se reescribe.
func (uc *ProcessRunUseCase) Update(ctx context.Context, id string, in dto.RecordProductionRequest) (*dto.ProductionRunResponse, error) {
	run, err := uc.runRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, domain.ErrNotFound
	}
	status := in.Status
	if status == "" {
		status = run.Status
	}
	if !validStatus(status) {
		return nil, domain.NewValidationError("status", "estado desconocido")
	}
	if !entity.CanTransition(run.Status, status) {
		return nil, domain.NewValidationError("status",
			fmt.Sprintf("transición inválida %s -> %s", run.Status, status))
	}
	// Reintento idempotente sobre estado terminal: no-op.
	if entity.IsTerminal(run.Status) {
		return uc.Get(ctx, id)
	}

	now := time.Now()
	run.Status = status
	if !in.InputQty.IsZero() {
		run.InputQty = in.InputQty
	}
	run.OutputQty = in.OutputQty
	if !in.LaborCost.IsZero() {
		run.LaborCost = in.LaborCost
	}
	if !in.MaterialCost.IsZero() {
		run.MaterialCost = in.MaterialCost
	}
	if in.Color != "" {
		run.Color = in.Color
	}
	if len(in.Params) > 0 {
		run.Params = in.Params
	}
	run.UpdatedAt = now
	return uc.process(ctx, run, true, in.CommitToInventory, now)
}

// Get devuelve la corrida con su resumen y el snapshot actual de inventario.
func (uc *ProcessRunUseCase) Get(ctx context.Context, id string) (*dto.ProductionRunResponse, error) {
	run, err := uc.runRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, domain.ErrNotFound
	}
	snap := dto.InventorySnapshot{SourceItemID: run.SourceItemID}
	if src, err := uc.itemRepo.GetByID(run.SourceItemID); err == nil && src != nil {
		snap.SourceBefore = src.Quantity
		snap.SourceAfter = src.Quantity
	}
	if run.OutputItemID != nil {
		if out, err := uc.itemRepo.GetByID(*run.OutputItemID); err == nil && out != nil {
			snap.OutputItemID = out.ID
			snap.OutputBefore = out.Quantity
			snap.OutputAfter = out.Quantity
		}
	}
	return toResponse(run, snap), nil
}

// process aplica validaciones y ejecuta la unidad de trabajo.
func (uc *ProcessRunUseCase) process(ctx context.Context, run *entity.ProductionRecord, existing, commitOutput bool, now time.Time) (*dto.ProductionRunResponse, error) {
	if run.SourceItemID == "" {
		return nil, domain.NewValidationError("source_item_id", "es obligatorio")
	}
	yield, err := dyeing.Compute(run.InputQty, run.OutputQty)
	if err != nil {
		return nil, err
	}
	run.Wastage = yield.Wastage
	run.WastagePct = yield.WastagePct
	run.TotalCost = run.LaborCost.Add(run.MaterialCost)

	// Salida por debajo del mínimo viable: la corrida se degrada a FAILED.
	// La merma es pérdida total; el consumo ya comprometido no se revierte.
	if run.Status == entity.ProductionCompleted &&
		!dyeing.MeetsMinimumViable(run.InputQty, run.OutputQty, uc.minViablePct) {
		uc.log.Warn().
			Str("run_id", run.ID).
			Str("output_qty", run.OutputQty.String()).
			Str("input_qty", run.InputQty.String()).
			Msg("salida bajo el mínimo viable, corrida marcada FAILED")
		run.Status = entity.ProductionFailed
	}
	if run.Status == entity.ProductionCompleted && run.CompletedAt == nil {
		run.CompletedAt = &now
	}
	if run.Status == entity.ProductionCompleted && run.Color == "" && commitOutput {
		return nil, domain.NewValidationError("color", "es obligatorio para comprometer la salida a inventario")
	}

	// Lectura previa fuera de la tx; las condiciones se reverifican adentro
	// con la fila bloqueada.
	source, err := uc.itemRepo.GetByID(run.SourceItemID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, domain.ErrReferenceNotFound
	}

	snap := dto.InventorySnapshot{SourceItemID: run.SourceItemID}

	err = uc.txRunner.RunProduction(ctx, func(
		itemRepo repository.ItemRepository,
		ledgerRepo repository.LedgerRepository,
		runRepo repository.ProductionRepository,
	) error {
		entries, err := ledgerRepo.FindByReference(entity.RefKindProduction, run.ID)
		if err != nil {
			return err
		}
		hasConsumption, hasProduction := false, false
		for _, e := range entries {
			switch e.Kind {
			case entity.EntryKindConsumption:
				hasConsumption = true
			case entity.EntryKindProduction:
				hasProduction = true
			}
		}

		// La corrida se persiste antes que sus asientos (son FK a ella).
		if existing {
			if err := runRepo.Update(run); err != nil {
				return err
			}
		} else {
			if err := runRepo.Create(run); err != nil {
				return err
			}
		}

		if run.Status != entity.ProductionPending && !hasConsumption {
			src, err := itemRepo.GetByIDForUpdate(run.SourceItemID)
			if err != nil {
				return err
			}
			if src == nil {
				return domain.ErrReferenceNotFound
			}
			if src.VariantState != entity.VariantRaw {
				return domain.NewValidationError("source_item_id", "el material ya fue teñido")
			}
			newQty, err := uc.store.AdjustInTx(itemRepo, src.ID, run.InputQty.Neg(), inventory.Strict, now)
			if err != nil {
				return err
			}
			snap.SourceBefore = newQty.Add(run.InputQty)
			snap.SourceAfter = newQty
			if err := ledgerRepo.Create(&entity.LedgerEntry{
				ID:        uuid.New().String(),
				ItemID:    src.ID,
				Kind:      entity.EntryKindConsumption,
				Quantity:  run.InputQty.Neg(),
				Remaining: newQty,
				UnitCost:  src.CostPerUnit,
				TotalCost: run.InputQty.Neg().Mul(src.CostPerUnit),
				RefKind:   entity.RefKindProduction,
				RefID:     run.ID,
				Note:      "consumo lote de teñido",
				Date:      now,
				CreatedAt: now,
			}); err != nil {
				return err
			}
		} else {
			cur, err := itemRepo.GetByID(run.SourceItemID)
			if err != nil {
				return err
			}
			if cur != nil {
				snap.SourceBefore = cur.Quantity
				snap.SourceAfter = cur.Quantity
			}
		}

		if run.Status == entity.ProductionCompleted && commitOutput && !hasProduction {
			out, err := uc.ensureDerivedItem(itemRepo, source, run, now)
			if err != nil {
				return err
			}
			newQty, err := uc.store.AdjustInTx(itemRepo, out.ID, run.OutputQty, inventory.Strict, now)
			if err != nil {
				return err
			}
			snap.OutputItemID = out.ID
			snap.OutputBefore = newQty.Sub(run.OutputQty)
			snap.OutputAfter = newQty
			if err := ledgerRepo.Create(&entity.LedgerEntry{
				ID:        uuid.New().String(),
				ItemID:    out.ID,
				Kind:      entity.EntryKindProduction,
				Quantity:  run.OutputQty,
				Remaining: newQty,
				UnitCost:  out.CostPerUnit,
				TotalCost: run.OutputQty.Mul(out.CostPerUnit),
				RefKind:   entity.RefKindProduction,
				RefID:     run.ID,
				Note:      "salida lote de teñido",
				Date:      now,
				CreatedAt: now,
			}); err != nil {
				return err
			}
			run.OutputItemID = &out.ID
			run.UpdatedAt = now
			if err := runRepo.Update(run); err != nil {
				return err
			}
			// El material fuente queda marcado como teñido.
			if err := itemRepo.UpdateVariantState(run.SourceItemID, entity.VariantColored, run.Color); err != nil {
				return err
			}
		} else if run.OutputItemID != nil {
			if out, err := itemRepo.GetByID(*run.OutputItemID); err == nil && out != nil {
				snap.OutputItemID = out.ID
				snap.OutputBefore = out.Quantity
				snap.OutputAfter = out.Quantity
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toResponse(run, snap), nil
}

// ensureDerivedItem busca el ítem derivado por (categoría, origen, color) o lo
// crea con cantidad cero. El costo unitario del derivado absorbe el costo del
// material consumido más mano de obra e insumos, repartido sobre la salida.
func (uc *ProcessRunUseCase) ensureDerivedItem(
	itemRepo repository.ItemRepository,
	source *entity.InventoryItem,
	run *entity.ProductionRecord,
	now time.Time,
) (*entity.InventoryItem, error) {
	out, err := itemRepo.FindDerived(entity.CategoryDyedGood, source.ID, run.Color)
	if err != nil {
		return nil, err
	}
	if out != nil {
		return out, nil
	}
	unitCost := decimal.Zero
	if run.OutputQty.GreaterThan(decimal.Zero) {
		consumed := run.InputQty.Mul(source.CostPerUnit)
		unitCost = consumed.Add(run.TotalCost).Div(run.OutputQty).Round(4)
	}
	sourceID := source.ID
	out = &entity.InventoryItem{
		ID:            uuid.New().String(),
		Code:          fmt.Sprintf("%s-%s", source.Code, strings.ToUpper(run.Color)),
		Category:      entity.CategoryDyedGood,
		Name:          fmt.Sprintf("%s (%s)", source.Name, run.Color),
		Quantity:      decimal.Zero,
		Unit:          source.Unit,
		CostPerUnit:   unitCost,
		SalePrice:     source.SalePrice,
		MinStockLevel: decimal.Zero,
		VariantState:  entity.VariantColored,
		Color:         run.Color,
		SourceItemID:  &sourceID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := itemRepo.Create(out); err != nil {
		return nil, err
	}
	return out, nil
}

func validStatus(s string) bool {
	switch s {
	case entity.ProductionPending, entity.ProductionPartial,
		entity.ProductionCompleted, entity.ProductionFailed:
		return true
	}
	return false
}

func parseDate(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fallback
	}
	return d
}

func toResponse(run *entity.ProductionRecord, snap dto.InventorySnapshot) *dto.ProductionRunResponse {
	resp := &dto.ProductionRunResponse{
		ID:           run.ID,
		SourceItemID: run.SourceItemID,
		Date:         run.Date.Format("2006-01-02"),
		InputQty:     run.InputQty,
		OutputQty:    run.OutputQty,
		Status:       run.Status,
		Color:        run.Color,
		LaborCost:    run.LaborCost,
		MaterialCost: run.MaterialCost,
		TotalCost:    run.TotalCost,
		Wastage:      dto.WastageSummary{Amount: run.Wastage, Pct: run.WastagePct},
		Inventory:    snap,
	}
	if run.OutputItemID != nil {
		resp.OutputItemID = *run.OutputItemID
	}
	if run.CompletedAt != nil {
		resp.CompletedAt = run.CompletedAt.Format(time.RFC3339)
	}
	return resp
}
