package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/textil-ledger/internal/application/dto"
	"github.com/tu-usuario/textil-ledger/internal/domain"
	"github.com/tu-usuario/textil-ledger/internal/domain/entity"
	"github.com/tu-usuario/textil-ledger/internal/domain/pricing"
	"github.com/tu-usuario/textil-ledger/internal/domain/repository"
)

// ReceiveItemUseCase registra la recepción de material: crea el ítem en su
// primera entrada o repone uno existente, siempre con su asiento RECEIPT en
// la misma transacción. El costo por unidad se recalcula como promedio
// ponderado en cada entrada.
type ReceiveItemUseCase struct {
	txRunner TxRunner
	store    *Store
}

// NewReceiveItemUseCase construye el caso de uso.
func NewReceiveItemUseCase(txRunner TxRunner, store *Store) *ReceiveItemUseCase {
	return &ReceiveItemUseCase{txRunner: txRunner, store: store}
}

// Receive valida la entrada y ejecuta alta/reposición + asiento en una tx.
func (uc *ReceiveItemUseCase) Receive(ctx context.Context, in dto.ReceiveItemRequest) (*dto.ItemResponse, error) {
	if in.Code == "" {
		return nil, domain.NewValidationError("code", "es obligatorio")
	}
	if in.Name == "" {
		return nil, domain.NewValidationError("name", "es obligatorio")
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	if in.CostPerUnit.LessThan(decimal.Zero) {
		return nil, domain.NewValidationError("cost_per_unit", "no puede ser negativo")
	}
	switch in.Category {
	case entity.CategoryRawThread, entity.CategoryFabric, entity.CategoryDyedGood:
	default:
		return nil, domain.NewValidationError("category", "categoría desconocida")
	}

	now := time.Now()
	refID := in.PurchaseID
	if refID == "" {
		refID = uuid.New().String()
	}

	var item *entity.InventoryItem
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		existing, err := itemRepo.GetByCode(in.Code)
		if err != nil {
			return err
		}
		if existing == nil {
			existing = &entity.InventoryItem{
				ID:            uuid.New().String(),
				Code:          in.Code,
				Category:      in.Category,
				Name:          in.Name,
				Quantity:      decimal.Zero,
				Unit:          in.Unit,
				CostPerUnit:   in.CostPerUnit,
				SalePrice:     in.SalePrice,
				MinStockLevel: in.MinStockLevel,
				VariantState:  entity.VariantRaw,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := itemRepo.Create(existing); err != nil {
				return err
			}
		} else {
			newCost := pricing.WeightedAverageCost(existing.Quantity, existing.CostPerUnit, in.Quantity, in.CostPerUnit)
			if err := itemRepo.UpdateCost(existing.ID, newCost); err != nil {
				return err
			}
			existing.CostPerUnit = newCost
		}

		newQty, err := uc.store.AdjustInTx(itemRepo, existing.ID, in.Quantity, Strict, now)
		if err != nil {
			return err
		}
		existing.Quantity = newQty
		existing.LastRestockedAt = &now
		item = existing

		return ledgerRepo.Create(&entity.LedgerEntry{
			ID:        uuid.New().String(),
			ItemID:    existing.ID,
			Kind:      entity.EntryKindReceipt,
			Quantity:  in.Quantity,
			Remaining: newQty,
			UnitCost:  in.CostPerUnit,
			TotalCost: in.Quantity.Mul(in.CostPerUnit),
			RefKind:   entity.RefKindPurchase,
			RefID:     refID,
			Note:      in.Note,
			Date:      now,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return ItemToResponse(item), nil
}

// ItemToResponse mapea la entidad al DTO de respuesta.
func ItemToResponse(item *entity.InventoryItem) *dto.ItemResponse {
	resp := &dto.ItemResponse{
		ID:            item.ID,
		Code:          item.Code,
		Category:      item.Category,
		Name:          item.Name,
		Quantity:      item.Quantity,
		Unit:          item.Unit,
		CostPerUnit:   item.CostPerUnit,
		SalePrice:     item.SalePrice,
		MinStockLevel: item.MinStockLevel,
		VariantState:  item.VariantState,
		Color:         item.Color,
		BelowMinimum:  item.BelowMinimum(),
	}
	if item.LastRestockedAt != nil {
		resp.LastRestocked = item.LastRestockedAt.Format("2006-01-02")
	}
	return resp
}
