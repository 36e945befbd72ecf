package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/textil-ledger/internal/domain/entity"
)

// ItemRepository puerto de persistencia para ítems de inventario.
// Nadie escribe quantity directamente fuera de UpdateQuantity: toda mutación
// de cantidad pasa por el caso de uso del Inventory Store, dentro de una
// transacción, con la fila bloqueada.
type ItemRepository interface {
	Create(item *entity.InventoryItem) error
	GetByID(id string) (*entity.InventoryItem, error)
	GetByCode(code string) (*entity.InventoryItem, error)
	// GetByIDForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetByIDForUpdate(id string) (*entity.InventoryItem, error)
	// UpdateQuantity fija la cantidad ya calculada; lastRestocked solo se
	// informa cuando el delta fue positivo.
	UpdateQuantity(id string, qty decimal.Decimal, lastRestocked *time.Time) error
	// UpdateVariantState cambia el estado de variante (RAW -> COLORED).
	UpdateVariantState(id, state, color string) error
	// UpdateCost actualiza el costo promedio ponderado del ítem.
	UpdateCost(id string, cost decimal.Decimal) error
	// FindDerived busca el ítem derivado por (categoría, ítem origen, color).
	FindDerived(category, sourceItemID, color string) (*entity.InventoryItem, error)
	List(limit, offset int) ([]*entity.InventoryItem, error)
}
