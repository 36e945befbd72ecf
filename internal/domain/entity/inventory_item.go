package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de ítem de inventario.
const (
	CategoryRawThread = "RAW_THREAD" // hilo crudo
	CategoryFabric    = "FABRIC"     // tela
	CategoryDyedGood  = "DYED_GOOD"  // producto teñido (derivado de producción)
)

// Estados de variante del material respecto al teñido.
const (
	VariantRaw     = "RAW"     // material en estado crudo, apto para teñir
	VariantColored = "COLORED" // ya teñido; no puede volver a entrar a un lote
)

// InventoryItem representa una unidad de stock con cantidad controlada
// (materia prima o producto transformado). Invariante: Quantity nunca es
// negativa y todo cambio de Quantity va acompañado de exactamente un
// LedgerEntry en la misma transacción.
type InventoryItem struct {
	ID              string
	Code            string // código único del ítem
	Category        string
	Name            string
	Quantity        decimal.Decimal
	Unit            string // metros, kilos, unidades
	CostPerUnit     decimal.Decimal
	SalePrice       decimal.Decimal
	MinStockLevel   decimal.Decimal
	VariantState    string  // RAW | COLORED
	Color           string  // vacío mientras VariantState = RAW
	SourceItemID    *string // para derivados: ítem crudo del que proviene
	LastRestockedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BelowMinimum indica si el ítem está por debajo de su stock mínimo.
func (i *InventoryItem) BelowMinimum() bool {
	return i.Quantity.LessThan(i.MinStockLevel)
}
