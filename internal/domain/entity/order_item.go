package entity

import "github.com/shopspring/decimal"

// Tipos de origen de una línea de orden (variante etiquetada: exactamente uno).
const (
	SourceKindRaw         = "RAW"         // lote de materia prima
	SourceKindTransformed = "TRANSFORMED" // salida de un ProductionRecord
)

// SourceRef referencia etiquetada al origen de una línea: o un lote crudo
// (ítem de inventario) o la salida de una corrida de producción. Reemplaza el
// despacho por string de producto repetido en cada rama.
type SourceRef struct {
	Kind string // RAW | TRANSFORMED
	ID   string
}

// Valid verifica que la referencia tenga tipo conocido e id no vacío.
func (s SourceRef) Valid() bool {
	return (s.Kind == SourceKindRaw || s.Kind == SourceKindTransformed) && s.ID != ""
}

// OrderItem línea de una orden. Invariante: cantidad vendida <= cantidad
// disponible del ítem resuelto al momento del commit; Source lleva exactamente
// una de las dos referencias posibles.
type OrderItem struct {
	ID        string
	OrderID   string
	Source    SourceRef
	ItemID    *string // ítem de inventario ligado (si la línea descuenta stock)
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	Tax       decimal.Decimal
	Subtotal  decimal.Decimal
}
