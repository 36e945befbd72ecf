package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de asiento del libro de inventario.
const (
	EntryKindReceipt     = "RECEIPT"     // entrada de material
	EntryKindConsumption = "CONSUMPTION" // consumo por producción
	EntryKindProduction  = "PRODUCTION"  // salida de un lote de teñido
	EntryKindSale        = "SALE"        // venta
	EntryKindAdjustment  = "ADJUSTMENT"  // ajuste compensatorio
)

// Tipos de entidad causante de un asiento (referencia).
const (
	RefKindPurchase   = "PURCHASE"
	RefKindProduction = "PRODUCTION"
	RefKindOrder      = "ORDER"
	RefKindAdjustment = "ADJUSTMENT"
)

// LedgerEntry asiento inmutable del libro: un cambio de cantidad de un ítem.
// Remaining es el snapshot de cantidad restante leído en la misma transacción
// que aplicó el ajuste; solo tiene sentido en el orden total de commits.
// Las correcciones se hacen con un asiento compensatorio, nunca editando
// la historia.
type LedgerEntry struct {
	ID        string
	ItemID    string
	Kind      string
	Quantity  decimal.Decimal // delta con signo: positivo entrada, negativo salida
	Remaining decimal.Decimal // cantidad del ítem después de aplicar el delta
	UnitCost  decimal.Decimal
	TotalCost decimal.Decimal
	RefKind   string // PURCHASE | PRODUCTION | ORDER | ADJUSTMENT
	RefID     string // id de la entidad causante
	Note      string
	Date      time.Time
	CreatedAt time.Time
}
