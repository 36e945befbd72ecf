package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un lote de producción (teñido).
const (
	ProductionPending   = "PENDING"
	ProductionPartial   = "PARTIAL"
	ProductionCompleted = "COMPLETED"
	ProductionFailed    = "FAILED"
)

// ProductionRecord registra una corrida de teñido: consume InputQty del ítem
// fuente y produce OutputQty del ítem derivado. Invariante: OutputQty <=
// InputQty; Wastage = InputQty - OutputQty >= 0. Solo un registro COMPLETED
// puede generar el ítem derivado y su asiento PRODUCTION.
type ProductionRecord struct {
	ID           string
	SourceItemID string
	Date         time.Time
	InputQty     decimal.Decimal
	OutputQty    decimal.Decimal
	Wastage      decimal.Decimal
	WastagePct   decimal.Decimal
	Status       string
	Color        string // color/variante del lote
	LaborCost    decimal.Decimal
	MaterialCost decimal.Decimal
	TotalCost    decimal.Decimal
	OutputItemID *string // ítem derivado creado al completar (si se pidió)
	CompletedAt  *time.Time
	Params       json.RawMessage // parámetros libres del proceso (temperatura, tinte, etc.)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanTransition valida la máquina de estados: PENDING -> {PARTIAL, COMPLETED,
// FAILED}; PARTIAL -> COMPLETED; COMPLETED y FAILED son terminales (repetir el
// mismo estado terminal es válido para reintentos idempotentes).
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	switch from {
	case ProductionPending:
		return to == ProductionPartial || to == ProductionCompleted || to == ProductionFailed
	case ProductionPartial:
		return to == ProductionCompleted
	}
	return false
}

// IsTerminal indica si el estado no admite más transiciones (salvo repetirse).
func IsTerminal(status string) bool {
	return status == ProductionCompleted || status == ProductionFailed
}
