package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// RecordProductionRequest body para POST /api/production-runs
// (y PUT /api/production-runs/:id para actualizar estado/salida).
type RecordProductionRequest struct {
	SourceItemID      string          `json:"source_item_id"`
	Date              string          `json:"date,omitempty"` // YYYY-MM-DD; vacío = hoy
	InputQty          decimal.Decimal `json:"input_qty"`
	OutputQty         decimal.Decimal `json:"output_qty"`
	LaborCost         decimal.Decimal `json:"labor_cost"`
	MaterialCost      decimal.Decimal `json:"material_cost"`
	Status            string          `json:"status"`
	Color             string          `json:"color,omitempty"`
	CommitToInventory bool            `json:"commit_to_inventory"`
	Params            json.RawMessage `json:"params,omitempty"`
}

// WastageSummary resumen de merma de la corrida.
type WastageSummary struct {
	Amount decimal.Decimal `json:"amount"`
	Pct    decimal.Decimal `json:"pct"`
}

// InventorySnapshot antes/después de las cantidades afectadas.
type InventorySnapshot struct {
	SourceItemID string          `json:"source_item_id"`
	SourceBefore decimal.Decimal `json:"source_before"`
	SourceAfter  decimal.Decimal `json:"source_after"`
	OutputItemID string          `json:"output_item_id,omitempty"`
	OutputBefore decimal.Decimal `json:"output_before"`
	OutputAfter  decimal.Decimal `json:"output_after"`
}

// ProductionRunResponse corrida registrada con resumen de merma y snapshot.
type ProductionRunResponse struct {
	ID           string            `json:"id"`
	SourceItemID string            `json:"source_item_id"`
	Date         string            `json:"date"`
	InputQty     decimal.Decimal   `json:"input_qty"`
	OutputQty    decimal.Decimal   `json:"output_qty"`
	Status       string            `json:"status"`
	Color        string            `json:"color,omitempty"`
	LaborCost    decimal.Decimal   `json:"labor_cost"`
	MaterialCost decimal.Decimal   `json:"material_cost"`
	TotalCost    decimal.Decimal   `json:"total_cost"`
	OutputItemID string            `json:"output_item_id,omitempty"`
	CompletedAt  string            `json:"completed_at,omitempty"`
	Wastage      WastageSummary    `json:"wastage"`
	Inventory    InventorySnapshot `json:"inventory"`
}
