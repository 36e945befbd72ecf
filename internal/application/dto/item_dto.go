package dto

import "github.com/shopspring/decimal"

// ReceiveItemRequest body para POST /api/items: primera recepción de
// material o reposición de un ítem existente (misma transacción que su
// asiento RECEIPT).
type ReceiveItemRequest struct {
	Code          string          `json:"code"`
	Category      string          `json:"category"`
	Name          string          `json:"name"`
	Quantity      decimal.Decimal `json:"quantity"`
	Unit          string          `json:"unit"`
	CostPerUnit   decimal.Decimal `json:"cost_per_unit"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
	PurchaseID    string          `json:"purchase_id,omitempty"` // referencia del asiento RECEIPT
	Note          string          `json:"note,omitempty"`
}

// ItemResponse ítem de inventario.
type ItemResponse struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	Category      string          `json:"category"`
	Name          string          `json:"name"`
	Quantity      decimal.Decimal `json:"quantity"`
	Unit          string          `json:"unit"`
	CostPerUnit   decimal.Decimal `json:"cost_per_unit"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
	VariantState  string          `json:"variant_state"`
	Color         string          `json:"color,omitempty"`
	BelowMinimum  bool            `json:"below_minimum"`
	LastRestocked string          `json:"last_restocked,omitempty"`
}

// MovementResponse asiento del libro visto desde un ítem.
type MovementResponse struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Quantity  decimal.Decimal `json:"quantity"`
	Remaining decimal.Decimal `json:"remaining"`
	RefKind   string          `json:"ref_kind,omitempty"`
	RefID     string          `json:"ref_id,omitempty"`
	Note      string          `json:"note,omitempty"`
	Date      string          `json:"date"`
}
