package dto

import "github.com/shopspring/decimal"

// LedgerEntryView vista normalizada de un registro del libro por clave
// compuesta (tipo + id), para render uniforme de tipos heterogéneos.
// Placeholder indica un registro faltante tolerado fuera de producción.
type LedgerEntryView struct {
	Kind        string          `json:"kind"` // ledger | order | production | payment
	ID          string          `json:"id"`
	Date        string          `json:"date,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity,omitempty"`
	Amount      decimal.Decimal `json:"amount,omitempty"`
	RefKind     string          `json:"ref_kind,omitempty"`
	RefID       string          `json:"ref_id,omitempty"`
	Placeholder bool            `json:"placeholder,omitempty"`
}

// CustomerRequest body para POST /api/customers.
type CustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// CustomerResponse cliente.
type CustomerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}
