package dto

import "github.com/shopspring/decimal"

// OrderLineRequest línea de una orden entrante. SourceKind/SourceID declaran
// el origen (RAW = lote de materia prima, TRANSFORMED = corrida de
// producción); ItemID es la vinculación opcional a inventario.
type OrderLineRequest struct {
	SourceKind string          `json:"source_kind"`
	SourceID   string          `json:"source_id"`
	ItemID     string          `json:"item_id,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Discount   decimal.Decimal `json:"discount"`
	Tax        decimal.Decimal `json:"tax"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// SubmitOrderRequest body para POST /api/orders.
type SubmitOrderRequest struct {
	CustomerID     string             `json:"customer_id"`
	Number         string             `json:"number,omitempty"`
	Date           string             `json:"date,omitempty"` // YYYY-MM-DD; vacío = hoy
	Items          []OrderLineRequest `json:"items"`
	Discount       decimal.Decimal    `json:"discount"`
	Tax            decimal.Decimal    `json:"tax"`
	Total          decimal.Decimal    `json:"total"`
	PaymentStatus  string             `json:"payment_status"`
	PaymentMode    string             `json:"payment_mode,omitempty"`
	PaymentAmount  *decimal.Decimal   `json:"payment_amount,omitempty"`
	ChequeNumber   string             `json:"cheque_number,omitempty"`
	ChequeBank     string             `json:"cheque_bank,omitempty"`
	IdempotencyKey string             `json:"idempotency_key"`
}

// OrderItemResponse línea resuelta de la orden.
type OrderItemResponse struct {
	ID         string          `json:"id"`
	SourceKind string          `json:"source_kind"`
	SourceID   string          `json:"source_id"`
	ItemID     string          `json:"item_id,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Discount   decimal.Decimal `json:"discount"`
	Tax        decimal.Decimal `json:"tax"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// PaymentResponse pago asociado a la orden.
type PaymentResponse struct {
	ID           string          `json:"id"`
	Amount       decimal.Decimal `json:"amount"`
	Mode         string          `json:"mode"`
	ChequeNumber string          `json:"cheque_number,omitempty"`
	ChequeBank   string          `json:"cheque_bank,omitempty"`
	ChequeStatus string          `json:"cheque_status,omitempty"`
}

// OrderResponse orden creada (o duplicado resuelto por idempotency key).
type OrderResponse struct {
	ID            string              `json:"id"`
	Number        string              `json:"number"`
	CustomerID    string              `json:"customer_id"`
	Date          string              `json:"date"`
	Discount      decimal.Decimal     `json:"discount"`
	Tax           decimal.Decimal     `json:"tax"`
	Total         decimal.Decimal     `json:"total"`
	PaymentStatus string              `json:"payment_status"`
	Items         []OrderItemResponse `json:"items"`
	Payment       *PaymentResponse    `json:"payment,omitempty"`
}
