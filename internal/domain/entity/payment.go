package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Modos de pago.
const (
	PaymentModeCash     = "CASH"
	PaymentModeCheque   = "CHEQUE"
	PaymentModeTransfer = "TRANSFER"
)

// Estados de un cheque.
const (
	ChequePending = "PENDING"
	ChequeCleared = "CLEARED"
	ChequeBounced = "BOUNCED"
)

// Payment pago asociado a una orden. Invariante: Amount <= total de la orden;
// los campos de cheque están presentes si y solo si Mode = CHEQUE.
type Payment struct {
	ID           string
	OrderID      string
	Amount       decimal.Decimal
	Mode         string
	ChequeNumber string
	ChequeBank   string
	ChequeStatus string
	CreatedAt    time.Time
}

// HasChequeDetails indica si los campos de cheque están informados.
func (p *Payment) HasChequeDetails() bool {
	return p.ChequeNumber != "" && p.ChequeBank != ""
}
