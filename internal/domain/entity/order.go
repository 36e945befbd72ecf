package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de pago de una orden.
const (
	OrderPaymentPending   = "PENDING"
	OrderPaymentPartial   = "PARTIAL"
	OrderPaymentPaid      = "PAID"
	OrderPaymentCancelled = "CANCELLED"
)

// Order orden de venta. Invariante: Total = Σ subtotales de líneas ajustado
// por Discount/Tax de la orden, dentro de la tolerancia de redondeo; una
// orden con una IdempotencyKey dada se crea a lo sumo una vez.
type Order struct {
	ID             string
	Number         string // único; puede venir del cliente o generarse
	CustomerID     string
	Date           time.Time
	Discount       decimal.Decimal // descuento a nivel de orden
	Tax            decimal.Decimal // impuesto a nivel de orden
	Total          decimal.Decimal
	PaymentStatus  string
	IdempotencyKey string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
