package pricing

import "github.com/shopspring/decimal"

// RoundMoney redondea a 2 decimales con half-up (servicio de dominio).
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineSubtotal calcula el subtotal de una línea:
// cantidad * precio - descuento + impuesto, redondeado a 2 decimales.
func LineSubtotal(qty, unitPrice, discount, tax decimal.Decimal) decimal.Decimal {
	return RoundMoney(qty.Mul(unitPrice).Sub(discount).Add(tax))
}

// OrderTotal calcula el total de la orden desde la suma de subtotales
// corregidos más descuento/impuesto a nivel de orden.
func OrderTotal(sumSubtotals, discount, tax decimal.Decimal) decimal.Decimal {
	return RoundMoney(sumSubtotals.Sub(discount).Add(tax))
}

// Policy umbrales de conciliación aritmética. La tolerancia y el límite de
// autocorrección son decisión de producto, por eso vienen de configuración y
// no de constantes.
type Policy struct {
	Tolerance        decimal.Decimal // diferencia aceptada sin corrección (ej. 0.01)
	AutoCorrectLimit decimal.Decimal // diferencia máxima autocorregible (ej. 5.00)
}

// Reconcile compara el monto enviado por el caller contra el recalculado.
// Devuelve el monto a usar, si hubo corrección, y error si la diferencia
// supera el límite autocorregible (error estructural, no se acepta).
func (p Policy) Reconcile(supplied, computed decimal.Decimal) (decimal.Decimal, bool, bool) {
	diff := supplied.Sub(computed).Abs()
	if diff.LessThanOrEqual(p.Tolerance) {
		return computed, false, true
	}
	if diff.LessThanOrEqual(p.AutoCorrectLimit) {
		return computed, true, true
	}
	return supplied, false, false
}

// WithinTolerance indica si dos montos coinciden dentro de la tolerancia.
func (p Policy) WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(p.Tolerance)
}

// WeightedAverageCost costo promedio ponderado tras una entrada:
// ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func WeightedAverageCost(currentQty, currentCost, inQty, inCost decimal.Decimal) decimal.Decimal {
	sum := currentQty.Add(inQty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := currentQty.Mul(currentCost).Add(inQty.Mul(inCost))
	return num.Div(sum)
}
