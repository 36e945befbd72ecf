package dyeing

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/textil-ledger/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Yield resultado de una corrida de teñido: merma absoluta y porcentual.
type Yield struct {
	Wastage    decimal.Decimal
	WastagePct decimal.Decimal
}

// Compute valida entrada/salida y calcula la merma.
// Reglas: input > 0; 0 <= output <= input.
func Compute(input, output decimal.Decimal) (Yield, error) {
	if !input.GreaterThan(decimal.Zero) {
		return Yield{}, domain.NewValidationError("input_qty", "debe ser mayor que cero")
	}
	if output.LessThan(decimal.Zero) {
		return Yield{}, domain.NewValidationError("output_qty", "no puede ser negativa")
	}
	if output.GreaterThan(input) {
		return Yield{}, domain.NewValidationError("output_qty", "no puede superar la cantidad de entrada")
	}
	wastage := input.Sub(output)
	pct := wastage.Div(input).Mul(hundred).Round(2)
	return Yield{Wastage: wastage, WastagePct: pct}, nil
}

// MeetsMinimumViable indica si la salida alcanza el porcentaje mínimo viable
// de la entrada (política configurable). Por debajo, la corrida se marca
// FAILED y la merma es pérdida total.
func MeetsMinimumViable(input, output, minViablePct decimal.Decimal) bool {
	if minViablePct.LessThanOrEqual(decimal.Zero) {
		return true
	}
	return output.Mul(hundred).GreaterThanOrEqual(input.Mul(minViablePct))
}
