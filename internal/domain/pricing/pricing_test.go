package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/textil-ledger/internal/domain/pricing"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRoundMoney_HalfUp(t *testing.T) {
	// half-up en el límite: .005 sube, no banca
	assert.True(t, dec("10.01").Equal(pricing.RoundMoney(dec("10.005"))))
	assert.True(t, dec("10.00").Equal(pricing.RoundMoney(dec("10.004"))))
	assert.True(t, dec("-10.01").Equal(pricing.RoundMoney(dec("-10.005"))))
}

func TestLineSubtotal_ConDescuentoEImpuesto(t *testing.T) {
	// 3 * 33.333 = 99.999 -> -5 + 2.50 = 97.499 -> 97.50
	got := pricing.LineSubtotal(dec("3"), dec("33.333"), dec("5"), dec("2.50"))
	assert.True(t, dec("97.50").Equal(got), "got %s", got)
}

func TestOrderTotal_SumaYAjustes(t *testing.T) {
	got := pricing.OrderTotal(dec("250.555"), dec("10"), dec("19.90"))
	assert.True(t, dec("260.46").Equal(got), "got %s", got)
}

func TestPolicy_Reconcile(t *testing.T) {
	p := pricing.Policy{Tolerance: dec("0.01"), AutoCorrectLimit: dec("5.00")}

	t.Run("dentro de tolerancia usa el recalculado sin marcar corrección", func(t *testing.T) {
		value, adjusted, ok := p.Reconcile(dec("100.01"), dec("100.00"))
		assert.True(t, ok)
		assert.False(t, adjusted)
		assert.True(t, dec("100.00").Equal(value))
	})

	t.Run("diferencia autocorregible marca la corrección", func(t *testing.T) {
		value, adjusted, ok := p.Reconcile(dec("103.50"), dec("100.00"))
		assert.True(t, ok)
		assert.True(t, adjusted)
		assert.True(t, dec("100.00").Equal(value))
	})

	t.Run("diferencia estructural se rechaza", func(t *testing.T) {
		_, adjusted, ok := p.Reconcile(dec("200.00"), dec("100.00"))
		assert.False(t, ok)
		assert.False(t, adjusted)
	})
}

func TestWeightedAverageCost(t *testing.T) {
	// (100*10 + 50*16) / 150 = 1800/150 = 12
	got := pricing.WeightedAverageCost(dec("100"), dec("10"), dec("50"), dec("16"))
	assert.True(t, dec("12").Equal(got), "got %s", got)

	// sin stock previo, el costo es el de la entrada
	got = pricing.WeightedAverageCost(decimal.Zero, decimal.Zero, dec("50"), dec("16"))
	assert.True(t, dec("16").Equal(got))
}
