package ledgerview_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/textil-ledger/internal/application/ledgerview"
	"github.com/tu-usuario/textil-ledger/internal/domain"
	"github.com/tu-usuario/textil-ledger/internal/domain/entity"
	"github.com/tu-usuario/textil-ledger/internal/testutil"
)

func newView(mem *testutil.Mem, production bool) *ledgerview.ViewUseCase {
	return ledgerview.NewViewUseCase(
		testutil.NewLedgerRepo(mem),
		testutil.NewOrderRepo(mem),
		testutil.NewProductionRepo(mem),
		production,
	)
}

func TestGetEntry_Orden(t *testing.T) {
	mem := testutil.NewMem()
	require.NoError(t, testutil.NewOrderRepo(mem).Create(&entity.Order{
		ID: "ord-1", Number: "SO-100", CustomerID: "cli-1",
		Date:          time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Total:         decimal.RequireFromString("250"),
		PaymentStatus: entity.OrderPaymentPaid, IdempotencyKey: "k1",
	}))

	out, err := newView(mem, true).GetEntry(context.Background(), ledgerview.KindOrder, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", out.Date)
	assert.Contains(t, out.Description, "SO-100")
	assert.True(t, decimal.RequireFromString("250").Equal(out.Amount))
}

func TestGetEntry_FaltanteEnDesarrolloEsPlaceholder(t *testing.T) {
	out, err := newView(testutil.NewMem(), false).GetEntry(context.Background(), ledgerview.KindLedger, "no-existe")
	require.NoError(t, err)
	assert.True(t, out.Placeholder)
	assert.Equal(t, "no-existe", out.ID)
}

func TestGetEntry_FaltanteEnProduccionEsNotFound(t *testing.T) {
	_, err := newView(testutil.NewMem(), true).GetEntry(context.Background(), ledgerview.KindLedger, "no-existe")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestGetEntry_TipoDesconocido(t *testing.T) {
	_, err := newView(testutil.NewMem(), true).GetEntry(context.Background(), "factura", "x")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
