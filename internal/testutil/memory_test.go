package testutil_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/textil-ledger/internal/domain"
	"github.com/tu-usuario/textil-ledger/internal/domain/entity"
	"github.com/tu-usuario/textil-ledger/internal/domain/repository"
	"github.com/tu-usuario/textil-ledger/internal/testutil"
)

func seedHilo(mem *testutil.Mem, qty string) {
	mem.SeedItem(&entity.InventoryItem{
		ID:           "hilo-1",
		Code:         "HILO-001",
		Category:     entity.CategoryRawThread,
		Name:         "hilo crudo",
		Quantity:     decimal.RequireFromString(qty),
		VariantState: entity.VariantRaw,
	})
}

func TestTxRunner_ReintentaUnaVezAnteConflicto(t *testing.T) {
	mem := testutil.NewMem()
	seedHilo(mem, "100")
	runner := testutil.NewTxRunner(mem)

	// primer intento: muta estado y falla con conflicto de serialización;
	// el runner restaura y re-ejecuta la unidad de trabajo completa
	calls := 0
	err := runner.Run(context.Background(), func(
		itemRepo repository.ItemRepository, _ repository.LedgerRepository,
	) error {
		calls++
		if calls == 1 {
			now := time.Now()
			require.NoError(t, itemRepo.UpdateQuantity("hilo-1", decimal.RequireFromString("1"), &now))
			return domain.ErrConflict
		}
		return itemRepo.UpdateQuantity("hilo-1", decimal.RequireFromString("42"), nil)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "un conflicto se reintenta exactamente una vez")
	assert.True(t, decimal.RequireFromString("42").Equal(mem.Item("hilo-1").Quantity),
		"solo el segundo intento debe quedar aplicado")
}

func TestTxRunner_ConflictoPersistenteSeRindeYRestaura(t *testing.T) {
	mem := testutil.NewMem()
	seedHilo(mem, "100")
	runner := testutil.NewTxRunner(mem)

	calls := 0
	err := runner.Run(context.Background(), func(
		itemRepo repository.ItemRepository, _ repository.LedgerRepository,
	) error {
		calls++
		require.NoError(t, itemRepo.UpdateQuantity("hilo-1", decimal.Zero, nil))
		return domain.ErrConflict
	})
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, 2, calls)
	assert.True(t, decimal.RequireFromString("100").Equal(mem.Item("hilo-1").Quantity),
		"el estado vuelve al snapshot previo tras agotar los reintentos")
}

func TestTxRunner_ErrorNoReintentableNoSeReintenta(t *testing.T) {
	mem := testutil.NewMem()
	seedHilo(mem, "100")
	runner := testutil.NewTxRunner(mem)

	calls := 0
	err := runner.Run(context.Background(), func(
		repository.ItemRepository, repository.LedgerRepository,
	) error {
		calls++
		return domain.ErrInvalidInput
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Equal(t, 1, calls, "solo los conflictos de serialización se reintentan")
}
