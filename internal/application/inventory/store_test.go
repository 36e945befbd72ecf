package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/textil-ledger/internal/application/inventory"
	"github.com/tu-usuario/textil-ledger/internal/domain"
	"github.com/tu-usuario/textil-ledger/internal/domain/entity"
	"github.com/tu-usuario/textil-ledger/internal/testutil"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedThread(mem *testutil.Mem, id, qty string) {
	mem.SeedItem(&entity.InventoryItem{
		ID:           id,
		Code:         "HILO-" + id,
		Category:     entity.CategoryRawThread,
		Name:         "hilo crudo",
		Quantity:     dec(qty),
		Unit:         "kg",
		CostPerUnit:  dec("10"),
		VariantState: entity.VariantRaw,
	})
}

func TestAdjustInTx_StrictRechazaSobregiro(t *testing.T) {
	mem := testutil.NewMem()
	seedThread(mem, "it-1", "100")
	store := inventory.NewStore()
	repo := testutil.NewItemRepo(mem)

	_, err := store.AdjustInTx(repo, "it-1", dec("-150"), inventory.Strict, time.Now())
	require.Error(t, err)

	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.True(t, dec("100").Equal(stockErr.Available))
	assert.True(t, dec("150").Equal(stockErr.Requested))
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	// la cantidad no se tocó
	assert.True(t, dec("100").Equal(mem.Item("it-1").Quantity))
}

func TestAdjustInTx_ClampDejaEnCero(t *testing.T) {
	mem := testutil.NewMem()
	seedThread(mem, "it-1", "100")
	store := inventory.NewStore()
	repo := testutil.NewItemRepo(mem)

	newQty, err := store.AdjustInTx(repo, "it-1", dec("-150"), inventory.Clamp, time.Now())
	require.NoError(t, err)
	assert.True(t, newQty.IsZero())
	assert.True(t, mem.Item("it-1").Quantity.IsZero())
}

func TestAdjustInTx_EntradaActualizaLastRestocked(t *testing.T) {
	mem := testutil.NewMem()
	seedThread(mem, "it-1", "100")
	store := inventory.NewStore()
	repo := testutil.NewItemRepo(mem)
	now := time.Now()

	newQty, err := store.AdjustInTx(repo, "it-1", dec("50"), inventory.Strict, now)
	require.NoError(t, err)
	assert.True(t, dec("150").Equal(newQty))

	item := mem.Item("it-1")
	require.NotNil(t, item.LastRestockedAt)
	assert.True(t, item.LastRestockedAt.Equal(now))
}

func TestAdjustInTx_SalidaNoTocaLastRestocked(t *testing.T) {
	mem := testutil.NewMem()
	seedThread(mem, "it-1", "100")
	store := inventory.NewStore()
	repo := testutil.NewItemRepo(mem)

	_, err := store.AdjustInTx(repo, "it-1", dec("-30"), inventory.Strict, time.Now())
	require.NoError(t, err)
	assert.Nil(t, mem.Item("it-1").LastRestockedAt)
}

func TestAdjustInTx_ItemInexistente(t *testing.T) {
	mem := testutil.NewMem()
	store := inventory.NewStore()

	_, err := store.AdjustInTx(testutil.NewItemRepo(mem), "no-existe", dec("1"), inventory.Strict, time.Now())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
