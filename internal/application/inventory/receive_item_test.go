package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/textil-ledger/internal/application/dto"
	"github.com/tu-usuario/textil-ledger/internal/application/inventory"
	"github.com/tu-usuario/textil-ledger/internal/domain"
	"github.com/tu-usuario/textil-ledger/internal/domain/entity"
	"github.com/tu-usuario/textil-ledger/internal/testutil"
)

func newReceiveUC(mem *testutil.Mem) *inventory.ReceiveItemUseCase {
	return inventory.NewReceiveItemUseCase(testutil.NewTxRunner(mem), inventory.NewStore())
}

func TestReceive_AltaConAsientoReceipt(t *testing.T) {
	mem := testutil.NewMem()
	uc := newReceiveUC(mem)

	out, err := uc.Receive(context.Background(), dto.ReceiveItemRequest{
		Code:        "HILO-001",
		Category:    entity.CategoryRawThread,
		Name:        "hilo crudo 20/2",
		Quantity:    dec("500"),
		Unit:        "kg",
		CostPerUnit: dec("12.50"),
	})
	require.NoError(t, err)
	assert.True(t, dec("500").Equal(out.Quantity))
	assert.Equal(t, entity.VariantRaw, out.VariantState)

	entries := mem.EntriesByItem(out.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.EntryKindReceipt, entries[0].Kind)
	assert.Equal(t, entity.RefKindPurchase, entries[0].RefKind)
	assert.True(t, dec("500").Equal(entries[0].Quantity))
	assert.True(t, dec("500").Equal(entries[0].Remaining))
	assert.True(t, dec("6250").Equal(entries[0].TotalCost))
}

func TestReceive_ReposicionRecosteaPromedioPonderado(t *testing.T) {
	mem := testutil.NewMem()
	uc := newReceiveUC(mem)
	ctx := context.Background()

	first, err := uc.Receive(ctx, dto.ReceiveItemRequest{
		Code: "HILO-001", Category: entity.CategoryRawThread, Name: "hilo crudo",
		Quantity: dec("100"), CostPerUnit: dec("10"),
	})
	require.NoError(t, err)

	second, err := uc.Receive(ctx, dto.ReceiveItemRequest{
		Code: "HILO-001", Category: entity.CategoryRawThread, Name: "hilo crudo",
		Quantity: dec("50"), CostPerUnit: dec("16"),
	})
	require.NoError(t, err)

	// mismo ítem, cantidad acumulada, costo (100*10 + 50*16)/150 = 12
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, dec("150").Equal(second.Quantity))
	assert.True(t, dec("12").Equal(mem.Item(first.ID).CostPerUnit))

	// un asiento RECEIPT por recepción, cadena de Remaining consistente
	entries := mem.EntriesByItem(first.ID)
	require.Len(t, entries, 2)
	assert.True(t, dec("100").Equal(entries[0].Remaining))
	assert.True(t, dec("150").Equal(entries[1].Remaining))
}

func TestReceive_Invalido(t *testing.T) {
	uc := newReceiveUC(testutil.NewMem())
	ctx := context.Background()

	_, err := uc.Receive(ctx, dto.ReceiveItemRequest{
		Code: "X", Category: entity.CategoryRawThread, Name: "x", Quantity: dec("0"),
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.Receive(ctx, dto.ReceiveItemRequest{
		Code: "X", Category: "PLASTICO", Name: "x", Quantity: dec("1"),
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
