package ledgerbook_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/textil-ledger/internal/domain/entity"
	"github.com/tu-usuario/textil-ledger/internal/domain/ledgerbook"
)

func entry(kind, qty, remaining string) *entity.LedgerEntry {
	return &entity.LedgerEntry{
		Kind:      kind,
		Quantity:  decimal.RequireFromString(qty),
		Remaining: decimal.RequireFromString(remaining),
	}
}

func TestReplay_ReproduceLaCantidadActual(t *testing.T) {
	entries := []*entity.LedgerEntry{
		entry(entity.EntryKindReceipt, "500", "500"),
		entry(entity.EntryKindConsumption, "-200", "300"),
		entry(entity.EntryKindSale, "-50", "250"),
		entry(entity.EntryKindAdjustment, "10", "260"),
	}
	assert.True(t, decimal.RequireFromString("260").Equal(ledgerbook.Replay(entries)))
}

func TestReplay_SinAsientosEsCero(t *testing.T) {
	assert.True(t, decimal.Zero.Equal(ledgerbook.Replay(nil)))
}

func TestSnapshotsConsistent(t *testing.T) {
	ok := []*entity.LedgerEntry{
		entry(entity.EntryKindReceipt, "100", "100"),
		entry(entity.EntryKindSale, "-40", "60"),
	}
	assert.True(t, ledgerbook.SnapshotsConsistent(ok))

	// un Remaining editado a mano rompe la cadena
	bad := []*entity.LedgerEntry{
		entry(entity.EntryKindReceipt, "100", "100"),
		entry(entity.EntryKindSale, "-40", "70"),
	}
	assert.False(t, ledgerbook.SnapshotsConsistent(bad))
}
