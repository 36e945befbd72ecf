package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tu-usuario/textil-ledger/internal/application/inventory"
	"github.com/tu-usuario/textil-ledger/internal/application/orders"
	"github.com/tu-usuario/textil-ledger/internal/application/production"
	"github.com/tu-usuario/textil-ledger/internal/domain"
	"github.com/tu-usuario/textil-ledger/internal/domain/repository"
)

// Ensure TxRunner implementa los puertos transaccionales de cada caso de uso.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ production.TxRunner = (*TxRunner)(nil)
var _ orders.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con política
// de reintento centralizada: ante contención de serialización o deadlock la
// unidad de trabajo completa se re-ejecuta (una vez por defecto) antes de
// reportar el conflicto. El statement_timeout por tx acota la espera de locks
// para que un lock atascado se convierta en fallo reportable y no en cuelgue.
type TxRunner struct {
	pool        *pgxpool.Pool
	stmtTimeout time.Duration
	retries     int
}

// NewTxRunner construye el runner con el pool y la política de transacción.
func NewTxRunner(pool *pgxpool.Pool, stmtTimeout time.Duration, retries int) *TxRunner {
	if retries < 0 {
		retries = 0
	}
	return &TxRunner{pool: pool, stmtTimeout: stmtTimeout, retries: retries}
}

// Run inicia una transacción con los repos del Inventory Store.
func (r *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	return r.withRetry(ctx, func(tx pgx.Tx) error {
		return fn(NewItemRepository(tx), NewLedgerRepository(tx))
	})
}

// RunProduction inicia una transacción con los repos del procesador de teñido.
func (r *TxRunner) RunProduction(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	ledgerRepo repository.LedgerRepository,
	runRepo repository.ProductionRepository,
) error) error {
	return r.withRetry(ctx, func(tx pgx.Tx) error {
		return fn(NewItemRepository(tx), NewLedgerRepository(tx), NewProductionRepository(tx))
	})
}

// RunOrder inicia una transacción con los repos del coordinador de órdenes.
func (r *TxRunner) RunOrder(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	ledgerRepo repository.LedgerRepository,
	orderRepo repository.OrderRepository,
) error) error {
	return r.withRetry(ctx, func(tx pgx.Tx) error {
		return fn(NewItemRepository(tx), NewLedgerRepository(tx), NewOrderRepository(tx))
	})
}

// withRetry ejecuta attempt y reintenta solo ante ErrConflict.
func (r *TxRunner) withRetry(ctx context.Context, fn func(tx pgx.Tx) error) error {
	var err error
	for attempt := 0; attempt <= r.retries; attempt++ {
		err = r.attempt(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrConflict) {
			return err
		}
	}
	return err
}

// attempt corre una transacción: Begin, statement_timeout, fn, Commit o Rollback.
func (r *TxRunner) attempt(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.stmtTimeout > 0 {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", r.stmtTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set statement_timeout: %w", err)
		}
	}

	if err := fn(tx); err != nil {
		if isSerializationFailure(err) {
			return domain.ErrConflict
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isSerializationFailure(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
