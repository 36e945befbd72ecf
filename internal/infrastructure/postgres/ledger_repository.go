package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/textil-ledger/internal/domain/entity"
	"github.com/tu-usuario/textil-ledger/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

const ledgerColumns = `id, item_id, kind, quantity, remaining, unit_cost, total_cost,
		ref_kind, ref_id, note, date, created_at`

// LedgerRepo implementación del libro append-only sobre PostgreSQL (usable con
// pool o tx). No hay Update ni Delete: las correcciones son asientos nuevos.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Create persiste un asiento. Inserción pura, sin lógica de negocio.
func (r *LedgerRepo) Create(entry *entity.LedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.ItemID, entry.Kind, entry.Quantity, entry.Remaining,
		entry.UnitCost, entry.TotalCost, nullable(entry.RefKind), nullable(entry.RefID),
		nullable(entry.Note), entry.Date, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create ledger entry: %w", translate(err))
	}
	return nil
}

// GetByID obtiene un asiento por id; nil si no existe.
func (r *LedgerRepo) GetByID(id string) (*entity.LedgerEntry, error) {
	row := r.q.QueryRow(context.Background(),
		`SELECT `+ledgerColumns+` FROM ledger_entries WHERE id = $1`, id)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger entry: %w", translate(err))
	}
	return entry, nil
}

// ListByItem devuelve los asientos de un ítem del más antiguo al más reciente
// (orden de commit), para replay y auditoría.
func (r *LedgerRepo) ListByItem(itemID string) ([]*entity.LedgerEntry, error) {
	return r.list(`SELECT `+ledgerColumns+` FROM ledger_entries
		WHERE item_id = $1 ORDER BY created_at, id`, itemID)
}

// FindByReference busca asientos por entidad causante (tipo + id).
func (r *LedgerRepo) FindByReference(refKind, refID string) ([]*entity.LedgerEntry, error) {
	return r.list(`SELECT `+ledgerColumns+` FROM ledger_entries
		WHERE ref_kind = $1 AND ref_id = $2 ORDER BY created_at, id`, refKind, refID)
}

func (r *LedgerRepo) list(query string, args ...any) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", translate(err))
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, entry)
	}
	return list, rows.Err()
}

func scanEntry(row pgx.Row) (*entity.LedgerEntry, error) {
	var e entity.LedgerEntry
	var refKind, refID, note *string
	err := row.Scan(
		&e.ID, &e.ItemID, &e.Kind, &e.Quantity, &e.Remaining,
		&e.UnitCost, &e.TotalCost, &refKind, &refID, &note, &e.Date, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if refKind != nil {
		e.RefKind = *refKind
	}
	if refID != nil {
		e.RefID = *refID
	}
	if note != nil {
		e.Note = *note
	}
	return &e, nil
}
