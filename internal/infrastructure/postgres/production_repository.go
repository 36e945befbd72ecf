package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/textil-ledger/internal/domain/entity"
	"github.com/tu-usuario/textil-ledger/internal/domain/repository"
)

var _ repository.ProductionRepository = (*ProductionRepo)(nil)

const productionColumns = `id, source_item_id, date, input_qty, output_qty, wastage, wastage_pct,
		status, color, labor_cost, material_cost, total_cost, output_item_id, completed_at,
		params, created_at, updated_at`

// ProductionRepo implementación de ProductionRepository sobre PostgreSQL
// (usable con pool o tx).
type ProductionRepo struct {
	q Querier
}

// NewProductionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductionRepository(q Querier) *ProductionRepo {
	return &ProductionRepo{q: q}
}

// Create persiste una corrida nueva.
func (r *ProductionRepo) Create(record *entity.ProductionRecord) error {
	query := `
		INSERT INTO production_records (` + productionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(context.Background(), query,
		record.ID, record.SourceItemID, record.Date, record.InputQty, record.OutputQty,
		record.Wastage, record.WastagePct, record.Status, nullable(record.Color),
		record.LaborCost, record.MaterialCost, record.TotalCost,
		record.OutputItemID, record.CompletedAt, record.Params,
		record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create production record: %w", translate(err))
	}
	return nil
}

// Update persiste los campos calculados (estado, merma, salida, ítem derivado).
func (r *ProductionRepo) Update(record *entity.ProductionRecord) error {
	query := `
		UPDATE production_records
		SET input_qty = $2, output_qty = $3, wastage = $4, wastage_pct = $5,
			status = $6, color = $7, labor_cost = $8, material_cost = $9,
			total_cost = $10, output_item_id = $11, completed_at = $12,
			params = $13, updated_at = $14
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		record.ID, record.InputQty, record.OutputQty, record.Wastage, record.WastagePct,
		record.Status, nullable(record.Color), record.LaborCost, record.MaterialCost,
		record.TotalCost, record.OutputItemID, record.CompletedAt, record.Params,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update production record: %w", translate(err))
	}
	return nil
}

// GetByID obtiene una corrida por id; nil si no existe.
func (r *ProductionRepo) GetByID(id string) (*entity.ProductionRecord, error) {
	row := r.q.QueryRow(context.Background(),
		`SELECT `+productionColumns+` FROM production_records WHERE id = $1`, id)
	record, err := scanProduction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get production record: %w", translate(err))
	}
	return record, nil
}

// List devuelve corridas paginadas, las más recientes primero.
func (r *ProductionRepo) List(limit, offset int) ([]*entity.ProductionRecord, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT `+productionColumns+` FROM production_records
		ORDER BY date DESC, created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list production records: %w", translate(err))
	}
	defer rows.Close()
	var list []*entity.ProductionRecord
	for rows.Next() {
		record, err := scanProduction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan production record: %w", err)
		}
		list = append(list, record)
	}
	return list, rows.Err()
}

func scanProduction(row pgx.Row) (*entity.ProductionRecord, error) {
	var p entity.ProductionRecord
	var color *string
	err := row.Scan(
		&p.ID, &p.SourceItemID, &p.Date, &p.InputQty, &p.OutputQty,
		&p.Wastage, &p.WastagePct, &p.Status, &color,
		&p.LaborCost, &p.MaterialCost, &p.TotalCost,
		&p.OutputItemID, &p.CompletedAt, &p.Params, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if color != nil {
		p.Color = *color
	}
	return &p, nil
}
