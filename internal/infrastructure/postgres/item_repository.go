package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/textil-ledger/internal/domain"
	"github.com/tu-usuario/textil-ledger/internal/domain/entity"
	"github.com/tu-usuario/textil-ledger/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, code, category, name, quantity, unit, cost_per_unit, sale_price,
		min_stock_level, variant_state, color, source_item_id, last_restocked_at, created_at, updated_at`

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Create persiste un ítem nuevo.
func (r *ItemRepo) Create(item *entity.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.Code, item.Category, item.Name, item.Quantity, item.Unit,
		item.CostPerUnit, item.SalePrice, item.MinStockLevel, item.VariantState,
		nullable(item.Color), item.SourceItemID, item.LastRestockedAt, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create item: %w", translate(err))
	}
	return nil
}

// GetByID obtiene un ítem por id; nil si no existe.
func (r *ItemRepo) GetByID(id string) (*entity.InventoryItem, error) {
	return r.get(`SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id)
}

// GetByCode obtiene un ítem por código único; nil si no existe.
func (r *ItemRepo) GetByCode(code string) (*entity.InventoryItem, error) {
	return r.get(`SELECT `+itemColumns+` FROM inventory_items WHERE code = $1`, code)
}

// GetByIDForUpdate obtiene el ítem y bloquea la fila (SELECT FOR UPDATE) para
// que dos operaciones concurrentes no ajusten sobre una lectura vieja.
func (r *ItemRepo) GetByIDForUpdate(id string) (*entity.InventoryItem, error) {
	return r.get(`SELECT `+itemColumns+` FROM inventory_items WHERE id = $1 FOR UPDATE`, id)
}

// FindDerived busca el ítem derivado por (categoría, ítem origen, color).
func (r *ItemRepo) FindDerived(category, sourceItemID, color string) (*entity.InventoryItem, error) {
	return r.get(`SELECT `+itemColumns+` FROM inventory_items
		WHERE category = $1 AND source_item_id = $2 AND color = $3`, category, sourceItemID, color)
}

// UpdateQuantity fija la cantidad calculada por el Inventory Store.
// last_restocked_at solo cambia cuando el delta fue positivo.
func (r *ItemRepo) UpdateQuantity(id string, qty decimal.Decimal, lastRestocked *time.Time) error {
	var err error
	if lastRestocked != nil {
		_, err = r.q.Exec(context.Background(), `
			UPDATE inventory_items SET quantity = $2, last_restocked_at = $3, updated_at = now()
			WHERE id = $1`, id, qty, *lastRestocked)
	} else {
		_, err = r.q.Exec(context.Background(), `
			UPDATE inventory_items SET quantity = $2, updated_at = now()
			WHERE id = $1`, id, qty)
	}
	if err != nil {
		return fmt.Errorf("update quantity: %w", translate(err))
	}
	return nil
}

// UpdateVariantState marca el material como teñido (RAW -> COLORED).
func (r *ItemRepo) UpdateVariantState(id, state, color string) error {
	_, err := r.q.Exec(context.Background(), `
		UPDATE inventory_items SET variant_state = $2, color = $3, updated_at = now()
		WHERE id = $1`, id, state, color)
	if err != nil {
		return fmt.Errorf("update variant state: %w", translate(err))
	}
	return nil
}

// UpdateCost actualiza el costo promedio ponderado.
func (r *ItemRepo) UpdateCost(id string, cost decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(), `
		UPDATE inventory_items SET cost_per_unit = $2, updated_at = now()
		WHERE id = $1`, id, cost)
	if err != nil {
		return fmt.Errorf("update cost: %w", translate(err))
	}
	return nil
}

// List devuelve ítems paginados ordenados por código.
func (r *ItemRepo) List(limit, offset int) ([]*entity.InventoryItem, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT `+itemColumns+` FROM inventory_items ORDER BY code LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", translate(err))
	}
	defer rows.Close()
	var list []*entity.InventoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

func (r *ItemRepo) get(query string, args ...any) (*entity.InventoryItem, error) {
	row := r.q.QueryRow(context.Background(), query, args...)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", translate(err))
	}
	return item, nil
}

func scanItem(row pgx.Row) (*entity.InventoryItem, error) {
	var i entity.InventoryItem
	var color *string
	err := row.Scan(
		&i.ID, &i.Code, &i.Category, &i.Name, &i.Quantity, &i.Unit,
		&i.CostPerUnit, &i.SalePrice, &i.MinStockLevel, &i.VariantState,
		&color, &i.SourceItemID, &i.LastRestockedAt, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if color != nil {
		i.Color = *color
	}
	return &i, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
