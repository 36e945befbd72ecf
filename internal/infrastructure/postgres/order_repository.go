package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/textil-ledger/internal/domain"
	"github.com/tu-usuario/textil-ledger/internal/domain/entity"
	"github.com/tu-usuario/textil-ledger/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, number, customer_id, date, discount, tax, total,
		payment_status, idempotency_key, created_at, updated_at`

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con
// pool o tx). Orden, líneas y pagos forman un agregado.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste la cabecera. La colisión de número o de idempotency key se
// traduce a ErrDuplicate para que el coordinador la resuelva.
func (r *OrderRepo) Create(order *entity.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.Number, order.CustomerID, order.Date,
		order.Discount, order.Tax, order.Total, order.PaymentStatus,
		nullable(order.IdempotencyKey), order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create order: %w", translate(err))
	}
	return nil
}

// CreateItem persiste una línea de la orden.
func (r *OrderRepo) CreateItem(item *entity.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, source_kind, source_id, item_id,
			quantity, unit_price, discount, tax, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.OrderID, item.Source.Kind, item.Source.ID, item.ItemID,
		item.Quantity, item.UnitPrice, item.Discount, item.Tax, item.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("create order item: %w", translate(err))
	}
	return nil
}

// CreatePayment persiste el pago de la orden.
func (r *OrderRepo) CreatePayment(payment *entity.Payment) error {
	query := `
		INSERT INTO payments (id, order_id, amount, mode, cheque_number, cheque_bank,
			cheque_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		payment.ID, payment.OrderID, payment.Amount, payment.Mode,
		nullable(payment.ChequeNumber), nullable(payment.ChequeBank),
		nullable(payment.ChequeStatus), payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create payment: %w", translate(err))
	}
	return nil
}

// GetByID obtiene una orden por id; nil si no existe.
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	return r.get(`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetByNumber obtiene una orden por número único; nil si no existe.
func (r *OrderRepo) GetByNumber(number string) (*entity.Order, error) {
	return r.get(`SELECT `+orderColumns+` FROM orders WHERE number = $1`, number)
}

// GetByIdempotencyKey obtiene la orden ya creada con esa clave; nil si no hay.
func (r *OrderRepo) GetByIdempotencyKey(key string) (*entity.Order, error) {
	return r.get(`SELECT `+orderColumns+` FROM orders WHERE idempotency_key = $1`, key)
}

// GetItemsByOrderID devuelve las líneas de una orden.
func (r *OrderRepo) GetItemsByOrderID(orderID string) ([]*entity.OrderItem, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT id, order_id, source_kind, source_id, item_id, quantity, unit_price,
			discount, tax, subtotal
		FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", translate(err))
	}
	defer rows.Close()
	var list []*entity.OrderItem
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.Source.Kind, &it.Source.ID,
			&it.ItemID, &it.Quantity, &it.UnitPrice, &it.Discount, &it.Tax, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// GetPaymentsByOrderID devuelve los pagos de una orden.
func (r *OrderRepo) GetPaymentsByOrderID(orderID string) ([]*entity.Payment, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT id, order_id, amount, mode, cheque_number, cheque_bank, cheque_status, created_at
		FROM payments WHERE order_id = $1 ORDER BY created_at`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", translate(err))
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// GetPaymentByID obtiene un pago por id; nil si no existe.
func (r *OrderRepo) GetPaymentByID(id string) (*entity.Payment, error) {
	row := r.q.QueryRow(context.Background(), `
		SELECT id, order_id, amount, mode, cheque_number, cheque_bank, cheque_status, created_at
		FROM payments WHERE id = $1`, id)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", translate(err))
	}
	return p, nil
}

func (r *OrderRepo) get(query string, args ...any) (*entity.Order, error) {
	var o entity.Order
	var key *string
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&o.ID, &o.Number, &o.CustomerID, &o.Date, &o.Discount, &o.Tax,
		&o.Total, &o.PaymentStatus, &key, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", translate(err))
	}
	if key != nil {
		o.IdempotencyKey = *key
	}
	return &o, nil
}

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var p entity.Payment
	var chequeNumber, chequeBank, chequeStatus *string
	err := row.Scan(&p.ID, &p.OrderID, &p.Amount, &p.Mode,
		&chequeNumber, &chequeBank, &chequeStatus, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if chequeNumber != nil {
		p.ChequeNumber = *chequeNumber
	}
	if chequeBank != nil {
		p.ChequeBank = *chequeBank
	}
	if chequeStatus != nil {
		p.ChequeStatus = *chequeStatus
	}
	return &p, nil
}
