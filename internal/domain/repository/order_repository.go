package repository

import "github.com/tu-usuario/textil-ledger/internal/domain/entity"

// OrderRepository puerto de persistencia para órdenes, líneas y pagos
// (el pago pertenece al agregado de la orden, como el detalle de la factura).
type OrderRepository interface {
	Create(order *entity.Order) error
	CreateItem(item *entity.OrderItem) error
	CreatePayment(payment *entity.Payment) error
	GetByID(id string) (*entity.Order, error)
	GetByNumber(number string) (*entity.Order, error)
	// GetByIdempotencyKey devuelve la orden ya creada con esa clave, o nil.
	GetByIdempotencyKey(key string) (*entity.Order, error)
	GetItemsByOrderID(orderID string) ([]*entity.OrderItem, error)
	GetPaymentsByOrderID(orderID string) ([]*entity.Payment, error)
	GetPaymentByID(id string) (*entity.Payment, error)
}
