package entity

import "time"

// Customer cliente de la orden. La identidad de la contraparte es una
// referencia de primera clase; nunca se extrae de campos de texto libre.
type Customer struct {
	ID        string
	Name      string
	Phone     string
	Address   string
	CreatedAt time.Time
}
