package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
// Son los centinelas de la taxonomía; los errores tipados de abajo se
// comparan contra ellos vía errors.Is.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrReferenceNotFound = errors.New("referencia inexistente")
	ErrConflict          = errors.New("conflicto de concurrencia")
	ErrInsufficientStock = errors.New("inventario insuficiente")
	ErrPersistence       = errors.New("error de persistencia")
)

// ValidationError error de validación con campo y motivo, para que el caller
// pueda corregir la petición (nunca un "failed" a secas).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validación: %s: %s", e.Field, e.Reason)
}

// Is permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError construye un ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientStockError faltante de inventario: lleva disponible y solicitado
// para reportar el detalle por ítem.
type InsufficientStockError struct {
	ItemID    string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("inventario insuficiente para %s: disponible=%s solicitado=%s",
		e.ItemID, e.Available.String(), e.Requested.String())
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
