package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tu-usuario/textil-ledger/internal/domain"
)

// Códigos PostgreSQL que el coordinador traduce a la taxonomía de dominio.
const (
	codeNotNullViolation    = "23502"
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeSerializationFail   = "40001"
	codeDeadlockDetected    = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isNotNullViolation verifica si un error es una violación de NOT NULL (23502).
func isNotNullViolation(err error) bool {
	return pgCode(err) == codeNotNullViolation
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// isForeignKeyViolation verifica si un error es una violación de FK (23503).
func isForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// isSerializationFailure detecta contención de serialización o deadlock,
// condiciones reintentables re-ejecutando la unidad de trabajo completa.
func isSerializationFailure(err error) bool {
	code := pgCode(err)
	return code == codeSerializationFail || code == codeDeadlockDetected
}

// translate convierte errores crudos de storage en la taxonomía de dominio;
// lo que no se reconoce se envuelve como fallo de persistencia opaco.
func translate(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case isNotNullViolation(err):
		return domain.ErrInvalidInput
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	case isForeignKeyViolation(err):
		return domain.ErrReferenceNotFound
	case isSerializationFailure(err):
		return domain.ErrConflict
	}
	return err
}
