package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/textil-ledger/internal/domain"
)

func pgErr(code string) error {
	return &pgconn.PgError{Code: code}
}

func TestTranslate_MapeaCodigosPostgresADominio(t *testing.T) {
	assert.ErrorIs(t, translate(pgErr(codeNotNullViolation)), domain.ErrInvalidInput,
		"23502 debe traducirse a entrada inválida")
	assert.ErrorIs(t, translate(pgErr(codeUniqueViolation)), domain.ErrDuplicate,
		"23505 debe traducirse a duplicado")
	assert.ErrorIs(t, translate(pgErr(codeForeignKeyViolation)), domain.ErrReferenceNotFound,
		"23503 debe traducirse a referencia inexistente")
	assert.ErrorIs(t, translate(pgErr(codeSerializationFail)), domain.ErrConflict,
		"40001 debe traducirse a conflicto reintentable")
	assert.ErrorIs(t, translate(pgErr(codeDeadlockDetected)), domain.ErrConflict,
		"40P01 debe traducirse a conflicto reintentable")
}

func TestTranslate_ErrorDesconocidoPasaIntacto(t *testing.T) {
	otro := errors.New("conexión perdida")
	assert.Equal(t, otro, translate(otro))
	assert.NoError(t, translate(nil))
}

func TestNullable_CadenaVaciaEsNULL(t *testing.T) {
	assert.Nil(t, nullable(""))
	azul := nullable("AZUL")
	if assert.NotNil(t, azul) {
		assert.Equal(t, "AZUL", *azul)
	}
}
