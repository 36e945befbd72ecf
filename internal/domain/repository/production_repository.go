package repository

import "github.com/tu-usuario/textil-ledger/internal/domain/entity"

// ProductionRepository puerto de persistencia para corridas de producción.
type ProductionRepository interface {
	Create(record *entity.ProductionRecord) error
	GetByID(id string) (*entity.ProductionRecord, error)
	Update(record *entity.ProductionRecord) error
	List(limit, offset int) ([]*entity.ProductionRecord, error)
}
