package ledgerview

import (
	"context"
	"fmt"

	"github.com/tu-usuario/textil-ledger/internal/application/dto"
	"github.com/tu-usuario/textil-ledger/internal/domain"
	"github.com/tu-usuario/textil-ledger/internal/domain/repository"
)

// Tipos de registro consultables por clave compuesta.
const (
	KindLedger     = "ledger"
	KindOrder      = "order"
	KindProduction = "production"
	KindPayment    = "payment"
)

// ViewUseCase resuelve un registro heterogéneo del libro por clave compuesta
// (tipo + id) en una vista normalizada para la capa de presentación. Fuera de
// producción un registro faltante degrada a un placeholder documentado; en
// producción es un not-found duro.
type ViewUseCase struct {
	ledgerRepo repository.LedgerRepository
	orderRepo  repository.OrderRepository
	runRepo    repository.ProductionRepository
	production bool
}

// NewViewUseCase construye el visor. production activa el not-found duro.
func NewViewUseCase(
	ledgerRepo repository.LedgerRepository,
	orderRepo repository.OrderRepository,
	runRepo repository.ProductionRepository,
	production bool,
) *ViewUseCase {
	return &ViewUseCase{
		ledgerRepo: ledgerRepo,
		orderRepo:  orderRepo,
		runRepo:    runRepo,
		production: production,
	}
}

// GetEntry busca el registro del tipo indicado y lo normaliza.
func (uc *ViewUseCase) GetEntry(ctx context.Context, kind, id string) (*dto.LedgerEntryView, error) {
	switch kind {
	case KindLedger:
		e, err := uc.ledgerRepo.GetByID(id)
		if err != nil {
			return nil, err
		}
		if e == nil {
			return uc.missing(kind, id)
		}
		return &dto.LedgerEntryView{
			Kind:        kind,
			ID:          e.ID,
			Date:        e.Date.Format("2006-01-02"),
			Description: fmt.Sprintf("%s %s", e.Kind, e.Note),
			Quantity:    e.Quantity,
			Amount:      e.TotalCost,
			RefKind:     e.RefKind,
			RefID:       e.RefID,
		}, nil
	case KindOrder:
		o, err := uc.orderRepo.GetByID(id)
		if err != nil {
			return nil, err
		}
		if o == nil {
			return uc.missing(kind, id)
		}
		return &dto.LedgerEntryView{
			Kind:        kind,
			ID:          o.ID,
			Date:        o.Date.Format("2006-01-02"),
			Description: fmt.Sprintf("orden %s (%s)", o.Number, o.PaymentStatus),
			Amount:      o.Total,
		}, nil
	case KindProduction:
		r, err := uc.runRepo.GetByID(id)
		if err != nil {
			return nil, err
		}
		if r == nil {
			return uc.missing(kind, id)
		}
		return &dto.LedgerEntryView{
			Kind:        kind,
			ID:          r.ID,
			Date:        r.Date.Format("2006-01-02"),
			Description: fmt.Sprintf("teñido %s (%s)", r.Color, r.Status),
			Quantity:    r.OutputQty,
			Amount:      r.TotalCost,
			RefKind:     "ITEM",
			RefID:       r.SourceItemID,
		}, nil
	case KindPayment:
		p, err := uc.orderRepo.GetPaymentByID(id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return uc.missing(kind, id)
		}
		return &dto.LedgerEntryView{
			Kind:        kind,
			ID:          p.ID,
			Date:        p.CreatedAt.Format("2006-01-02"),
			Description: fmt.Sprintf("pago %s", p.Mode),
			Amount:      p.Amount,
			RefKind:     "ORDER",
			RefID:       p.OrderID,
		}, nil
	}
	return nil, domain.NewValidationError("type", "tipo de registro desconocido")
}

// missing aplica la política de registro faltante según el entorno.
func (uc *ViewUseCase) missing(kind, id string) (*dto.LedgerEntryView, error) {
	if uc.production {
		return nil, domain.ErrNotFound
	}
	return &dto.LedgerEntryView{
		Kind:        kind,
		ID:          id,
		Description: "registro no disponible en este entorno",
		Placeholder: true,
	}, nil
}
