package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/textil-ledger/internal/application/dto"
	"github.com/tu-usuario/textil-ledger/internal/application/inventory"
	"github.com/tu-usuario/textil-ledger/internal/domain"
	"github.com/tu-usuario/textil-ledger/internal/domain/entity"
	"github.com/tu-usuario/textil-ledger/internal/domain/pricing"
	"github.com/tu-usuario/textil-ledger/internal/domain/repository"
	"github.com/tu-usuario/textil-ledger/pkg/logger"
)

// SubmitOrderUseCase coordina la creación de una orden de venta: valida,
// verifica la aritmética contra la política de tolerancias, resuelve orígenes,
// descuenta inventario en modo estricto y persiste orden, líneas, asientos
// SALE y pago — todo en una transacción. Los reenvíos con la misma
// idempotency key devuelven la orden original sin duplicarla.
type SubmitOrderUseCase struct {
	txRunner       TxRunner
	orderRepo      repository.OrderRepository
	customerRepo   repository.CustomerRepository
	itemRepo       repository.ItemRepository
	productionRepo repository.ProductionRepository
	ledgerRepo     repository.LedgerRepository
	policy         pricing.Policy
	log            *logger.Logger
}

// NewSubmitOrderUseCase construye el coordinador.
func NewSubmitOrderUseCase(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	itemRepo repository.ItemRepository,
	productionRepo repository.ProductionRepository,
	ledgerRepo repository.LedgerRepository,
	policy pricing.Policy,
	log *logger.Logger,
) *SubmitOrderUseCase {
	return &SubmitOrderUseCase{
		txRunner:       txRunner,
		orderRepo:      orderRepo,
		customerRepo:   customerRepo,
		itemRepo:       itemRepo,
		productionRepo: productionRepo,
		ledgerRepo:     ledgerRepo,
		policy:         policy,
		log:            log,
	}
}

// resolvedLine línea con origen resuelto y subtotal conciliado.
type resolvedLine struct {
	source   entity.SourceRef
	item     *entity.InventoryItem // nil si la línea no descuenta inventario
	quantity decimal.Decimal
	price    decimal.Decimal
	discount decimal.Decimal
	tax      decimal.Decimal
	subtotal decimal.Decimal
}

// SubmitOrder ejecuta el flujo completo. Devuelve la orden y si fue creada en
// esta llamada (false = duplicado resuelto por idempotency key).
func (uc *SubmitOrderUseCase) SubmitOrder(ctx context.Context, in dto.SubmitOrderRequest) (*dto.OrderResponse, bool, error) {
	// 1) Idempotencia: un reintento del cliente devuelve la orden original.
	if in.IdempotencyKey != "" {
		existing, err := uc.orderRepo.GetByIdempotencyKey(in.IdempotencyKey)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			resp, err := uc.buildResponse(existing)
			return resp, false, err
		}
	}

	// 2) Validación estructural.
	if in.CustomerID == "" {
		return nil, false, domain.NewValidationError("customer_id", "es obligatorio")
	}
	customer, err := uc.customerRepo.GetByID(in.CustomerID)
	if err != nil {
		return nil, false, err
	}
	if customer == nil {
		return nil, false, domain.ErrReferenceNotFound
	}
	if len(in.Items) == 0 {
		return nil, false, domain.NewValidationError("items", "la orden necesita al menos una línea")
	}

	// 3) y 4) Aritmética por línea + resolución de orígenes.
	lines := make([]resolvedLine, 0, len(in.Items))
	seen := make(map[string]bool)
	sum := decimal.Zero
	for i, item := range in.Items {
		line, err := uc.resolveLine(i, item)
		if err != nil {
			return nil, false, err
		}
		key := line.source.Kind + ":" + line.source.ID
		if seen[key] {
			return nil, false, domain.NewValidationError(
				fmt.Sprintf("items[%d]", i), "línea duplicada para el mismo origen; combinar antes de enviar")
		}
		seen[key] = true
		lines = append(lines, *line)
		sum = sum.Add(line.subtotal)
	}

	// Total de la orden desde los subtotales corregidos.
	total := pricing.OrderTotal(sum, in.Discount, in.Tax)
	if !in.Total.IsZero() {
		corrected, adjusted, ok := uc.policy.Reconcile(in.Total, total)
		if !ok {
			return nil, false, domain.NewValidationError("total",
				fmt.Sprintf("no coincide con las líneas: enviado=%s calculado=%s", in.Total, total))
		}
		if adjusted {
			uc.log.Warn().Str("supplied", in.Total.String()).Str("computed", total.String()).
				Msg("total de orden autocorregido")
		}
		total = corrected
	}
	if !total.GreaterThan(decimal.Zero) {
		return nil, false, domain.NewValidationError("total", "una orden con líneas no puede totalizar cero o negativo")
	}

	// Política de pago: PAID exige monto igual al total (dentro de la
	// tolerancia); PARTIAL estrictamente entre cero y el total.
	paymentStatus := in.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = entity.OrderPaymentPending
	}
	payment, err := uc.validatePayment(paymentStatus, total, in)
	if err != nil {
		return nil, false, err
	}

	// Número de orden: si el enviado ya existe se genera uno nuevo en vez de
	// fallar.
	number := in.Number
	if number == "" {
		number = generateNumber()
	} else if existing, err := uc.orderRepo.GetByNumber(number); err != nil {
		return nil, false, err
	} else if existing != nil {
		fresh := generateNumber()
		uc.log.Warn().Str("supplied", number).Str("generated", fresh).
			Msg("número de orden en uso, se genera uno nuevo")
		number = fresh
	}

	now := time.Now()
	order := &entity.Order{
		ID:             uuid.New().String(),
		Number:         number,
		CustomerID:     in.CustomerID,
		Date:           parseDate(in.Date, now),
		Discount:       in.Discount,
		Tax:            in.Tax,
		Total:          total,
		PaymentStatus:  paymentStatus,
		IdempotencyKey: in.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// 5) a 7) Unidad de trabajo: descuentos de inventario en modo estricto,
	// asientos SALE, orden, líneas y pago. Cualquier faltante aborta todo.
	store := inventory.NewStore()
	err = uc.txRunner.RunOrder(ctx, func(
		itemRepo repository.ItemRepository,
		ledgerRepo repository.LedgerRepository,
		orderRepo repository.OrderRepository,
	) error {
		if err := orderRepo.Create(order); err != nil {
			return err
		}
		for _, line := range lines {
			orderItem := &entity.OrderItem{
				ID:        uuid.New().String(),
				OrderID:   order.ID,
				Source:    line.source,
				Quantity:  line.quantity,
				UnitPrice: line.price,
				Discount:  line.discount,
				Tax:       line.tax,
				Subtotal:  line.subtotal,
			}
			if line.item != nil {
				itemID := line.item.ID
				orderItem.ItemID = &itemID
				// El costo se relee con la fila bloqueada: un recosteo
				// concurrente entre la resolución y el commit no debe
				// dejar un costo viejo en el asiento.
				locked, err := itemRepo.GetByIDForUpdate(itemID)
				if err != nil {
					return err
				}
				if locked == nil {
					return domain.ErrReferenceNotFound
				}
				newQty, err := store.AdjustInTx(itemRepo, itemID, line.quantity.Neg(), inventory.Strict, now)
				if err != nil {
					return err
				}
				if err := ledgerRepo.Create(&entity.LedgerEntry{
					ID:        uuid.New().String(),
					ItemID:    itemID,
					Kind:      entity.EntryKindSale,
					Quantity:  line.quantity.Neg(),
					Remaining: newQty,
					UnitCost:  locked.CostPerUnit,
					TotalCost: line.quantity.Neg().Mul(locked.CostPerUnit),
					RefKind:   entity.RefKindOrder,
					RefID:     order.ID,
					Note:      "venta " + order.Number,
					Date:      now,
					CreatedAt: now,
				}); err != nil {
					return err
				}
			}
			if err := orderRepo.CreateItem(orderItem); err != nil {
				return err
			}
		}
		if payment != nil {
			payment.OrderID = order.ID
			if err := orderRepo.CreatePayment(payment); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// Carrera sobre la idempotency key: otro reintento ganó el commit.
		// Se resuelve devolviendo la orden original, no es un error.
		if errors.Is(err, domain.ErrDuplicate) && in.IdempotencyKey != "" {
			existing, lookupErr := uc.orderRepo.GetByIdempotencyKey(in.IdempotencyKey)
			if lookupErr == nil && existing != nil {
				resp, buildErr := uc.buildResponse(existing)
				return resp, false, buildErr
			}
		}
		return nil, false, err
	}

	resp, err := uc.buildResponse(order)
	return resp, true, err
}

// resolveLine valida una línea, concilia su subtotal y resuelve su origen.
// Si la vinculación a inventario discrepa del origen declarado, gana la
// vinculación y se registra la corrección (deriva real entre el listado
// cacheado y el inventario vivo).
func (uc *SubmitOrderUseCase) resolveLine(i int, in dto.OrderLineRequest) (*resolvedLine, error) {
	field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }

	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.NewValidationError(field("quantity"), "debe ser mayor que cero")
	}
	if !in.UnitPrice.GreaterThan(decimal.Zero) {
		return nil, domain.NewValidationError(field("unit_price"), "debe ser mayor que cero")
	}
	source := entity.SourceRef{Kind: in.SourceKind, ID: in.SourceID}
	if !source.Valid() {
		return nil, domain.NewValidationError(field("source_kind"), "origen debe ser RAW o TRANSFORMED con id")
	}

	computed := pricing.LineSubtotal(in.Quantity, in.UnitPrice, in.Discount, in.Tax)
	subtotal := computed
	if !in.Subtotal.IsZero() {
		corrected, adjusted, ok := uc.policy.Reconcile(in.Subtotal, computed)
		if !ok {
			return nil, domain.NewValidationError(field("subtotal"),
				fmt.Sprintf("no coincide: enviado=%s calculado=%s", in.Subtotal, computed))
		}
		if adjusted {
			uc.log.Warn().Str("supplied", in.Subtotal.String()).Str("computed", computed.String()).
				Msg("subtotal de línea autocorregido")
		}
		subtotal = corrected
	}

	line := &resolvedLine{
		source:   source,
		quantity: in.Quantity,
		price:    in.UnitPrice,
		discount: in.Discount,
		tax:      in.Tax,
		subtotal: subtotal,
	}

	// Ítem esperado según el origen declarado.
	var expectedItemID string
	switch source.Kind {
	case entity.SourceKindRaw:
		item, err := uc.itemRepo.GetByID(source.ID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, domain.ErrReferenceNotFound
		}
		expectedItemID = item.ID
	case entity.SourceKindTransformed:
		run, err := uc.productionRepo.GetByID(source.ID)
		if err != nil {
			return nil, err
		}
		if run == nil {
			return nil, domain.ErrReferenceNotFound
		}
		if run.Status != entity.ProductionCompleted {
			return nil, domain.NewValidationError(field("source_id"), "la corrida de producción no está COMPLETED")
		}
		if run.OutputItemID != nil {
			expectedItemID = *run.OutputItemID
		}
	}

	if in.ItemID == "" {
		// Sin vinculación declarada: la línea no descuenta inventario.
		return line, nil
	}

	linked, err := uc.itemRepo.GetByID(in.ItemID)
	if err != nil {
		return nil, err
	}
	if linked == nil {
		return nil, domain.ErrReferenceNotFound
	}
	if expectedItemID != "" && linked.ID != expectedItemID {
		// La vinculación manda; el origen declarado se corrige.
		if fixed := uc.deriveSource(linked); fixed != nil {
			uc.log.Warn().
				Str("declared_kind", source.Kind).Str("declared_id", source.ID).
				Str("corrected_kind", fixed.Kind).Str("corrected_id", fixed.ID).
				Msg("origen de línea corregido desde la vinculación a inventario")
			line.source = *fixed
		}
	}
	line.item = linked
	return line, nil
}

// deriveSource reconstruye la referencia de origen de un ítem: para derivados
// busca en el libro su asiento PRODUCTION (la corrida que lo creó); para
// crudos el origen es el propio ítem.
func (uc *SubmitOrderUseCase) deriveSource(item *entity.InventoryItem) *entity.SourceRef {
	if item.Category != entity.CategoryDyedGood {
		return &entity.SourceRef{Kind: entity.SourceKindRaw, ID: item.ID}
	}
	entries, err := uc.ledgerRepo.ListByItem(item.ID)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		if e.Kind == entity.EntryKindProduction && e.RefKind == entity.RefKindProduction {
			return &entity.SourceRef{Kind: entity.SourceKindTransformed, ID: e.RefID}
		}
	}
	return nil
}

// validatePayment aplica la política de pago y arma el registro si corresponde.
func (uc *SubmitOrderUseCase) validatePayment(status string, total decimal.Decimal, in dto.SubmitOrderRequest) (*entity.Payment, error) {
	switch status {
	case entity.OrderPaymentPending, entity.OrderPaymentPartial,
		entity.OrderPaymentPaid, entity.OrderPaymentCancelled:
	default:
		return nil, domain.NewValidationError("payment_status", "estado de pago desconocido")
	}

	if in.PaymentAmount == nil {
		if status == entity.OrderPaymentPaid || status == entity.OrderPaymentPartial {
			return nil, domain.NewValidationError("payment_amount", "es obligatorio para "+status)
		}
		return nil, nil
	}

	amount := *in.PaymentAmount
	if amount.GreaterThan(total.Add(uc.policy.Tolerance)) {
		return nil, domain.NewValidationError("payment_amount", "no puede superar el total de la orden")
	}
	switch status {
	case entity.OrderPaymentPaid:
		if !uc.policy.WithinTolerance(amount, total) {
			return nil, domain.NewValidationError("payment_amount",
				fmt.Sprintf("PAID exige monto igual al total: monto=%s total=%s", amount, total))
		}
	case entity.OrderPaymentPartial:
		if !amount.GreaterThan(decimal.Zero) || !amount.LessThan(total) {
			return nil, domain.NewValidationError("payment_amount", "PARTIAL exige 0 < monto < total")
		}
	default:
		return nil, domain.NewValidationError("payment_amount", "no corresponde para estado "+status)
	}

	mode := in.PaymentMode
	if mode == "" {
		mode = entity.PaymentModeCash
	}
	switch mode {
	case entity.PaymentModeCash, entity.PaymentModeCheque, entity.PaymentModeTransfer:
	default:
		return nil, domain.NewValidationError("payment_mode", "modo de pago desconocido")
	}

	payment := &entity.Payment{
		ID:        uuid.New().String(),
		Amount:    amount,
		Mode:      mode,
		CreatedAt: time.Now(),
	}
	// Campos de cheque presentes si y solo si el modo es cheque.
	if mode == entity.PaymentModeCheque {
		if in.ChequeNumber == "" || in.ChequeBank == "" {
			return nil, domain.NewValidationError("cheque_number", "número y banco son obligatorios para cheque")
		}
		payment.ChequeNumber = in.ChequeNumber
		payment.ChequeBank = in.ChequeBank
		payment.ChequeStatus = entity.ChequePending
	} else if in.ChequeNumber != "" || in.ChequeBank != "" {
		return nil, domain.NewValidationError("payment_mode", "datos de cheque sin modo cheque")
	}
	return payment, nil
}

// Get devuelve una orden completa por id.
func (uc *SubmitOrderUseCase) Get(ctx context.Context, id string) (*dto.OrderResponse, error) {
	order, err := uc.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return uc.buildResponse(order)
}

func (uc *SubmitOrderUseCase) buildResponse(order *entity.Order) (*dto.OrderResponse, error) {
	items, err := uc.orderRepo.GetItemsByOrderID(order.ID)
	if err != nil {
		return nil, err
	}
	payments, err := uc.orderRepo.GetPaymentsByOrderID(order.ID)
	if err != nil {
		return nil, err
	}
	resp := &dto.OrderResponse{
		ID:            order.ID,
		Number:        order.Number,
		CustomerID:    order.CustomerID,
		Date:          order.Date.Format("2006-01-02"),
		Discount:      order.Discount,
		Tax:           order.Tax,
		Total:         order.Total,
		PaymentStatus: order.PaymentStatus,
		Items:         make([]dto.OrderItemResponse, 0, len(items)),
	}
	for _, it := range items {
		r := dto.OrderItemResponse{
			ID:         it.ID,
			SourceKind: it.Source.Kind,
			SourceID:   it.Source.ID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			Discount:   it.Discount,
			Tax:        it.Tax,
			Subtotal:   it.Subtotal,
		}
		if it.ItemID != nil {
			r.ItemID = *it.ItemID
		}
		resp.Items = append(resp.Items, r)
	}
	if len(payments) > 0 {
		p := payments[0]
		resp.Payment = &dto.PaymentResponse{
			ID:           p.ID,
			Amount:       p.Amount,
			Mode:         p.Mode,
			ChequeNumber: p.ChequeNumber,
			ChequeBank:   p.ChequeBank,
			ChequeStatus: p.ChequeStatus,
		}
	}
	return resp, nil
}

func generateNumber() string {
	return fmt.Sprintf("SO-%d", time.Now().UnixNano())
}

func parseDate(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fallback
	}
	return d
}
