package orders_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/textil-ledger/internal/application/dto"
	"github.com/tu-usuario/textil-ledger/internal/application/orders"
	"github.com/tu-usuario/textil-ledger/internal/domain"
	"github.com/tu-usuario/textil-ledger/internal/domain/entity"
	"github.com/tu-usuario/textil-ledger/internal/domain/pricing"
	"github.com/tu-usuario/textil-ledger/internal/domain/repository"
	"github.com/tu-usuario/textil-ledger/internal/testutil"
	"github.com/tu-usuario/textil-ledger/pkg/logger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func newSubmitUC(mem *testutil.Mem) *orders.SubmitOrderUseCase {
	return orders.NewSubmitOrderUseCase(
		testutil.NewTxRunner(mem),
		testutil.NewOrderRepo(mem),
		testutil.NewCustomerRepo(mem),
		testutil.NewItemRepo(mem),
		testutil.NewProductionRepo(mem),
		testutil.NewLedgerRepo(mem),
		pricing.Policy{Tolerance: dec("0.01"), AutoCorrectLimit: dec("5.00")},
		logger.Nop(),
	)
}

// seedBase cliente + ítem crudo con stock.
func seedBase(mem *testutil.Mem) {
	mem.SeedCustomer(&entity.Customer{ID: "cli-1", Name: "Textiles Sur"})
	mem.SeedItem(&entity.InventoryItem{
		ID:           "hilo-1",
		Code:         "HILO-001",
		Category:     entity.CategoryRawThread,
		Name:         "hilo crudo",
		Quantity:     dec("100"),
		Unit:         "kg",
		CostPerUnit:  dec("10"),
		SalePrice:    dec("25"),
		VariantState: entity.VariantRaw,
	})
}

func lineRaw(qty, price string) dto.OrderLineRequest {
	return dto.OrderLineRequest{
		SourceKind: entity.SourceKindRaw,
		SourceID:   "hilo-1",
		ItemID:     "hilo-1",
		Quantity:   dec(qty),
		UnitPrice:  dec(price),
	}
}

func TestSubmitOrder_CreaOrdenDescuentaYAsienta(t *testing.T) {
	mem := testutil.NewMem()
	seedBase(mem)
	uc := newSubmitUC(mem)

	out, created, err := uc.SubmitOrder(context.Background(), dto.SubmitOrderRequest{
		CustomerID:     "cli-1",
		Items:          []dto.OrderLineRequest{lineRaw("10", "25")},
		PaymentStatus:  entity.OrderPaymentPaid,
		PaymentAmount:  ptr(dec("250")),
		IdempotencyKey: "key-1",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, dec("250").Equal(out.Total))
	require.Len(t, out.Items, 1)
	assert.True(t, dec("250").Equal(out.Items[0].Subtotal))
	require.NotNil(t, out.Payment)
	assert.Equal(t, entity.PaymentModeCash, out.Payment.Mode)

	// inventario descontado y asiento SALE con snapshot
	assert.True(t, dec("90").Equal(mem.Item("hilo-1").Quantity))
	entries := mem.EntriesByItem("hilo-1")
	require.Len(t, entries, 1)
	assert.Equal(t, entity.EntryKindSale, entries[0].Kind)
	assert.True(t, dec("-10").Equal(entries[0].Quantity))
	assert.True(t, dec("90").Equal(entries[0].Remaining))
	assert.Equal(t, entity.RefKindOrder, entries[0].RefKind)
	assert.Equal(t, out.ID, entries[0].RefID)
}

func TestSubmitOrder_ReintentoConMismaKeyNoDuplica(t *testing.T) {
	mem := testutil.NewMem()
	seedBase(mem)
	uc := newSubmitUC(mem)
	ctx := context.Background()

	req := dto.SubmitOrderRequest{
		CustomerID:     "cli-1",
		Items:          []dto.OrderLineRequest{lineRaw("10", "25")},
		IdempotencyKey: "key-1",
	}
	first, created, err := uc.SubmitOrder(ctx, req)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := uc.SubmitOrder(ctx, req)
	require.NoError(t, err)
	assert.False(t, created, "el reintento devuelve la orden original")
	assert.Equal(t, first.ID, second.ID)

	// un solo descuento de inventario, una sola orden
	assert.True(t, dec("90").Equal(mem.Item("hilo-1").Quantity))
	assert.Len(t, mem.EntriesByItem("hilo-1"), 1)
	assert.Len(t, mem.Orders(), 1)
}

func TestSubmitOrder_DosOrdenesSinKeyNoColisionan(t *testing.T) {
	mem := testutil.NewMem()
	seedBase(mem)
	uc := newSubmitUC(mem)
	ctx := context.Background()

	// sin idempotency key cada envío es una orden nueva: la unicidad de la
	// key solo aplica cuando está presente
	req := dto.SubmitOrderRequest{
		CustomerID: "cli-1",
		Items:      []dto.OrderLineRequest{lineRaw("10", "25")},
	}
	first, created, err := uc.SubmitOrder(ctx, req)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := uc.SubmitOrder(ctx, req)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, second.ID)

	assert.Len(t, mem.Orders(), 2)
	assert.True(t, dec("80").Equal(mem.Item("hilo-1").Quantity))
}

// costeoViejoRepo devuelve el ítem con un costo desactualizado en las lecturas
// fuera de la transacción, como si otro proceso hubiera recosteado entre la
// resolución de líneas y el commit.
type costeoViejoRepo struct {
	repository.ItemRepository
	costoViejo decimal.Decimal
}

func (r costeoViejoRepo) GetByID(id string) (*entity.InventoryItem, error) {
	it, err := r.ItemRepository.GetByID(id)
	if it != nil {
		it.CostPerUnit = r.costoViejo
	}
	return it, err
}

func TestSubmitOrder_AsientoSaleUsaCostoDentroDeLaTx(t *testing.T) {
	mem := testutil.NewMem()
	mem.SeedCustomer(&entity.Customer{ID: "cli-1", Name: "Textiles Sur"})
	mem.SeedItem(&entity.InventoryItem{
		ID: "hilo-1", Code: "HILO-001", Category: entity.CategoryRawThread,
		Name: "hilo crudo", Quantity: dec("100"), CostPerUnit: dec("16"),
		SalePrice: dec("25"), VariantState: entity.VariantRaw,
	})
	uc := orders.NewSubmitOrderUseCase(
		testutil.NewTxRunner(mem),
		testutil.NewOrderRepo(mem),
		testutil.NewCustomerRepo(mem),
		costeoViejoRepo{ItemRepository: testutil.NewItemRepo(mem), costoViejo: dec("10")},
		testutil.NewProductionRepo(mem),
		testutil.NewLedgerRepo(mem),
		pricing.Policy{Tolerance: dec("0.01"), AutoCorrectLimit: dec("5.00")},
		logger.Nop(),
	)

	_, _, err := uc.SubmitOrder(context.Background(), dto.SubmitOrderRequest{
		CustomerID:     "cli-1",
		Items:          []dto.OrderLineRequest{lineRaw("10", "25")},
		IdempotencyKey: "key-1",
	})
	require.NoError(t, err)

	// el asiento toma el costo releído con la fila bloqueada, no el viejo
	entries := mem.EntriesByItem("hilo-1")
	require.Len(t, entries, 1)
	assert.True(t, dec("16").Equal(entries[0].UnitCost), "cost %s", entries[0].UnitCost)
	assert.True(t, dec("-160").Equal(entries[0].TotalCost))
}

func TestSubmitOrder_ContencionConcurrenteSoloUnaGana(t *testing.T) {
	mem := testutil.NewMem()
	mem.SeedCustomer(&entity.Customer{ID: "cli-1", Name: "Textiles Sur"})
	mem.SeedItem(&entity.InventoryItem{
		ID: "hilo-1", Code: "HILO-001", Category: entity.CategoryRawThread,
		Name: "hilo crudo", Quantity: dec("15"), CostPerUnit: dec("10"),
		SalePrice: dec("25"), VariantState: entity.VariantRaw,
	})
	uc := newSubmitUC(mem)

	// dos envíos simultáneos de 10 kg contra 15 en stock: las unidades de
	// trabajo se serializan y la segunda ve la cantidad ya descontada
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = uc.SubmitOrder(context.Background(), dto.SubmitOrderRequest{
				CustomerID:     "cli-1",
				Number:         fmt.Sprintf("SO-C%d", i),
				Items:          []dto.OrderLineRequest{lineRaw("10", "25")},
				IdempotencyKey: fmt.Sprintf("key-%d", i),
			})
		}(i)
	}
	wg.Wait()

	ganadas, perdidas := 0, 0
	for _, err := range errs {
		if err == nil {
			ganadas++
		} else {
			assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
			perdidas++
		}
	}
	assert.Equal(t, 1, ganadas, "exactamente una orden debe completarse")
	assert.Equal(t, 1, perdidas)

	// el stock nunca queda negativo y solo la ganadora dejó rastro
	assert.True(t, dec("5").Equal(mem.Item("hilo-1").Quantity))
	assert.Len(t, mem.Orders(), 1)
	assert.Len(t, mem.EntriesByItem("hilo-1"), 1)
}

func TestSubmitOrder_StockInsuficienteRevierteTodo(t *testing.T) {
	mem := testutil.NewMem()
	seedBase(mem)
	mem.SeedItem(&entity.InventoryItem{
		ID: "tela-1", Code: "TELA-001", Category: entity.CategoryFabric,
		Name: "tela", Quantity: dec("5"), CostPerUnit: dec("30"),
		SalePrice: dec("60"), VariantState: entity.VariantRaw,
	})
	uc := newSubmitUC(mem)

	// la primera línea alcanza; la segunda sobregira y aborta la orden entera
	_, _, err := uc.SubmitOrder(context.Background(), dto.SubmitOrderRequest{
		CustomerID: "cli-1",
		Items: []dto.OrderLineRequest{
			lineRaw("10", "25"),
			{SourceKind: entity.SourceKindRaw, SourceID: "tela-1", ItemID: "tela-1",
				Quantity: dec("50"), UnitPrice: dec("60")},
		},
		IdempotencyKey: "key-1",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	assert.True(t, dec("100").Equal(mem.Item("hilo-1").Quantity), "la primera línea también se revierte")
	assert.True(t, dec("5").Equal(mem.Item("tela-1").Quantity))
	assert.Empty(t, mem.Entries())
	assert.Empty(t, mem.Orders())
}

func TestSubmitOrder_PaidConMontoDistintoSeRechaza(t *testing.T) {
	mem := testutil.NewMem()
	seedBase(mem)
	uc := newSubmitUC(mem)

	_, _, err := uc.SubmitOrder(context.Background(), dto.SubmitOrderRequest{
		CustomerID:     "cli-1",
		Items:          []dto.OrderLineRequest{lineRaw("10", "25")},
		PaymentStatus:  entity.OrderPaymentPaid,
		PaymentAmount:  ptr(dec("200")),
		IdempotencyKey: "key-1",
	})
	require.Error(t, err)

	var valErr *domain.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "payment_amount", valErr.Field)
	assert.Empty(t, mem.Orders(), "nada se persiste ante el rechazo")
}

func TestSubmitOrder_PartialExigeMontoEntreCeroYTotal(t *testing.T) {
	mem := testutil.NewMem()
	seedBase(mem)
	uc := newSubmitUC(mem)

	_, _, err := uc.SubmitOrder(context.Background(), dto.SubmitOrderRequest{
		CustomerID:     "cli-1",
		Items:          []dto.OrderLineRequest{lineRaw("10", "25")},
		PaymentStatus:  entity.OrderPaymentPartial,
		PaymentAmount:  ptr(dec("250")),
		IdempotencyKey: "key-1",
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSubmitOrder_NumeroEnUsoGeneraUnoNuevo(t *testing.T) {
	mem := testutil.NewMem()
	seedBase(mem)
	uc := newSubmitUC(mem)
	ctx := context.Background()

	first, _, err := uc.SubmitOrder(ctx, dto.SubmitOrderRequest{
		CustomerID:     "cli-1",
		Number:         "SO-100",
		Items:          []dto.OrderLineRequest{lineRaw("5", "25")},
		IdempotencyKey: "key-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "SO-100", first.Number)

	second, created, err := uc.SubmitOrder(ctx, dto.SubmitOrderRequest{
		CustomerID:     "cli-1",
		Number:         "SO-100",
		Items:          []dto.OrderLineRequest{lineRaw("5", "25")},
		IdempotencyKey: "key-2",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, "SO-100", second.Number, "colisión de número no es error: se regenera")
}

func TestSubmitOrder_SubtotalAutocorregible(t *testing.T) {
	mem := testutil.NewMem()
	seedBase(mem)
	uc := newSubmitUC(mem)

	line := lineRaw("10", "25")
	line.Subtotal = dec("252.50") // diferencia 2.50 <= límite 5.00: se corrige a 250

	out, _, err := uc.SubmitOrder(context.Background(), dto.SubmitOrderRequest{
		CustomerID:     "cli-1",
		Items:          []dto.OrderLineRequest{line},
		IdempotencyKey: "key-1",
	})
	require.NoError(t, err)
	assert.True(t, dec("250").Equal(out.Items[0].Subtotal))
	assert.True(t, dec("250").Equal(out.Total))
}

func TestSubmitOrder_SubtotalEstructuralmenteMalSeRechaza(t *testing.T) {
	mem := testutil.NewMem()
	seedBase(mem)
	uc := newSubmitUC(mem)

	line := lineRaw("10", "25")
	line.Subtotal = dec("400") // diferencia 150 > límite autocorregible

	_, _, err := uc.SubmitOrder(context.Background(), dto.SubmitOrderRequest{
		CustomerID:     "cli-1",
		Items:          []dto.OrderLineRequest{line},
		IdempotencyKey: "key-1",
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSubmitOrder_LineaDuplicadaDelMismoOrigen(t *testing.T) {
	mem := testutil.NewMem()
	seedBase(mem)
	uc := newSubmitUC(mem)

	_, _, err := uc.SubmitOrder(context.Background(), dto.SubmitOrderRequest{
		CustomerID:     "cli-1",
		Items:          []dto.OrderLineRequest{lineRaw("5", "25"), lineRaw("3", "25")},
		IdempotencyKey: "key-1",
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSubmitOrder_OrigenTransformedExigeCorridaCompleted(t *testing.T) {
	mem := testutil.NewMem()
	seedBase(mem)
	mem.SeedRun(&entity.ProductionRecord{
		ID: "run-1", SourceItemID: "hilo-1", Status: entity.ProductionPending,
		InputQty: dec("50"), OutputQty: dec("0"),
	})
	uc := newSubmitUC(mem)

	_, _, err := uc.SubmitOrder(context.Background(), dto.SubmitOrderRequest{
		CustomerID: "cli-1",
		Items: []dto.OrderLineRequest{{
			SourceKind: entity.SourceKindTransformed, SourceID: "run-1",
			Quantity: dec("10"), UnitPrice: dec("40"),
		}},
		IdempotencyKey: "key-1",
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSubmitOrder_VinculacionCorrigeOrigenDeclarado(t *testing.T) {
	mem := testutil.NewMem()
	seedBase(mem)
	// derivado creado por la corrida run-1, con su asiento PRODUCTION
	srcID := "hilo-1"
	mem.SeedItem(&entity.InventoryItem{
		ID: "azul-1", Code: "HILO-001-AZUL", Category: entity.CategoryDyedGood,
		Name: "hilo (azul)", Quantity: dec("40"), CostPerUnit: dec("14"),
		SalePrice: dec("40"), VariantState: entity.VariantColored, Color: "azul",
		SourceItemID: &srcID,
	})
	outID := "azul-1"
	mem.SeedRun(&entity.ProductionRecord{
		ID: "run-1", SourceItemID: srcID, Status: entity.ProductionCompleted,
		InputQty: dec("50"), OutputQty: dec("40"), OutputItemID: &outID,
	})
	ledger := testutil.NewLedgerRepo(mem)
	require.NoError(t, ledger.Create(&entity.LedgerEntry{
		ID: "e-1", ItemID: "azul-1", Kind: entity.EntryKindProduction,
		Quantity: dec("40"), Remaining: dec("40"),
		RefKind: entity.RefKindProduction, RefID: "run-1",
	}))
	uc := newSubmitUC(mem)

	// el origen declarado apunta al crudo, pero la vinculación es el derivado:
	// gana la vinculación y el origen se corrige a la corrida que lo produjo
	out, _, err := uc.SubmitOrder(context.Background(), dto.SubmitOrderRequest{
		CustomerID: "cli-1",
		Items: []dto.OrderLineRequest{{
			SourceKind: entity.SourceKindRaw, SourceID: srcID, ItemID: "azul-1",
			Quantity: dec("10"), UnitPrice: dec("40"),
		}},
		IdempotencyKey: "key-1",
	})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, entity.SourceKindTransformed, out.Items[0].SourceKind)
	assert.Equal(t, "run-1", out.Items[0].SourceID)
	assert.True(t, dec("30").Equal(mem.Item("azul-1").Quantity))
}

func TestSubmitOrder_ChequeExigeDatosDeCheque(t *testing.T) {
	mem := testutil.NewMem()
	seedBase(mem)
	uc := newSubmitUC(mem)
	ctx := context.Background()

	_, _, err := uc.SubmitOrder(ctx, dto.SubmitOrderRequest{
		CustomerID:     "cli-1",
		Items:          []dto.OrderLineRequest{lineRaw("10", "25")},
		PaymentStatus:  entity.OrderPaymentPaid,
		PaymentMode:    entity.PaymentModeCheque,
		PaymentAmount:  ptr(dec("250")),
		IdempotencyKey: "key-1",
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	out, _, err := uc.SubmitOrder(ctx, dto.SubmitOrderRequest{
		CustomerID:     "cli-1",
		Items:          []dto.OrderLineRequest{lineRaw("10", "25")},
		PaymentStatus:  entity.OrderPaymentPaid,
		PaymentMode:    entity.PaymentModeCheque,
		PaymentAmount:  ptr(dec("250")),
		ChequeNumber:   "CHQ-778",
		ChequeBank:     "Banco Norte",
		IdempotencyKey: "key-2",
	})
	require.NoError(t, err)
	require.NotNil(t, out.Payment)
	assert.Equal(t, entity.ChequePending, out.Payment.ChequeStatus)
}

func TestSubmitOrder_ClienteInexistente(t *testing.T) {
	mem := testutil.NewMem()
	uc := newSubmitUC(mem)

	_, _, err := uc.SubmitOrder(context.Background(), dto.SubmitOrderRequest{
		CustomerID:     "fantasma",
		Items:          []dto.OrderLineRequest{lineRaw("1", "25")},
		IdempotencyKey: "key-1",
	})
	assert.True(t, errors.Is(err, domain.ErrReferenceNotFound))
}
