// Package testutil provee implementaciones en memoria de los puertos de
// persistencia, con la misma semántica transaccional que la implementación
// PostgreSQL: el TxRunner toma un snapshot del estado y lo restaura si la
// unidad de trabajo falla.
package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/textil-ledger/internal/application/inventory"
	"github.com/tu-usuario/textil-ledger/internal/application/orders"
	"github.com/tu-usuario/textil-ledger/internal/application/production"
	"github.com/tu-usuario/textil-ledger/internal/domain"
	"github.com/tu-usuario/textil-ledger/internal/domain/entity"
	"github.com/tu-usuario/textil-ledger/internal/domain/repository"
)

var (
	_ repository.ItemRepository       = (*ItemRepo)(nil)
	_ repository.LedgerRepository     = (*LedgerRepo)(nil)
	_ repository.ProductionRepository = (*ProductionRepo)(nil)
	_ repository.OrderRepository      = (*OrderRepo)(nil)
	_ repository.CustomerRepository   = (*CustomerRepo)(nil)
	_ inventory.TxRunner              = (*TxRunner)(nil)
	_ production.TxRunner             = (*TxRunner)(nil)
	_ orders.TxRunner                 = (*TxRunner)(nil)
)

// Mem estado compartido de todos los repositorios en memoria. mu serializa
// las unidades de trabajo completas (como las transacciones reales); dataMu
// protege los mapas para las operaciones sueltas fuera de una unidad.
type Mem struct {
	mu        sync.Mutex
	dataMu    sync.RWMutex
	items     map[string]*entity.InventoryItem
	entries   []*entity.LedgerEntry
	runs      map[string]*entity.ProductionRecord
	orders    map[string]*entity.Order
	lines     map[string][]*entity.OrderItem
	payments  map[string][]*entity.Payment
	customers map[string]*entity.Customer
	seq       int
}

// NewMem construye el estado vacío.
func NewMem() *Mem {
	return &Mem{
		items:     make(map[string]*entity.InventoryItem),
		runs:      make(map[string]*entity.ProductionRecord),
		orders:    make(map[string]*entity.Order),
		lines:     make(map[string][]*entity.OrderItem),
		payments:  make(map[string][]*entity.Payment),
		customers: make(map[string]*entity.Customer),
	}
}

// SeedItem inserta un ítem directamente, sin asiento.
func (m *Mem) SeedItem(item *entity.InventoryItem) {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	m.items[item.ID] = copyItem(item)
}

// SeedRun inserta una corrida directamente.
func (m *Mem) SeedRun(run *entity.ProductionRecord) {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	m.runs[run.ID] = copyRun(run)
}

// SeedCustomer inserta un cliente directamente.
func (m *Mem) SeedCustomer(c *entity.Customer) {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	cp := *c
	m.customers[c.ID] = &cp
}

// Item devuelve el ítem tal como está almacenado.
func (m *Mem) Item(id string) *entity.InventoryItem {
	m.dataMu.RLock()
	defer m.dataMu.RUnlock()
	return copyItem(m.items[id])
}

// Run devuelve la corrida tal como está almacenada.
func (m *Mem) Run(id string) *entity.ProductionRecord {
	m.dataMu.RLock()
	defer m.dataMu.RUnlock()
	return copyRun(m.runs[id])
}

// Entries devuelve todos los asientos en orden de inserción.
func (m *Mem) Entries() []*entity.LedgerEntry {
	m.dataMu.RLock()
	defer m.dataMu.RUnlock()
	out := make([]*entity.LedgerEntry, 0, len(m.entries))
	for _, e := range m.entries {
		cp := *e
		out = append(out, &cp)
	}
	return out
}

// EntriesByItem devuelve los asientos de un ítem en orden de inserción.
func (m *Mem) EntriesByItem(itemID string) []*entity.LedgerEntry {
	m.dataMu.RLock()
	defer m.dataMu.RUnlock()
	return m.entriesByItem(itemID)
}

func (m *Mem) entriesByItem(itemID string) []*entity.LedgerEntry {
	var out []*entity.LedgerEntry
	for _, e := range m.entries {
		if e.ItemID == itemID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out
}

// Orders devuelve todas las órdenes.
func (m *Mem) Orders() []*entity.Order {
	m.dataMu.RLock()
	defer m.dataMu.RUnlock()
	out := make([]*entity.Order, 0, len(m.orders))
	for _, o := range m.orders {
		cp := *o
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// snapshot copia profunda del estado completo.
func (m *Mem) snapshot() *Mem {
	m.dataMu.RLock()
	defer m.dataMu.RUnlock()
	s := NewMem()
	for id, it := range m.items {
		s.items[id] = copyItem(it)
	}
	for _, e := range m.entries {
		cp := *e
		s.entries = append(s.entries, &cp)
	}
	for id, r := range m.runs {
		s.runs[id] = copyRun(r)
	}
	for id, o := range m.orders {
		cp := *o
		s.orders[id] = &cp
	}
	for id, ls := range m.lines {
		for _, l := range ls {
			cp := *l
			s.lines[id] = append(s.lines[id], &cp)
		}
	}
	for id, ps := range m.payments {
		for _, p := range ps {
			cp := *p
			s.payments[id] = append(s.payments[id], &cp)
		}
	}
	for id, c := range m.customers {
		cp := *c
		s.customers[id] = &cp
	}
	s.seq = m.seq
	return s
}

// restore repone el estado desde un snapshot.
func (m *Mem) restore(s *Mem) {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	m.items = s.items
	m.entries = s.entries
	m.runs = s.runs
	m.orders = s.orders
	m.lines = s.lines
	m.payments = s.payments
	m.customers = s.customers
	m.seq = s.seq
}

func copyItem(it *entity.InventoryItem) *entity.InventoryItem {
	if it == nil {
		return nil
	}
	cp := *it
	if it.SourceItemID != nil {
		v := *it.SourceItemID
		cp.SourceItemID = &v
	}
	if it.LastRestockedAt != nil {
		v := *it.LastRestockedAt
		cp.LastRestockedAt = &v
	}
	return &cp
}

func copyRun(r *entity.ProductionRecord) *entity.ProductionRecord {
	if r == nil {
		return nil
	}
	cp := *r
	if r.OutputItemID != nil {
		v := *r.OutputItemID
		cp.OutputItemID = &v
	}
	if r.CompletedAt != nil {
		v := *r.CompletedAt
		cp.CompletedAt = &v
	}
	return &cp
}

// ItemRepo repositorio de ítems en memoria.
type ItemRepo struct{ m *Mem }

// NewItemRepo construye el repositorio sobre el estado compartido.
func NewItemRepo(m *Mem) *ItemRepo { return &ItemRepo{m: m} }

func (r *ItemRepo) Create(item *entity.InventoryItem) error {
	r.m.dataMu.Lock()
	defer r.m.dataMu.Unlock()
	for _, it := range r.m.items {
		if it.Code == item.Code {
			return domain.ErrDuplicate
		}
	}
	r.m.items[item.ID] = copyItem(item)
	return nil
}

func (r *ItemRepo) GetByID(id string) (*entity.InventoryItem, error) {
	r.m.dataMu.RLock()
	defer r.m.dataMu.RUnlock()
	return copyItem(r.m.items[id]), nil
}

func (r *ItemRepo) GetByCode(code string) (*entity.InventoryItem, error) {
	r.m.dataMu.RLock()
	defer r.m.dataMu.RUnlock()
	for _, it := range r.m.items {
		if it.Code == code {
			return copyItem(it), nil
		}
	}
	return nil, nil
}

func (r *ItemRepo) GetByIDForUpdate(id string) (*entity.InventoryItem, error) {
	return r.GetByID(id)
}

func (r *ItemRepo) UpdateQuantity(id string, qty decimal.Decimal, lastRestocked *time.Time) error {
	r.m.dataMu.Lock()
	defer r.m.dataMu.Unlock()
	it, ok := r.m.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	it.Quantity = qty
	if lastRestocked != nil {
		v := *lastRestocked
		it.LastRestockedAt = &v
	}
	it.UpdatedAt = time.Now()
	return nil
}

func (r *ItemRepo) UpdateVariantState(id, state, color string) error {
	r.m.dataMu.Lock()
	defer r.m.dataMu.Unlock()
	it, ok := r.m.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	it.VariantState = state
	it.Color = color
	it.UpdatedAt = time.Now()
	return nil
}

func (r *ItemRepo) UpdateCost(id string, cost decimal.Decimal) error {
	r.m.dataMu.Lock()
	defer r.m.dataMu.Unlock()
	it, ok := r.m.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	it.CostPerUnit = cost
	it.UpdatedAt = time.Now()
	return nil
}

func (r *ItemRepo) FindDerived(category, sourceItemID, color string) (*entity.InventoryItem, error) {
	r.m.dataMu.RLock()
	defer r.m.dataMu.RUnlock()
	for _, it := range r.m.items {
		if it.Category == category && it.SourceItemID != nil &&
			*it.SourceItemID == sourceItemID && it.Color == color {
			return copyItem(it), nil
		}
	}
	return nil, nil
}

func (r *ItemRepo) List(limit, offset int) ([]*entity.InventoryItem, error) {
	r.m.dataMu.RLock()
	defer r.m.dataMu.RUnlock()
	all := make([]*entity.InventoryItem, 0, len(r.m.items))
	for _, it := range r.m.items {
		all = append(all, copyItem(it))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return page(all, limit, offset), nil
}

// LedgerRepo libro de movimientos en memoria, append-only.
type LedgerRepo struct{ m *Mem }

// NewLedgerRepo construye el repositorio sobre el estado compartido.
func NewLedgerRepo(m *Mem) *LedgerRepo { return &LedgerRepo{m: m} }

func (r *LedgerRepo) Create(entry *entity.LedgerEntry) error {
	r.m.dataMu.Lock()
	defer r.m.dataMu.Unlock()
	cp := *entry
	r.m.seq++
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.m.entries = append(r.m.entries, &cp)
	return nil
}

func (r *LedgerRepo) GetByID(id string) (*entity.LedgerEntry, error) {
	r.m.dataMu.RLock()
	defer r.m.dataMu.RUnlock()
	for _, e := range r.m.entries {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *LedgerRepo) ListByItem(itemID string) ([]*entity.LedgerEntry, error) {
	r.m.dataMu.RLock()
	defer r.m.dataMu.RUnlock()
	return r.m.entriesByItem(itemID), nil
}

func (r *LedgerRepo) FindByReference(refKind, refID string) ([]*entity.LedgerEntry, error) {
	r.m.dataMu.RLock()
	defer r.m.dataMu.RUnlock()
	var out []*entity.LedgerEntry
	for _, e := range r.m.entries {
		if e.RefKind == refKind && e.RefID == refID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ProductionRepo corridas de producción en memoria.
type ProductionRepo struct{ m *Mem }

// NewProductionRepo construye el repositorio sobre el estado compartido.
func NewProductionRepo(m *Mem) *ProductionRepo { return &ProductionRepo{m: m} }

func (r *ProductionRepo) Create(record *entity.ProductionRecord) error {
	r.m.dataMu.Lock()
	defer r.m.dataMu.Unlock()
	if _, ok := r.m.runs[record.ID]; ok {
		return domain.ErrDuplicate
	}
	r.m.runs[record.ID] = copyRun(record)
	return nil
}

func (r *ProductionRepo) GetByID(id string) (*entity.ProductionRecord, error) {
	r.m.dataMu.RLock()
	defer r.m.dataMu.RUnlock()
	return copyRun(r.m.runs[id]), nil
}

func (r *ProductionRepo) Update(record *entity.ProductionRecord) error {
	r.m.dataMu.Lock()
	defer r.m.dataMu.Unlock()
	if _, ok := r.m.runs[record.ID]; !ok {
		return domain.ErrNotFound
	}
	r.m.runs[record.ID] = copyRun(record)
	return nil
}

func (r *ProductionRepo) List(limit, offset int) ([]*entity.ProductionRecord, error) {
	r.m.dataMu.RLock()
	defer r.m.dataMu.RUnlock()
	all := make([]*entity.ProductionRecord, 0, len(r.m.runs))
	for _, run := range r.m.runs {
		all = append(all, copyRun(run))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return page(all, limit, offset), nil
}

// OrderRepo órdenes, líneas y pagos en memoria.
type OrderRepo struct{ m *Mem }

// NewOrderRepo construye el repositorio sobre el estado compartido.
func NewOrderRepo(m *Mem) *OrderRepo { return &OrderRepo{m: m} }

func (r *OrderRepo) Create(order *entity.Order) error {
	r.m.dataMu.Lock()
	defer r.m.dataMu.Unlock()
	for _, o := range r.m.orders {
		// la key es única solo cuando está presente (índice parcial)
		if o.Number == order.Number ||
			(order.IdempotencyKey != "" && o.IdempotencyKey == order.IdempotencyKey) {
			return domain.ErrDuplicate
		}
	}
	cp := *order
	r.m.orders[order.ID] = &cp
	return nil
}

func (r *OrderRepo) CreateItem(item *entity.OrderItem) error {
	r.m.dataMu.Lock()
	defer r.m.dataMu.Unlock()
	cp := *item
	if item.ItemID != nil {
		v := *item.ItemID
		cp.ItemID = &v
	}
	r.m.lines[item.OrderID] = append(r.m.lines[item.OrderID], &cp)
	return nil
}

func (r *OrderRepo) CreatePayment(payment *entity.Payment) error {
	r.m.dataMu.Lock()
	defer r.m.dataMu.Unlock()
	cp := *payment
	r.m.payments[payment.OrderID] = append(r.m.payments[payment.OrderID], &cp)
	return nil
}

func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	r.m.dataMu.RLock()
	defer r.m.dataMu.RUnlock()
	o, ok := r.m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *OrderRepo) GetByNumber(number string) (*entity.Order, error) {
	r.m.dataMu.RLock()
	defer r.m.dataMu.RUnlock()
	for _, o := range r.m.orders {
		if o.Number == number {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *OrderRepo) GetByIdempotencyKey(key string) (*entity.Order, error) {
	r.m.dataMu.RLock()
	defer r.m.dataMu.RUnlock()
	for _, o := range r.m.orders {
		if o.IdempotencyKey == key {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *OrderRepo) GetItemsByOrderID(orderID string) ([]*entity.OrderItem, error) {
	r.m.dataMu.RLock()
	defer r.m.dataMu.RUnlock()
	var out []*entity.OrderItem
	for _, l := range r.m.lines[orderID] {
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (r *OrderRepo) GetPaymentsByOrderID(orderID string) ([]*entity.Payment, error) {
	r.m.dataMu.RLock()
	defer r.m.dataMu.RUnlock()
	var out []*entity.Payment
	for _, p := range r.m.payments[orderID] {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *OrderRepo) GetPaymentByID(id string) (*entity.Payment, error) {
	r.m.dataMu.RLock()
	defer r.m.dataMu.RUnlock()
	for _, ps := range r.m.payments {
		for _, p := range ps {
			if p.ID == id {
				cp := *p
				return &cp, nil
			}
		}
	}
	return nil, nil
}

// CustomerRepo clientes en memoria.
type CustomerRepo struct{ m *Mem }

// NewCustomerRepo construye el repositorio sobre el estado compartido.
func NewCustomerRepo(m *Mem) *CustomerRepo { return &CustomerRepo{m: m} }

func (r *CustomerRepo) Create(customer *entity.Customer) error {
	r.m.dataMu.Lock()
	defer r.m.dataMu.Unlock()
	if _, ok := r.m.customers[customer.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *customer
	r.m.customers[customer.ID] = &cp
	return nil
}

func (r *CustomerRepo) GetByID(id string) (*entity.Customer, error) {
	r.m.dataMu.RLock()
	defer r.m.dataMu.RUnlock()
	c, ok := r.m.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *CustomerRepo) List(limit, offset int) ([]*entity.Customer, error) {
	r.m.dataMu.RLock()
	defer r.m.dataMu.RUnlock()
	all := make([]*entity.Customer, 0, len(r.m.customers))
	for _, c := range r.m.customers {
		cp := *c
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return page(all, limit, offset), nil
}

// TxRunner implementación en memoria de los puertos transaccionales: snapshot
// antes de la unidad de trabajo, restore si falla.
type TxRunner struct {
	m *Mem
	// Retries reintentos ante domain.ErrConflict, como el runner real.
	Retries int
}

// NewTxRunner construye el runner sobre el estado compartido.
func NewTxRunner(m *Mem) *TxRunner { return &TxRunner{m: m, Retries: 1} }

func (t *TxRunner) run(fn func() error) error {
	var err error
	for attempt := 0; attempt <= t.Retries; attempt++ {
		snap := t.m.snapshot()
		err = fn()
		if err == nil {
			return nil
		}
		t.m.restore(snap)
		if !isConflict(err) {
			return err
		}
	}
	return err
}

// Run implementa inventory.TxRunner.
func (t *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	return t.run(func() error {
		return fn(NewItemRepo(t.m), NewLedgerRepo(t.m))
	})
}

// RunProduction implementa production.TxRunner.
func (t *TxRunner) RunProduction(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	ledgerRepo repository.LedgerRepository,
	runRepo repository.ProductionRepository,
) error) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	return t.run(func() error {
		return fn(NewItemRepo(t.m), NewLedgerRepo(t.m), NewProductionRepo(t.m))
	})
}

// RunOrder implementa orders.TxRunner.
func (t *TxRunner) RunOrder(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	ledgerRepo repository.LedgerRepository,
	orderRepo repository.OrderRepository,
) error) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	return t.run(func() error {
		return fn(NewItemRepo(t.m), NewLedgerRepo(t.m), NewOrderRepo(t.m))
	})
}

func isConflict(err error) bool {
	return errors.Is(err, domain.ErrConflict)
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
