package billing_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/acexpress/courier-api/internal/domain"
	"github.com/acexpress/courier-api/internal/domain/entity"
	"github.com/acexpress/courier-api/internal/domain/repository"
	"github.com/acexpress/courier-api/pkg/logger"
)

// ────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos de persistencia. mu protege los mapas;
// txMu serializa las "transacciones" completas igual que lo haría el lock de
// fila del cliente en Postgres.
// ────────────────────────────────────────────────────────────────────────────

type fakeStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	customers map[string]*entity.Customer
	shipments map[string]*entity.Shipment
	invoices  map[string]*entity.ShipmentInvoice
	payments  map[string]*entity.Payment
	entries   []*entity.LedgerEntry

	nextSeq int64
	dvSeq   int
	frSeq   int
	refSeq  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		customers: make(map[string]*entity.Customer),
		shipments: make(map[string]*entity.Shipment),
		invoices:  make(map[string]*entity.ShipmentInvoice),
		payments:  make(map[string]*entity.Payment),
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "test", Level: "error"})
}

// ─── CustomerRepository ─────────────────────────────────────────────────────

type fakeCustomerRepo struct{ s *fakeStore }

func (r *fakeCustomerRepo) Create(c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.customers[c.ID] = c
	return nil
}

func (r *fakeCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCustomerRepo) List(limit, offset int) ([]*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Customer, 0, len(r.s.customers))
	for _, c := range r.s.customers {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, limit, offset), nil
}

func (r *fakeCustomerRepo) Update(c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.customers[c.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	r.s.customers[c.ID] = &cp
	return nil
}

// GetForUpdate: la serialización real la da el txMu del runner.
func (r *fakeCustomerRepo) GetForUpdate(id string) (*entity.Customer, error) {
	return r.GetByID(id)
}

func (r *fakeCustomerRepo) UpdateLedgerBalance(id string, balance decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.LedgerBalance = balance
	return nil
}

// ─── ShipmentRepository ─────────────────────────────────────────────────────

type fakeShipmentRepo struct{ s *fakeStore }

func (r *fakeShipmentRepo) Create(sh *entity.Shipment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.refSeq++
	sh.RefNumber = fmt.Sprintf("ACE-%d-%06d", time.Now().Year(), r.s.refSeq)
	cp := *sh
	r.s.shipments[sh.ID] = &cp
	return nil
}

func (r *fakeShipmentRepo) GetByID(id string) (*entity.Shipment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shipments[id]
	if !ok {
		return nil, nil
	}
	cp := *sh
	return &cp, nil
}

func (r *fakeShipmentRepo) List(limit, offset int) ([]*entity.Shipment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Shipment, 0, len(r.s.shipments))
	for _, sh := range r.s.shipments {
		cp := *sh
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RefNumber < out[j].RefNumber })
	return paginate(out, limit, offset), nil
}

func (r *fakeShipmentRepo) Update(sh *entity.Shipment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.shipments[sh.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *sh
	r.s.shipments[sh.ID] = &cp
	return nil
}

func (r *fakeShipmentRepo) SetConfirmed(id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shipments[id]
	if !ok {
		return domain.ErrNotFound
	}
	sh.Status = entity.ShipmentStatusConfirmed
	sh.ConfirmedAt = &at
	return nil
}

func (r *fakeShipmentRepo) SetAirwayBill(id, airwayBillNo string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shipments[id]
	if !ok {
		return domain.ErrNotFound
	}
	sh.AirwayBillNo = airwayBillNo
	return nil
}

// ─── InvoiceRepository ──────────────────────────────────────────────────────

type fakeInvoiceRepo struct{ s *fakeStore }

// Create replica el constraint único (shipment_id, invoice_type) y la
// asignación de número por secuencia.
func (r *fakeInvoiceRepo) Create(inv *entity.ShipmentInvoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.invoices {
		if existing.ShipmentID == inv.ShipmentID && existing.InvoiceType == inv.InvoiceType {
			return domain.ErrDuplicate
		}
	}
	if inv.InvoiceType == entity.InvoiceTypeDeclaredValue {
		r.s.dvSeq++
		inv.InvoiceNumber = fmt.Sprintf("DV-%06d", r.s.dvSeq)
	} else {
		r.s.frSeq++
		inv.InvoiceNumber = fmt.Sprintf("FR-%06d", r.s.frSeq)
	}
	cp := *inv
	r.s.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) GetByID(id string) (*entity.ShipmentInvoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInvoiceRepo) GetByShipment(shipmentID string) ([]*entity.ShipmentInvoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.ShipmentInvoice
	for _, inv := range r.s.invoices {
		if inv.ShipmentID == shipmentID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceType < out[j].InvoiceType })
	return out, nil
}

func (r *fakeInvoiceRepo) UpdateStatus(id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.Status = status
	return nil
}

// ─── LedgerRepository ───────────────────────────────────────────────────────

type fakeLedgerRepo struct{ s *fakeStore }

func (r *fakeLedgerRepo) Append(e *entity.LedgerEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextSeq++
	e.Seq = r.s.nextSeq
	cp := *e
	r.s.entries = append(r.s.entries, &cp)
	return nil
}

func (r *fakeLedgerRepo) List(filter repository.LedgerFilter) ([]*entity.LedgerEntry, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	filtered := r.filterLocked(filter)
	sortEntries(filtered, filter.SortBy, filter.SortOrder)
	total := len(filtered)
	return paginate(filtered, filter.Limit, filter.Offset), total, nil
}

func (r *fakeLedgerRepo) Summary(filter repository.LedgerFilter) (*repository.LedgerSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := &repository.LedgerSummary{
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, e := range r.filterLocked(filter) {
		sum.TotalDebit = sum.TotalDebit.Add(e.Debit)
		sum.TotalCredit = sum.TotalCredit.Add(e.Credit)
	}
	sum.BalanceDue = sum.TotalDebit.Sub(sum.TotalCredit)
	return sum, nil
}

func (r *fakeLedgerRepo) ListByCustomer(customerID string) ([]*entity.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	filtered := r.filterLocked(repository.LedgerFilter{CustomerID: customerID})
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Seq < filtered[j].Seq })
	return filtered, nil
}

func (r *fakeLedgerRepo) filterLocked(filter repository.LedgerFilter) []*entity.LedgerEntry {
	var out []*entity.LedgerEntry
	for _, e := range r.s.entries {
		if filter.CustomerID != "" && e.CustomerID != filter.CustomerID {
			continue
		}
		if filter.EntryType != "" && e.EntryType != filter.EntryType {
			continue
		}
		if filter.DateFrom != nil && e.CreatedAt.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && e.CreatedAt.After(*filter.DateTo) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out
}

func sortEntries(entries []*entity.LedgerEntry, sortBy, sortOrder string) {
	less := func(i, j *entity.LedgerEntry) bool { return i.Seq < j.Seq }
	switch sortBy {
	case "debit":
		less = func(i, j *entity.LedgerEntry) bool { return i.Debit.LessThan(j.Debit) }
	case "credit":
		less = func(i, j *entity.LedgerEntry) bool { return i.Credit.LessThan(j.Credit) }
	case "entry_type":
		less = func(i, j *entity.LedgerEntry) bool { return i.EntryType < j.EntryType }
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if sortOrder == "asc" {
			return less(entries[i], entries[j])
		}
		return less(entries[j], entries[i])
	})
}

// ─── PaymentRepository ──────────────────────────────────────────────────────

type fakePaymentRepo struct{ s *fakeStore }

func (r *fakePaymentRepo) Create(p *entity.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.payments[p.ID] = &cp
	return nil
}

func (r *fakePaymentRepo) GetByID(id string) (*entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePaymentRepo) ListByCustomer(customerID string, limit, offset int) ([]*entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Payment
	for _, p := range r.s.payments {
		if p.CustomerID == customerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

// ─── TxRunner ───────────────────────────────────────────────────────────────

// fakeTxRunner serializa cada callback completo con txMu, igual que el lock
// de fila serializa las transacciones concurrentes del mismo cliente.
type fakeTxRunner struct{ s *fakeStore }

func (t *fakeTxRunner) RunLedger(ctx context.Context, fn func(repository.CustomerRepository, repository.LedgerRepository) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()
	return fn(&fakeCustomerRepo{t.s}, &fakeLedgerRepo{t.s})
}

func (t *fakeTxRunner) RunInvoicing(ctx context.Context, fn func(repository.ShipmentRepository, repository.InvoiceRepository, repository.CustomerRepository, repository.LedgerRepository) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()
	return fn(&fakeShipmentRepo{t.s}, &fakeInvoiceRepo{t.s}, &fakeCustomerRepo{t.s}, &fakeLedgerRepo{t.s})
}

func (t *fakeTxRunner) RunPayment(ctx context.Context, fn func(repository.CustomerRepository, repository.PaymentRepository, repository.LedgerRepository) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()
	return fn(&fakeCustomerRepo{t.s}, &fakePaymentRepo{t.s}, &fakeLedgerRepo{t.s})
}

// flakyLedgerRunner falla las primeras n corridas con err antes de delegar.
type flakyLedgerRunner struct {
	inner *fakeTxRunner
	fails int
	err   error
	calls int
}

func (t *flakyLedgerRunner) RunLedger(ctx context.Context, fn func(repository.CustomerRepository, repository.LedgerRepository) error) error {
	t.calls++
	if t.calls <= t.fails {
		return t.err
	}
	return t.inner.RunLedger(ctx, fn)
}

func paginate[T any](in []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(in) {
			return nil
		}
		in = in[offset:]
	}
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}

// seedCustomer cliente con saldo cero listo para postear.
func seedCustomer(s *fakeStore, id, name string) *entity.Customer {
	c := &entity.Customer{
		ID:            id,
		Name:          name,
		LedgerBalance: decimal.Zero,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	s.customers[id] = c
	return c
}
