package http

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/acexpress/courier-api/internal/domain"
	"github.com/acexpress/courier-api/internal/domain/entity"
	"github.com/acexpress/courier-api/internal/domain/repository"
	"github.com/acexpress/courier-api/pkg/logger"
)

// Stubs en memoria de los puertos de persistencia para probar los handlers
// de punta a punta sin base de datos.
type stubStore struct {
	customers map[string]*entity.Customer
	shipments map[string]*entity.Shipment
	invoices  map[string]*entity.ShipmentInvoice
	entries   []*entity.LedgerEntry
}

func newStubStore() *stubStore {
	return &stubStore{
		customers: make(map[string]*entity.Customer),
		shipments: make(map[string]*entity.Shipment),
		invoices:  make(map[string]*entity.ShipmentInvoice),
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "test", Level: "error"})
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// ── customers ──

type stubCustomerRepo struct{ s *stubStore }

func (r *stubCustomerRepo) Create(c *entity.Customer) error {
	r.s.customers[c.ID] = c
	return nil
}

func (r *stubCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	return r.s.customers[id], nil
}

func (r *stubCustomerRepo) List(limit, offset int) ([]*entity.Customer, error) {
	out := make([]*entity.Customer, 0, len(r.s.customers))
	for _, c := range r.s.customers {
		out = append(out, c)
	}
	return out, nil
}

func (r *stubCustomerRepo) Update(c *entity.Customer) error {
	r.s.customers[c.ID] = c
	return nil
}

func (r *stubCustomerRepo) GetForUpdate(id string) (*entity.Customer, error) {
	return r.s.customers[id], nil
}

func (r *stubCustomerRepo) UpdateLedgerBalance(id string, balance decimal.Decimal) error {
	c, ok := r.s.customers[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.LedgerBalance = balance
	return nil
}

// ── ledger ──

type stubLedgerRepo struct{ s *stubStore }

func (r *stubLedgerRepo) Append(e *entity.LedgerEntry) error {
	e.Seq = int64(len(r.s.entries) + 1)
	r.s.entries = append(r.s.entries, e)
	return nil
}

func (r *stubLedgerRepo) List(filter repository.LedgerFilter) ([]*entity.LedgerEntry, int, error) {
	return r.s.entries, len(r.s.entries), nil
}

func (r *stubLedgerRepo) Summary(filter repository.LedgerFilter) (*repository.LedgerSummary, error) {
	sum := &repository.LedgerSummary{TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, e := range r.s.entries {
		sum.TotalDebit = sum.TotalDebit.Add(e.Debit)
		sum.TotalCredit = sum.TotalCredit.Add(e.Credit)
	}
	sum.BalanceDue = sum.TotalDebit.Sub(sum.TotalCredit)
	return sum, nil
}

func (r *stubLedgerRepo) ListByCustomer(customerID string) ([]*entity.LedgerEntry, error) {
	out := make([]*entity.LedgerEntry, 0, len(r.s.entries))
	for _, e := range r.s.entries {
		if e.CustomerID == customerID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ── shipments ──

type stubShipmentRepo struct{ s *stubStore }

func (r *stubShipmentRepo) Create(sh *entity.Shipment) error {
	r.s.shipments[sh.ID] = sh
	return nil
}

func (r *stubShipmentRepo) GetByID(id string) (*entity.Shipment, error) {
	return r.s.shipments[id], nil
}

func (r *stubShipmentRepo) List(limit, offset int) ([]*entity.Shipment, error) {
	out := make([]*entity.Shipment, 0, len(r.s.shipments))
	for _, sh := range r.s.shipments {
		out = append(out, sh)
	}
	return out, nil
}

func (r *stubShipmentRepo) Update(sh *entity.Shipment) error {
	r.s.shipments[sh.ID] = sh
	return nil
}

func (r *stubShipmentRepo) SetConfirmed(id string, at time.Time) error {
	sh, ok := r.s.shipments[id]
	if !ok {
		return domain.ErrNotFound
	}
	sh.Status = entity.ShipmentStatusConfirmed
	sh.ConfirmedAt = &at
	return nil
}

func (r *stubShipmentRepo) SetAirwayBill(id, airwayBillNo string) error {
	sh, ok := r.s.shipments[id]
	if !ok {
		return domain.ErrNotFound
	}
	sh.AirwayBillNo = airwayBillNo
	return nil
}

// ── invoices ──

type stubInvoiceRepo struct{ s *stubStore }

func (r *stubInvoiceRepo) Create(inv *entity.ShipmentInvoice) error {
	for _, existing := range r.s.invoices {
		if existing.ShipmentID == inv.ShipmentID && existing.InvoiceType == inv.InvoiceType {
			return domain.ErrDuplicate
		}
	}
	r.s.invoices[inv.ID] = inv
	return nil
}

func (r *stubInvoiceRepo) GetByID(id string) (*entity.ShipmentInvoice, error) {
	return r.s.invoices[id], nil
}

func (r *stubInvoiceRepo) GetByShipment(shipmentID string) ([]*entity.ShipmentInvoice, error) {
	var out []*entity.ShipmentInvoice
	for _, inv := range r.s.invoices {
		if inv.ShipmentID == shipmentID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *stubInvoiceRepo) UpdateStatus(id, status string) error {
	inv, ok := r.s.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.Status = status
	return nil
}

// ── tx runner ──

type stubTxRunner struct{ s *stubStore }

func (t *stubTxRunner) RunLedger(ctx context.Context, fn func(
	customerRepo repository.CustomerRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	return fn(&stubCustomerRepo{t.s}, &stubLedgerRepo{t.s})
}

func (t *stubTxRunner) RunInvoicing(ctx context.Context, fn func(
	shipmentRepo repository.ShipmentRepository,
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	return fn(&stubShipmentRepo{t.s}, &stubInvoiceRepo{t.s}, &stubCustomerRepo{t.s}, &stubLedgerRepo{t.s})
}
