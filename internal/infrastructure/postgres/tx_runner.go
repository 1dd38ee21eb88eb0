package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/acexpress/courier-api/internal/application/billing"
	"github.com/acexpress/courier-api/internal/domain"
	"github.com/acexpress/courier-api/internal/domain/repository"
)

// Ensure TxRunner implements the billing transaction ports.
var _ billing.LedgerTxRunner = (*TxRunner)(nil)
var _ billing.InvoicingTxRunner = (*TxRunner)(nil)
var _ billing.PaymentTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con repos
// atados a la tx. Los fallos de serialización/deadlock se traducen a
// domain.ErrConcurrency para que el caller decida el reintento.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunLedger transacción de posteo: cliente (lock de fila) + libro mayor.
func (r *TxRunner) RunLedger(ctx context.Context, fn func(
	customerRepo repository.CustomerRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewCustomerRepository(q), NewLedgerRepository(q))
	})
}

// RunInvoicing transacción de confirmación: envío + facturas + débito.
func (r *TxRunner) RunInvoicing(ctx context.Context, fn func(
	shipmentRepo repository.ShipmentRepository,
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewShipmentRepository(q), NewInvoiceRepository(q), NewCustomerRepository(q), NewLedgerRepository(q))
	})
}

// RunPayment transacción de abono: pago + crédito en el libro mayor.
func (r *TxRunner) RunPayment(ctx context.Context, fn func(
	customerRepo repository.CustomerRepository,
	paymentRepo repository.PaymentRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewCustomerRepository(q), NewPaymentRepository(q), NewLedgerRepository(q))
	})
}

// run inicia la transacción, ejecuta fn y hace Commit o Rollback.
func (r *TxRunner) run(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		if isSerializationFailure(err) {
			return domain.ErrConcurrency
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isSerializationFailure(err) {
			return domain.ErrConcurrency
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
