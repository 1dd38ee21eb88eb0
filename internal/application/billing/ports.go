package billing

import (
	"context"

	"github.com/acexpress/courier-api/internal/domain/entity"
	"github.com/acexpress/courier-api/internal/domain/repository"
)

// LedgerTxRunner ejecuta fn dentro de una transacción con los repos del libro
// mayor. La implementación debe traducir fallos de serialización del storage
// a domain.ErrConcurrency para que el poster decida el reintento.
type LedgerTxRunner interface {
	RunLedger(ctx context.Context, fn func(
		customerRepo repository.CustomerRepository,
		ledgerRepo repository.LedgerRepository,
	) error) error
}

// InvoicingTxRunner ejecuta fn dentro de una transacción que cubre la
// confirmación del envío, la creación de ambas facturas y el débito en el
// libro mayor. Todo o nada: un fallo parcial deja el envío reintentable.
type InvoicingTxRunner interface {
	RunInvoicing(ctx context.Context, fn func(
		shipmentRepo repository.ShipmentRepository,
		invoiceRepo repository.InvoiceRepository,
		customerRepo repository.CustomerRepository,
		ledgerRepo repository.LedgerRepository,
	) error) error
}

// PaymentTxRunner ejecuta fn dentro de una transacción que cubre el pago y su
// entrada de libro mayor. Un Payment sin LedgerEntry (o viceversa) debe ser
// estructuralmente imposible.
type PaymentTxRunner interface {
	RunPayment(ctx context.Context, fn func(
		customerRepo repository.CustomerRepository,
		paymentRepo repository.PaymentRepository,
		ledgerRepo repository.LedgerRepository,
	) error) error
}

// InvoicePDFGenerator puerto para la representación gráfica de una factura.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(
		ctx context.Context,
		invoice *entity.ShipmentInvoice,
		shipment *entity.Shipment,
		customer *entity.Customer,
	) ([]byte, error)
}
