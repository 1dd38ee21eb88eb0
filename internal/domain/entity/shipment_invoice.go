package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de factura de envío. Por envío confirmado existe exactamente una de
// cada tipo (constraint único (shipment_id, invoice_type) en storage).
const (
	InvoiceTypeDeclaredValue = "DECLARED_VALUE" // valor aduanero de la mercancía
	InvoiceTypeBilling       = "BILLING"        // flete + recargos
)

// Estados de una factura de envío.
const (
	InvoiceStatusDraft     = "DRAFT"
	InvoiceStatusConfirmed = "CONFIRMED"
	InvoiceStatusPaid      = "PAID"   // saldada en efectivo al momento del registro
	InvoiceStatusPosted    = "POSTED" // con débito en el libro mayor del cliente
)

// ShipmentInvoice una de las dos facturas generadas al confirmar un envío.
type ShipmentInvoice struct {
	ID            string
	ShipmentID    string
	CustomerID    string
	InvoiceType   string
	InvoiceNumber string // DV-000001 / FR-000001, asignado por secuencia
	Total         decimal.Decimal
	Status        string
	IssuedAt      time.Time
	PDFURL        string
	CreatedAt     time.Time
}
