package repository

import "github.com/acexpress/courier-api/internal/domain/entity"

// InvoiceRepository define el puerto de persistencia para ShipmentInvoice.
type InvoiceRepository interface {
	// Create persiste la factura asignando su número consecutivo. Retorna
	// domain.ErrDuplicate si ya existe una factura del mismo tipo para el
	// envío (constraint único (shipment_id, invoice_type)).
	Create(invoice *entity.ShipmentInvoice) error
	GetByID(id string) (*entity.ShipmentInvoice, error)
	// GetByShipment devuelve las facturas del envío (0, 1 o 2 filas).
	GetByShipment(shipmentID string) ([]*entity.ShipmentInvoice, error)
	UpdateStatus(id, status string) error
}
