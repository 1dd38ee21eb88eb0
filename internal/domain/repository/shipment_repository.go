package repository

import (
	"time"

	"github.com/acexpress/courier-api/internal/domain/entity"
)

// ShipmentRepository define el puerto de persistencia para Shipment con sus
// cajas, ítems declarados y datos de cobro.
type ShipmentRepository interface {
	Create(shipment *entity.Shipment) error
	GetByID(id string) (*entity.Shipment, error)
	List(limit, offset int) ([]*entity.Shipment, error)
	// Update reemplaza cabecera, cajas e ítems. El caso de uso garantiza que
	// solo se llama con envíos en DRAFT.
	Update(shipment *entity.Shipment) error
	// SetConfirmed marca el envío como CONFIRMED (transición de una sola vía).
	SetConfirmed(id string, at time.Time) error
	// SetAirwayBill asigna el número de guía aérea (una sola vez).
	SetAirwayBill(id, airwayBillNo string) error
}
