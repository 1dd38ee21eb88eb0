package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un envío. El paso Draft -> Confirmed es de una sola vía:
// al confirmar se generan las facturas y el envío queda inmutable
// (salvo la asignación única del número de guía aérea).
const (
	ShipmentStatusDraft     = "DRAFT"
	ShipmentStatusConfirmed = "CONFIRMED"
)

// Métodos de pago del flete.
const (
	BillingMethodCash   = "CASH"   // paga al momento; el remanente queda a crédito
	BillingMethodCredit = "CREDIT" // todo el flete va a la cuenta corriente del cliente
)

// Base de sincronización de tarifas: cuál de los dos campos es el autoritativo.
const (
	RateBasisPerKg = "per_kg" // total_rate = rate_per_kg × peso cobrable
	RateBasisTotal = "total"  // rate_per_kg = total_rate / peso cobrable (tarifa plana)
)

// Shipment representa un envío con sus cajas, ítems declarados y datos de cobro.
type Shipment struct {
	ID               string
	RefNumber        string // consecutivo interno de guía (ej. ACE-2024-000123)
	CustomerID       string // remitente facturable
	SenderName       string
	ConsigneeName    string
	ConsigneeAddress string
	ConsigneeCountry string
	AirwayBillNo     string // asignado una sola vez después de confirmar
	Status           string
	Boxes            []ShipmentBox
	Items            []ProductInvoiceItem
	Billing          BillingInfo
	ConfirmedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ShipmentBox una caja física del envío. Dimensiones en cm, peso real en kg.
type ShipmentBox struct {
	ID           string
	ShipmentID   string
	Length       decimal.Decimal
	Width        decimal.Decimal
	Height       decimal.Decimal
	ActualWeight decimal.Decimal
}

// ProductInvoiceItem línea de valor declarado para aduana.
type ProductInvoiceItem struct {
	ID          string
	ShipmentID  string
	Description string
	HSCode      string
	Pieces      decimal.Decimal
	UnitValue   decimal.Decimal
}

// Total de la línea: piezas × valor unitario.
func (it ProductInvoiceItem) Total() decimal.Decimal {
	return it.Pieces.Mul(it.UnitValue)
}

// BillingInfo datos de cobro del flete embebidos en el envío.
// RatePerKg y TotalRate se mantienen sincronizados según RateBasis;
// GrandTotal se recalcula en cada escritura (ver dominio freight).
type BillingInfo struct {
	RatePerKg        decimal.Decimal
	TotalRate        decimal.Decimal
	RateBasis        string // per_kg | total; última dirección de sincronización usada
	EFormFee         decimal.Decimal
	RemoteAreaFee    decimal.Decimal
	BoxCharges       decimal.Decimal
	PaymentMethod    string // CASH | CREDIT
	CashReceived     decimal.Decimal
	ChargeableWeight decimal.Decimal
	GrandTotal       decimal.Decimal
}
