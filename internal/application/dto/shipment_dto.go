package dto

import "github.com/shopspring/decimal"

// BoxRequest una caja del envío (dimensiones en cm, peso real en kg).
type BoxRequest struct {
	Length       decimal.Decimal `json:"length"`
	Width        decimal.Decimal `json:"width"`
	Height       decimal.Decimal `json:"height"`
	ActualWeight decimal.Decimal `json:"actual_weight"`
}

// ItemRequest línea de valor declarado para aduana.
type ItemRequest struct {
	Description string          `json:"description"`
	HSCode      string          `json:"hs_code,omitempty"`
	Pieces      decimal.Decimal `json:"pieces"`
	UnitValue   decimal.Decimal `json:"unit_value"`
}

// BillingRequest datos de cobro del envío. RateBasis declara cuál campo de
// tarifa es el autoritativo ("per_kg" | "total"); si viene vacío se reusa la
// última base persistida.
type BillingRequest struct {
	RatePerKg     decimal.Decimal `json:"rate_per_kg"`
	TotalRate     decimal.Decimal `json:"total_rate"`
	RateBasis     string          `json:"rate_basis,omitempty"`
	EFormFee      decimal.Decimal `json:"e_form_fee"`
	RemoteAreaFee decimal.Decimal `json:"remote_area_fee"`
	BoxCharges    decimal.Decimal `json:"box_charges"`
	PaymentMethod string          `json:"payment_method"` // CASH | CREDIT
	CashReceived  decimal.Decimal `json:"cash_received"`
}

// CreateShipmentRequest body para POST /api/shipments (queda en DRAFT).
type CreateShipmentRequest struct {
	CustomerID       string         `json:"customer_id"`
	SenderName       string         `json:"sender_name,omitempty"`
	ConsigneeName    string         `json:"consignee_name"`
	ConsigneeAddress string         `json:"consignee_address,omitempty"`
	ConsigneeCountry string         `json:"consignee_country,omitempty"`
	Boxes            []BoxRequest   `json:"boxes"`
	Items            []ItemRequest  `json:"items"`
	Billing          BillingRequest `json:"billing"`
}

// UpdateShipmentRequest body para PUT /api/shipments/:id (solo DRAFT).
type UpdateShipmentRequest struct {
	SenderName       string         `json:"sender_name,omitempty"`
	ConsigneeName    string         `json:"consignee_name,omitempty"`
	ConsigneeAddress string         `json:"consignee_address,omitempty"`
	ConsigneeCountry string         `json:"consignee_country,omitempty"`
	Boxes            []BoxRequest   `json:"boxes"`
	Items            []ItemRequest  `json:"items"`
	Billing          BillingRequest `json:"billing"`
}

// AirwayBillRequest body para PATCH /api/shipments/:id/airway-bill.
type AirwayBillRequest struct {
	AirwayBillNo string `json:"airway_bill_no"`
}

// BoxResponse caja con su peso volumétrico derivado.
type BoxResponse struct {
	ID               string          `json:"id"`
	Length           decimal.Decimal `json:"length"`
	Width            decimal.Decimal `json:"width"`
	Height           decimal.Decimal `json:"height"`
	ActualWeight     decimal.Decimal `json:"actual_weight"`
	VolumetricWeight decimal.Decimal `json:"volumetric_weight"`
}

// ItemResponse línea declarada con su total.
type ItemResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	HSCode      string          `json:"hs_code,omitempty"`
	Pieces      decimal.Decimal `json:"pieces"`
	UnitValue   decimal.Decimal `json:"unit_value"`
	Total       decimal.Decimal `json:"total"`
}

// BillingResponse datos de cobro sincronizados.
type BillingResponse struct {
	RatePerKg        decimal.Decimal `json:"rate_per_kg"`
	TotalRate        decimal.Decimal `json:"total_rate"`
	RateBasis        string          `json:"rate_basis"`
	EFormFee         decimal.Decimal `json:"e_form_fee"`
	RemoteAreaFee    decimal.Decimal `json:"remote_area_fee"`
	BoxCharges       decimal.Decimal `json:"box_charges"`
	PaymentMethod    string          `json:"payment_method"`
	CashReceived     decimal.Decimal `json:"cash_received"`
	ChargeableWeight decimal.Decimal `json:"chargeable_weight"`
	GrandTotal       decimal.Decimal `json:"grand_total"`
}

// ShipmentResponse envío completo.
type ShipmentResponse struct {
	ID               string          `json:"id"`
	RefNumber        string          `json:"ref_number"`
	CustomerID       string          `json:"customer_id"`
	SenderName       string          `json:"sender_name,omitempty"`
	ConsigneeName    string          `json:"consignee_name"`
	ConsigneeAddress string          `json:"consignee_address,omitempty"`
	ConsigneeCountry string          `json:"consignee_country,omitempty"`
	AirwayBillNo     string          `json:"airway_bill_no,omitempty"`
	Status           string          `json:"status"`
	Boxes            []BoxResponse   `json:"boxes"`
	Items            []ItemResponse  `json:"items"`
	Billing          BillingResponse `json:"billing"`
	ConfirmedAt      string          `json:"confirmed_at,omitempty"`
	CreatedAt        string          `json:"created_at"`
}

// InvoiceResponse factura de envío (DECLARED_VALUE o BILLING).
type InvoiceResponse struct {
	ID            string          `json:"id"`
	ShipmentID    string          `json:"shipment_id"`
	CustomerID    string          `json:"customer_id"`
	InvoiceType   string          `json:"invoice_type"`
	InvoiceNumber string          `json:"invoice_number"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	IssuedAt      string          `json:"issued_at"`
	PDFURL        string          `json:"pdf_url,omitempty"`
}

// ConfirmShipmentResponse envío confirmado con sus dos facturas.
type ConfirmShipmentResponse struct {
	Shipment ShipmentResponse  `json:"shipment"`
	Invoices []InvoiceResponse `json:"invoices"`
}
