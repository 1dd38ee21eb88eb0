package dto

import "github.com/shopspring/decimal"

// LedgerListRequest filtros + paginación + orden para el listado del libro
// mayor. CustomerID vacío = vista consolidada de todos los clientes.
type LedgerListRequest struct {
	CustomerID string `query:"customer_id"`
	EntryType  string `query:"entry_type"`
	DateFrom   string `query:"date_from"` // YYYY-MM-DD
	DateTo     string `query:"date_to"`   // YYYY-MM-DD
	SortBy     string `query:"sort_by"`   // created_at | debit | credit | entry_type
	SortOrder  string `query:"sort_order"`
	PageRequest
}

// LedgerEntryResponse una entrada del libro mayor.
type LedgerEntryResponse struct {
	ID           string          `json:"id"`
	CustomerID   string          `json:"customer_id"`
	EntryType    string          `json:"entry_type"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	Description  string          `json:"description"`
	ReferenceID  string          `json:"reference_id,omitempty"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreatedAt    string          `json:"created_at"`
}

// LedgerListResponse página de entradas.
type LedgerListResponse struct {
	Entries    []LedgerEntryResponse `json:"entries"`
	Pagination PageResponse          `json:"pagination"`
}

// LedgerSummaryResponse agregados del mismo conjunto filtrado que el listado.
type LedgerSummaryResponse struct {
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	BalanceDue  decimal.Decimal `json:"balance_due"`
}

// AdjustmentRequest body para POST /api/ledger/adjustments. Solo entradas de
// corrección manual: ADJUSTMENT o REFUND.
type AdjustmentRequest struct {
	CustomerID  string          `json:"customer_id"`
	EntryType   string          `json:"entry_type"` // ADJUSTMENT | REFUND
	Direction   string          `json:"direction"`  // debit | credit
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ReferenceID string          `json:"reference_id,omitempty"`
}

// RecordPaymentRequest body para POST /api/payments.
type RecordPaymentRequest struct {
	CustomerID  string          `json:"customer_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"payment_date"` // YYYY-MM-DD; vacío = hoy
	Method      string          `json:"method"`
	Reference   string          `json:"reference,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	InvoiceID   string          `json:"invoice_id,omitempty"`
}

// PaymentResponse pago registrado con su entrada de libro mayor.
type PaymentResponse struct {
	ID          string          `json:"id"`
	CustomerID  string          `json:"customer_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"payment_date"`
	Method      string          `json:"method"`
	Reference   string          `json:"reference,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	InvoiceID   string          `json:"invoice_id,omitempty"`
}

// RecordPaymentResponse resultado atómico: pago + entrada.
type RecordPaymentResponse struct {
	Payment PaymentResponse     `json:"payment"`
	Entry   LedgerEntryResponse `json:"ledger_entry"`
}
