package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de entrada del libro mayor.
const (
	EntryTypeInvoice    = "INVOICE"    // débito por factura de flete
	EntryTypePayment    = "PAYMENT"    // crédito por pago del cliente
	EntryTypeAdjustment = "ADJUSTMENT" // corrección manual (débito o crédito)
	EntryTypeRefund     = "REFUND"     // devolución de dinero al cliente
)

// ValidEntryType reporta si t pertenece al conjunto de tipos definidos.
func ValidEntryType(t string) bool {
	switch t {
	case EntryTypeInvoice, EntryTypePayment, EntryTypeAdjustment, EntryTypeRefund:
		return true
	}
	return false
}

// LedgerEntry una fila inmutable del libro mayor del cliente (append-only).
// Exactamente uno de Debit/Credit es distinto de cero. Las correcciones son
// nuevas entradas ADJUSTMENT/REFUND, nunca ediciones.
//
// Invariante: balance_after[i] = balance_after[i-1] + debit[i] - credit[i],
// ordenando por created_at con desempate por Seq (secuencia de inserción).
type LedgerEntry struct {
	ID           string
	Seq          int64 // bigserial; desempata entradas con el mismo created_at
	CustomerID   string
	EntryType    string
	Debit        decimal.Decimal
	Credit       decimal.Decimal
	Description  string
	ReferenceID  string // id de la factura o del pago que origina la entrada
	BalanceAfter decimal.Decimal
	CreatedAt    time.Time
}
