package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados al registrar un abono.
const (
	PaymentMethodCash     = "CASH"
	PaymentMethodTransfer = "TRANSFER"
	PaymentMethodCard     = "CARD"
	PaymentMethodCheque   = "CHEQUE"
)

// ValidPaymentMethod reporta si m pertenece al conjunto de métodos definidos.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCard, PaymentMethodCheque:
		return true
	}
	return false
}

// Payment un abono del cliente. Produce exactamente una entrada PAYMENT
// (crédito) en el libro mayor, en la misma transacción.
type Payment struct {
	ID          string
	CustomerID  string
	Amount      decimal.Decimal
	PaymentDate time.Time
	Method      string
	Reference   string // nro. de transferencia, cheque, etc.
	Notes       string
	InvoiceID   string // opcional: factura a la que se imputa el pago
	CreatedAt   time.Time
}
