package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer representa un cliente del courier (remitente facturable).
// LedgerBalance es un agregado derivado: siempre igual al balance_after de la
// última entrada del libro mayor del cliente. Solo lo muta el posteo de ledger.
type Customer struct {
	ID            string
	Name          string
	TaxID         string
	Email         string
	Phone         string
	Address       string
	City          string
	Country       string
	LedgerBalance decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
