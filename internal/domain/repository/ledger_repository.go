package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/acexpress/courier-api/internal/domain/entity"
)

// LedgerFilter filtros compartidos por el listado y el resumen: ambos deben
// operar sobre el mismo conjunto de filas.
type LedgerFilter struct {
	CustomerID string // vacío = todos los clientes (vista consolidada)
	EntryType  string
	DateFrom   *time.Time
	DateTo     *time.Time
	SortBy     string // created_at | debit | credit | entry_type
	SortOrder  string // asc | desc (default: created_at desc)
	Limit      int
	Offset     int
}

// LedgerSummary agregados del conjunto filtrado.
type LedgerSummary struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	BalanceDue  decimal.Decimal // total_debit - total_credit
}

// LedgerRepository define el puerto de persistencia del libro mayor.
// Append-only: no existe Update ni Delete de entradas.
type LedgerRepository interface {
	Append(entry *entity.LedgerEntry) error
	// List devuelve la página de entradas y el total de filas del filtro.
	List(filter LedgerFilter) ([]*entity.LedgerEntry, int, error)
	// Summary agrega débitos y créditos sobre el mismo filtro que List.
	Summary(filter LedgerFilter) (*LedgerSummary, error)
	// ListByCustomer devuelve todas las entradas de un cliente en orden de
	// commit (created_at, seq). Para replay/verificación del invariante.
	ListByCustomer(customerID string) ([]*entity.LedgerEntry, error)
}
