package repository

import (
	"github.com/shopspring/decimal"

	"github.com/acexpress/courier-api/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer.
// GetForUpdate y UpdateLedgerBalance solo tienen sentido dentro de una
// transacción (repos atados a tx vía el TxRunner).
type CustomerRepository interface {
	Create(customer *entity.Customer) error
	GetByID(id string) (*entity.Customer, error)
	List(limit, offset int) ([]*entity.Customer, error)
	Update(customer *entity.Customer) error
	// GetForUpdate bloquea la fila del cliente (SELECT ... FOR UPDATE) para
	// serializar el read-compute-write del posteo por cliente.
	GetForUpdate(id string) (*entity.Customer, error)
	// UpdateLedgerBalance actualiza el agregado derivado del libro mayor.
	// Solo el posteo de ledger debe llamarlo.
	UpdateLedgerBalance(id string, balance decimal.Decimal) error
}
