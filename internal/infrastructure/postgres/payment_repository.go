package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/acexpress/courier-api/internal/domain/entity"
	"github.com/acexpress/courier-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

const paymentColumns = `id, customer_id, amount, payment_date, method, reference, notes, invoice_id, created_at`

// PaymentRepo implementación de PaymentRepository (usable con pool o tx).
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

// Create persiste el abono.
func (r *PaymentRepo) Create(p *entity.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.CustomerID, p.Amount, p.PaymentDate, p.Method,
		p.Reference, p.Notes, p.InvoiceID, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID obtiene un abono por ID.
func (r *PaymentRepo) GetByID(id string) (*entity.Payment, error) {
	query := `SELECT id, customer_id, amount, payment_date, method, reference, notes,
		COALESCE(invoice_id, ''), created_at FROM payments WHERE id = $1`
	p, err := scanPayment(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// ListByCustomer lista los abonos del cliente, el más reciente primero.
func (r *PaymentRepo) ListByCustomer(customerID string, limit, offset int) ([]*entity.Payment, error) {
	query := `SELECT id, customer_id, amount, payment_date, method, reference, notes,
		COALESCE(invoice_id, ''), created_at FROM payments
		WHERE customer_id = $1 ORDER BY payment_date DESC, created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var p entity.Payment
	err := row.Scan(
		&p.ID, &p.CustomerID, &p.Amount, &p.PaymentDate, &p.Method,
		&p.Reference, &p.Notes, &p.InvoiceID, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
