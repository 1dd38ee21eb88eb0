package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/acexpress/courier-api/internal/domain"
	"github.com/acexpress/courier-api/internal/domain/entity"
	"github.com/acexpress/courier-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = `id, shipment_id, customer_id, invoice_type, invoice_number, total, status, issued_at, pdf_url, created_at`

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la factura asignando su consecutivo por secuencia
// (DV-000001 / FR-000001 según el tipo). El constraint único
// (shipment_id, invoice_type) hace la generación idempotente: la segunda
// inserción del mismo tipo retorna domain.ErrDuplicate.
func (r *InvoiceRepo) Create(inv *entity.ShipmentInvoice) error {
	seq, prefix := "billing_invoice_seq", "FR"
	if inv.InvoiceType == entity.InvoiceTypeDeclaredValue {
		seq, prefix = "declared_value_invoice_seq", "DV"
	}
	// El número se asigna dentro de la misma transacción que la fila
	query := `
		INSERT INTO shipment_invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5 || '-' || lpad(nextval('` + seq + `')::text, 6, '0'),
		        $6, $7, $8, $9, $10)
		RETURNING invoice_number`
	err := r.q.QueryRow(context.Background(), query,
		inv.ID, inv.ShipmentID, inv.CustomerID, inv.InvoiceType, prefix,
		inv.Total, inv.Status, inv.IssuedAt, inv.PDFURL, inv.CreatedAt,
	).Scan(&inv.InvoiceNumber)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert shipment invoice: %w", err)
	}
	return nil
}

// GetByID obtiene una factura por ID.
func (r *InvoiceRepo) GetByID(id string) (*entity.ShipmentInvoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM shipment_invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shipment invoice: %w", err)
	}
	return inv, nil
}

// GetByShipment devuelve las facturas del envío (0, 1 o 2 filas).
func (r *InvoiceRepo) GetByShipment(shipmentID string) ([]*entity.ShipmentInvoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM shipment_invoices
		WHERE shipment_id = $1 ORDER BY invoice_type`
	rows, err := r.q.Query(context.Background(), query, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("list shipment invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.ShipmentInvoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// UpdateStatus cambia el estado de la factura.
func (r *InvoiceRepo) UpdateStatus(id, status string) error {
	query := `UPDATE shipment_invoices SET status = $2 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, status)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanInvoice(row pgx.Row) (*entity.ShipmentInvoice, error) {
	var inv entity.ShipmentInvoice
	err := row.Scan(
		&inv.ID, &inv.ShipmentID, &inv.CustomerID, &inv.InvoiceType, &inv.InvoiceNumber,
		&inv.Total, &inv.Status, &inv.IssuedAt, &inv.PDFURL, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
