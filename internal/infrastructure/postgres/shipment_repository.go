package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/acexpress/courier-api/internal/domain"
	"github.com/acexpress/courier-api/internal/domain/entity"
	"github.com/acexpress/courier-api/internal/domain/repository"
)

var _ repository.ShipmentRepository = (*ShipmentRepo)(nil)

const shipmentColumns = `id, ref_number, customer_id, sender_name, consignee_name,
	consignee_address, consignee_country, airway_bill_no, status,
	rate_per_kg, total_rate, rate_basis, e_form_fee, remote_area_fee, box_charges,
	payment_method, cash_received, chargeable_weight, grand_total,
	confirmed_at, created_at, updated_at`

// ShipmentRepo implementación de ShipmentRepository (usable con pool o tx).
// Cabecera, cajas e ítems viven en tablas propias; los datos de cobro van
// embebidos en la cabecera.
type ShipmentRepo struct {
	q Querier
}

// NewShipmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewShipmentRepository(q Querier) *ShipmentRepo {
	return &ShipmentRepo{q: q}
}

// Create persiste el envío con sus cajas e ítems, asignando el consecutivo
// interno de guía (ACE-<año>-000123) por secuencia.
func (r *ShipmentRepo) Create(s *entity.Shipment) error {
	ctx := context.Background()
	query := `
		INSERT INTO shipments (` + shipmentColumns + `)
		VALUES ($1, 'ACE-' || to_char(now(), 'YYYY') || '-' || lpad(nextval('shipment_ref_seq')::text, 6, '0'),
		        $2, $3, $4, $5, $6, $7, $8,
		        $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING ref_number`
	err := r.q.QueryRow(ctx, query,
		s.ID, s.CustomerID, s.SenderName, s.ConsigneeName,
		s.ConsigneeAddress, s.ConsigneeCountry, s.AirwayBillNo, s.Status,
		s.Billing.RatePerKg, s.Billing.TotalRate, s.Billing.RateBasis,
		s.Billing.EFormFee, s.Billing.RemoteAreaFee, s.Billing.BoxCharges,
		s.Billing.PaymentMethod, s.Billing.CashReceived, s.Billing.ChargeableWeight,
		s.Billing.GrandTotal, s.ConfirmedAt, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.RefNumber)
	if err != nil {
		return fmt.Errorf("insert shipment: %w", err)
	}
	return r.insertDetail(ctx, s)
}

// GetByID obtiene el envío completo (cabecera + cajas + ítems).
func (r *ShipmentRepo) GetByID(id string) (*entity.Shipment, error) {
	ctx := context.Background()
	query := `SELECT ` + shipmentColumns + ` FROM shipments WHERE id = $1`
	s, err := scanShipment(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	if err := r.loadDetail(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// List lista envíos con paginación, el más reciente primero. Solo cabeceras:
// cajas e ítems se cargan al consultar el envío puntual.
func (r *ShipmentRepo) List(limit, offset int) ([]*entity.Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Shipment
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Update reemplaza cabecera, cajas e ítems. El caso de uso garantiza que solo
// se llama con envíos en DRAFT.
func (r *ShipmentRepo) Update(s *entity.Shipment) error {
	ctx := context.Background()
	query := `
		UPDATE shipments
		SET sender_name = $2, consignee_name = $3, consignee_address = $4,
		    consignee_country = $5,
		    rate_per_kg = $6, total_rate = $7, rate_basis = $8, e_form_fee = $9,
		    remote_area_fee = $10, box_charges = $11, payment_method = $12,
		    cash_received = $13, chargeable_weight = $14, grand_total = $15,
		    updated_at = $16
		WHERE id = $1 AND status = 'DRAFT'`
	tag, err := r.q.Exec(ctx, query,
		s.ID, s.SenderName, s.ConsigneeName, s.ConsigneeAddress, s.ConsigneeCountry,
		s.Billing.RatePerKg, s.Billing.TotalRate, s.Billing.RateBasis,
		s.Billing.EFormFee, s.Billing.RemoteAreaFee, s.Billing.BoxCharges,
		s.Billing.PaymentMethod, s.Billing.CashReceived, s.Billing.ChargeableWeight,
		s.Billing.GrandTotal, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update shipment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict // no existe o ya no es borrador
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM shipment_boxes WHERE shipment_id = $1`, s.ID); err != nil {
		return fmt.Errorf("delete shipment boxes: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM shipment_items WHERE shipment_id = $1`, s.ID); err != nil {
		return fmt.Errorf("delete shipment items: %w", err)
	}
	return r.insertDetail(ctx, s)
}

// SetConfirmed marca el envío como CONFIRMED (transición de una sola vía).
func (r *ShipmentRepo) SetConfirmed(id string, at time.Time) error {
	query := `
		UPDATE shipments SET status = 'CONFIRMED', confirmed_at = $2, updated_at = now()
		WHERE id = $1 AND status = 'DRAFT'`
	tag, err := r.q.Exec(context.Background(), query, id, at)
	if err != nil {
		return fmt.Errorf("confirm shipment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// SetAirwayBill asigna la guía aérea una sola vez (el WHERE exige que esté vacía).
func (r *ShipmentRepo) SetAirwayBill(id, airwayBillNo string) error {
	query := `
		UPDATE shipments SET airway_bill_no = $2, updated_at = now()
		WHERE id = $1 AND status = 'CONFIRMED' AND airway_bill_no = ''`
	tag, err := r.q.Exec(context.Background(), query, id, airwayBillNo)
	if err != nil {
		return fmt.Errorf("set airway bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *ShipmentRepo) insertDetail(ctx context.Context, s *entity.Shipment) error {
	for _, b := range s.Boxes {
		_, err := r.q.Exec(ctx, `
			INSERT INTO shipment_boxes (id, shipment_id, length_cm, width_cm, height_cm, actual_weight)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			b.ID, s.ID, b.Length, b.Width, b.Height, b.ActualWeight,
		)
		if err != nil {
			return fmt.Errorf("insert shipment box: %w", err)
		}
	}
	for _, it := range s.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO shipment_items (id, shipment_id, description, hs_code, pieces, unit_value)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			it.ID, s.ID, it.Description, it.HSCode, it.Pieces, it.UnitValue,
		)
		if err != nil {
			return fmt.Errorf("insert shipment item: %w", err)
		}
	}
	return nil
}

func (r *ShipmentRepo) loadDetail(ctx context.Context, s *entity.Shipment) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, shipment_id, length_cm, width_cm, height_cm, actual_weight
		FROM shipment_boxes WHERE shipment_id = $1 ORDER BY id`, s.ID)
	if err != nil {
		return fmt.Errorf("load shipment boxes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b entity.ShipmentBox
		if err := rows.Scan(&b.ID, &b.ShipmentID, &b.Length, &b.Width, &b.Height, &b.ActualWeight); err != nil {
			return fmt.Errorf("scan shipment box: %w", err)
		}
		s.Boxes = append(s.Boxes, b)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	itemRows, err := r.q.Query(ctx, `
		SELECT id, shipment_id, description, hs_code, pieces, unit_value
		FROM shipment_items WHERE shipment_id = $1 ORDER BY id`, s.ID)
	if err != nil {
		return fmt.Errorf("load shipment items: %w", err)
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var it entity.ProductInvoiceItem
		if err := itemRows.Scan(&it.ID, &it.ShipmentID, &it.Description, &it.HSCode, &it.Pieces, &it.UnitValue); err != nil {
			return fmt.Errorf("scan shipment item: %w", err)
		}
		s.Items = append(s.Items, it)
	}
	return itemRows.Err()
}

func scanShipment(row pgx.Row) (*entity.Shipment, error) {
	var s entity.Shipment
	err := row.Scan(
		&s.ID, &s.RefNumber, &s.CustomerID, &s.SenderName, &s.ConsigneeName,
		&s.ConsigneeAddress, &s.ConsigneeCountry, &s.AirwayBillNo, &s.Status,
		&s.Billing.RatePerKg, &s.Billing.TotalRate, &s.Billing.RateBasis,
		&s.Billing.EFormFee, &s.Billing.RemoteAreaFee, &s.Billing.BoxCharges,
		&s.Billing.PaymentMethod, &s.Billing.CashReceived, &s.Billing.ChargeableWeight,
		&s.Billing.GrandTotal, &s.ConfirmedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
