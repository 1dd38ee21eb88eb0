package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/acexpress/courier-api/internal/application/dto"
	appshipment "github.com/acexpress/courier-api/internal/application/shipment"
	"github.com/acexpress/courier-api/internal/domain"
	"github.com/acexpress/courier-api/internal/domain/entity"
	"github.com/acexpress/courier-api/internal/domain/freight"
	"github.com/acexpress/courier-api/internal/domain/repository"
	"github.com/acexpress/courier-api/pkg/logger"
)

// InvoiceGenerator confirma envíos y genera sus dos facturas (valor declarado
// y flete) con el débito correspondiente en el libro mayor, todo en una sola
// transacción. La idempotencia la garantiza el constraint único
// (shipment_id, invoice_type) del storage, no un check-then-create en código.
type InvoiceGenerator struct {
	txRunner     InvoicingTxRunner
	shipmentRepo repository.ShipmentRepository
	invoiceRepo  repository.InvoiceRepository
	log          *logger.Logger
}

// NewInvoiceGenerator construye el caso de uso.
func NewInvoiceGenerator(
	txRunner InvoicingTxRunner,
	shipmentRepo repository.ShipmentRepository,
	invoiceRepo repository.InvoiceRepository,
	log *logger.Logger,
) *InvoiceGenerator {
	return &InvoiceGenerator{
		txRunner:     txRunner,
		shipmentRepo: shipmentRepo,
		invoiceRepo:  invoiceRepo,
		log:          log,
	}
}

// ConfirmShipment pasa el envío de DRAFT a CONFIRMED y genera las facturas.
// Reintentable: si una corrida anterior falló a medio camino no dejó efectos,
// y si las facturas ya existen con los mismos totales se devuelven tal cual.
func (uc *InvoiceGenerator) ConfirmShipment(ctx context.Context, shipmentID string) (*dto.ConfirmShipmentResponse, error) {
	invoices, err := uc.generateWithRetry(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	s, err := uc.shipmentRepo.GetByID(shipmentID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return &dto.ConfirmShipmentResponse{
		Shipment: appshipment.ToShipmentResponse(s),
		Invoices: toInvoiceResponses(invoices),
	}, nil
}

// GenerateInvoices regenera las facturas de un envío ya confirmado.
// No-op si existen con los mismos totales; ErrConflict si el recálculo
// produce totales distintos (corregir con una entrada ADJUSTMENT, nunca
// sobrescribiendo).
func (uc *InvoiceGenerator) GenerateInvoices(ctx context.Context, shipmentID string) ([]dto.InvoiceResponse, error) {
	s, err := uc.shipmentRepo.GetByID(shipmentID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if s.Status != entity.ShipmentStatusConfirmed {
		return nil, domain.ErrConflict // la generación la dispara confirmar
	}
	invoices, err := uc.generateWithRetry(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponses(invoices), nil
}

// GetShipmentInvoices lista las facturas del envío (solo lectura).
func (uc *InvoiceGenerator) GetShipmentInvoices(ctx context.Context, shipmentID string) ([]dto.InvoiceResponse, error) {
	s, err := uc.shipmentRepo.GetByID(shipmentID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	invoices, err := uc.invoiceRepo.GetByShipment(shipmentID)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponses(invoices), nil
}

// generateWithRetry corre la generación y reintenta una sola vez si otra
// transacción ganó la carrera del constraint único: la relectura encuentra
// las facturas ya creadas y termina en no-op.
func (uc *InvoiceGenerator) generateWithRetry(ctx context.Context, shipmentID string) ([]*entity.ShipmentInvoice, error) {
	var invoices []*entity.ShipmentInvoice
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		invoices, err = uc.generate(ctx, shipmentID)
		if err == nil {
			return invoices, nil
		}
		if !errors.Is(err, domain.ErrConcurrency) {
			return nil, err
		}
	}
	return nil, err
}

// generate ejecuta la unidad atómica: confirmar + dos facturas + débito.
func (uc *InvoiceGenerator) generate(ctx context.Context, shipmentID string) ([]*entity.ShipmentInvoice, error) {
	var result []*entity.ShipmentInvoice
	err := uc.txRunner.RunInvoicing(ctx, func(
		shipmentRepo repository.ShipmentRepository,
		invoiceRepo repository.InvoiceRepository,
		customerRepo repository.CustomerRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		s, err := shipmentRepo.GetByID(shipmentID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound
		}

		// Recalcular desde la verdad persistida: peso cobrable y tarifas
		weight := freight.ChargeableWeight(s.Boxes)
		billing := freight.SyncRates(s.Billing, weight)

		declaredTotal := decimal.Zero
		for _, it := range s.Items {
			declaredTotal = declaredTotal.Add(it.Total())
		}
		// Total del flete según política de pago: CREDIT carga el total
		// general; CASH solo el remanente no cubierto en mostrador.
		freightTotal := freight.AmountDue(billing)

		existing, err := invoiceRepo.GetByShipment(s.ID)
		if err != nil {
			return err
		}
		byType := make(map[string]*entity.ShipmentInvoice, len(existing))
		for _, inv := range existing {
			byType[inv.InvoiceType] = inv
		}

		now := time.Now()

		dv := byType[entity.InvoiceTypeDeclaredValue]
		if dv != nil {
			if !dv.Total.Equal(declaredTotal) {
				return domain.ErrConflict
			}
		} else {
			dv = &entity.ShipmentInvoice{
				ID:          uuid.New().String(),
				ShipmentID:  s.ID,
				CustomerID:  s.CustomerID,
				InvoiceType: entity.InvoiceTypeDeclaredValue,
				Total:       declaredTotal,
				Status:      entity.InvoiceStatusConfirmed,
				IssuedAt:    now,
				CreatedAt:   now,
			}
			if err := createInvoice(invoiceRepo, dv); err != nil {
				return err
			}
		}

		fr := byType[entity.InvoiceTypeBilling]
		if fr != nil {
			if !fr.Total.Equal(freightTotal) {
				return domain.ErrConflict
			}
		} else {
			status := entity.InvoiceStatusPaid // saldada en efectivo al registrar
			if freightTotal.GreaterThan(decimal.Zero) {
				status = entity.InvoiceStatusPosted
			}
			fr = &entity.ShipmentInvoice{
				ID:          uuid.New().String(),
				ShipmentID:  s.ID,
				CustomerID:  s.CustomerID,
				InvoiceType: entity.InvoiceTypeBilling,
				Total:       freightTotal,
				Status:      status,
				IssuedAt:    now,
				CreatedAt:   now,
			}
			if err := createInvoice(invoiceRepo, fr); err != nil {
				return err
			}
			// Solo lo no saldado en efectivo va a la cuenta corriente
			if freightTotal.GreaterThan(decimal.Zero) {
				if _, err := PostEntryInTx(customerRepo, ledgerRepo, PostInput{
					CustomerID:  s.CustomerID,
					EntryType:   entity.EntryTypeInvoice,
					Amount:      freightTotal,
					IsDebit:     true,
					Description: "Flete guía " + s.RefNumber,
					ReferenceID: fr.ID,
					At:          now,
				}); err != nil {
					return err
				}
			}
		}

		if s.Status == entity.ShipmentStatusDraft {
			if err := shipmentRepo.SetConfirmed(s.ID, now); err != nil {
				return err
			}
		}
		result = []*entity.ShipmentInvoice{dv, fr}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("shipment_id", shipmentID).
		Str("dv_invoice", result[0].InvoiceNumber).
		Str("billing_invoice", result[1].InvoiceNumber).
		Msg("facturas de envío generadas")
	return result, nil
}

// createInvoice persiste la factura; una violación del constraint único
// significa que otra transacción la creó primero: se aborta con
// ErrConcurrency para que el caller relea y termine en no-op.
func createInvoice(invoiceRepo repository.InvoiceRepository, inv *entity.ShipmentInvoice) error {
	if err := invoiceRepo.Create(inv); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return domain.ErrConcurrency
		}
		return err
	}
	return nil
}

func toInvoiceResponses(invoices []*entity.ShipmentInvoice) []dto.InvoiceResponse {
	out := make([]dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, dto.InvoiceResponse{
			ID:            inv.ID,
			ShipmentID:    inv.ShipmentID,
			CustomerID:    inv.CustomerID,
			InvoiceType:   inv.InvoiceType,
			InvoiceNumber: inv.InvoiceNumber,
			Total:         inv.Total,
			Status:        inv.Status,
			IssuedAt:      inv.IssuedAt.Format("2006-01-02"),
			PDFURL:        inv.PDFURL,
		})
	}
	return out
}
