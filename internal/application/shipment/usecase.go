package shipment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/acexpress/courier-api/internal/application/dto"
	"github.com/acexpress/courier-api/internal/domain"
	"github.com/acexpress/courier-api/internal/domain/entity"
	"github.com/acexpress/courier-api/internal/domain/freight"
	"github.com/acexpress/courier-api/internal/domain/repository"
	"github.com/acexpress/courier-api/pkg/logger"
)

// ShipmentUseCase ciclo de vida del envío en borrador: alta, edición y
// asignación de guía aérea. Peso cobrable y tarifas se recalculan en cada
// escritura; la confirmación (y sus facturas) vive en el paquete billing.
type ShipmentUseCase struct {
	shipmentRepo repository.ShipmentRepository
	customerRepo repository.CustomerRepository
	log          *logger.Logger
}

// NewShipmentUseCase construye el caso de uso.
func NewShipmentUseCase(shipmentRepo repository.ShipmentRepository, customerRepo repository.CustomerRepository, log *logger.Logger) *ShipmentUseCase {
	return &ShipmentUseCase{shipmentRepo: shipmentRepo, customerRepo: customerRepo, log: log}
}

// Create da de alta un envío en DRAFT con sus cajas, ítems y datos de cobro.
func (uc *ShipmentUseCase) Create(ctx context.Context, in dto.CreateShipmentRequest) (*dto.ShipmentResponse, error) {
	if in.CustomerID == "" || in.ConsigneeName == "" {
		return nil, domain.ErrInvalidInput
	}
	customer, err := uc.customerRepo.GetByID(in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}

	billing, err := buildBilling("", in.Billing)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s := &entity.Shipment{
		ID:               uuid.New().String(),
		CustomerID:       in.CustomerID,
		SenderName:       in.SenderName,
		ConsigneeName:    in.ConsigneeName,
		ConsigneeAddress: in.ConsigneeAddress,
		ConsigneeCountry: in.ConsigneeCountry,
		Status:           entity.ShipmentStatusDraft,
		Boxes:            toBoxes(in.Boxes),
		Items:            toItems(in.Items),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.Billing = freight.SyncRates(billing, freight.ChargeableWeight(s.Boxes))

	if err := uc.shipmentRepo.Create(s); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("shipment_id", s.ID).
		Str("ref_number", s.RefNumber).
		Str("customer_id", s.CustomerID).
		Msg("envío creado en borrador")
	resp := ToShipmentResponse(s)
	return &resp, nil
}

// Update reemplaza cabecera, cajas, ítems y cobro de un envío en DRAFT.
// Confirmado es inmutable: solo admite la guía aérea vía SetAirwayBill.
func (uc *ShipmentUseCase) Update(ctx context.Context, id string, in dto.UpdateShipmentRequest) (*dto.ShipmentResponse, error) {
	s, err := uc.shipmentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if s.Status != entity.ShipmentStatusDraft {
		return nil, domain.ErrConflict
	}

	billing, err := buildBilling(s.Billing.RateBasis, in.Billing)
	if err != nil {
		return nil, err
	}

	if in.SenderName != "" {
		s.SenderName = in.SenderName
	}
	if in.ConsigneeName != "" {
		s.ConsigneeName = in.ConsigneeName
	}
	if in.ConsigneeAddress != "" {
		s.ConsigneeAddress = in.ConsigneeAddress
	}
	if in.ConsigneeCountry != "" {
		s.ConsigneeCountry = in.ConsigneeCountry
	}
	s.Boxes = toBoxes(in.Boxes)
	s.Items = toItems(in.Items)
	s.Billing = freight.SyncRates(billing, freight.ChargeableWeight(s.Boxes))
	s.UpdatedAt = time.Now()

	if err := uc.shipmentRepo.Update(s); err != nil {
		return nil, err
	}
	resp := ToShipmentResponse(s)
	return &resp, nil
}

// SetAirwayBill asigna el número de guía aérea a un envío confirmado.
// Asignación de una sola vez: reasignar es ErrConflict.
func (uc *ShipmentUseCase) SetAirwayBill(ctx context.Context, id string, in dto.AirwayBillRequest) (*dto.ShipmentResponse, error) {
	if in.AirwayBillNo == "" {
		return nil, domain.ErrInvalidInput
	}
	s, err := uc.shipmentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if s.Status != entity.ShipmentStatusConfirmed || s.AirwayBillNo != "" {
		return nil, domain.ErrConflict
	}
	if err := uc.shipmentRepo.SetAirwayBill(id, in.AirwayBillNo); err != nil {
		return nil, err
	}
	s.AirwayBillNo = in.AirwayBillNo
	resp := ToShipmentResponse(s)
	return &resp, nil
}

// GetByID obtiene un envío completo.
func (uc *ShipmentUseCase) GetByID(ctx context.Context, id string) (*dto.ShipmentResponse, error) {
	s, err := uc.shipmentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	resp := ToShipmentResponse(s)
	return &resp, nil
}

// List lista envíos con paginación.
func (uc *ShipmentUseCase) List(ctx context.Context, page dto.PageRequest) ([]dto.ShipmentResponse, error) {
	page.DefaultPage()
	shipments, err := uc.shipmentRepo.List(page.PageSize, page.Offset())
	if err != nil {
		return nil, err
	}
	out := make([]dto.ShipmentResponse, 0, len(shipments))
	for _, s := range shipments {
		out = append(out, ToShipmentResponse(s))
	}
	return out, nil
}

// buildBilling arma el BillingInfo resolviendo la base de tarifa. prevBasis es
// la última base persistida (vacía en el alta).
func buildBilling(prevBasis string, in dto.BillingRequest) (entity.BillingInfo, error) {
	basis, err := resolveRateBasis(prevBasis, in)
	if err != nil {
		return entity.BillingInfo{}, err
	}
	if in.PaymentMethod != entity.BillingMethodCash && in.PaymentMethod != entity.BillingMethodCredit {
		return entity.BillingInfo{}, domain.ErrInvalidInput
	}
	return entity.BillingInfo{
		RatePerKg:     in.RatePerKg,
		TotalRate:     in.TotalRate,
		RateBasis:     basis,
		EFormFee:      in.EFormFee,
		RemoteAreaFee: in.RemoteAreaFee,
		BoxCharges:    in.BoxCharges,
		PaymentMethod: in.PaymentMethod,
		CashReceived:  in.CashReceived,
	}, nil
}

// resolveRateBasis decide cuál campo de tarifa es el autoritativo:
// la base explícita del request gana; sin ella se reusa la persistida; sin
// ninguna se infiere del único campo enviado. Ambos campos sin base es
// ambiguo y se rechaza.
func resolveRateBasis(prevBasis string, in dto.BillingRequest) (string, error) {
	switch in.RateBasis {
	case entity.RateBasisPerKg, entity.RateBasisTotal:
		return in.RateBasis, nil
	case "":
	default:
		return "", domain.ErrInvalidInput
	}
	if prevBasis != "" {
		return prevBasis, nil
	}
	perKgSet := in.RatePerKg.GreaterThan(decimal.Zero)
	totalSet := in.TotalRate.GreaterThan(decimal.Zero)
	switch {
	case perKgSet && totalSet:
		return "", domain.ErrInvalidInput
	case totalSet:
		return entity.RateBasisTotal, nil
	default:
		return entity.RateBasisPerKg, nil
	}
}

func toBoxes(in []dto.BoxRequest) []entity.ShipmentBox {
	out := make([]entity.ShipmentBox, 0, len(in))
	for _, b := range in {
		out = append(out, entity.ShipmentBox{
			ID:           uuid.New().String(),
			Length:       b.Length,
			Width:        b.Width,
			Height:       b.Height,
			ActualWeight: b.ActualWeight,
		})
	}
	return out
}

func toItems(in []dto.ItemRequest) []entity.ProductInvoiceItem {
	out := make([]entity.ProductInvoiceItem, 0, len(in))
	for _, it := range in {
		out = append(out, entity.ProductInvoiceItem{
			ID:          uuid.New().String(),
			Description: it.Description,
			HSCode:      it.HSCode,
			Pieces:      it.Pieces,
			UnitValue:   it.UnitValue,
		})
	}
	return out
}

// ToShipmentResponse mapea la entidad al DTO de salida. Exportado porque el
// paquete billing lo reusa al responder la confirmación.
func ToShipmentResponse(s *entity.Shipment) dto.ShipmentResponse {
	resp := dto.ShipmentResponse{
		ID:               s.ID,
		RefNumber:        s.RefNumber,
		CustomerID:       s.CustomerID,
		SenderName:       s.SenderName,
		ConsigneeName:    s.ConsigneeName,
		ConsigneeAddress: s.ConsigneeAddress,
		ConsigneeCountry: s.ConsigneeCountry,
		AirwayBillNo:     s.AirwayBillNo,
		Status:           s.Status,
		Boxes:            make([]dto.BoxResponse, 0, len(s.Boxes)),
		Items:            make([]dto.ItemResponse, 0, len(s.Items)),
		Billing: dto.BillingResponse{
			RatePerKg:        s.Billing.RatePerKg,
			TotalRate:        s.Billing.TotalRate,
			RateBasis:        s.Billing.RateBasis,
			EFormFee:         s.Billing.EFormFee,
			RemoteAreaFee:    s.Billing.RemoteAreaFee,
			BoxCharges:       s.Billing.BoxCharges,
			PaymentMethod:    s.Billing.PaymentMethod,
			CashReceived:     s.Billing.CashReceived,
			ChargeableWeight: s.Billing.ChargeableWeight,
			GrandTotal:       s.Billing.GrandTotal,
		},
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
	}
	if s.ConfirmedAt != nil {
		resp.ConfirmedAt = s.ConfirmedAt.Format(time.RFC3339)
	}
	for _, b := range s.Boxes {
		resp.Boxes = append(resp.Boxes, dto.BoxResponse{
			ID:               b.ID,
			Length:           b.Length,
			Width:            b.Width,
			Height:           b.Height,
			ActualWeight:     b.ActualWeight,
			VolumetricWeight: freight.VolumetricWeight(b.Length, b.Width, b.Height),
		})
	}
	for _, it := range s.Items {
		resp.Items = append(resp.Items, dto.ItemResponse{
			ID:          it.ID,
			Description: it.Description,
			HSCode:      it.HSCode,
			Pieces:      it.Pieces,
			UnitValue:   it.UnitValue,
			Total:       it.Total(),
		})
	}
	return resp
}
