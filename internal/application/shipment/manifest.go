package shipment

import (
	"context"
	"fmt"

	"github.com/acexpress/courier-api/internal/domain"
	"github.com/acexpress/courier-api/internal/domain/entity"
	"github.com/acexpress/courier-api/internal/domain/repository"
)

// ManifestBuilder puerto para la serialización del manifiesto aduanero.
type ManifestBuilder interface {
	Build(shipment *entity.Shipment, customer *entity.Customer) ([]byte, error)
}

// ManifestUseCase arma el manifiesto aduanero de un envío confirmado.
type ManifestUseCase struct {
	shipmentRepo repository.ShipmentRepository
	customerRepo repository.CustomerRepository
	builder      ManifestBuilder
}

// NewManifestUseCase construye el caso de uso.
func NewManifestUseCase(shipmentRepo repository.ShipmentRepository, customerRepo repository.CustomerRepository, builder ManifestBuilder) *ManifestUseCase {
	return &ManifestUseCase{shipmentRepo: shipmentRepo, customerRepo: customerRepo, builder: builder}
}

// BuildManifest genera el XML y el nombre de archivo sugerido.
func (uc *ManifestUseCase) BuildManifest(ctx context.Context, shipmentID string) (manifest []byte, filename string, err error) {
	s, err := uc.shipmentRepo.GetByID(shipmentID)
	if err != nil {
		return nil, "", err
	}
	if s == nil {
		return nil, "", domain.ErrNotFound
	}
	customer, err := uc.customerRepo.GetByID(s.CustomerID)
	if err != nil || customer == nil {
		return nil, "", fmt.Errorf("manifest: obtener cliente: %w", err)
	}
	manifest, err = uc.builder.Build(s, customer)
	if err != nil {
		return nil, "", err
	}
	return manifest, fmt.Sprintf("manifiesto_%s.xml", s.RefNumber), nil
}
