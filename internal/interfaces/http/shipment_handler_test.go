package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acexpress/courier-api/internal/application/billing"
	"github.com/acexpress/courier-api/internal/application/dto"
	appshipment "github.com/acexpress/courier-api/internal/application/shipment"
	"github.com/acexpress/courier-api/internal/domain/entity"
	"github.com/acexpress/courier-api/internal/infrastructure/customs"
)

func newShipmentApp(s *stubStore) *fiber.App {
	uc := appshipment.NewShipmentUseCase(&stubShipmentRepo{s}, &stubCustomerRepo{s}, testLogger())
	gen := billing.NewInvoiceGenerator(&stubTxRunner{s}, &stubShipmentRepo{s}, &stubInvoiceRepo{s}, testLogger())
	manifest := appshipment.NewManifestUseCase(&stubShipmentRepo{s}, &stubCustomerRepo{s}, customs.NewManifestBuilder())
	h := NewShipmentHandler(uc, gen, manifest)

	app := fiber.New()
	app.Post("/api/shipments/:id/invoices", h.Regenerate)
	return app
}

// Envío confirmado de referencia: caja 50×40×30 de 4 kg (volumétrico 12),
// tarifa 25/kg, recargos 50+25+10 → flete 385; valor declarado 2×50 = 100.
func seedConfirmedShipment(s *stubStore) *entity.Shipment {
	now := time.Now()
	sh := &entity.Shipment{
		ID:            "env-1",
		RefNumber:     "ACE-2026-000001",
		CustomerID:    "c1",
		ConsigneeName: "Bodega Miami",
		Status:        entity.ShipmentStatusConfirmed,
		ConfirmedAt:   &now,
		Boxes: []entity.ShipmentBox{
			{Length: d(50), Width: d(40), Height: d(30), ActualWeight: d(4)},
		},
		Items: []entity.ProductInvoiceItem{
			{Description: "Repuestos", Pieces: d(2), UnitValue: d(50)},
		},
		Billing: entity.BillingInfo{
			RatePerKg:        d(25),
			TotalRate:        d(300),
			RateBasis:        entity.RateBasisPerKg,
			EFormFee:         d(50),
			RemoteAreaFee:    d(25),
			BoxCharges:       d(10),
			PaymentMethod:    entity.BillingMethodCredit,
			ChargeableWeight: d(12),
			GrandTotal:       d(385),
		},
	}
	s.shipments[sh.ID] = sh
	s.customers["c1"] = &entity.Customer{ID: "c1", Name: "ACME Importaciones"}
	return sh
}

func regenerate(t *testing.T, app *fiber.App, shipmentID string) (int, []dto.InvoiceResponse) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/shipments/"+shipmentID+"/invoices", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out []dto.InvoiceResponse
	if resp.StatusCode == fiber.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

// ─────────────────────────────────────────────
// POST /api/shipments/:id/invoices
// ─────────────────────────────────────────────

func TestRegenerate_NoOpConTotalesIguales(t *testing.T) {
	s := newStubStore()
	seedConfirmedShipment(s)
	s.invoices["dv-1"] = &entity.ShipmentInvoice{
		ID: "dv-1", ShipmentID: "env-1", CustomerID: "c1",
		InvoiceType: entity.InvoiceTypeDeclaredValue, InvoiceNumber: "DV-000001",
		Total: d(100), Status: entity.InvoiceStatusConfirmed,
	}
	s.invoices["fr-1"] = &entity.ShipmentInvoice{
		ID: "fr-1", ShipmentID: "env-1", CustomerID: "c1",
		InvoiceType: entity.InvoiceTypeBilling, InvoiceNumber: "FR-000001",
		Total: d(385), Status: entity.InvoiceStatusPosted,
	}
	app := newShipmentApp(s)

	status, out := regenerate(t, app, "env-1")
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, out, 2)
	assert.Equal(t, "dv-1", out[0].ID)
	assert.Equal(t, "fr-1", out[1].ID)

	// no-op: ni facturas nuevas ni débitos repetidos
	assert.Len(t, s.invoices, 2)
	assert.Empty(t, s.entries)
}

func TestRegenerate_SoloEnviosConfirmados(t *testing.T) {
	s := newStubStore()
	sh := seedConfirmedShipment(s)
	sh.Status = entity.ShipmentStatusDraft
	sh.ConfirmedAt = nil
	app := newShipmentApp(s)

	status, _ := regenerate(t, app, "env-1")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Empty(t, s.invoices)
}

func TestRegenerate_EnvioInexistente(t *testing.T) {
	app := newShipmentApp(newStubStore())

	status, _ := regenerate(t, app, "fantasma")
	assert.Equal(t, fiber.StatusNotFound, status)
}
