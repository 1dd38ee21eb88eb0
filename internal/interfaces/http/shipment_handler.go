package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/acexpress/courier-api/internal/application/billing"
	"github.com/acexpress/courier-api/internal/application/dto"
	appshipment "github.com/acexpress/courier-api/internal/application/shipment"
	"github.com/acexpress/courier-api/internal/domain"
)

// ShipmentHandler maneja el ciclo de vida de los envíos: captura en borrador,
// confirmación con facturación, guía aérea y manifiesto aduanero.
type ShipmentHandler struct {
	uc         *appshipment.ShipmentUseCase
	invoiceGen *billing.InvoiceGenerator
	manifest   *appshipment.ManifestUseCase
}

// NewShipmentHandler construye el handler de envíos.
func NewShipmentHandler(uc *appshipment.ShipmentUseCase, invoiceGen *billing.InvoiceGenerator, manifest *appshipment.ManifestUseCase) *ShipmentHandler {
	return &ShipmentHandler{uc: uc, invoiceGen: invoiceGen, manifest: manifest}
}

// Create godoc
// @Summary      Crear envío en borrador
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateShipmentRequest  true  "envío"
// @Success      201   {object}  dto.ShipmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/shipments [post]
func (h *ShipmentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateShipmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return shipmentError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar envío en borrador
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "id del envío"
// @Param        body  body  dto.UpdateShipmentRequest  true  "cambios"
// @Success      200   {object}  dto.ShipmentResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shipments/{id} [put]
func (h *ShipmentHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateShipmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return shipmentError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener envío
// @Tags         shipments
// @Produce      json
// @Param        id  path  string  true  "id del envío"
// @Success      200  {object}  dto.ShipmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id} [get]
func (h *ShipmentHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return shipmentError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar envíos
// @Tags         shipments
// @Produce      json
// @Param        page       query  int  false  "página"
// @Param        page_size  query  int  false  "tamaño de página"
// @Success      200  {array}  dto.ShipmentResponse
// @Router       /api/shipments [get]
func (h *ShipmentHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.List(c.Context(), page)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Confirm godoc
// @Summary      Confirmar envío
// @Description  Congela el envío y genera la factura de valor declarado y la de
// @Description  flete con su débito en cuenta corriente. Idempotente.
// @Tags         shipments
// @Produce      json
// @Param        id  path  string  true  "id del envío"
// @Success      200  {object}  dto.ConfirmShipmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/confirm [post]
func (h *ShipmentHandler) Confirm(c *fiber.Ctx) error {
	out, err := h.invoiceGen.ConfirmShipment(c.Context(), c.Params("id"))
	if err != nil {
		return shipmentError(c, err)
	}
	return c.JSON(out)
}

// SetAirwayBill godoc
// @Summary      Asignar guía aérea
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "id del envío"
// @Param        body  body  dto.AirwayBillRequest  true  "número de guía aérea"
// @Success      200   {object}  dto.ShipmentResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/airway-bill [put]
func (h *ShipmentHandler) SetAirwayBill(c *fiber.Ctx) error {
	var in dto.AirwayBillRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.SetAirwayBill(c.Context(), c.Params("id"), in)
	if err != nil {
		return shipmentError(c, err)
	}
	return c.JSON(out)
}

// Regenerate godoc
// @Summary      Regenerar facturas del envío
// @Description  No-op si las facturas existen con los mismos totales; 409 si
// @Description  el recálculo difiere (corregir con una entrada ADJUSTMENT).
// @Tags         shipments
// @Produce      json
// @Param        id  path  string  true  "id del envío"
// @Success      200  {array}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/invoices [post]
func (h *ShipmentHandler) Regenerate(c *fiber.Ctx) error {
	out, err := h.invoiceGen.GenerateInvoices(c.Context(), c.Params("id"))
	if err != nil {
		return shipmentError(c, err)
	}
	return c.JSON(out)
}

// Invoices godoc
// @Summary      Facturas del envío
// @Tags         shipments
// @Produce      json
// @Param        id  path  string  true  "id del envío"
// @Success      200  {array}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/invoices [get]
func (h *ShipmentHandler) Invoices(c *fiber.Ctx) error {
	out, err := h.invoiceGen.GetShipmentInvoices(c.Context(), c.Params("id"))
	if err != nil {
		return shipmentError(c, err)
	}
	return c.JSON(out)
}

// Manifest godoc
// @Summary      Manifiesto aduanero del envío
// @Description  XML de mercancía declarada. Solo envíos confirmados.
// @Tags         shipments
// @Produce      application/xml
// @Param        id  path  string  true  "id del envío"
// @Success      200  {file}  binary
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/manifest [get]
func (h *ShipmentHandler) Manifest(c *fiber.Ctx) error {
	xml, filename, err := h.manifest.BuildManifest(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOT_CONFIRMED", Message: "el manifiesto solo existe para envíos confirmados"})
		}
		return shipmentError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/xml")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(xml)
}

// shipmentError traduce los sentinelas de dominio a códigos HTTP.
func shipmentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "envío o cliente no encontrado"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "el estado del envío no permite la operación"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
