package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/acexpress/courier-api/internal/application/billing"
	"github.com/acexpress/courier-api/internal/application/dto"
	"github.com/acexpress/courier-api/internal/domain"
)

// LedgerHandler expone el libro mayor: listado filtrado, resumen, export CSV
// y posteo de correcciones manuales.
type LedgerHandler struct {
	query  *billing.LedgerQuery
	poster *billing.LedgerPoster
}

// NewLedgerHandler construye el handler del libro mayor.
func NewLedgerHandler(query *billing.LedgerQuery, poster *billing.LedgerPoster) *LedgerHandler {
	return &LedgerHandler{query: query, poster: poster}
}

// PostAdjustment godoc
// @Summary      Postear corrección manual
// @Description  Crea una entrada ADJUSTMENT o REFUND en la cuenta del cliente.
// @Description  Es el único camino de corrección: las entradas existentes
// @Description  nunca se editan ni se borran.
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "corrección"
// @Success      201   {object}  dto.LedgerEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/ledger/adjustments [post]
func (h *LedgerHandler) PostAdjustment(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.poster.PostAdjustment(c.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cliente no encontrado"})
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "tipo, dirección o monto inválidos"})
		case errors.Is(err, domain.ErrConcurrency):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENCY", Message: "conflicto de concurrencia, reintente"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar entradas del libro mayor
// @Tags         ledger
// @Produce      json
// @Param        customer_id  query  string  false  "filtrar por cliente"
// @Param        entry_type   query  string  false  "INVOICE | PAYMENT | ADJUSTMENT | REFUND"
// @Param        date_from    query  string  false  "YYYY-MM-DD"
// @Param        date_to      query  string  false  "YYYY-MM-DD"
// @Param        sort_by      query  string  false  "created_at | debit | credit | entry_type"
// @Param        sort_order   query  string  false  "asc | desc"
// @Success      200  {object}  dto.LedgerListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ledger [get]
func (h *LedgerHandler) List(c *fiber.Ctx) error {
	var in dto.LedgerListRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.query.ListEntries(c.Context(), in)
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Resumen del libro mayor
// @Description  Débitos, créditos y saldo del mismo conjunto filtrado que el
// @Description  listado.
// @Tags         ledger
// @Produce      json
// @Success      200  {object}  dto.LedgerSummaryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ledger/summary [get]
func (h *LedgerHandler) Summary(c *fiber.Ctx) error {
	var in dto.LedgerListRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.query.Summary(c.Context(), in)
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(out)
}

// ExportCSV godoc
// @Summary      Exportar libro mayor a CSV
// @Description  Exporta el conjunto filtrado completo, sin paginar.
// @Tags         ledger
// @Produce      text/csv
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ledger/export.csv [get]
func (h *LedgerHandler) ExportCSV(c *fiber.Ctx) error {
	var in dto.LedgerListRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.query.ExportCSV(c.Context(), in)
	if err != nil {
		return ledgerError(c, err)
	}
	filename := "libro_mayor_" + time.Now().Format("20060102") + ".csv"
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(out)
}

// ledgerError traduce los sentinelas de dominio a códigos HTTP.
func ledgerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "filtros inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
