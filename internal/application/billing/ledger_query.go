package billing

import (
	"context"
	"time"

	"github.com/acexpress/courier-api/internal/application/dto"
	"github.com/acexpress/courier-api/internal/domain"
	"github.com/acexpress/courier-api/internal/domain/entity"
	"github.com/acexpress/courier-api/internal/domain/repository"
)

// Columnas de orden permitidas en el listado del libro mayor.
var ledgerSortColumns = map[string]bool{
	"created_at": true,
	"debit":      true,
	"credit":     true,
	"entry_type": true,
}

// LedgerQuery modelo de lectura del libro mayor: listado paginado/filtrado y
// resumen agregado sobre el mismo conjunto. Solo lectura: nunca recalcula ni
// muta balance_after, confía en el valor almacenado.
type LedgerQuery struct {
	ledgerRepo repository.LedgerRepository
}

// NewLedgerQuery construye el servicio de consulta.
func NewLedgerQuery(ledgerRepo repository.LedgerRepository) *LedgerQuery {
	return &LedgerQuery{ledgerRepo: ledgerRepo}
}

// ListEntries devuelve la página de entradas según filtros y orden
// (default: created_at desc).
func (uc *LedgerQuery) ListEntries(ctx context.Context, in dto.LedgerListRequest) (*dto.LedgerListResponse, error) {
	in.DefaultPage()
	filter, err := buildLedgerFilter(in)
	if err != nil {
		return nil, err
	}
	entries, total, err := uc.ledgerRepo.List(filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toLedgerEntryResponse(e))
	}
	return &dto.LedgerListResponse{
		Entries:    out,
		Pagination: dto.NewPageResponse(in.Page, in.PageSize, total),
	}, nil
}

// Summary agrega débitos, créditos y saldo sobre el mismo conjunto filtrado
// que ListEntries: los filtros estrechan listado y resumen por igual.
func (uc *LedgerQuery) Summary(ctx context.Context, in dto.LedgerListRequest) (*dto.LedgerSummaryResponse, error) {
	filter, err := buildLedgerFilter(in)
	if err != nil {
		return nil, err
	}
	summary, err := uc.ledgerRepo.Summary(filter)
	if err != nil {
		return nil, err
	}
	return &dto.LedgerSummaryResponse{
		TotalDebit:  summary.TotalDebit,
		TotalCredit: summary.TotalCredit,
		BalanceDue:  summary.BalanceDue,
	}, nil
}

// buildLedgerFilter valida y traduce el request a filtro de storage.
func buildLedgerFilter(in dto.LedgerListRequest) (repository.LedgerFilter, error) {
	filter := repository.LedgerFilter{
		CustomerID: in.CustomerID,
		Limit:      in.PageSize,
		Offset:     in.Offset(),
	}
	if in.EntryType != "" {
		if !entity.ValidEntryType(in.EntryType) {
			return filter, domain.ErrInvalidInput
		}
		filter.EntryType = in.EntryType
	}
	if in.DateFrom != "" {
		from, err := time.Parse("2006-01-02", in.DateFrom)
		if err != nil {
			return filter, domain.ErrInvalidInput
		}
		filter.DateFrom = &from
	}
	if in.DateTo != "" {
		to, err := time.Parse("2006-01-02", in.DateTo)
		if err != nil {
			return filter, domain.ErrInvalidInput
		}
		// el día completo: el filtro es inclusivo hasta las 23:59:59
		end := to.Add(24*time.Hour - time.Second)
		filter.DateTo = &end
	}
	filter.SortBy = "created_at"
	if ledgerSortColumns[in.SortBy] {
		filter.SortBy = in.SortBy
	}
	filter.SortOrder = "desc"
	if in.SortOrder == "asc" {
		filter.SortOrder = "asc"
	}
	return filter, nil
}

func toLedgerEntryResponse(e *entity.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:           e.ID,
		CustomerID:   e.CustomerID,
		EntryType:    e.EntryType,
		Debit:        e.Debit,
		Credit:       e.Credit,
		Description:  e.Description,
		ReferenceID:  e.ReferenceID,
		BalanceAfter: e.BalanceAfter,
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
	}
}
