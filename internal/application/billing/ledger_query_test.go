package billing_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acexpress/courier-api/internal/application/billing"
	"github.com/acexpress/courier-api/internal/application/dto"
	"github.com/acexpress/courier-api/internal/domain"
	"github.com/acexpress/courier-api/internal/domain/entity"
)

// seedLedger dos clientes con movimientos mezclados:
//   c1: factura 1000 (débito), pago 400, ajuste 50 (débito)  → saldo 650
//   c2: factura 200 (débito), pago 200                        → saldo 0
func seedLedger(t *testing.T, s *fakeStore) {
	t.Helper()
	seedCustomer(s, "c1", "ACME")
	seedCustomer(s, "c2", "Beta Cargo")
	poster := newPoster(s)
	ctx := context.Background()

	posts := []billing.PostInput{
		{CustomerID: "c1", EntryType: entity.EntryTypeInvoice, Amount: decimal.NewFromInt(1000), IsDebit: true, Description: "Flete guía ACE-2026-000001"},
		{CustomerID: "c2", EntryType: entity.EntryTypeInvoice, Amount: decimal.NewFromInt(200), IsDebit: true, Description: "Flete guía ACE-2026-000002"},
		{CustomerID: "c1", EntryType: entity.EntryTypePayment, Amount: decimal.NewFromInt(400), IsDebit: false, Description: "Pago TRANSFER"},
		{CustomerID: "c2", EntryType: entity.EntryTypePayment, Amount: decimal.NewFromInt(200), IsDebit: false, Description: "Pago CASH"},
		{CustomerID: "c1", EntryType: entity.EntryTypeAdjustment, Amount: decimal.NewFromInt(50), IsDebit: true, Description: "Recargo manual"},
	}
	for _, in := range posts {
		_, err := poster.Post(ctx, in)
		require.NoError(t, err)
	}
}

func TestListEntries_FiltraPorClienteYTipo(t *testing.T) {
	s := newFakeStore()
	seedLedger(t, s)
	q := billing.NewLedgerQuery(&fakeLedgerRepo{s})
	ctx := context.Background()

	// Todo c1
	resp, err := q.ListEntries(ctx, dto.LedgerListRequest{CustomerID: "c1"})
	require.NoError(t, err)
	assert.Len(t, resp.Entries, 3)
	assert.Equal(t, 3, resp.Pagination.Total)
	for _, e := range resp.Entries {
		assert.Equal(t, "c1", e.CustomerID)
	}

	// Solo pagos de c1
	resp, err = q.ListEntries(ctx, dto.LedgerListRequest{CustomerID: "c1", EntryType: entity.EntryTypePayment})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)
	assert.True(t, resp.Entries[0].Credit.Equal(decimal.NewFromInt(400)))
}

func TestListEntries_OrdenPorDefectoMasRecientePrimero(t *testing.T) {
	s := newFakeStore()
	seedLedger(t, s)
	q := billing.NewLedgerQuery(&fakeLedgerRepo{s})

	resp, err := q.ListEntries(context.Background(), dto.LedgerListRequest{CustomerID: "c1"})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 3)
	assert.Equal(t, entity.EntryTypeAdjustment, resp.Entries[0].EntryType, "la última entrada sale primero")
	assert.Equal(t, entity.EntryTypeInvoice, resp.Entries[2].EntryType)
}

func TestListEntries_PaginacionYOrdenAscendente(t *testing.T) {
	s := newFakeStore()
	seedLedger(t, s)
	q := billing.NewLedgerQuery(&fakeLedgerRepo{s})
	ctx := context.Background()

	resp, err := q.ListEntries(ctx, dto.LedgerListRequest{
		CustomerID:  "c1",
		SortOrder:   "asc",
		PageRequest: dto.PageRequest{Page: 1, PageSize: 2},
	})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, 3, resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.Pages)
	assert.Equal(t, entity.EntryTypeInvoice, resp.Entries[0].EntryType, "ascendente: la primera entrada primero")

	resp, err = q.ListEntries(ctx, dto.LedgerListRequest{
		CustomerID:  "c1",
		SortOrder:   "asc",
		PageRequest: dto.PageRequest{Page: 2, PageSize: 2},
	})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, entity.EntryTypeAdjustment, resp.Entries[0].EntryType)
}

func TestListEntries_TipoDesconocidoEsInvalido(t *testing.T) {
	s := newFakeStore()
	q := billing.NewLedgerQuery(&fakeLedgerRepo{s})
	_, err := q.ListEntries(context.Background(), dto.LedgerListRequest{EntryType: "FEE"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = q.ListEntries(context.Background(), dto.LedgerListRequest{DateFrom: "ayer"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSummary_MismoConjuntoQueElListado(t *testing.T) {
	s := newFakeStore()
	seedLedger(t, s)
	q := billing.NewLedgerQuery(&fakeLedgerRepo{s})
	ctx := context.Background()

	// Consolidado de todos los clientes
	sum, err := q.Summary(ctx, dto.LedgerListRequest{})
	require.NoError(t, err)
	assert.True(t, sum.TotalDebit.Equal(decimal.NewFromInt(1250)))
	assert.True(t, sum.TotalCredit.Equal(decimal.NewFromInt(600)))
	assert.True(t, sum.BalanceDue.Equal(decimal.NewFromInt(650)))

	// El filtro estrecha resumen y listado por igual
	filter := dto.LedgerListRequest{CustomerID: "c1", EntryType: entity.EntryTypeInvoice}
	sum, err = q.Summary(ctx, filter)
	require.NoError(t, err)
	list, err := q.ListEntries(ctx, filter)
	require.NoError(t, err)

	debitFromList := decimal.Zero
	for _, e := range list.Entries {
		debitFromList = debitFromList.Add(e.Debit)
	}
	assert.True(t, sum.TotalDebit.Equal(debitFromList))
	assert.True(t, sum.TotalCredit.IsZero())
}

func TestSummary_RangoDeFechas(t *testing.T) {
	s := newFakeStore()
	seedCustomer(s, "c1", "ACME")
	repo := &fakeLedgerRepo{s}

	old := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(&entity.LedgerEntry{
		ID: "e1", CustomerID: "c1", EntryType: entity.EntryTypeInvoice,
		Debit: decimal.NewFromInt(100), Credit: decimal.Zero,
		BalanceAfter: decimal.NewFromInt(100), CreatedAt: old,
	}))
	require.NoError(t, repo.Append(&entity.LedgerEntry{
		ID: "e2", CustomerID: "c1", EntryType: entity.EntryTypeInvoice,
		Debit: decimal.NewFromInt(40), Credit: decimal.Zero,
		BalanceAfter: decimal.NewFromInt(140), CreatedAt: recent,
	}))

	q := billing.NewLedgerQuery(repo)
	sum, err := q.Summary(context.Background(), dto.LedgerListRequest{
		DateFrom: "2026-08-01",
		DateTo:   "2026-08-31",
	})
	require.NoError(t, err)
	assert.True(t, sum.TotalDebit.Equal(decimal.NewFromInt(40)), "solo la entrada de agosto")
}

func TestExportCSV_FormateaElConjuntoFiltradoCompleto(t *testing.T) {
	s := newFakeStore()
	seedLedger(t, s)
	q := billing.NewLedgerQuery(&fakeLedgerRepo{s})

	// PageSize chico: la exportación lo ignora y saca todo el conjunto
	out, err := q.ExportCSV(context.Background(), dto.LedgerListRequest{
		CustomerID:  "c1",
		SortOrder:   "asc",
		PageRequest: dto.PageRequest{Page: 1, PageSize: 1},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 4, "cabecera + 3 entradas")
	assert.Equal(t, "Date,Type,Description,Debit,Credit,Balance After", lines[0])
	assert.Contains(t, lines[1], "INVOICE")
	assert.Contains(t, lines[1], "1000.00")
	assert.Contains(t, lines[2], "400.00")
	assert.Contains(t, lines[3], "650.00", "balance corrido final")
}
