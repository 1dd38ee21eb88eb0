package billing_test

import (
	"context"
	"errors"
	"sync"
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

func newPoster(s *fakeStore) *billing.LedgerPoster {
	return billing.NewLedgerPoster(&fakeTxRunner{s}, 3, time.Millisecond, testLogger())
}

// ────────────────────────────────────────────────────────────────────────────
// Balance corrido
// ────────────────────────────────────────────────────────────────────────────

func TestPost_DebitoYCreditoMantienenBalanceCorrido(t *testing.T) {
	s := newFakeStore()
	seedCustomer(s, "c1", "ACME Importaciones")
	poster := newPoster(s)
	ctx := context.Background()

	// Factura de 1000: débito
	e1, err := poster.Post(ctx, billing.PostInput{
		CustomerID:  "c1",
		EntryType:   entity.EntryTypeInvoice,
		Amount:      decimal.NewFromInt(1000),
		IsDebit:     true,
		Description: "Flete guía ACE-2026-000001",
	})
	require.NoError(t, err)
	assert.True(t, e1.Debit.Equal(decimal.NewFromInt(1000)))
	assert.True(t, e1.Credit.IsZero())
	assert.True(t, e1.BalanceAfter.Equal(decimal.NewFromInt(1000)))

	// Pago de 400: crédito
	e2, err := poster.Post(ctx, billing.PostInput{
		CustomerID:  "c1",
		EntryType:   entity.EntryTypePayment,
		Amount:      decimal.NewFromInt(400),
		IsDebit:     false,
		Description: "Pago TRANSFER",
	})
	require.NoError(t, err)
	assert.True(t, e2.BalanceAfter.Equal(decimal.NewFromInt(600)))

	// El agregado del cliente sigue a la última entrada
	c := s.customers["c1"]
	assert.True(t, c.LedgerBalance.Equal(decimal.NewFromInt(600)))
}

func TestPost_InvarianteDeReplaySobreLaSecuencia(t *testing.T) {
	s := newFakeStore()
	seedCustomer(s, "c1", "ACME")
	poster := newPoster(s)
	ctx := context.Background()

	amounts := []struct {
		entryType string
		amount    int64
		isDebit   bool
	}{
		{entity.EntryTypeInvoice, 1000, true},
		{entity.EntryTypePayment, 400, false},
		{entity.EntryTypeAdjustment, 50, true},
		{entity.EntryTypeRefund, 25, false},
	}
	for _, a := range amounts {
		_, err := poster.Post(ctx, billing.PostInput{
			CustomerID: "c1",
			EntryType:  a.entryType,
			Amount:     decimal.NewFromInt(a.amount),
			IsDebit:    a.isDebit,
		})
		require.NoError(t, err)
	}

	// balance_after[i] = balance_after[i-1] + debit[i] - credit[i]
	entries, err := (&fakeLedgerRepo{s}).ListByCustomer("c1")
	require.NoError(t, err)
	require.Len(t, entries, 4)
	running := decimal.Zero
	for _, e := range entries {
		running = running.Add(e.Debit).Sub(e.Credit)
		assert.True(t, e.BalanceAfter.Equal(running),
			"balance_after %s != replay %s en seq %d", e.BalanceAfter, running, e.Seq)
	}
	assert.True(t, running.Equal(decimal.NewFromInt(625)))
}

// ────────────────────────────────────────────────────────────────────────────
// Posteos concurrentes del mismo cliente
// ────────────────────────────────────────────────────────────────────────────

func TestPost_PagosConcurrentesSerializadosPorCliente(t *testing.T) {
	s := newFakeStore()
	seedCustomer(s, "c1", "ACME")
	poster := newPoster(s)
	ctx := context.Background()

	_, err := poster.Post(ctx, billing.PostInput{
		CustomerID: "c1",
		EntryType:  entity.EntryTypeInvoice,
		Amount:     decimal.NewFromInt(1000),
		IsDebit:    true,
	})
	require.NoError(t, err)

	// Dos pagos simultáneos de 100 y 250: ambos deben aplicar, en algún orden
	var wg sync.WaitGroup
	for _, amount := range []int64{100, 250} {
		wg.Add(1)
		go func(amount int64) {
			defer wg.Done()
			_, err := poster.Post(ctx, billing.PostInput{
				CustomerID: "c1",
				EntryType:  entity.EntryTypePayment,
				Amount:     decimal.NewFromInt(amount),
				IsDebit:    false,
			})
			assert.NoError(t, err)
		}(amount)
	}
	wg.Wait()

	assert.True(t, s.customers["c1"].LedgerBalance.Equal(decimal.NewFromInt(650)))

	entries, err := (&fakeLedgerRepo{s}).ListByCustomer("c1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	running := decimal.Zero
	for _, e := range entries {
		running = running.Add(e.Debit).Sub(e.Credit)
		require.True(t, e.BalanceAfter.Equal(running), "ningún posteo puede perderse")
	}
}

// ────────────────────────────────────────────────────────────────────────────
// Validación y reintentos
// ────────────────────────────────────────────────────────────────────────────

func TestPost_RechazaEntradasInvalidas(t *testing.T) {
	s := newFakeStore()
	seedCustomer(s, "c1", "ACME")
	poster := newPoster(s)
	ctx := context.Background()

	cases := []struct {
		name string
		in   billing.PostInput
	}{
		{"monto cero", billing.PostInput{CustomerID: "c1", EntryType: entity.EntryTypeInvoice, Amount: decimal.Zero, IsDebit: true}},
		{"monto negativo", billing.PostInput{CustomerID: "c1", EntryType: entity.EntryTypeInvoice, Amount: decimal.NewFromInt(-5), IsDebit: true}},
		{"tipo desconocido", billing.PostInput{CustomerID: "c1", EntryType: "FEE", Amount: decimal.NewFromInt(10), IsDebit: true}},
		{"cliente vacío", billing.PostInput{EntryType: entity.EntryTypeInvoice, Amount: decimal.NewFromInt(10), IsDebit: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := poster.Post(ctx, tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Empty(t, s.entries, "una entrada rechazada no deja rastro")
}

func TestPost_ClienteInexistente(t *testing.T) {
	s := newFakeStore()
	poster := newPoster(s)

	_, err := poster.Post(context.Background(), billing.PostInput{
		CustomerID: "nope",
		EntryType:  entity.EntryTypePayment,
		Amount:     decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPost_ReintentaSoloConflictosDeSerializacion(t *testing.T) {
	s := newFakeStore()
	seedCustomer(s, "c1", "ACME")
	ctx := context.Background()

	// Dos conflictos transitorios y a la tercera pasa
	flaky := &flakyLedgerRunner{inner: &fakeTxRunner{s}, fails: 2, err: domain.ErrConcurrency}
	poster := billing.NewLedgerPoster(flaky, 3, time.Millisecond, testLogger())
	entry, err := poster.Post(ctx, billing.PostInput{
		CustomerID: "c1",
		EntryType:  entity.EntryTypeInvoice,
		Amount:     decimal.NewFromInt(100),
		IsDebit:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, flaky.calls)
	assert.True(t, entry.BalanceAfter.Equal(decimal.NewFromInt(100)))

	// Conflicto persistente: se agotan los reintentos
	exhausted := &flakyLedgerRunner{inner: &fakeTxRunner{s}, fails: 100, err: domain.ErrConcurrency}
	poster = billing.NewLedgerPoster(exhausted, 2, time.Millisecond, testLogger())
	_, err = poster.Post(ctx, billing.PostInput{
		CustomerID: "c1",
		EntryType:  entity.EntryTypeInvoice,
		Amount:     decimal.NewFromInt(100),
		IsDebit:    true,
	})
	assert.ErrorIs(t, err, domain.ErrConcurrency)
	assert.Equal(t, 3, exhausted.calls, "maxRetries=2 son 3 corridas en total")

	// Un error ajeno a serialización no se reintenta
	otherErr := errors.New("conexión caída")
	broken := &flakyLedgerRunner{inner: &fakeTxRunner{s}, fails: 100, err: otherErr}
	poster = billing.NewLedgerPoster(broken, 3, time.Millisecond, testLogger())
	_, err = poster.Post(ctx, billing.PostInput{
		CustomerID: "c1",
		EntryType:  entity.EntryTypeInvoice,
		Amount:     decimal.NewFromInt(100),
		IsDebit:    true,
	})
	assert.ErrorIs(t, err, otherErr)
	assert.Equal(t, 1, broken.calls)
}

// ────────────────────────────────────────────────────────────────────────────
// Correcciones manuales
// ────────────────────────────────────────────────────────────────────────────

func TestPostAdjustment_AjusteDebitoYReembolsoCredito(t *testing.T) {
	s := newFakeStore()
	seedCustomer(s, "c1", "ACME")
	poster := newPoster(s)
	ctx := context.Background()

	// Ajuste a favor del operador: débito de 75
	adj, err := poster.PostAdjustment(ctx, dto.AdjustmentRequest{
		CustomerID:  "c1",
		EntryType:   entity.EntryTypeAdjustment,
		Direction:   "debit",
		Amount:      decimal.NewFromInt(75),
		Description: "Recargo de combustible omitido",
		ReferenceID: "fact-1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.EntryTypeAdjustment, adj.EntryType)
	assert.True(t, adj.Debit.Equal(decimal.NewFromInt(75)))
	assert.True(t, adj.BalanceAfter.Equal(decimal.NewFromInt(75)))

	// Devolución al cliente: crédito de 25
	ref, err := poster.PostAdjustment(ctx, dto.AdjustmentRequest{
		CustomerID:  "c1",
		EntryType:   entity.EntryTypeRefund,
		Direction:   "credit",
		Amount:      decimal.NewFromInt(25),
		Description: "Devolución por caja dañada",
	})
	require.NoError(t, err)
	assert.True(t, ref.Credit.Equal(decimal.NewFromInt(25)))
	assert.True(t, ref.BalanceAfter.Equal(decimal.NewFromInt(50)))

	c := s.customers["c1"]
	assert.True(t, c.LedgerBalance.Equal(decimal.NewFromInt(50)))
}

func TestPostAdjustment_SoloTiposManuales(t *testing.T) {
	s := newFakeStore()
	seedCustomer(s, "c1", "ACME")
	poster := newPoster(s)
	ctx := context.Background()

	cases := []dto.AdjustmentRequest{
		// INVOICE y PAYMENT nacen de sus documentos, no de este camino
		{CustomerID: "c1", EntryType: entity.EntryTypeInvoice, Direction: "debit", Amount: decimal.NewFromInt(10)},
		{CustomerID: "c1", EntryType: entity.EntryTypePayment, Direction: "credit", Amount: decimal.NewFromInt(10)},
		// dirección desconocida
		{CustomerID: "c1", EntryType: entity.EntryTypeAdjustment, Direction: "lateral", Amount: decimal.NewFromInt(10)},
		// monto no positivo
		{CustomerID: "c1", EntryType: entity.EntryTypeRefund, Direction: "credit", Amount: decimal.Zero},
	}
	for _, in := range cases {
		_, err := poster.PostAdjustment(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
	assert.Empty(t, s.entries)
}
