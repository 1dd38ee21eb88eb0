package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/acexpress/courier-api/internal/application/dto"
	"github.com/acexpress/courier-api/internal/domain"
	"github.com/acexpress/courier-api/internal/domain/entity"
	"github.com/acexpress/courier-api/internal/domain/repository"
	"github.com/acexpress/courier-api/pkg/logger"
)

// PaymentRecorder registra abonos de clientes. El Payment y su entrada
// PAYMENT (crédito) se escriben en la misma transacción.
type PaymentRecorder struct {
	txRunner     PaymentTxRunner
	customerRepo repository.CustomerRepository
	maxRetries   int
	backoff      time.Duration
	log          *logger.Logger
}

// NewPaymentRecorder construye el caso de uso.
func NewPaymentRecorder(
	txRunner PaymentTxRunner,
	customerRepo repository.CustomerRepository,
	maxRetries int,
	backoff time.Duration,
	log *logger.Logger,
) *PaymentRecorder {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &PaymentRecorder{
		txRunner:     txRunner,
		customerRepo: customerRepo,
		maxRetries:   maxRetries,
		backoff:      backoff,
		log:          log,
	}
}

// RecordPayment valida el abono, crea el Payment y postea el crédito.
// Un pago siempre es crédito: reduce el saldo adeudado.
func (uc *PaymentRecorder) RecordPayment(ctx context.Context, in dto.RecordPaymentRequest) (*dto.RecordPaymentResponse, error) {
	if in.CustomerID == "" || !in.Amount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidPaymentMethod(in.Method) {
		return nil, domain.ErrInvalidInput
	}
	paymentDate := time.Now()
	if in.PaymentDate != "" {
		parsed, err := time.Parse("2006-01-02", in.PaymentDate)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		paymentDate = parsed
	}

	customer, err := uc.customerRepo.GetByID(in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}

	var payment *entity.Payment
	var entry *entity.LedgerEntry
	for attempt := 0; ; attempt++ {
		err := uc.txRunner.RunPayment(ctx, func(
			customerRepo repository.CustomerRepository,
			paymentRepo repository.PaymentRepository,
			ledgerRepo repository.LedgerRepository,
		) error {
			now := time.Now()
			payment = &entity.Payment{
				ID:          uuid.New().String(),
				CustomerID:  in.CustomerID,
				Amount:      in.Amount,
				PaymentDate: paymentDate,
				Method:      in.Method,
				Reference:   in.Reference,
				Notes:       in.Notes,
				InvoiceID:   in.InvoiceID,
				CreatedAt:   now,
			}
			if err := paymentRepo.Create(payment); err != nil {
				return err
			}
			e, err := PostEntryInTx(customerRepo, ledgerRepo, PostInput{
				CustomerID:  in.CustomerID,
				EntryType:   entity.EntryTypePayment,
				Amount:      in.Amount,
				IsDebit:     false,
				Description: "Pago " + in.Method,
				ReferenceID: payment.ID,
				At:          now,
			})
			if err != nil {
				return err
			}
			entry = e
			return nil
		})
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrConcurrency) || attempt >= uc.maxRetries {
			return nil, err
		}
		time.Sleep(uc.backoff << attempt)
	}

	uc.log.Info().
		Str("customer_id", in.CustomerID).
		Str("payment_id", payment.ID).
		Str("amount", in.Amount.String()).
		Str("balance_after", entry.BalanceAfter.String()).
		Msg("pago registrado")

	return &dto.RecordPaymentResponse{
		Payment: toPaymentResponse(payment),
		Entry:   toLedgerEntryResponse(entry),
	}, nil
}

func toPaymentResponse(p *entity.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:          p.ID,
		CustomerID:  p.CustomerID,
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate.Format("2006-01-02"),
		Method:      p.Method,
		Reference:   p.Reference,
		Notes:       p.Notes,
		InvoiceID:   p.InvoiceID,
	}
}
