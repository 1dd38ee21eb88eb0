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

// PostInput parámetros para postear una entrada en el libro mayor.
type PostInput struct {
	CustomerID  string
	EntryType   string // INVOICE | PAYMENT | ADJUSTMENT | REFUND
	Amount      decimal.Decimal
	IsDebit     bool
	Description string
	ReferenceID string    // id de la factura o pago que origina la entrada
	At          time.Time // cero = ahora
}

// LedgerPoster postea entradas al libro mayor manteniendo el balance corrido.
// El read-compute-write por cliente se serializa con el lock de la fila del
// cliente (GetForUpdate); posteos de clientes distintos corren en paralelo.
type LedgerPoster struct {
	txRunner   LedgerTxRunner
	maxRetries int
	backoff    time.Duration
	log        *logger.Logger
}

// NewLedgerPoster construye el poster. maxRetries acota los reintentos ante
// domain.ErrConcurrency; ningún otro error se reintenta.
func NewLedgerPoster(txRunner LedgerTxRunner, maxRetries int, backoff time.Duration, log *logger.Logger) *LedgerPoster {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &LedgerPoster{txRunner: txRunner, maxRetries: maxRetries, backoff: backoff, log: log}
}

// Post valida la entrada y la postea en su propia transacción.
// Solo los conflictos de serialización se reintentan (acotado, con backoff);
// validación y NotFound se devuelven de inmediato.
func (p *LedgerPoster) Post(ctx context.Context, in PostInput) (*entity.LedgerEntry, error) {
	if err := validatePost(in); err != nil {
		return nil, err
	}
	var entry *entity.LedgerEntry
	for attempt := 0; ; attempt++ {
		err := p.txRunner.RunLedger(ctx, func(
			customerRepo repository.CustomerRepository,
			ledgerRepo repository.LedgerRepository,
		) error {
			e, errTx := PostEntryInTx(customerRepo, ledgerRepo, in)
			if errTx != nil {
				return errTx
			}
			entry = e
			return nil
		})
		if err == nil {
			p.log.Info().
				Str("customer_id", in.CustomerID).
				Str("entry_type", in.EntryType).
				Str("amount", in.Amount.String()).
				Str("balance_after", entry.BalanceAfter.String()).
				Msg("entrada posteada en libro mayor")
			return entry, nil
		}
		if !errors.Is(err, domain.ErrConcurrency) || attempt >= p.maxRetries {
			return nil, err
		}
		p.log.Warn().
			Str("customer_id", in.CustomerID).
			Int("attempt", attempt+1).
			Msg("conflicto de serialización al postear, reintentando")
		time.Sleep(p.backoff << attempt)
	}
}

// PostAdjustment postea una corrección manual sobre la cuenta del cliente.
// Solo ADJUSTMENT y REFUND entran por aquí: INVOICE y PAYMENT nacen de sus
// documentos (factura de flete, pago) y nunca de una entrada suelta.
func (p *LedgerPoster) PostAdjustment(ctx context.Context, in dto.AdjustmentRequest) (*dto.LedgerEntryResponse, error) {
	if in.EntryType != entity.EntryTypeAdjustment && in.EntryType != entity.EntryTypeRefund {
		return nil, domain.ErrInvalidInput
	}
	var isDebit bool
	switch in.Direction {
	case "debit":
		isDebit = true
	case "credit":
		isDebit = false
	default:
		return nil, domain.ErrInvalidInput
	}
	entry, err := p.Post(ctx, PostInput{
		CustomerID:  in.CustomerID,
		EntryType:   in.EntryType,
		Amount:      in.Amount,
		IsDebit:     isDebit,
		Description: in.Description,
		ReferenceID: in.ReferenceID,
	})
	if err != nil {
		return nil, err
	}
	resp := toLedgerEntryResponse(entry)
	return &resp, nil
}

// PostEntryInTx ejecuta el read-compute-write con los repositorios del caller
// (misma transacción). Lo usan el poster, el generador de facturas y el
// registrador de pagos para que el débito/crédito quede en la transacción
// del documento que lo origina.
//
// El balance actual se lee de la fila bloqueada del cliente; por invariante
// es igual al balance_after de su última entrada (0 si no hay ninguna).
func PostEntryInTx(
	customerRepo repository.CustomerRepository,
	ledgerRepo repository.LedgerRepository,
	in PostInput,
) (*entity.LedgerEntry, error) {
	if err := validatePost(in); err != nil {
		return nil, err
	}
	customer, err := customerRepo.GetForUpdate(in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}

	debit, credit := decimal.Zero, decimal.Zero
	if in.IsDebit {
		debit = in.Amount
	} else {
		credit = in.Amount
	}
	balanceAfter := customer.LedgerBalance.Add(debit).Sub(credit)

	at := in.At
	if at.IsZero() {
		at = time.Now()
	}
	entry := &entity.LedgerEntry{
		ID:           uuid.New().String(),
		CustomerID:   in.CustomerID,
		EntryType:    in.EntryType,
		Debit:        debit,
		Credit:       credit,
		Description:  in.Description,
		ReferenceID:  in.ReferenceID,
		BalanceAfter: balanceAfter,
		CreatedAt:    at,
	}
	if err := ledgerRepo.Append(entry); err != nil {
		return nil, err
	}
	if err := customerRepo.UpdateLedgerBalance(customer.ID, balanceAfter); err != nil {
		return nil, err
	}
	return entry, nil
}

func validatePost(in PostInput) error {
	if in.CustomerID == "" {
		return domain.ErrInvalidInput
	}
	if !in.Amount.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if !entity.ValidEntryType(in.EntryType) {
		return domain.ErrInvalidInput
	}
	return nil
}
