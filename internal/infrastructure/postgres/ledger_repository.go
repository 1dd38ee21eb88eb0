package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/acexpress/courier-api/internal/domain/entity"
	"github.com/acexpress/courier-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

const ledgerColumns = `id, seq, customer_id, entry_type, debit, credit, description, reference_id, balance_after, created_at`

// Columnas de orden aceptadas. Cualquier otra cae al default; nunca se
// interpola texto del request en el SQL.
var ledgerOrderColumns = map[string]string{
	"created_at": "created_at",
	"debit":      "debit",
	"credit":     "credit",
	"entry_type": "entry_type",
}

// LedgerRepo implementación de LedgerRepository (usable con pool o tx).
// Append-only: no hay UPDATE ni DELETE sobre ledger_entries.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Append inserta la entrada; seq lo asigna la secuencia de la tabla.
func (r *LedgerRepo) Append(e *entity.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries
			(id, customer_id, entry_type, debit, credit, description, reference_id, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING seq`
	err := r.q.QueryRow(context.Background(), query,
		e.ID, e.CustomerID, e.EntryType, e.Debit, e.Credit,
		e.Description, e.ReferenceID, e.BalanceAfter, e.CreatedAt,
	).Scan(&e.Seq)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// List devuelve la página de entradas y el total de filas del filtro.
func (r *LedgerRepo) List(filter repository.LedgerFilter) ([]*entity.LedgerEntry, int, error) {
	ctx := context.Background()
	where, args := buildLedgerWhere(filter)

	var total int
	countQuery := `SELECT count(*) FROM ledger_entries` + where
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries` + where + orderClause(filter)
	if filter.Limit > 0 {
		query += ` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
		args = append(args, filter.Limit, filter.Offset)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		if err := rows.Scan(
			&e.ID, &e.Seq, &e.CustomerID, &e.EntryType, &e.Debit, &e.Credit,
			&e.Description, &e.ReferenceID, &e.BalanceAfter, &e.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, total, rows.Err()
}

// Summary agrega débitos y créditos sobre el mismo WHERE que List: ambas
// vistas siempre describen el mismo conjunto de filas.
func (r *LedgerRepo) Summary(filter repository.LedgerFilter) (*repository.LedgerSummary, error) {
	where, args := buildLedgerWhere(filter)
	query := `
		SELECT COALESCE(sum(debit), 0), COALESCE(sum(credit), 0)
		FROM ledger_entries` + where
	var s repository.LedgerSummary
	err := r.q.QueryRow(context.Background(), query, args...).Scan(&s.TotalDebit, &s.TotalCredit)
	if err != nil {
		return nil, fmt.Errorf("ledger summary: %w", err)
	}
	s.BalanceDue = s.TotalDebit.Sub(s.TotalCredit)
	return &s, nil
}

// ListByCustomer todas las entradas de un cliente en orden de commit.
func (r *LedgerRepo) ListByCustomer(customerID string) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries
		WHERE customer_id = $1 ORDER BY created_at, seq`
	rows, err := r.q.Query(context.Background(), query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list ledger by customer: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		if err := rows.Scan(
			&e.ID, &e.Seq, &e.CustomerID, &e.EntryType, &e.Debit, &e.Credit,
			&e.Description, &e.ReferenceID, &e.BalanceAfter, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

func buildLedgerWhere(filter repository.LedgerFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.CustomerID != "" {
		add("customer_id = $%d", filter.CustomerID)
	}
	if filter.EntryType != "" {
		add("entry_type = $%d", filter.EntryType)
	}
	if filter.DateFrom != nil {
		add("created_at >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		add("created_at <= $%d", *filter.DateTo)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(filter repository.LedgerFilter) string {
	col, ok := ledgerOrderColumns[filter.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if filter.SortOrder == "asc" {
		dir = "ASC"
	}
	// seq desempata entradas con el mismo created_at
	return fmt.Sprintf(" ORDER BY %s %s, seq %s", col, dir, dir)
}
