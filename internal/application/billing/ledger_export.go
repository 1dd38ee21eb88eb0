package billing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/acexpress/courier-api/internal/application/dto"
)

// ExportCSV exporta las entradas del conjunto filtrado como CSV.
// Formateo puro del mismo listado que ListEntries: columnas Date, Type,
// Description, Debit, Credit, Balance After.
func (uc *LedgerQuery) ExportCSV(ctx context.Context, in dto.LedgerListRequest) ([]byte, error) {
	filter, err := buildLedgerFilter(in)
	if err != nil {
		return nil, err
	}
	// exportación completa: sin paginar
	filter.Limit = 0
	filter.Offset = 0
	entries, _, err := uc.ledgerRepo.List(filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Date", "Type", "Description", "Debit", "Credit", "Balance After"}); err != nil {
		return nil, fmt.Errorf("export csv: %w", err)
	}
	for _, e := range entries {
		record := []string{
			e.CreatedAt.Format(time.RFC3339),
			e.EntryType,
			e.Description,
			e.Debit.StringFixed(2),
			e.Credit.StringFixed(2),
			e.BalanceAfter.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("export csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export csv: %w", err)
	}
	return buf.Bytes(), nil
}
