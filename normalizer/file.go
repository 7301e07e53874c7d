package normalizer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"supplynorm/catalog"
)

// NormalizeFile normalizes every data row of file in source order. Rows
// before the supplier's data start row and rows without data are ignored.
// Row failures are recorded and never stop the file; ctx is checked before
// each row so a cancelled run returns the rows processed so far.
func (n *Normalizer) NormalizeFile(ctx context.Context, file FileData, pctx ProcessingContext) *Result {
	started := n.now()

	sourceFile := firstNonEmpty(pctx.SourceFileName, file.Name, filepath.Base(file.Path))
	offer := pctx.SupplierOffer
	if offer == nil {
		offer = catalog.NewSupplierOffer(n.supplier.Name, sourceFile, started)
	}

	result := &Result{
		SourceFile:    sourceFile,
		SupplierName:  n.supplier.Name,
		ProcessedAt:   started,
		SupplierOffer: offer,
		Records:       make([]catalog.Record, 0, len(file.Rows)),
	}
	logger := n.logger.With().
		Str("supplier", n.supplier.Name).
		Str("file", sourceFile).
		Logger()

	defer func() {
		result.Statistics.Duration = n.now().Sub(started)
	}()

	if len(n.rules) == 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("supplier %q has no column rules configured", n.supplier.Name))
		logger.Error().Msg("no column rules configured")
		return result
	}

	logger.Info().Int("rows", len(file.Rows)).Msg("normalizing file")

	for i, row := range file.Rows {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("processing stopped before row %d: %v", row.Index, err))
			logger.Warn().Int("row", row.Index).Err(err).Msg("normalization cancelled")
			break
		}
		if i < n.supplier.DataStartRow || !row.HasData {
			continue
		}

		result.Statistics.RowsProcessed++
		outcome := n.guardedNormalizeRow(row)
		result.Warnings = append(result.Warnings, outcome.Warnings...)

		switch outcome.Kind {
		case OutcomeValid:
			result.Statistics.ProductsCreated++
			result.Records = append(result.Records, *outcome.Record)
		case OutcomeSkipped:
			result.Statistics.ProductsSkipped++
			logger.Debug().Int("row", row.Index).Str("reason", outcome.Reason).Msg("row skipped")
		case OutcomeFailed:
			result.Statistics.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row.Index, outcome.Err))
			logger.Warn().Int("row", row.Index).Err(outcome.Err).Msg("row failed")
		}
	}

	logger.Info().
		Int("processed", result.Statistics.RowsProcessed).
		Int("created", result.Statistics.ProductsCreated).
		Int("skipped", result.Statistics.ProductsSkipped).
		Int("errors", result.Statistics.ErrorCount).
		Msg("file normalized")

	return result
}

// guardedNormalizeRow turns a panic inside row processing into a failed
// outcome.
func (n *Normalizer) guardedNormalizeRow(row RawRow) (outcome Outcome) {
	defer func() {
		if recovered := recover(); recovered != nil {
			outcome = failedOutcome(row.Index, fmt.Errorf("unexpected error: %v", recovered))
		}
	}()
	return n.rowFunc(row)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" && trimmed != "." {
			return trimmed
		}
	}
	return ""
}
