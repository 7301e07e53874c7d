package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"supplynorm/normalizer"
)

// maxListedMessages caps warnings and errors printed per file.
const maxListedMessages = 20

// WriteSummary prints per-file import statistics followed by the file's
// warnings and errors.
func WriteSummary(w io.Writer, results []*normalizer.Result) error {
	for _, result := range results {
		if result == nil {
			continue
		}
		offerID := ""
		if result.SupplierOffer != nil {
			offerID = result.SupplierOffer.ID
		}
		stats := result.Statistics

		if _, err := fmt.Fprintf(w,
			"%s [%s] offer=%s rows=%d created=%d skipped=%d errors=%d duration=%s\n",
			result.SourceFile,
			result.SupplierName,
			valueOrDash(offerID),
			stats.RowsProcessed,
			stats.ProductsCreated,
			stats.ProductsSkipped,
			stats.ErrorCount,
			stats.Duration.Round(time.Millisecond),
		); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}

		if err := writeMessages(w, "warning", result.Warnings); err != nil {
			return err
		}
		if err := writeMessages(w, "error", result.Errors); err != nil {
			return err
		}
	}
	return nil
}

func writeMessages(w io.Writer, label string, messages []string) error {
	for i, message := range messages {
		if i == maxListedMessages {
			if _, err := fmt.Fprintf(w, "  ... %d more %ss\n", len(messages)-i, label); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			return nil
		}
		if _, err := fmt.Fprintf(w, "  %s: %s\n", label, message); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	return nil
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
