package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"supplynorm/catalog"
	"supplynorm/config"
	"supplynorm/importer"
	"supplynorm/normalizer"
	"supplynorm/output"
	"supplynorm/storage"
)

var (
	importInputs         []string
	importFormat         string
	importSupplier       string
	importSupplierConfig string
	importDBPath         string
	importDryRun         bool
	importOutput         string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Normalize supplier offer files and store products and offers in SQLite",
	Long: `Read supplier files, normalize every data row through the supplier's column rules and persist the
resulting products and offer items in SQLite.

The supplier configuration for a file is resolved in this order:
- --supplier-config: a standalone supplier file (JSON or YAML)
- --supplier: a supplier name from suppliers[] in the configuration
- the first suppliers[].file_template that matches the file name
If none applies, the import fails before any file is read.

When --format is omitted, format is inferred from each input file extension.
Files that cannot be read are reported and skipped; set import.stop_on_file_error to abort instead.`,
	Example: `
  # Import files matched by suppliers[].file_template
  supplynorm import -i acme_2025-03.xlsx -i beta_offer.csv

  # Force a configured supplier
  supplynorm import -i offer.xlsx --supplier Acme

  # Use a standalone supplier configuration
  supplynorm import -i offer.csv --supplier-config ./suppliers/acme.json

  # Preview without storing, writing normalized records to a file
  supplynorm import -i offer.xlsx --supplier Acme --dry-run --output ./preview.xlsx
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		logger := newLogger()

		summary, err := importer.Run(cmd.Context(), importInputs, importer.RunOptions{
			Format:       importFormat,
			SupplierName: importSupplier,
			SupplierFile: importSupplierConfig,
		}, *cfg, logger)
		if summary != nil {
			if writeErr := output.WriteSummary(os.Stdout, summary.Results); writeErr != nil {
				return writeErr
			}
		}
		if err != nil {
			return err
		}

		if strings.TrimSpace(importOutput) != "" {
			if err := writeImportOutput(importOutput, summary.Results); err != nil {
				return err
			}
			fmt.Printf("Normalized records written to: %s\n", importOutput)
		}

		persisted := 0
		if !importDryRun && cfg.Import.Persist {
			persisted, err = persistResults(resolveDBPath(importDBPath), summary.Results, logger)
			if err != nil {
				return err
			}
		}

		fmt.Printf("Import completed. Files: %d, Failed files: %d, Rows processed: %d, Products created: %d, Rows skipped: %d, Row errors: %d, Offer items persisted: %d\n",
			summary.FilesProcessed,
			summary.FilesFailed,
			summary.RowsProcessed,
			summary.ProductsCreated,
			summary.ProductsSkipped,
			summary.RowErrors,
			persisted,
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringArrayVarP(&importInputs, "input", "i", nil, "Input file path (repeatable)")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Input format: csv|excel|tsv (optional, inferred from extension when omitted)")
	importCmd.Flags().StringVarP(&importSupplier, "supplier", "s", "", "Configured supplier name to use for every input file")
	importCmd.Flags().StringVar(&importSupplierConfig, "supplier-config", "", "Standalone supplier configuration file (json|yaml)")
	importCmd.Flags().StringVar(&importDBPath, "db", "", "Path to local SQLite database (default: database.path from config)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Normalize only; do not write to the database")
	importCmd.Flags().StringVarP(&importOutput, "output", "o", "", "Also write normalized records to this CSV/Excel file")

	_ = importCmd.MarkFlagRequired("input")
}

func writeImportOutput(path string, results []*normalizer.Result) error {
	writer, err := output.WriterForFormat(detectExportFormat(path))
	if err != nil {
		return err
	}
	return writer.Write(path, collectRecords(results))
}

func collectRecords(results []*normalizer.Result) []catalog.Record {
	records := make([]catalog.Record, 0, 256)
	for _, result := range results {
		records = append(records, result.Records...)
	}
	return records
}

// persistResults stores every result that produced records and returns the
// number of offer items written. A supplier offer that is already stored is
// skipped.
func persistResults(dbPath string, results []*normalizer.Result, logger zerolog.Logger) (int, error) {
	store, err := storage.OpenSQLite(dbPath)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	persisted := 0
	for _, result := range results {
		if result.Failed() || len(result.Records) == 0 {
			continue
		}
		stats, err := store.SaveResult(result)
		if err != nil {
			if errors.Is(err, storage.ErrSupplierOfferExists) {
				logger.Warn().Str("file", result.SourceFile).Msg("supplier offer already stored")
				continue
			}
			return persisted, fmt.Errorf("persist %s: %w", result.SourceFile, err)
		}
		logger.Debug().
			Str("file", result.SourceFile).
			Int("products_inserted", stats.ProductsInserted).
			Int("products_updated", stats.ProductsUpdated).
			Msg("result persisted")
		persisted += stats.OfferItems
	}
	return persisted, nil
}
