package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"supplynorm/output"
	"supplynorm/storage"
)

var (
	exportFormat  string
	exportMode    string
	exportOutput  string
	exportDBPath  string
	exportOfferID string
	exportGroupBy string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored products and offers from SQLite to CSV/Excel",
	Long: `Export normalized records from SQLite.

Modes:
- raw: one row per stored offer item with its product
- price: per-group price statistics (records, priced records, min/max/average price, total quantity),
  grouped by a product property (--group-by, default Brand)

Use --offer to restrict the export to one supplier offer (see "offers list").
Output format can be selected explicitly via --format or inferred from --output extension.`,
	Example: `
  # Export all records to CSV
  supplynorm export --output ./records.csv

  # Export one supplier offer to Excel
  supplynorm export --offer 3f6c... --output ./acme.xlsx

  # Export price statistics grouped by concentration
  supplynorm export --mode price --group-by Concentration --output ./concentrations.csv
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := exportFormat
		if strings.TrimSpace(format) == "" {
			format = detectExportFormat(exportOutput)
		}

		store, err := storage.OpenSQLite(resolveDBPath(exportDBPath))
		if err != nil {
			return err
		}
		defer store.Close()

		if id := strings.TrimSpace(exportOfferID); id != "" {
			if _, ok, err := store.GetSupplierOffer(id); err != nil {
				return err
			} else if !ok {
				return fmt.Errorf("supplier offer %s not found", id)
			}
		}

		records, err := store.ListRecords(exportOfferID)
		if err != nil {
			return err
		}

		mode := strings.TrimSpace(strings.ToLower(exportMode))
		switch mode {
		case "", "raw":
			writer, writerErr := output.WriterForFormat(format)
			if writerErr != nil {
				return writerErr
			}
			if err := writer.Write(exportOutput, records); err != nil {
				return err
			}
			fmt.Printf("Export completed. Rows: %d, Mode: raw, Format: %s, File: %s\n", len(records), format, exportOutput)
		case "price":
			summaries := output.BuildPriceSummaries(records, exportGroupBy)
			if err := output.WritePriceSummaries(exportOutput, format, summaries); err != nil {
				return err
			}
			fmt.Printf("Export completed. Groups: %d, Mode: price, Format: %s, File: %s\n", len(summaries), format, exportOutput)
		default:
			return fmt.Errorf("unsupported export mode: %s (supported: raw, price)", exportMode)
		}
		return nil
	},
}

func detectExportFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "csv":
		return "csv"
	case "xlsx", "xlsm", "xls":
		return "excel"
	default:
		return "csv"
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportMode, "mode", "raw", "Export mode: raw|price")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
	exportCmd.Flags().StringVar(&exportDBPath, "db", "", "Path to local SQLite database (default: database.path from config)")
	exportCmd.Flags().StringVar(&exportOfferID, "offer", "", "Export only this supplier offer ID")
	exportCmd.Flags().StringVar(&exportGroupBy, "group-by", "Brand", "Product property to group by in price mode")

	_ = exportCmd.MarkFlagRequired("output")
}
