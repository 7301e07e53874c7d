package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"supplynorm/catalog"
	"supplynorm/config"
	"supplynorm/normalizer"
	"supplynorm/storage"
)

func TestDetectExportFormat(t *testing.T) {
	tests := map[string]string{
		"./records.csv":  "csv",
		"./records.XLSX": "excel",
		"./records.xlsm": "excel",
		"./records.xls":  "excel",
		"./records":      "csv",
		"./records.txt":  "csv",
	}
	for path, want := range tests {
		if got := detectExportFormat(path); got != want {
			t.Fatalf("detectExportFormat(%q): expected %q, got %q", path, want, got)
		}
	}
}

func TestResolveDBPath(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Reset()
	viper.Set(config.KeyDatabasePath, "./configured.db")

	if got := resolveDBPath("./flag.db"); got != "./flag.db" {
		t.Fatalf("expected flag value, got %q", got)
	}
	if got := resolveDBPath("  "); got != "./configured.db" {
		t.Fatalf("expected configured path, got %q", got)
	}
}

func TestPrintOfferListings(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var out bytes.Buffer
		if err := printOfferListings(&out, nil); err != nil {
			t.Fatalf("print listings: %v", err)
		}
		if !strings.Contains(out.String(), "No supplier offers stored.") {
			t.Fatalf("unexpected output: %q", out.String())
		}
	})

	t.Run("table", func(t *testing.T) {
		offer := catalog.NewSupplierOffer("Acme", "acme.csv", time.Date(2026, 1, 23, 8, 0, 0, 0, time.UTC))
		listings := []storage.OfferListing{{Offer: *offer, Items: 4, RowsProcessed: 5, ProductsSkipped: 1}}

		var out bytes.Buffer
		if err := printOfferListings(&out, listings); err != nil {
			t.Fatalf("print listings: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected header and one row, got %q", out.String())
		}
		if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[0], "SKIPPED") {
			t.Fatalf("unexpected header: %q", lines[0])
		}
		fields := strings.Fields(lines[1])
		if fields[0] != offer.ID || fields[1] != "Acme" || fields[2] != "acme.csv" {
			t.Fatalf("unexpected row: %q", lines[1])
		}
		if got := fields[len(fields)-4:]; strings.Join(got, " ") != "4 5 1 0" {
			t.Fatalf("unexpected counters: %v", got)
		}
	})
}

func importedResult(supplier, file string, names ...string) *normalizer.Result {
	result := &normalizer.Result{
		SourceFile:    file,
		SupplierName:  supplier,
		SupplierOffer: catalog.NewSupplierOffer(supplier, file, time.Now()),
	}
	for i, name := range names {
		product := catalog.NewProduct()
		product.Name = name
		result.Records = append(result.Records, catalog.Record{RowIndex: i + 1, Product: product})
	}
	return result
}

func TestCollectRecords(t *testing.T) {
	records := collectRecords([]*normalizer.Result{
		importedResult("Acme", "a.csv", "Bleu", "Sauvage"),
		{SourceFile: "broken.csv", Errors: []string{"read failed"}},
		importedResult("Beta", "b.csv", "Libre"),
	})
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[2].Product.Name != "Libre" {
		t.Fatalf("expected records in result order, got %q last", records[2].Product.Name)
	}
}

func TestPersistResults(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "supplynorm.db")
	stored := importedResult("Acme", "a.csv", "Bleu", "Sauvage")
	results := []*normalizer.Result{
		stored,
		{SourceFile: "broken.csv", Errors: []string{"read failed"}},
		importedResult("Beta", "empty.csv"),
	}

	persisted, err := persistResults(dbPath, results, zerolog.Nop())
	if err != nil {
		t.Fatalf("persist results: %v", err)
	}
	if persisted != 2 {
		t.Fatalf("expected 2 persisted items, got %d", persisted)
	}

	// storing the same offer again is skipped, not an error
	persisted, err = persistResults(dbPath, []*normalizer.Result{stored}, zerolog.Nop())
	if err != nil {
		t.Fatalf("persist duplicate: %v", err)
	}
	if persisted != 0 {
		t.Fatalf("expected duplicate offer to be skipped, got %d", persisted)
	}

	store, err := storage.OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()

	listings, err := store.ListSupplierOffers()
	if err != nil {
		t.Fatalf("list offers: %v", err)
	}
	if len(listings) != 1 || listings[0].Offer.ID != stored.SupplierOffer.ID {
		t.Fatalf("expected only the stored offer, got %+v", listings)
	}
}
