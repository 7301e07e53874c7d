package output

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"supplynorm/catalog"
	"supplynorm/normalizer"
)

func sampleRecord(rowIndex int, name, brand, price string, quantity int64) catalog.Record {
	product := catalog.NewProduct()
	product.Name = name
	product.Identifier = "ID-" + name
	if brand != "" {
		product.Properties.Set("Brand", brand)
	}
	product.Properties.Set("Size", "50 ml")

	record := catalog.Record{RowIndex: rowIndex, Product: product}
	if price != "" {
		parsed := decimal.RequireFromString(price)
		record.Offer = &catalog.OfferLineItem{Price: &parsed, Quantity: &quantity, Properties: catalog.NewProperties()}
	}
	return record
}

func TestWriterForFormat(t *testing.T) {
	t.Parallel()

	if _, err := WriterForFormat(" CSV "); err != nil {
		t.Fatalf("csv writer: %v", err)
	}
	if _, err := WriterForFormat("xlsx"); err != nil {
		t.Fatalf("excel writer: %v", err)
	}
	if _, err := WriterForFormat("pdf"); err == nil {
		t.Fatalf("expected error for pdf")
	}
}

func TestCSVWriter_WritesRecords(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "records.csv")

	records := []catalog.Record{
		sampleRecord(1, "Bleu", "Chanel", "45.99", 3),
		sampleRecord(2, "Plain", "", "", 0),
	}
	if err := (&CSVWriter{}).Write(path, records); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(recordHeaders, ",") {
		t.Fatalf("unexpected headers: %v", rows[0])
	}
	want := []string{"1", "ID-Bleu", "Bleu", "", "45.99", "3", "Brand=Chanel; Size=50 ml", ""}
	if strings.Join(rows[1], "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected first row:\n got %v\nwant %v", rows[1], want)
	}
	if rows[2][4] != "" || rows[2][5] != "" {
		t.Fatalf("record without offer should have empty price and quantity, got %v", rows[2])
	}
}

func TestExcelWriter_WritesNumericPrices(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "records.xlsx")

	if err := (&ExcelWriter{}).Write(path, []catalog.Record{sampleRecord(4, "Bleu", "Chanel", "45.5", 2)}); err != nil {
		t.Fatalf("write excel: %v", err)
	}

	book, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open excel: %v", err)
	}
	defer book.Close()

	sheet := book.GetSheetName(0)
	rows, err := book.GetRows(sheet)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "4" || rows[1][2] != "Bleu" || rows[1][4] != "45.5" {
		t.Fatalf("unexpected data row: %v", rows[1])
	}
	cellType, err := book.GetCellType(sheet, "E2")
	if err != nil {
		t.Fatalf("cell type: %v", err)
	}
	if cellType != excelize.CellTypeNumber && cellType != excelize.CellTypeUnset {
		t.Fatalf("expected numeric price cell, got %v", cellType)
	}
}

func TestBuildPriceSummaries_GroupsByProperty(t *testing.T) {
	t.Parallel()

	records := []catalog.Record{
		sampleRecord(1, "Bleu", "Chanel", "45.00", 2),
		sampleRecord(2, "No 5", "chanel", "95.00", 1),
		sampleRecord(3, "Sauvage", "Dior", "60.00", 4),
		sampleRecord(4, "Sample", "Dior", "", 0),
		sampleRecord(5, "Loose", "", "10.00", 0),
	}

	summaries := BuildPriceSummaries(records, "brand")
	if len(summaries) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(summaries))
	}

	ungrouped, chanel, dior := summaries[0], summaries[1], summaries[2]
	if ungrouped.Group != UngroupedLabel || ungrouped.Records != 1 {
		t.Fatalf("unexpected ungrouped summary: %+v", ungrouped)
	}
	if chanel.Group != "Chanel" || chanel.Records != 2 || chanel.TotalQuantity != 3 {
		t.Fatalf("unexpected chanel summary: %+v", chanel)
	}
	if chanel.MinPrice.String() != "45" || chanel.MaxPrice.String() != "95" || chanel.AveragePrice.String() != "70" {
		t.Fatalf("unexpected chanel prices: min=%s max=%s avg=%s", chanel.MinPrice, chanel.MaxPrice, chanel.AveragePrice)
	}
	if dior.Records != 2 || dior.PricedRecords != 1 {
		t.Fatalf("unexpected dior summary: %+v", dior)
	}

	values := priceSummaryValues(dior)
	if values[3] != "60.00" || values[5] != "60.00" {
		t.Fatalf("unexpected formatted dior values: %v", values)
	}
}

func TestWritePriceSummaries_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	if err := WritePriceSummaries(filepath.Join(t.TempDir(), "x.pdf"), "pdf", nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestWriteSummary(t *testing.T) {
	t.Parallel()

	offer := catalog.NewSupplierOffer("Acme", "acme.csv", time.Now())
	results := []*normalizer.Result{
		{
			SourceFile:    "acme.csv",
			SupplierName:  "Acme",
			SupplierOffer: offer,
			Statistics: normalizer.Statistics{
				RowsProcessed:   3,
				ProductsCreated: 2,
				ProductsSkipped: 1,
				Duration:        1500 * time.Microsecond,
			},
			Warnings: []string{"row 2: value dropped"},
		},
		{
			SourceFile:   "broken.csv",
			SupplierName: "Acme",
			Errors:       []string{"open csv file broken.csv: no such file"},
		},
	}

	var buf bytes.Buffer
	if err := WriteSummary(&buf, results); err != nil {
		t.Fatalf("write summary: %v", err)
	}

	got := buf.String()
	for _, want := range []string{
		"acme.csv [Acme] offer=" + offer.ID + " rows=3 created=2 skipped=1 errors=0 duration=2ms",
		"  warning: row 2: value dropped",
		"broken.csv [Acme] offer=- rows=0",
		"  error: open csv file broken.csv: no such file",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestWriteSummary_CapsMessages(t *testing.T) {
	t.Parallel()

	warnings := make([]string, maxListedMessages+5)
	for i := range warnings {
		warnings[i] = "w"
	}

	var buf bytes.Buffer
	if err := WriteSummary(&buf, []*normalizer.Result{{SourceFile: "a.csv", Warnings: warnings}}); err != nil {
		t.Fatalf("write summary: %v", err)
	}
	if !strings.Contains(buf.String(), "... 5 more warnings") {
		t.Fatalf("expected capped warnings, got:\n%s", buf.String())
	}
}
