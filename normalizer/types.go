package normalizer

import (
	"strings"
	"time"

	"supplynorm/catalog"
)

// RawRow is one physical spreadsheet row. Missing cells are empty strings.
type RawRow struct {
	Index   int
	Cells   []string
	HasData bool
}

// NewRawRow builds a row and derives HasData from its cells.
func NewRawRow(index int, cells []string) RawRow {
	hasData := false
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			hasData = true
			break
		}
	}
	return RawRow{Index: index, Cells: cells, HasData: hasData}
}

// FileData is a fully read source file.
type FileData struct {
	Path string
	Name string
	Rows []RawRow
}

// ProcessingContext carries caller-supplied metadata for one file run. A nil
// SupplierOffer is minted fresh.
type ProcessingContext struct {
	SupplierOffer  *catalog.SupplierOffer
	SourceFileName string
}

// Statistics aggregates row outcomes for one file.
type Statistics struct {
	RowsProcessed   int
	ProductsCreated int
	ProductsSkipped int
	ErrorCount      int
	Duration        time.Duration
}

// Result is the outcome of normalizing one file. Failures are reported in
// Errors; a file-level failure leaves Records empty.
type Result struct {
	SourceFile    string
	SupplierName  string
	ProcessedAt   time.Time
	SupplierOffer *catalog.SupplierOffer
	Records       []catalog.Record
	Statistics    Statistics
	Warnings      []string
	Errors        []string
}

// Failed reports whether the file produced errors and no records.
func (r *Result) Failed() bool {
	return len(r.Errors) > 0 && len(r.Records) == 0
}

type OutcomeKind int

const (
	OutcomeValid OutcomeKind = iota
	OutcomeSkipped
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeValid:
		return "valid"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the per-row result: a record, a skip reason, or an error.
type Outcome struct {
	Kind     OutcomeKind
	RowIndex int
	Record   *catalog.Record
	Reason   string
	Err      error
	Warnings []string
}

func validOutcome(rowIndex int, record *catalog.Record, warnings []string) Outcome {
	return Outcome{Kind: OutcomeValid, RowIndex: rowIndex, Record: record, Warnings: warnings}
}

func skippedOutcome(rowIndex int, reason string, warnings []string) Outcome {
	return Outcome{Kind: OutcomeSkipped, RowIndex: rowIndex, Reason: reason, Warnings: warnings}
}

func failedOutcome(rowIndex int, err error) Outcome {
	return Outcome{Kind: OutcomeFailed, RowIndex: rowIndex, Err: err}
}
