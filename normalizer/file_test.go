package normalizer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplynorm/catalog"
	"supplynorm/config"
)

func sampleFile() FileData {
	return FileData{
		Path: "/tmp/acme_2025.csv",
		Rows: []RawRow{
			NewRawRow(0, []string{"Name", "Price"}),
			NewRawRow(1, []string{"Eau de Parfum 50ml", "45.99"}),
			NewRawRow(2, []string{"", ""}),
			NewRawRow(3, []string{"", "12.00"}),
			NewRawRow(4, []string{"Body Lotion", "n/a"}),
		},
	}
}

func sampleSupplier() config.Supplier {
	supplier := perfumeSupplier()
	supplier.DataStartRow = 1
	return supplier
}

func fixedClock() func() time.Time {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestNormalizeFile_CountsOutcomes(t *testing.T) {
	t.Parallel()

	n := New(sampleSupplier(), WithClock(fixedClock()), WithLogger(zerolog.Nop()))
	result := n.NormalizeFile(context.Background(), sampleFile(), ProcessingContext{})

	assert.Equal(t, "acme_2025.csv", result.SourceFile)
	assert.Equal(t, "Acme", result.SupplierName)
	require.NotNil(t, result.SupplierOffer)
	assert.NotEmpty(t, result.SupplierOffer.ID)
	assert.Equal(t, "acme_2025.csv", result.SupplierOffer.SourceFile)

	assert.Equal(t, 3, result.Statistics.RowsProcessed)
	assert.Equal(t, 2, result.Statistics.ProductsCreated)
	assert.Equal(t, 1, result.Statistics.ProductsSkipped)
	assert.Equal(t, 0, result.Statistics.ErrorCount)
	assert.Equal(t, time.Duration(0), result.Statistics.Duration)
	assert.Empty(t, result.Errors)
	assert.False(t, result.Failed())

	require.Len(t, result.Records, 2)
	assert.Equal(t, 1, result.Records[0].RowIndex)
	assert.Equal(t, "Body Lotion", result.Records[1].Product.Name)
	// unparseable price without default is dropped, leaving no offer
	assert.Nil(t, result.Records[1].Offer)
}

func TestNormalizeFile_RowPanicIsCountedAndFileContinues(t *testing.T) {
	t.Parallel()

	n := New(sampleSupplier(), WithClock(fixedClock()))
	n.rowFunc = func(row RawRow) Outcome {
		if row.Index == 1 {
			panic("broken cell")
		}
		return n.NormalizeRow(row)
	}

	result := n.NormalizeFile(context.Background(), sampleFile(), ProcessingContext{})

	assert.Equal(t, 3, result.Statistics.RowsProcessed)
	assert.Equal(t, 1, result.Statistics.ErrorCount)
	assert.Equal(t, 1, result.Statistics.ProductsCreated)
	assert.Equal(t, 1, result.Statistics.ProductsSkipped)
	require.Len(t, result.Errors, 1)
	assert.True(t, strings.HasPrefix(result.Errors[0], "row 1: "), result.Errors[0])
	assert.Contains(t, result.Errors[0], "broken cell")
	assert.False(t, result.Failed())

	require.Len(t, result.Records, 1)
	assert.Equal(t, 4, result.Records[0].RowIndex)
	assert.Equal(t, "Body Lotion", result.Records[0].Product.Name)
}

func TestNormalizeFile_UsesCallerOffer(t *testing.T) {
	t.Parallel()

	offer := catalog.NewSupplierOffer("Acme", "upload.xlsx", time.Now())
	n := New(sampleSupplier())

	result := n.NormalizeFile(context.Background(), sampleFile(), ProcessingContext{
		SupplierOffer:  offer,
		SourceFileName: "upload.xlsx",
	})

	assert.Same(t, offer, result.SupplierOffer)
	assert.Equal(t, "upload.xlsx", result.SourceFile)
}

func TestNormalizeFile_IsRepeatable(t *testing.T) {
	t.Parallel()

	n := New(sampleSupplier(), WithClock(fixedClock()))
	offer := catalog.NewSupplierOffer("Acme", "acme_2025.csv", time.Now())
	pctx := ProcessingContext{SupplierOffer: offer}

	first := n.NormalizeFile(context.Background(), sampleFile(), pctx)
	second := n.NormalizeFile(context.Background(), sampleFile(), pctx)

	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, first.Statistics, second.Statistics)
}

func TestNormalizeFile_NoRulesIsFileError(t *testing.T) {
	t.Parallel()

	n := New(config.Supplier{Name: "Empty"})
	result := n.NormalizeFile(context.Background(), sampleFile(), ProcessingContext{})

	assert.True(t, result.Failed())
	assert.Empty(t, result.Records)
	assert.Zero(t, result.Statistics.RowsProcessed)
}

func TestNormalizeFile_CancelledContextStops(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := New(sampleSupplier()).NormalizeFile(ctx, sampleFile(), ProcessingContext{})

	assert.Zero(t, result.Statistics.RowsProcessed)
	assert.Empty(t, result.Records)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "processing stopped")
}

func TestNormalizeFile_EmptyFile(t *testing.T) {
	t.Parallel()

	result := New(sampleSupplier()).NormalizeFile(context.Background(), FileData{Name: "empty.csv"}, ProcessingContext{})

	assert.Equal(t, "empty.csv", result.SourceFile)
	assert.Empty(t, result.Records)
	assert.Empty(t, result.Errors)
	assert.False(t, result.Failed())
}
