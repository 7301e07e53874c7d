package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"supplynorm/catalog"
)

// UngroupedLabel collects records without a value for the grouping property.
const UngroupedLabel = "(none)"

// PriceSummary aggregates the offers of one group of records.
type PriceSummary struct {
	Group         string
	Records       int
	PricedRecords int
	MinPrice      decimal.Decimal
	MaxPrice      decimal.Decimal
	AveragePrice  decimal.Decimal
	TotalQuantity int64
}

var priceSummaryHeaders = []string{"Group", "Records", "PricedRecords", "MinPrice", "MaxPrice", "AveragePrice", "TotalQuantity"}

// BuildPriceSummaries groups records by a product property (case-insensitive)
// and aggregates their offer prices and quantities. Groups are sorted by name.
func BuildPriceSummaries(records []catalog.Record, property string) []PriceSummary {
	if len(records) == 0 {
		return []PriceSummary{}
	}

	byGroup := make(map[string][]catalog.Record)
	labels := make(map[string]string)
	for _, record := range records {
		label := UngroupedLabel
		if record.Product != nil {
			if value := record.Product.Properties.String(property); value != "" {
				label = value
			}
		}
		key := strings.ToLower(label)
		if _, ok := labels[key]; !ok {
			labels[key] = label
		}
		byGroup[key] = append(byGroup[key], record)
	}

	keys := make([]string, 0, len(byGroup))
	for key := range byGroup {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	summaries := make([]PriceSummary, 0, len(keys))
	for _, key := range keys {
		summaries = append(summaries, summarizeGroup(labels[key], byGroup[key]))
	}
	return summaries
}

func summarizeGroup(label string, records []catalog.Record) PriceSummary {
	summary := PriceSummary{Group: label, Records: len(records)}
	total := decimal.Zero

	for _, record := range records {
		if record.Offer == nil {
			continue
		}
		if record.Offer.Quantity != nil {
			summary.TotalQuantity += *record.Offer.Quantity
		}
		if record.Offer.Price == nil {
			continue
		}
		price := *record.Offer.Price
		if summary.PricedRecords == 0 || price.LessThan(summary.MinPrice) {
			summary.MinPrice = price
		}
		if summary.PricedRecords == 0 || price.GreaterThan(summary.MaxPrice) {
			summary.MaxPrice = price
		}
		total = total.Add(price)
		summary.PricedRecords++
	}

	if summary.PricedRecords > 0 {
		summary.AveragePrice = total.Div(decimal.NewFromInt(int64(summary.PricedRecords))).Round(2)
	}
	return summary
}

func priceSummaryValues(summary PriceSummary) []string {
	values := []string{
		summary.Group,
		fmt.Sprintf("%d", summary.Records),
		fmt.Sprintf("%d", summary.PricedRecords),
		"",
		"",
		"",
		fmt.Sprintf("%d", summary.TotalQuantity),
	}
	if summary.PricedRecords > 0 {
		values[3] = summary.MinPrice.StringFixed(2)
		values[4] = summary.MaxPrice.StringFixed(2)
		values[5] = summary.AveragePrice.StringFixed(2)
	}
	return values
}

func WritePriceSummaries(path, format string, summaries []PriceSummary) error {
	switch normalizeFormat(format) {
	case "csv":
		return writePriceSummariesCSV(path, summaries)
	case "excel", "xlsx":
		return writePriceSummariesExcel(path, summaries)
	default:
		return fmt.Errorf("unsupported output format for price summaries: %s", format)
	}
}
