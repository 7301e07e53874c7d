package output

import (
	"fmt"
	"strings"

	"supplynorm/catalog"
)

type Writer interface {
	Write(path string, records []catalog.Record) error
}

var recordHeaders = []string{"RowIndex", "Identifier", "Name", "Description", "Price", "Quantity", "ProductProperties", "OfferProperties"}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

// recordValues renders one record in recordHeaders order.
func recordValues(record catalog.Record) []string {
	values := make([]string, len(recordHeaders))
	values[0] = fmt.Sprintf("%d", record.RowIndex)
	if product := record.Product; product != nil {
		values[1] = product.Identifier
		values[2] = product.Name
		values[3] = product.Description
		values[6] = catalog.FlattenProperties(product.Properties)
	}
	if offer := record.Offer; offer != nil {
		if offer.Price != nil {
			values[4] = offer.Price.String()
		}
		if offer.Quantity != nil {
			values[5] = fmt.Sprintf("%d", *offer.Quantity)
		}
		values[7] = catalog.FlattenProperties(offer.Properties)
	}
	return values
}
