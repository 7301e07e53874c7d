// Package catalog holds the normalized product and offer records shared by
// the normalizer, storage and outputs.
package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"supplynorm/internal/timeutil"
)

// Product is the descriptive facet of one imported row.
type Product struct {
	Name        string
	Identifier  string
	Description string
	Properties  Properties
}

func NewProduct() *Product {
	return &Product{Properties: NewProperties()}
}

// OfferLineItem is the commercial facet of one imported row.
type OfferLineItem struct {
	Price      *decimal.Decimal
	Quantity   *int64
	Properties Properties
}

// Record is one normalized row.
type Record struct {
	RowIndex int
	Product  *Product
	Offer    *OfferLineItem
}

// SupplierOffer describes one supplier delivery (one imported file).
type SupplierOffer struct {
	ID           string
	SupplierName string
	SourceFile   string
	CreatedAt    time.Time
}

func NewSupplierOffer(supplierName, sourceFile string, now time.Time) *SupplierOffer {
	return &SupplierOffer{
		ID:           uuid.NewString(),
		SupplierName: supplierName,
		SourceFile:   sourceFile,
		CreatedAt:    now,
	}
}

// FormatValue renders a typed property value as text.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case decimal.Decimal:
		return v.String()
	case *decimal.Decimal:
		if v == nil {
			return ""
		}
		return v.String()
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		if timeutil.IsMidnight(v) {
			return v.Format("2006-01-02")
		}
		return v.Format(time.RFC3339)
	case time.Duration:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// FlattenProperties renders a bag as "key=value" pairs in key order.
func FlattenProperties(props Properties) string {
	keys := props.Keys()
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+props.String(key))
	}
	return strings.Join(parts, "; ")
}
