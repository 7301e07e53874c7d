package normalizer

import (
	"strings"

	"github.com/shopspring/decimal"

	"supplynorm/catalog"
	"supplynorm/config"
)

// Well-known target property names.
const (
	PropertyName        = "name"
	PropertyDescription = "description"
	PropertyIdentifier  = "ean"
	PropertyPrice       = "price"
	PropertyQuantity    = "quantity"
)

var identifierAliases = map[string]bool{
	"ean":        true,
	"identifier": true,
	"gtin":       true,
	"barcode":    true,
}

var quantityAliases = map[string]bool{
	"quantity": true,
	"qty":      true,
	"stock":    true,
}

// rowState accumulates one row's product and offer-classified values.
type rowState struct {
	product     *catalog.Product
	offer       catalog.Properties
	offerValues int
}

func newRowState() *rowState {
	return &rowState{
		product: catalog.NewProduct(),
		offer:   catalog.NewProperties(),
	}
}

// assign routes a processed value by target property name first, then by
// classification. Unclassified values land on the product.
func (s *rowState) assign(property string, value any, classification string) {
	key := strings.ToLower(strings.TrimSpace(property))
	switch {
	case key == PropertyName:
		s.product.Name = catalog.FormatValue(value)
		return
	case key == PropertyDescription:
		s.product.Description = catalog.FormatValue(value)
		return
	case identifierAliases[key]:
		s.product.Identifier = catalog.FormatValue(value)
		return
	}

	if strings.EqualFold(strings.TrimSpace(classification), config.ClassificationOffer) {
		s.offer.Set(property, value)
		if value != nil {
			s.offerValues++
		}
		return
	}
	s.product.Properties.Set(property, value)
}

// offerLineItem assembles the offer entity, or nil when no offer-classified
// value was produced. Price and quantity move out of the property bag.
func (s *rowState) offerLineItem() *catalog.OfferLineItem {
	if s.offerValues == 0 {
		return nil
	}

	item := &catalog.OfferLineItem{Properties: catalog.NewProperties()}
	for _, key := range s.offer.Keys() {
		value, _ := s.offer.Get(key)
		folded := strings.ToLower(key)
		switch {
		case folded == PropertyPrice:
			if price, ok := toDecimal(value); ok {
				item.Price = &price
				continue
			}
		case quantityAliases[folded]:
			if quantity, ok := toInt(value); ok {
				item.Quantity = &quantity
				continue
			}
		}
		item.Properties.Set(key, value)
	}
	return item
}

func toDecimal(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, true
	case int64:
		return decimal.NewFromInt(v), true
	case string:
		d, err := parseDecimalValue(v)
		return d, err == nil
	default:
		return decimal.Decimal{}, false
	}
}

func toInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case decimal.Decimal:
		return decimalToInt(v)
	case string:
		parsed, err := parseInt(v)
		if err != nil {
			return 0, false
		}
		return parsed.(int64), true
	default:
		return 0, false
	}
}
