// Package normalizer turns raw supplier spreadsheet rows into product and
// offer records according to a supplier's column rules.
package normalizer

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"supplynorm/catalog"
	"supplynorm/config"
)

const (
	// UnknownProductName is assigned when a row has identifying data but
	// nothing a name can be built from.
	UnknownProductName = "Unknown Product"

	descriptionNameLimit = 50
)

// nameParts lists the properties a missing name is synthesized from, in order.
var nameParts = []string{
	PropertyBrand,
	PropertyProductLine,
	PropertyCategory,
	PropertySize,
	PropertyGender,
	PropertyConcentration,
}

// legacyNameParts are consulted only when none of nameParts is present.
var legacyNameParts = []string{"Family", "PricingItemName"}

// Normalizer applies one supplier configuration. It holds no per-row state,
// so the same value may normalize any number of rows and files.
type Normalizer struct {
	supplier config.Supplier
	rules    []compiledRule
	logger   zerolog.Logger
	now      func() time.Time
	// rowFunc processes one row inside NormalizeFile's recover guard.
	rowFunc func(RawRow) Outcome
}

type compiledRule struct {
	config.ColumnRule
	index    int
	patterns []*regexp.Regexp
}

type Option func(*Normalizer)

func WithLogger(logger zerolog.Logger) Option {
	return func(n *Normalizer) {
		n.logger = logger
	}
}

// WithClock overrides the time source used for timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = now
	}
}

func New(supplier config.Supplier, opts ...Option) *Normalizer {
	n := &Normalizer{
		supplier: supplier,
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	n.rowFunc = n.NormalizeRow
	for _, opt := range opts {
		opt(n)
	}

	n.rules = make([]compiledRule, 0, len(supplier.Columns))
	for _, column := range supplier.Columns {
		rule := compiledRule{
			ColumnRule: column,
			index:      ResolveColumnIndex(column.Column),
			patterns:   compilePatterns(column.ValidationPatterns),
		}
		n.rules = append(n.rules, rule)
		n.logUnknownTransformations(rule)
	}
	return n
}

// unknown transformations pass values through unchanged, so only warn once here
func (n *Normalizer) logUnknownTransformations(rule compiledRule) {
	for _, entry := range rule.Transformations {
		if KnownTransformation(entry) {
			continue
		}
		n.logger.Warn().
			Str("supplier", n.supplier.Name).
			Str("column", ColumnLetters(rule.index)).
			Str("target", rule.Target).
			Str("transformation", entry).
			Msg("unknown transformation ignored")
	}
}

func (n *Normalizer) Supplier() config.Supplier {
	return n.supplier
}

// NormalizeRow processes one row through every column rule and returns a
// valid record, a skip with its reason, or a failure.
func (n *Normalizer) NormalizeRow(row RawRow) Outcome {
	state := newRowState()
	var warnings []string

	for _, rule := range n.rules {
		if rule.index == InvalidColumn {
			warnings = append(warnings, fmt.Sprintf("row %d: column %q for %q is not a valid column reference", row.Index, rule.Column, rule.Target))
			continue
		}

		raw := ""
		inRange := rule.index < len(row.Cells)
		if inRange {
			raw = row.Cells[rule.index]
		}
		empty := strings.TrimSpace(raw) == ""

		if !inRange && !rule.Required {
			continue
		}
		if empty && !rule.Required {
			if rule.HasDefault() {
				value, _ := DefaultValue(rule.ColumnRule)
				state.assign(rule.Target, value, rule.Classification)
			}
			continue
		}

		verdict := validateValue(raw, rule.ColumnRule, rule.patterns, rule.Target)
		if !verdict.Valid {
			if verdict.SkipRow {
				return skippedOutcome(row.Index, verdict.Message, warnings)
			}
			warnings = append(warnings, fmt.Sprintf("row %d: %s; value dropped", row.Index, verdict.Message))
			continue
		}

		transformed := Transform(raw, rule.Transformations)
		value, ok := ConvertValue(transformed, rule.ColumnRule)
		if !ok {
			continue
		}
		state.assign(rule.Target, value, rule.Classification)
	}

	product := state.product
	if strings.TrimSpace(product.Description) != "" {
		ApplyExtractedProperties(product)
	}

	if strings.TrimSpace(product.Name) == "" {
		name, ok := synthesizeName(product)
		if !ok {
			return skippedOutcome(row.Index, "no name and no identifying data", warnings)
		}
		product.Name = name
	}

	record := &catalog.Record{
		RowIndex: row.Index,
		Product:  product,
		Offer:    state.offerLineItem(),
	}
	return validOutcome(row.Index, record, warnings)
}

// synthesizeName builds a name for a product without one. It reports false
// when the product carries nothing that identifies it.
func synthesizeName(product *catalog.Product) (string, bool) {
	if name := joinProperties(product.Properties, nameParts); name != "" {
		return name, true
	}
	if name := joinProperties(product.Properties, legacyNameParts); name != "" {
		return name, true
	}

	description := strings.TrimSpace(product.Description)
	if description != "" {
		runes := []rune(description)
		if len(runes) > descriptionNameLimit {
			return strings.TrimSpace(string(runes[:descriptionNameLimit])) + "...", true
		}
		return description, true
	}

	if strings.TrimSpace(product.Identifier) != "" || product.Properties.Len() > 0 {
		return UnknownProductName, true
	}
	return "", false
}

func joinProperties(props catalog.Properties, keys []string) string {
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		if value := props.String(key); value != "" {
			parts = append(parts, value)
		}
	}
	return strings.Join(parts, " ")
}
