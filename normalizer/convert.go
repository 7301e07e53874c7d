package normalizer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"supplynorm/config"
	"supplynorm/internal/timeutil"
)

type parseFunc func(value string) (any, error)

// parsers is keyed by lower-case type name.
var parsers = map[string]parseFunc{
	"string":   parseString,
	"":         parseString,
	"int":      parseInt,
	"integer":  parseInt,
	"decimal":  parseDecimal,
	"bool":     func(v string) (any, error) { return ParseBool(v), nil },
	"boolean":  func(v string) (any, error) { return ParseBool(v), nil },
	"datetime": parseDateTime,
	"date":     parseDate,
	"time":     parseTimeOfDay,
}

var (
	trueWords = map[string]bool{"yes": true, "y": true, "true": true, "1": true, "active": true, "enabled": true, "on": true}

	currencyPattern = regexp.MustCompile(`(?i)(eur|usd|gbp|chf|[€$£¥]|\s)`)
)

// ConvertValue turns a transformed cell value into the rule's declared type.
// Numbers are culture-invariant unless the rule sets DecimalComma. When
// parsing fails the rule's default value is used instead; the second return
// value is false when neither yields a value.
func ConvertValue(value string, rule config.ColumnRule) (any, bool) {
	if rule.DecimalComma && isNumericType(rule.Type) {
		value = swapSeparators(value)
	}
	parse := parserFor(rule.Type)
	if parsed, err := parse(value); err == nil {
		return parsed, true
	}
	return DefaultValue(rule)
}

// DefaultValue converts the rule's configured default. An allow-null rule
// without a default yields a nil value.
func DefaultValue(rule config.ColumnRule) (any, bool) {
	raw := strings.TrimSpace(rule.Default)
	if raw == "" {
		if rule.AllowNull {
			return nil, true
		}
		return nil, false
	}
	parsed, err := parserFor(rule.Type)(raw)
	if err != nil {
		return raw, true
	}
	return parsed, true
}

func parserFor(typeName string) parseFunc {
	if parse, ok := parsers[strings.ToLower(strings.TrimSpace(typeName))]; ok {
		return parse
	}
	return parseString
}

// ParseBool never fails. Everything outside the true vocabulary, including
// no/n/false/0/inactive/disabled/off, is false.
func ParseBool(value string) bool {
	return trueWords[strings.ToLower(strings.TrimSpace(value))]
}

func parseString(value string) (any, error) {
	return strings.TrimSpace(value), nil
}

func parseInt(value string) (any, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return nil, fmt.Errorf("empty integer")
	}
	if parsed, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
		return parsed, nil
	}
	d, err := parseDecimalValue(cleaned)
	if err != nil {
		return nil, fmt.Errorf("parse integer %q: %w", value, err)
	}
	parsed, ok := decimalToInt(d)
	if !ok {
		return nil, fmt.Errorf("parse integer %q: not a whole number in int64 range", value)
	}
	return parsed, nil
}

var (
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

// decimalToInt reports false for fractional values and values outside int64.
func decimalToInt(d decimal.Decimal) (int64, bool) {
	if !d.Equal(d.Truncate(0)) || d.LessThan(minInt64) || d.GreaterThan(maxInt64) {
		return 0, false
	}
	return d.IntPart(), true
}

func parseDecimal(value string) (any, error) {
	return parseDecimalValue(value)
}

// parseDecimalValue parses culture-invariant numbers: '.' is the decimal
// point and ',' may only group the integer part in threes. Currency
// decorations, spaces and apostrophes are ignored.
func parseDecimalValue(value string) (decimal.Decimal, error) {
	cleaned := currencyPattern.ReplaceAllString(strings.TrimSpace(value), "")
	cleaned = strings.ReplaceAll(cleaned, "'", "")
	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("empty decimal")
	}

	if strings.Contains(cleaned, ",") {
		if !validGrouping(cleaned) {
			return decimal.Decimal{}, fmt.Errorf("parse decimal %q: misplaced group separator", value)
		}
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse decimal %q: %w", value, err)
	}
	return d, nil
}

func validGrouping(value string) bool {
	integer, fraction, _ := strings.Cut(value, ".")
	if strings.Contains(fraction, ",") {
		return false
	}
	integer = strings.TrimLeft(integer, "+-")
	groups := strings.Split(integer, ",")
	if len(groups[0]) < 1 || len(groups[0]) > 3 {
		return false
	}
	for _, group := range groups[1:] {
		if len(group) != 3 {
			return false
		}
	}
	return true
}

// swapSeparators turns a decimal-comma number ("1.299,50") into the
// invariant form ("1,299.50").
func swapSeparators(value string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.':
			return ','
		case ',':
			return '.'
		}
		return r
	}, value)
}

func isNumericType(typeName string) bool {
	switch strings.ToLower(strings.TrimSpace(typeName)) {
	case "int", "integer", "decimal":
		return true
	}
	return false
}

var (
	dateTimeLayouts = []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"02.01.2006 15:04",
		"02.01.2006 03:04 PM",
		"01/02/2006 15:04",
	}
	dateLayouts = []string{
		"2006-01-02",
		"02.01.2006",
		"01/02/2006",
		"2.1.2006",
		"20060102",
	}
	timeLayouts = []string{
		"15:04:05",
		"15:04",
		"03:04 PM",
	}
)

func parseDateTime(value string) (any, error) {
	if parsed, err := parseWithLayouts(value, dateTimeLayouts); err == nil {
		return parsed, nil
	}
	if parsed, err := parseWithLayouts(value, dateLayouts); err == nil {
		return parsed, nil
	}
	return parseExcelSerial(value)
}

func parseDate(value string) (any, error) {
	if parsed, err := parseWithLayouts(value, dateLayouts); err == nil {
		return parsed, nil
	}
	if parsed, err := parseWithLayouts(value, dateTimeLayouts); err == nil {
		return timeutil.StartOfDay(parsed), nil
	}
	serial, err := parseExcelSerial(value)
	if err != nil {
		return nil, err
	}
	return timeutil.StartOfDay(serial.(time.Time)), nil
}

func parseTimeOfDay(value string) (any, error) {
	parsed, err := parseWithLayouts(value, timeLayouts)
	if err != nil {
		return nil, err
	}
	return timeutil.SinceMidnight(parsed), nil
}

func parseWithLayouts(value string, layouts []string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty datetime")
	}
	for _, layout := range layouts {
		if parsed, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported datetime format: %q", value)
}

// parseExcelSerial handles spreadsheet cells that carry the raw serial day
// number instead of a formatted date.
func parseExcelSerial(value string) (any, error) {
	serial, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || serial <= 0 {
		return nil, fmt.Errorf("unsupported datetime format: %q", value)
	}
	parsed, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return nil, fmt.Errorf("convert excel serial %q: %w", value, err)
	}
	return parsed, nil
}
