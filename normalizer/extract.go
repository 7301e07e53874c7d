package normalizer

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"supplynorm/catalog"
)

// Property keys filled from free-text descriptions.
const (
	PropertyBrand           = "Brand"
	PropertySize            = "Size"
	PropertyGender          = "Gender"
	PropertyConcentration   = "Concentration"
	PropertyCategory        = "Category"
	PropertyProductLine     = "ProductLine"
	PropertyFragranceFamily = "FragranceFamily"
)

const mlPerFluidOunce = 29.5735

// ExtractedProperty is one value mined from a description.
type ExtractedProperty struct {
	Name  string
	Value string
}

type extractionPattern struct {
	priority  int
	re        *regexp.Regexp
	transform func(string) string
}

var extractionOrder = []string{
	PropertyBrand,
	PropertySize,
	PropertyGender,
	PropertyConcentration,
	PropertyCategory,
	PropertyProductLine,
	PropertyFragranceFamily,
}

var knownBrands = map[string][]string{
	"Chanel":             {"chanel"},
	"Dior":               {"christian dior", "dior"},
	"Guerlain":           {"guerlain"},
	"Lancôme":            {"lancôme", "lancome"},
	"Yves Saint Laurent": {"yves saint laurent", "ysl"},
	"Giorgio Armani":     {"giorgio armani", "armani"},
	"Gucci":              {"gucci"},
	"Prada":              {"prada"},
	"Versace":            {"versace"},
	"Hugo Boss":          {"hugo boss"},
	"Calvin Klein":       {"calvin klein"},
	"Dolce & Gabbana":    {"dolce & gabbana", "dolce&gabbana", "d&g"},
	"Givenchy":           {"givenchy"},
	"Hermès":             {"hermès", "hermes"},
	"Tom Ford":           {"tom ford"},
	"Paco Rabanne":       {"paco rabanne", "rabanne"},
	"Jean Paul Gaultier": {"jean paul gaultier"},
	"Burberry":           {"burberry"},
	"Carolina Herrera":   {"carolina herrera"},
	"Lacoste":            {"lacoste"},
	"Montblanc":          {"montblanc", "mont blanc"},
	"Azzaro":             {"azzaro"},
	"Chloé":              {"chloé", "chloe"},
	"Davidoff":           {"davidoff"},
	"Bvlgari":            {"bvlgari", "bulgari"},
	"Cartier":            {"cartier"},
	"Narciso Rodriguez":  {"narciso rodriguez"},
	"Issey Miyake":       {"issey miyake"},
	"Kenzo":              {"kenzo"},
	"Valentino":          {"valentino"},
	"Mugler":             {"thierry mugler", "mugler"},
	"Marc Jacobs":        {"marc jacobs"},
	"Jo Malone":          {"jo malone"},
	"Estée Lauder":       {"estée lauder", "estee lauder"},
}

var extractionRules = buildExtractionRules()

func buildExtractionRules() map[string][]extractionPattern {
	brandAlias := make(map[string]string)
	aliases := make([]string, 0, len(knownBrands)*2)
	for canonical, names := range knownBrands {
		for _, name := range names {
			brandAlias[name] = canonical
			aliases = append(aliases, regexp.QuoteMeta(name))
		}
	}
	// longest alias first so "christian dior" wins over "dior"
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i]) == len(aliases[j]) {
			return aliases[i] < aliases[j]
		}
		return len(aliases[i]) > len(aliases[j])
	})

	rules := map[string][]extractionPattern{
		PropertyBrand: {
			{priority: 0, re: regexp.MustCompile(`(?i)\bbrand\s*:\s*([^,;|\n]+)`), transform: strings.TrimSpace},
			{priority: 1, re: regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(` + strings.Join(aliases, "|") + `)(?:[^\p{L}\p{N}]|$)`), transform: func(v string) string {
				if canonical, ok := brandAlias[strings.ToLower(v)]; ok {
					return canonical
				}
				return v
			}},
		},
		PropertySize: {
			{priority: 1, re: regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*ml\b`), transform: func(v string) string { return formatAmount(v) + " ml" }},
			{priority: 2, re: regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:fl\.?\s*)?oz\b`), transform: ouncesToMilliliters},
			{priority: 3, re: regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:g|gr)\b`), transform: func(v string) string { return formatAmount(v) + " g" }},
		},
		PropertyGender: {
			{priority: 0, re: regexp.MustCompile(`(?i)\bunisex\b`), transform: constant("Unisex")},
			{priority: 1, re: regexp.MustCompile(`(?i)\b(pour femme|for women|women|woman|femme|ladies|lady|for her)\b`), transform: constant("Women")},
			{priority: 2, re: regexp.MustCompile(`(?i)\b(pour homme|for men|men|man|homme|for him)\b`), transform: constant("Men")},
		},
		PropertyConcentration: {
			{priority: 1, re: regexp.MustCompile(`(?i)\b(eau de parfum|edp)\b`), transform: constant("Eau de Parfum")},
			{priority: 2, re: regexp.MustCompile(`(?i)\b(eau de toilette|edt)\b`), transform: constant("Eau de Toilette")},
			{priority: 3, re: regexp.MustCompile(`(?i)\b(eau de cologne|edc|cologne)\b`), transform: constant("Eau de Cologne")},
			{priority: 4, re: regexp.MustCompile(`(?i)\beau fra[iî]che\b`), transform: constant("Eau Fraîche")},
			{priority: 5, re: regexp.MustCompile(`(?i)\b(extrait de parfum|extrait|parfum)\b`), transform: constant("Parfum")},
		},
		PropertyCategory: {
			{priority: 1, re: regexp.MustCompile(`(?i)\b(gift set|coffret)\b`), transform: constant("Gift Set")},
			{priority: 2, re: regexp.MustCompile(`(?i)\b(body lotion|body milk)\b`), transform: constant("Body Lotion")},
			{priority: 3, re: regexp.MustCompile(`(?i)\b(shower gel|bath gel)\b`), transform: constant("Shower Gel")},
			{priority: 4, re: regexp.MustCompile(`(?i)\b(deodorant|deo)\b`), transform: constant("Deodorant")},
			{priority: 5, re: regexp.MustCompile(`(?i)\b(after ?shave)\b`), transform: constant("Aftershave")},
			{priority: 6, re: regexp.MustCompile(`(?i)\b(eau de parfum|eau de toilette|eau de cologne|parfum|perfume|fragrance|edp|edt)\b`), transform: constant("Fragrance")},
		},
		PropertyProductLine: {
			{priority: 1, re: regexp.MustCompile(`(?i)\b(?:line|collection|series)\s*:\s*([^,;|\n]+)`), transform: strings.TrimSpace},
			{priority: 2, re: regexp.MustCompile(`["“]([^"”]{2,40})["”]`), transform: strings.TrimSpace},
		},
		PropertyFragranceFamily: {
			{priority: 1, re: regexp.MustCompile(`(?i)\b(?:fragrance family|family)\s*:\s*([^,;|\n]+)`), transform: titleCase},
			{priority: 2, re: regexp.MustCompile(`(?i)\b(floral|woody|oriental|amber|fresh|citrus|aromatic|chypre|foug[eè]re|gourmand|spicy|aquatic|fruity|green|leather|musky)\b`), transform: titleCase},
		},
	}

	for name := range rules {
		patterns := rules[name]
		sort.SliceStable(patterns, func(i, j int) bool {
			return patterns[i].priority < patterns[j].priority
		})
	}
	return rules
}

// ExtractProperties mines at most one value per property category from a
// description. Within a category the lowest-priority matching pattern wins.
func ExtractProperties(description string) []ExtractedProperty {
	if strings.TrimSpace(description) == "" {
		return nil
	}

	extracted := make([]ExtractedProperty, 0, len(extractionOrder))
	for _, name := range extractionOrder {
		for _, pattern := range extractionRules[name] {
			match := pattern.re.FindStringSubmatch(description)
			if match == nil {
				continue
			}
			value := match[0]
			if len(match) > 1 {
				value = match[1]
			}
			if pattern.transform != nil {
				value = pattern.transform(value)
			}
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			extracted = append(extracted, ExtractedProperty{Name: name, Value: value})
			break
		}
	}
	return extracted
}

// ApplyExtractedProperties fills product properties from its description.
// Properties already set from explicit columns are never overwritten. It
// returns the number of properties added.
func ApplyExtractedProperties(product *catalog.Product) int {
	if product == nil {
		return 0
	}
	added := 0
	for _, property := range ExtractProperties(product.Description) {
		if product.Properties.SetIfAbsent(property.Name, property.Value) {
			added++
		}
	}
	return added
}

func constant(value string) func(string) string {
	return func(string) string { return value }
}

func titleCase(value string) string {
	return cases.Title(language.Und).String(strings.ToLower(strings.TrimSpace(value)))
}

func parseAmount(value string) (float64, bool) {
	parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(value), ",", "."), 64)
	return parsed, err == nil
}

func formatAmount(value string) string {
	amount, ok := parseAmount(value)
	if !ok {
		return value
	}
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

func ouncesToMilliliters(value string) string {
	ounces, ok := parseAmount(value)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d ml", int(math.Round(ounces*mlPerFluidOunce)))
}
