package normalizer

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	symbolPattern      = regexp.MustCompile(`[^\d.,]`)
	punctuationPattern = regexp.MustCompile(`[^\p{L}\p{N}\s.,]`)
	spacePattern       = regexp.MustCompile(`\s+`)
)

type transformFunc func(value, param string) string

// transformations is keyed by lower-case transformation name. A parameter is
// passed after the first ':' of the configured entry, e.g. "extractafter:Size:".
var transformations = map[string]transformFunc{
	"lowercase":         func(v, _ string) string { return strings.ToLower(v) },
	"tolower":           func(v, _ string) string { return strings.ToLower(v) },
	"uppercase":         func(v, _ string) string { return strings.ToUpper(v) },
	"toupper":           func(v, _ string) string { return strings.ToUpper(v) },
	"titlecase":         func(v, _ string) string { return cases.Title(language.Und).String(strings.ToLower(v)) },
	"trim":              func(v, _ string) string { return strings.TrimSpace(v) },
	"normalize":         func(v, _ string) string { return norm.NFC.String(v) },
	"removesymbols":     func(v, _ string) string { return symbolPattern.ReplaceAllString(v, "") },
	"removepunctuation": func(v, _ string) string { return strings.TrimSpace(punctuationPattern.ReplaceAllString(v, "")) },
	"removespaces":      func(v, _ string) string { return spacePattern.ReplaceAllString(v, "") },
	"collapsespaces":    func(v, _ string) string { return strings.TrimSpace(spacePattern.ReplaceAllString(v, " ")) },
	"removecommas":      func(v, _ string) string { return strings.ReplaceAll(v, ",", "") },
	"extractafter":      extractAfter,
	"maptoboolean":      mapToBoolean,
	"mapbool":           mapToBoolean,
}

// Transform applies the named transformations in order, feeding each output
// into the next. Unknown names pass the value through unchanged.
func Transform(raw string, names []string) string {
	value := raw
	for _, entry := range names {
		name, param := splitTransformation(entry)
		fn, ok := transformations[name]
		if !ok {
			continue
		}
		value = fn(value, param)
	}
	return value
}

// KnownTransformation reports whether the entry's name is recognized.
func KnownTransformation(entry string) bool {
	name, _ := splitTransformation(entry)
	_, ok := transformations[name]
	return ok
}

func splitTransformation(entry string) (string, string) {
	entry = strings.TrimSpace(entry)
	name, param, _ := strings.Cut(entry, ":")
	return strings.ToLower(strings.TrimSpace(name)), param
}

// extractAfter returns the text following a prefix. The parameter is either
// a list of literal prefixes separated by '|' or a wildcard pattern: "*:"
// extracts the text between the first and second colon.
func extractAfter(value, param string) string {
	if param == "" {
		return value
	}
	if strings.Contains(param, "*") {
		re := wildcardPattern(param)
		if match := re.FindStringSubmatch(value); match != nil {
			return strings.TrimSpace(match[1])
		}
		return value
	}

	haystack := strings.ToLower(value)
	foldPrefix := strings.ToLower
	if len(haystack) != len(value) {
		// folding changed byte offsets; fall back to an exact search
		haystack = value
		foldPrefix = func(s string) string { return s }
	}
	for _, prefix := range strings.Split(param, "|") {
		if prefix == "" {
			continue
		}
		if idx := strings.Index(haystack, foldPrefix(prefix)); idx >= 0 {
			return strings.TrimSpace(value[idx+len(prefix):])
		}
	}
	return value
}

// wildcardPattern anchors the pattern at the start of the value; the captured
// text runs up to the next occurrence of the pattern's last literal character.
func wildcardPattern(param string) *regexp.Regexp {
	literal := regexp.QuoteMeta(param)
	expr := "^" + strings.ReplaceAll(literal, `\*`, `.*?`)

	terminator := `$`
	if last := param[len(param)-1:]; last != "*" {
		terminator = `(?:` + regexp.QuoteMeta(last) + `|$)`
	}
	return regexp.MustCompile(`(?is)` + expr + `\s*(.*?)\s*` + terminator)
}

// mapToBoolean maps the value through a "KEY:VALUE,KEY:VALUE" table matched
// case-insensitively. Unmatched values pass through.
func mapToBoolean(value, param string) string {
	needle := strings.TrimSpace(value)
	for _, pair := range strings.Split(param, ",") {
		key, mapped, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), needle) {
			return strings.TrimSpace(mapped)
		}
	}
	return value
}
