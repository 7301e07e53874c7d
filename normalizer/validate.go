package normalizer

import (
	"fmt"
	"regexp"
	"strings"

	"supplynorm/config"
)

// ValidationResult is the verdict on one raw cell value.
type ValidationResult struct {
	Valid   bool
	SkipRow bool
	Message string
}

func valid() ValidationResult {
	return ValidationResult{Valid: true}
}

func invalid(rule config.ColumnRule, format string, args ...any) ValidationResult {
	return ValidationResult{
		Valid:   false,
		SkipRow: rule.SkipRowOnFailure,
		Message: fmt.Sprintf(format, args...),
	}
}

// Validate checks a raw (untransformed) cell value against the rule's
// required, allowed-values and pattern constraints. A failed check carries
// the rule's skip-entire-row policy.
func Validate(raw string, rule config.ColumnRule, property string) ValidationResult {
	return validateValue(raw, rule, compilePatterns(rule.ValidationPatterns), property)
}

func validateValue(raw string, rule config.ColumnRule, patterns []*regexp.Regexp, property string) ValidationResult {
	value := strings.TrimSpace(raw)

	if rule.Required && value == "" {
		return invalid(rule, "required field %q is empty", property)
	}

	if len(rule.AllowedValues) > 0 {
		allowed := false
		for _, candidate := range rule.AllowedValues {
			if strings.EqualFold(strings.TrimSpace(candidate), value) {
				allowed = true
				break
			}
		}
		if !allowed {
			return invalid(rule, "value %q for %q is not one of [%s]", value, property, strings.Join(rule.AllowedValues, ", "))
		}
	}

	if len(patterns) > 0 {
		matched := false
		for _, re := range patterns {
			if re.MatchString(value) {
				matched = true
				break
			}
		}
		if !matched {
			return invalid(rule, "value %q for %q does not match any validation pattern", value, property)
		}
	}

	return valid()
}

// compilePatterns compiles validation patterns case-insensitively. Patterns
// that do not compile are dropped; config validation rejects them earlier.
func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			continue
		}
		compiled = append(compiled, re)
	}
	return compiled
}
