package validator

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// Required fails on empty or whitespace-only strings.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{
			Field:             field,
			Message:           "field is required",
			TranslationKey:    "validation.required",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// MaxLen counts runes, not bytes.
func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be at most %d characters long", max),
			TranslationKey:    "validation.max_length",
			TranslationValues: map[string]any{"field": field, "max": max},
		},
	}
}

func MinNum[T Numeric](field string, value, min T) Rule {
	return Rule{
		Check: func() bool { return value >= min },
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be at least %v", min),
			TranslationKey:    "validation.min",
			TranslationValues: map[string]any{"field": field, "min": min},
		},
	}
}

// FiniteNum rejects NaN and infinities.
func FiniteNum(field string, value float64) Rule {
	return Rule{
		Check: func() bool { return !math.IsNaN(value) && !math.IsInf(value, 0) },
		Error: ValidationError{
			Field:             field,
			Message:           "must be a number",
			TranslationKey:    "validation.numeric",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

var handlePattern = regexp.MustCompile(`^[\p{L}\p{N}._-]+$`)

// Handle accepts letters, digits, dot, underscore and dash, the characters a
// username may carry without breaking scoped storage keys.
func Handle(field, value string) Rule {
	return Rule{
		Check: func() bool { return value == "" || handlePattern.MatchString(value) },
		Error: ValidationError{
			Field:             field,
			Message:           "may contain only letters, digits, '.', '_' and '-'",
			TranslationKey:    "validation.handle",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

func InList[T comparable](field string, value T, allowed []T) Rule {
	return Rule{
		Check: func() bool { return slices.Contains(allowed, value) },
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be one of %v", allowed),
			TranslationKey:    "validation.in_list",
			TranslationValues: map[string]any{"field": field, "allowed": allowed},
		},
	}
}
