package subscription

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Limit is the weekly add allowance of a package: Finite(n) or Unlimited.
// The zero value is Finite(0).
type Limit struct {
	n         int
	unlimited bool
}

// Unlimited never refuses an add.
var Unlimited = Limit{unlimited: true}

// Finite returns a limit of n adds per week. Negative n is treated as 0.
func Finite(n int) Limit {
	return Limit{n: max(n, 0)}
}

func (l Limit) IsUnlimited() bool { return l.unlimited }

// Value returns n and true for a finite limit.
func (l Limit) Value() (int, bool) {
	if l.unlimited {
		return 0, false
	}
	return l.n, true
}

// Allows reports whether one more add fits after count adds.
func (l Limit) Allows(count int) bool {
	return l.unlimited || count < l.n
}

func (l Limit) String() string {
	if l.unlimited {
		return "unlimited"
	}
	return strconv.Itoa(l.n)
}

func (l Limit) MarshalJSON() ([]byte, error) {
	if l.unlimited {
		return []byte(`"unlimited"`), nil
	}
	return []byte(strconv.Itoa(l.n)), nil
}

func (l *Limit) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		// what JSON.stringify produces for Infinity
		*l = Unlimited
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidLimit, err)
		}
		parsed, err := ParseLimit(s)
		if err != nil {
			return err
		}
		*l = parsed
		return nil
	default:
		parsed, err := parseNumber(string(data))
		if err != nil {
			return err
		}
		*l = parsed
		return nil
	}
}

func (l Limit) MarshalYAML() (any, error) {
	if l.unlimited {
		return "unlimited", nil
	}
	return l.n, nil
}

func (l *Limit) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: expected a scalar at line %d", ErrInvalidLimit, node.Line)
	}
	if node.Tag == "!!null" {
		*l = Unlimited
		return nil
	}
	parsed, err := ParseLimit(node.Value)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLimit reads a limit from text: a non-negative integer or one of the
// unlimited spellings ("unlimited", "infinity", "inf", "∞", ".inf"; any case).
func ParseLimit(s string) (Limit, error) {
	s = strings.TrimSpace(s)
	switch strings.TrimPrefix(strings.ToLower(s), "+") {
	case "unlimited", "infinity", "inf", "∞", ".inf":
		return Unlimited, nil
	case "":
		return Limit{}, fmt.Errorf("%w: empty value", ErrInvalidLimit)
	}
	return parseNumber(s)
}

// parseNumber accepts integral values, including forms like 100.0 or 1e2.
func parseNumber(s string) (Limit, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return Limit{}, fmt.Errorf("%w: negative value %d", ErrInvalidLimit, n)
		}
		return Finite(n), nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Limit{}, fmt.Errorf("%w: %q", ErrInvalidLimit, s)
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return Limit{}, fmt.Errorf("%w: %q is not a non-negative integer", ErrInvalidLimit, s)
	}
	return Finite(int(f)), nil
}
