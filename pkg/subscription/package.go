package subscription

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrymomot/stockroom/pkg/week"
)

// Package is the subscription tier active for one identity.
type Package struct {
	Name  string `json:"name"`
	Limit Limit  `json:"limit"`
}

// DefaultPackage applies whenever no valid package is recorded.
var DefaultPackage = Package{Name: "Free", Limit: Finite(100)}

// UnmarshalJSON requires the limit to be present.
func (p *Package) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name  string          `json:"name"`
		Limit json.RawMessage `json:"limit"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Limit) == 0 {
		return fmt.Errorf("%w: missing", ErrInvalidLimit)
	}
	var limit Limit
	if err := limit.UnmarshalJSON(raw.Limit); err != nil {
		return err
	}
	*p = Package{Name: raw.Name, Limit: limit}
	return nil
}

// Usage counts accepted adds within the week starting at WeekStart.
type Usage struct {
	WeekStart week.Date `json:"weekStart"`
	Count     int       `json:"count"`
}

func (u *Usage) UnmarshalJSON(data []byte) error {
	type plain Usage
	var raw plain
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Count < 0 {
		return fmt.Errorf("%w: negative count %d", ErrInvalidUsage, raw.Count)
	}
	*u = Usage(raw)
	return nil
}

// RemainingQuota is Unlimited for unlimited packages and max(0, limit-count) otherwise.
func RemainingQuota(pkg Package, usage Usage) Limit {
	n, finite := pkg.Limit.Value()
	if !finite {
		return Unlimited
	}
	return Finite(n - usage.Count)
}

// Grant is the outcome of TryConsume. A refused grant has Remaining Finite(0).
type Grant struct {
	Granted   bool
	Remaining Limit
}

// Status is everything a header needs: the package and how much of it is left.
type Status struct {
	Package   Package   `json:"package"`
	Usage     Usage     `json:"usage"`
	Remaining Limit     `json:"remaining"`
	ResetsOn  week.Date `json:"resetsOn"` // first day of the next counting week
}
