package subscription

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Plan is a package offered in the catalog.
type Plan struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Limit       Limit   `yaml:"limit" json:"limit"`
	Price       float64 `yaml:"price" json:"price"`
}

// Package returns the record stored when a user switches to p.
func (p Plan) Package() Package {
	return Package{Name: p.Name, Limit: p.Limit}
}

// Plans is an ordered, read-only plan catalog.
type Plans struct {
	order []Plan
	byID  map[string]int
}

// NewPlans validates the list: ids and names are required and ids must be unique.
// Ids are matched case-insensitively.
func NewPlans(plans ...Plan) (*Plans, error) {
	if len(plans) == 0 {
		return nil, fmt.Errorf("%w: no plans", ErrInvalidPlanConfiguration)
	}
	p := &Plans{byID: make(map[string]int, len(plans))}
	for _, plan := range plans {
		plan.ID = normalizePlanID(plan.ID)
		if plan.ID == "" || strings.TrimSpace(plan.Name) == "" {
			return nil, fmt.Errorf("%w: plan needs an id and a name", ErrInvalidPlanConfiguration)
		}
		if plan.Price < 0 {
			return nil, fmt.Errorf("%w: plan %q has a negative price", ErrInvalidPlanConfiguration, plan.ID)
		}
		if _, dup := p.byID[plan.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate plan id %q", ErrInvalidPlanConfiguration, plan.ID)
		}
		p.byID[plan.ID] = len(p.order)
		p.order = append(p.order, plan)
	}
	return p, nil
}

// DefaultPlans is the built-in catalog.
func DefaultPlans() *Plans {
	p, err := NewPlans(
		Plan{ID: "free", Name: DefaultPackage.Name, Limit: DefaultPackage.Limit, Description: "100 products per week"},
		Plan{ID: "standard", Name: "Standard", Limit: Finite(500), Price: 99, Description: "500 products per week"},
		Plan{ID: "unlimited", Name: "Unlimited", Limit: Unlimited, Price: 249, Description: "No weekly limit"},
	)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Plans) Lookup(id string) (Plan, error) {
	i, ok := p.byID[normalizePlanID(id)]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %q", ErrPlanNotFound, id)
	}
	return p.order[i], nil
}

// List returns the plans in catalog order.
func (p *Plans) List() []Plan {
	out := make([]Plan, len(p.order))
	copy(out, p.order)
	return out
}

type plansFile struct {
	Plans []Plan `yaml:"plans"`
}

// LoadPlansYAML reads a catalog of the form:
//
//	plans:
//	  - id: free
//	    name: Free
//	    limit: 100
//	  - id: pro
//	    name: Pro
//	    limit: unlimited
//	    price: 199
func LoadPlansYAML(r io.Reader) (*Plans, error) {
	var f plansFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	plans, err := NewPlans(f.Plans...)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	return plans, nil
}

// LoadPlansFile opens path and passes it to LoadPlansYAML.
func LoadPlansFile(path string) (*Plans, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	defer f.Close()
	return LoadPlansYAML(f)
}

func normalizePlanID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
