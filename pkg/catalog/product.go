package catalog

import (
	"errors"
	"time"

	"github.com/dmitrymomot/stockroom/pkg/sanitizer"
	"github.com/dmitrymomot/stockroom/pkg/validator"
)

const (
	MaxNameLength        = 120
	MaxCategoryLength    = 60
	MaxDescriptionLength = 1000
)

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	Description string    `json:"description,omitempty"`
	DateAdded   time.Time `json:"dateAdded"`
}

// Value is quantity times price.
func (p Product) Value() float64 {
	return float64(p.Quantity) * p.Price
}

// Fields are the user-editable parts of a product.
type Fields struct {
	Name        string
	Category    string
	Quantity    int
	Price       float64
	Description string
}

var (
	cleanLine = sanitizer.Compose(sanitizer.RemoveControlChars, sanitizer.SingleLine)
	cleanText = sanitizer.Compose(sanitizer.RemoveControlChars, sanitizer.Trim)
)

// Normalize returns f with whitespace and control characters cleaned up.
func (f Fields) Normalize() Fields {
	f.Name = cleanLine(f.Name)
	f.Category = cleanLine(f.Category)
	f.Description = cleanText(f.Description)
	return f
}

// Validate checks normalized fields. Failures wrap ErrInvalidInput and carry
// validator.ValidationErrors.
func (f Fields) Validate() error {
	err := validator.Apply(
		validator.Required("name", f.Name),
		validator.MaxLen("name", f.Name, MaxNameLength),
		validator.MaxLen("category", f.Category, MaxCategoryLength),
		validator.MaxLen("description", f.Description, MaxDescriptionLength),
		validator.MinNum("quantity", f.Quantity, 0),
		validator.FiniteNum("price", f.Price),
		validator.MinNum("price", f.Price, 0),
	)
	if err != nil {
		return errors.Join(ErrInvalidInput, err)
	}
	return nil
}

func (f Fields) apply(p *Product) {
	p.Name = f.Name
	p.Category = f.Category
	p.Quantity = f.Quantity
	p.Price = f.Price
	p.Description = f.Description
}

// Query filters Search results. Empty Text or Category matches everything.
type Query struct {
	Text     string
	Category string
}

func (q Query) matches(p Product) bool {
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.Text == "" {
		return true
	}
	return sanitizer.ContainsFold(p.Name, q.Text) || sanitizer.ContainsFold(p.Description, q.Text)
}

// Stats summarises one identity's stock.
type Stats struct {
	Products   int            `json:"products"`
	Stock      int            `json:"stock"`
	Value      float64        `json:"value"`
	ByCategory map[string]int `json:"byCategory"`
}
