// Package pricing is the collaborator the shopping-list generator asks
// for price estimates and store categories.
package pricing

import (
	"math"
	"strings"

	"mealdesk/internal/units"
)

// Signal supplies a per-item price estimate and a store category.
// Unknown names price at zero and categorize as "", which the generator
// maps to its default category.
type Signal interface {
	PriceFor(name string, amount float64, unit string) float64
	CategoryFor(name string) string
}

// UnitPrice is a price per one Unit of the item.
type UnitPrice struct {
	PerUnit float64
	Unit    string
}

// Static is a table-backed Signal.
type Static struct {
	prices     map[string]UnitPrice
	categories map[string]string
}

// NewStatic builds a signal from price and category tables keyed by item
// name (case-insensitive).
func NewStatic(prices map[string]UnitPrice, categories map[string]string) *Static {
	s := &Static{
		prices:     make(map[string]UnitPrice, len(prices)),
		categories: make(map[string]string, len(categories)),
	}
	for name, p := range prices {
		s.prices[normalize(name)] = p
	}
	for name, c := range categories {
		s.categories[normalize(name)] = c
	}
	return s
}

// PriceFor estimates a price for amount/unit of the named item. The
// requested amount is converted into the table's pricing unit first;
// incompatible units fall back to the pass-through amount.
func (s *Static) PriceFor(name string, amount float64, unit string) float64 {
	p, ok := s.prices[normalize(name)]
	if !ok {
		return 0
	}
	inPriceUnit := units.Convert(amount, unit, p.Unit)
	// Round to cents.
	return math.Round(inPriceUnit*p.PerUnit*100) / 100
}

// CategoryFor returns the store category for an item, or "".
func (s *Static) CategoryFor(name string) string {
	return s.categories[normalize(name)]
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
