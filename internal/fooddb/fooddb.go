// Package fooddb is the food-database collaborator the resolver queries:
// a name-keyed catalog of per-serving nutrition.
package fooddb

import (
	"context"
	"errors"
	"strings"

	"mealdesk/internal/nutrition"
)

// ErrNotFound signals that a name has no catalog entry. Callers treat
// lookup transport failures the same way.
var ErrNotFound = errors.New("food not found")

// Food is one catalog entry: nutrition for ServingAmount of ServingUnit.
type Food struct {
	Name          string           `json:"name"`
	ServingAmount float64          `json:"servingAmount"`
	ServingUnit   string           `json:"servingUnit"`
	PerServing    nutrition.Totals `json:"perServing"`
}

// Database searches the catalog by ingredient name.
type Database interface {
	Search(ctx context.Context, name string) (*Food, error)
}

// normalizeName makes lookups case- and whitespace-insensitive.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Memory is an in-memory catalog, used in tests and as the backing store
// of the file catalog.
type Memory struct {
	foods map[string]Food
}

// NewMemory builds a catalog from the given foods.
func NewMemory(foods ...Food) *Memory {
	m := &Memory{foods: make(map[string]Food, len(foods))}
	for _, f := range foods {
		m.foods[normalizeName(f.Name)] = f
	}
	return m
}

func (m *Memory) Search(ctx context.Context, name string) (*Food, error) {
	if f, ok := m.foods[normalizeName(name)]; ok {
		return &f, nil
	}
	return nil, ErrNotFound
}
