// Package plan holds the meal-plan aggregate (Plan → Day → Meal →
// Ingredient) and the bottom-up nutrition roll-up that keeps every level
// consistent after an edit.
package plan

import (
	"time"

	"mealdesk/internal/nutrition"
)

// MealType is the slot a meal occupies within a day.
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
)

// Ingredient is a single line item inside a meal. Nutrition starts at
// zero and is filled in lazily by the resolver; it is never required to
// be present. The embedded totals are already scaled to Amount.
type Ingredient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
	Notes  string  `json:"notes,omitempty"`
	nutrition.Totals
}

// Meal is one slot within a day. When Ingredients is non-empty the
// meal's nutrition is derived from them; otherwise the entered totals
// are authoritative.
type Meal struct {
	MealType    MealType `json:"mealType"`
	FoodName    string   `json:"foodName"`
	PortionSize string   `json:"portionSize,omitempty"`
	nutrition.Totals
	Ingredients []Ingredient `json:"ingredients,omitempty"`
	IsLogged    bool         `json:"isLogged"`
}

// Day is one calendar day within a plan. Date is an ISO date string,
// unique within the plan.
type Day struct {
	Date           string           `json:"date"`
	Meals          []Meal           `json:"meals"`
	TotalNutrition nutrition.Totals `json:"totalNutrition"`
}

// Plan is the root aggregate.
type Plan struct {
	ID                  string           `json:"planId"`
	CreatedAt           time.Time        `json:"createdAt,omitzero"`
	DietaryRestrictions []string         `json:"dietaryRestrictions,omitempty"`
	TargetNutrition     nutrition.Totals `json:"targetNutrition"`
	AverageNutrition    nutrition.Totals `json:"averageNutrition"`
	Days                []Day            `json:"days"`
	Notes               string           `json:"notes,omitempty"`
}

// RecomputeMeal derives the meal's nutrition from its ingredients. A
// meal without an ingredient breakdown keeps whatever was entered.
func RecomputeMeal(m *Meal) {
	if len(m.Ingredients) == 0 {
		return
	}
	var sum nutrition.Totals
	for _, ing := range m.Ingredients {
		sum = sum.Add(ing.Totals)
	}
	m.Totals = sum
}

// RecomputeDay recomputes every meal in order, then sums them into the
// day total. Meal order does not affect the sum but is preserved.
func RecomputeDay(d *Day) {
	var sum nutrition.Totals
	for i := range d.Meals {
		RecomputeMeal(&d.Meals[i])
		sum = sum.Add(d.Meals[i].Totals)
	}
	d.TotalNutrition = sum
}

// Recompute rolls the whole plan up from the leaves: every meal, every
// day, then the plan average. A plan with no days falls back to its
// target nutrition so the average is never a division by zero.
//
// Synchronous and free of I/O; callers persist the result themselves.
// Must run after every structural ingredient mutation and after every
// direct meal nutrition edit.
func (p *Plan) Recompute() {
	if len(p.Days) == 0 {
		p.AverageNutrition = p.TargetNutrition
		return
	}
	totals := make([]nutrition.Totals, len(p.Days))
	for i := range p.Days {
		RecomputeDay(&p.Days[i])
		totals[i] = p.Days[i].TotalNutrition
	}
	p.AverageNutrition = nutrition.Mean(totals)
}

// Ingredients returns every ingredient in the plan in day/meal order.
// The shopping-list generator walks the plan through this.
func (p *Plan) Ingredients() []Ingredient {
	var out []Ingredient
	for _, d := range p.Days {
		for _, m := range d.Meals {
			out = append(out, m.Ingredients...)
		}
	}
	return out
}
