package plan

import (
	"fmt"

	"mealdesk/internal/edit"
)

// IngredientEditor adapts one ingredient, addressed by position within
// its plan, to the edit-session entity contract.
type IngredientEditor struct {
	Plan            *Plan
	DayIndex        int
	MealIndex       int
	IngredientIndex int
}

func (e *IngredientEditor) ingredient() *Ingredient {
	return &e.Plan.Days[e.DayIndex].Meals[e.MealIndex].Ingredients[e.IngredientIndex]
}

func (e *IngredientEditor) EntityID() string {
	return fmt.Sprintf("%s/day/%d/meal/%d/ingredient/%d",
		e.Plan.ID, e.DayIndex, e.MealIndex, e.IngredientIndex)
}

func (e *IngredientEditor) Snapshot() map[string]any {
	ing := e.ingredient()
	return map[string]any{
		edit.FieldName:     ing.Name,
		edit.FieldAmount:   ing.Amount,
		edit.FieldUnit:     ing.Unit,
		edit.FieldNotes:    ing.Notes,
		edit.FieldCalories: ing.Calories,
		edit.FieldProtein:  ing.Protein,
		edit.FieldCarbs:    ing.Carbs,
		edit.FieldFat:      ing.Fat,
	}
}

func (e *IngredientEditor) Apply(fields map[string]any) {
	ing := e.ingredient()
	ing.Name = edit.StringField(fields, edit.FieldName)
	ing.Amount = edit.FloatField(fields, edit.FieldAmount)
	ing.Unit = edit.StringField(fields, edit.FieldUnit)
	ing.Notes = edit.StringField(fields, edit.FieldNotes)
	ing.Calories = edit.FloatField(fields, edit.FieldCalories)
	ing.Protein = edit.FloatField(fields, edit.FieldProtein)
	ing.Carbs = edit.FloatField(fields, edit.FieldCarbs)
	ing.Fat = edit.FloatField(fields, edit.FieldFat)
}

func (e *IngredientEditor) Recompute() {
	e.Plan.Recompute()
}

// MealEditor adapts a meal's directly entered nutrition. Only meaningful
// for meals without an ingredient breakdown; with one, the roll-up wins.
type MealEditor struct {
	Plan      *Plan
	DayIndex  int
	MealIndex int
}

func (e *MealEditor) meal() *Meal {
	return &e.Plan.Days[e.DayIndex].Meals[e.MealIndex]
}

func (e *MealEditor) EntityID() string {
	return fmt.Sprintf("%s/day/%d/meal/%d", e.Plan.ID, e.DayIndex, e.MealIndex)
}

func (e *MealEditor) Snapshot() map[string]any {
	m := e.meal()
	return map[string]any{
		edit.FieldName:     m.FoodName,
		edit.FieldCalories: m.Calories,
		edit.FieldProtein:  m.Protein,
		edit.FieldCarbs:    m.Carbs,
		edit.FieldFat:      m.Fat,
	}
}

func (e *MealEditor) Apply(fields map[string]any) {
	m := e.meal()
	m.FoodName = edit.StringField(fields, edit.FieldName)
	m.Calories = edit.FloatField(fields, edit.FieldCalories)
	m.Protein = edit.FloatField(fields, edit.FieldProtein)
	m.Carbs = edit.FloatField(fields, edit.FieldCarbs)
	m.Fat = edit.FloatField(fields, edit.FieldFat)
}

func (e *MealEditor) Recompute() {
	e.Plan.Recompute()
}

// NotesEditor adapts the plan's free-form notes. Notes do not feed any
// aggregate, so recompute is a no-op.
type NotesEditor struct {
	Plan *Plan
}

func (e *NotesEditor) EntityID() string {
	return e.Plan.ID + "/notes"
}

func (e *NotesEditor) Snapshot() map[string]any {
	return map[string]any{edit.FieldNotes: e.Plan.Notes}
}

func (e *NotesEditor) Apply(fields map[string]any) {
	e.Plan.Notes = edit.StringField(fields, edit.FieldNotes)
}

func (e *NotesEditor) Recompute() {}
