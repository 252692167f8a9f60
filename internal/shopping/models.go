// Package shopping derives a merged, deduplicated shopping list from a
// meal plan and caches it per plan.
package shopping

import (
	"time"

	"mealdesk/internal/edit"
)

// DefaultCategory is applied to items the pricing signal cannot
// categorize.
const DefaultCategory = "Other"

// Item is one line on a shopping list. After a merge, items are unique
// per (name, unit) within their list.
type Item struct {
	ID             string  `json:"itemId"`
	Name           string  `json:"name"`
	Amount         float64 `json:"amount"`
	Unit           string  `json:"unit"`
	Category       string  `json:"category"`
	IsChecked      bool    `json:"isChecked"`
	EstimatedPrice float64 `json:"estimatedPrice"`
	SourceFoodID   string  `json:"sourceFoodId,omitempty"`
	Notes          string  `json:"notes,omitempty"`
}

// List is the cached shopping artifact for exactly one plan.
type List struct {
	PlanID             string    `json:"planId"`
	Items              []Item    `json:"items"`
	TotalEstimatedCost float64   `json:"totalEstimatedCost"`
	Notes              string    `json:"notes,omitempty"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// RecomputeTotal restores the invariant that the total cost is the sum
// of item prices.
func (l *List) RecomputeTotal() {
	var total float64
	for _, it := range l.Items {
		total += it.EstimatedPrice
	}
	l.TotalEstimatedCost = total
}

// ItemEditor adapts one shopping item to the edit-session entity
// contract. Item edits never trigger list regeneration.
type ItemEditor struct {
	List  *List
	Index int
}

func (e *ItemEditor) item() *Item {
	return &e.List.Items[e.Index]
}

func (e *ItemEditor) EntityID() string {
	return e.List.PlanID + "/item/" + e.item().ID
}

func (e *ItemEditor) Snapshot() map[string]any {
	it := e.item()
	return map[string]any{
		edit.FieldName:     it.Name,
		edit.FieldAmount:   it.Amount,
		edit.FieldUnit:     it.Unit,
		edit.FieldNotes:    it.Notes,
		edit.FieldChecked:  it.IsChecked,
		edit.FieldCategory: it.Category,
	}
}

func (e *ItemEditor) Apply(fields map[string]any) {
	it := e.item()
	it.Name = edit.StringField(fields, edit.FieldName)
	it.Amount = edit.FloatField(fields, edit.FieldAmount)
	it.Unit = edit.StringField(fields, edit.FieldUnit)
	it.Notes = edit.StringField(fields, edit.FieldNotes)
	it.IsChecked = edit.BoolField(fields, edit.FieldChecked)
	it.Category = edit.StringField(fields, edit.FieldCategory)
}

func (e *ItemEditor) Recompute() {
	e.List.RecomputeTotal()
}
