// Package foodlog converts planned meals and ingredients into food-log
// entries and tracks whether a meal has already been logged.
package foodlog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"mealdesk/internal/notify"
	"mealdesk/internal/nutrition"
	"mealdesk/internal/plan"
)

// ErrAlreadyLogged rejects a second logging attempt for a meal whose
// entries already made it into the log. The rejection happens before
// any persistence call.
var ErrAlreadyLogged = errors.New("meal is already logged")

// Entry is one food-log line.
type Entry struct {
	ID       string        `json:"id"`
	Date     string        `json:"date"`
	MealType plan.MealType `json:"mealType"`
	Name     string        `json:"name"`
	Amount   float64       `json:"amount"`
	Unit     string        `json:"unit"`
	nutrition.Totals
}

// Store appends entries to the food log.
type Store interface {
	Append(ctx context.Context, entry Entry) error
}

// Result reports the outcome of one logging batch. Failures are
// reported per batch; Logged lists the names that made it in.
type Result struct {
	Attempted int
	Logged    []string
	Failed    int
}

// Bridge turns meals into food-log entries.
type Bridge struct {
	store    Store
	notifier notify.Notifier
}

// NewBridge creates a bridge persisting through store.
func NewBridge(store Store, notifier notify.Notifier) *Bridge {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Bridge{store: store, notifier: notifier}
}

// LogMeal logs every ingredient of the meal, or the meal itself when it
// has no ingredient breakdown. The meal's IsLogged flag is set only if
// every entry succeeded; it then guards against duplicate logging until
// explicitly reset.
func (b *Bridge) LogMeal(ctx context.Context, date string, meal *plan.Meal) (Result, error) {
	if meal.IsLogged {
		b.notifier.Notify(notify.KindInfo,
			fmt.Sprintf("%s is already logged", meal.FoodName))
		return Result{}, ErrAlreadyLogged
	}

	entries := mealEntries(date, meal)
	res, err := b.append(ctx, entries)
	if err == nil {
		meal.IsLogged = true
	}
	return res, err
}

// LogIngredients logs a subset of the meal's ingredients, selected by
// index. IsLogged is set only when the selection covers the whole meal
// and every entry succeeded; a partial selection leaves it false.
func (b *Bridge) LogIngredients(ctx context.Context, meal *plan.Meal, selected []int, mealType plan.MealType, date string) (Result, error) {
	if meal.IsLogged {
		b.notifier.Notify(notify.KindInfo,
			fmt.Sprintf("%s is already logged", meal.FoodName))
		return Result{}, ErrAlreadyLogged
	}

	var entries []Entry
	for _, idx := range selected {
		if idx < 0 || idx >= len(meal.Ingredients) {
			return Result{}, fmt.Errorf("ingredient index %d out of range", idx)
		}
		ing := meal.Ingredients[idx]
		entries = append(entries, Entry{
			ID:       uuid.NewString(),
			Date:     date,
			MealType: mealType,
			Name:     ing.Name,
			Amount:   ing.Amount,
			Unit:     ing.Unit,
			Totals:   ing.Totals,
		})
	}

	res, err := b.append(ctx, entries)
	if err == nil && len(selected) == len(meal.Ingredients) {
		meal.IsLogged = true
	}
	return res, err
}

func mealEntries(date string, meal *plan.Meal) []Entry {
	if len(meal.Ingredients) == 0 {
		// No breakdown, the meal itself becomes one entry.
		return []Entry{{
			ID:       uuid.NewString(),
			Date:     date,
			MealType: meal.MealType,
			Name:     meal.FoodName,
			Amount:   1,
			Unit:     "serving",
			Totals:   meal.Totals,
		}}
	}
	entries := make([]Entry, 0, len(meal.Ingredients))
	for _, ing := range meal.Ingredients {
		entries = append(entries, Entry{
			ID:       uuid.NewString(),
			Date:     date,
			MealType: meal.MealType,
			Name:     ing.Name,
			Amount:   ing.Amount,
			Unit:     ing.Unit,
			Totals:   ing.Totals,
		})
	}
	return entries
}

// append submits each entry, collecting a batch-level result. Partial
// failure still keeps the entries that made it.
func (b *Bridge) append(ctx context.Context, entries []Entry) (Result, error) {
	res := Result{Attempted: len(entries)}
	var errs []error
	for _, e := range entries {
		if err := b.store.Append(ctx, e); err != nil {
			res.Failed++
			errs = append(errs, fmt.Errorf("%s: %w", e.Name, err))
			continue
		}
		res.Logged = append(res.Logged, e.Name)
	}
	if res.Failed > 0 {
		b.notifier.Notify(notify.KindWarning, fmt.Sprintf(
			"logged %d of %d entries", len(res.Logged), res.Attempted))
		return res, fmt.Errorf("failed to log %d of %d entries: %w",
			res.Failed, res.Attempted, errors.Join(errs...))
	}
	return res, nil
}
