// Package resolver fills in ingredient nutrition by name lookup against
// the food database, scaled to the requested amount and unit.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mealdesk/internal/fooddb"
	"mealdesk/internal/notify"
	"mealdesk/internal/nutrition"
	"mealdesk/internal/units"
)

// Resolver scales catalog per-serving nutrition to requested amounts.
type Resolver struct {
	db       fooddb.Database
	notifier notify.Notifier
	logger   *slog.Logger
}

// New creates a resolver over db, surfacing misses through notifier.
func New(db fooddb.Database, notifier notify.Notifier, logger *slog.Logger) *Resolver {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{db: db, notifier: notifier, logger: logger}
}

// Resolve returns nutrition for amount/unit of the named ingredient, or
// nil when the name has no match or the lookup failed. Resolution
// failures are never fatal to an edit in progress: the caller keeps the
// ingredient's previous nutrition and the user gets a non-blocking
// notice. Resolving the same inputs twice yields the same totals for an
// unchanged database.
func (r *Resolver) Resolve(ctx context.Context, name string, amount float64, unit string) *nutrition.Totals {
	food, err := r.db.Search(ctx, name)
	if err != nil {
		if errors.Is(err, fooddb.ErrNotFound) {
			r.notifier.Notify(notify.KindInfo,
				fmt.Sprintf("no nutrition data found for %q", name))
		} else {
			// Transport failure is handled identically to a miss.
			r.logger.Warn("food database lookup failed", "name", name, "error", err)
			r.notifier.Notify(notify.KindWarning,
				fmt.Sprintf("nutrition lookup for %q failed", name))
		}
		return nil
	}
	if food.ServingAmount <= 0 {
		r.logger.Warn("food catalog entry has no serving size", "name", name)
		return nil
	}

	if !units.Compatible(unit, food.ServingUnit) {
		// Cross-family conversion is undefined without density; Convert
		// passes the amount through unchanged and we scale from that.
		r.logger.Debug("unit families do not match, amount passed through",
			"name", name, "unit", unit, "servingUnit", food.ServingUnit)
	}
	inServingUnit := units.Convert(amount, unit, food.ServingUnit)
	totals := food.PerServing.Scale(inServingUnit / food.ServingAmount)
	return &totals
}
