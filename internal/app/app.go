// Package app wires the engine together and exposes the operations the
// CLI drives.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mealdesk/internal/edit"
	"mealdesk/internal/foodlog"
	"mealdesk/internal/notify"
	"mealdesk/internal/plan"
	"mealdesk/internal/resolver"
	"mealdesk/internal/shopping"
	"mealdesk/internal/suggest"
)

// App holds the application's dependencies.
type App struct {
	plans     plan.Store
	shopCache *shopping.Cache
	shopStore shopping.Store
	resolver  *resolver.Resolver
	sessions  *edit.Manager
	bridge    *foodlog.Bridge
	notifier  notify.Notifier
	suggester suggest.Client // nil when no API key is configured
	logger    *slog.Logger
}

// New creates and initializes an App. suggester may be nil.
func New(
	plans plan.Store,
	shopStore shopping.Store,
	shopCache *shopping.Cache,
	res *resolver.Resolver,
	bridge *foodlog.Bridge,
	notifier notify.Notifier,
	suggester suggest.Client,
	logger *slog.Logger,
) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		plans:     plans,
		shopStore: shopStore,
		shopCache: shopCache,
		resolver:  res,
		sessions:  edit.NewManager(notifier),
		bridge:    bridge,
		notifier:  notifier,
		suggester: suggester,
		logger:    logger,
	}
}

// CreatePlan builds a new plan, through the suggestion service when one
// is configured, otherwise as an empty skeleton of days, and persists
// it.
func (a *App) CreatePlan(ctx context.Context, req suggest.Request) (*plan.Plan, error) {
	var (
		p   *plan.Plan
		err error
	)
	if a.suggester != nil {
		p, err = a.suggester.SuggestPlan(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to suggest plan: %w", err)
		}
	} else {
		p = skeletonPlan(req)
	}

	if err := a.plans.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}
	a.logger.Info("plan created", "plan", p.ID, "days", len(p.Days))
	return p, nil
}

// GetPlan loads a plan by id.
func (a *App) GetPlan(ctx context.Context, planID string) (*plan.Plan, error) {
	p, err := a.plans.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("plan %s not found", planID)
	}
	return p, nil
}

// ListPlans lists up to limit plans, newest first.
func (a *App) ListPlans(ctx context.Context, limit int) ([]*plan.Plan, error) {
	return a.plans.ListRecent(ctx, limit)
}

// DeletePlan removes a plan and its cached shopping list.
func (a *App) DeletePlan(ctx context.Context, planID string) error {
	if err := a.shopCache.Invalidate(ctx, planID); err != nil {
		return fmt.Errorf("failed to drop shopping list: %w", err)
	}
	if err := a.plans.Delete(ctx, planID); err != nil {
		return err
	}
	a.logger.Info("plan deleted", "plan", planID)
	return nil
}

// ShoppingList returns the plan's shopping list, generating one when
// absent or when force is set.
func (a *App) ShoppingList(ctx context.Context, planID string, force bool) (*shopping.List, error) {
	p, err := a.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return a.shopCache.GetOrGenerate(ctx, p, force)
}

// EditIngredient runs a full edit session over one ingredient: draft
// the new amount/unit, resolve nutrition for the draft, apply
// optimistically with an aggregate roll-up, and commit the owning plan.
// A persistence failure rolls the plan back to its pre-edit state.
func (a *App) EditIngredient(ctx context.Context, planID string, dayIdx, mealIdx, ingIdx int, amount float64, unit string) (*plan.Plan, error) {
	p, err := a.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := checkIngredientIndex(p, dayIdx, mealIdx, ingIdx); err != nil {
		return nil, err
	}

	editor := &plan.IngredientEditor{
		Plan: p, DayIndex: dayIdx, MealIndex: mealIdx, IngredientIndex: ingIdx,
	}
	sess, err := a.sessions.Begin(editor, a.planSaver(p))
	if err != nil {
		return nil, err
	}

	if err := sess.Set(edit.FieldAmount, amount); err != nil {
		return nil, err
	}
	if err := sess.Set(edit.FieldUnit, unit); err != nil {
		return nil, err
	}
	// The CLI has nothing else to do, so wait for the lookup instead of
	// letting it race the save.
	<-sess.ResolveAsync(ctx, a.resolver)

	if err := sess.Save(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// SetItemChecked toggles a shopping item through an edit session and
// commits the owning list.
func (a *App) SetItemChecked(ctx context.Context, planID, itemID string, checked bool) (*shopping.List, error) {
	list, err := a.shopStore.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, fmt.Errorf("no shopping list for plan %s", planID)
	}
	idx := -1
	for i := range list.Items {
		if list.Items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("item %s not found in shopping list", itemID)
	}

	sess, err := a.sessions.Begin(&shopping.ItemEditor{List: list, Index: idx},
		edit.SaverFunc(func(ctx context.Context, _ string, _ map[string]any) error {
			return a.shopStore.Replace(ctx, list)
		}))
	if err != nil {
		return nil, err
	}
	if err := sess.Set(edit.FieldChecked, checked); err != nil {
		return nil, err
	}
	if err := sess.Save(ctx); err != nil {
		return nil, err
	}
	return list, nil
}

// LogMeal logs one meal into the food log and persists the updated
// isLogged flag.
func (a *App) LogMeal(ctx context.Context, planID, date string, mealType plan.MealType) (foodlog.Result, error) {
	p, err := a.GetPlan(ctx, planID)
	if err != nil {
		return foodlog.Result{}, err
	}

	meal := findMeal(p, date, mealType)
	if meal == nil {
		return foodlog.Result{}, fmt.Errorf("no %s meal on %s in plan %s", mealType, date, planID)
	}

	res, err := a.bridge.LogMeal(ctx, date, meal)
	if err != nil {
		return res, err
	}
	if err := a.plans.Save(ctx, p); err != nil {
		return res, fmt.Errorf("failed to persist logged flag: %w", err)
	}
	return res, nil
}

func (a *App) planSaver(p *plan.Plan) edit.Saver {
	return edit.SaverFunc(func(ctx context.Context, _ string, _ map[string]any) error {
		return a.plans.Save(ctx, p)
	})
}

func skeletonPlan(req suggest.Request) *plan.Plan {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		start = time.Now().UTC()
	}
	days := make([]plan.Day, req.Days)
	for i := range days {
		days[i] = plan.Day{Date: start.AddDate(0, 0, i).Format("2006-01-02")}
	}
	p := &plan.Plan{
		ID:                  uuid.NewString(),
		CreatedAt:           time.Now().UTC(),
		DietaryRestrictions: req.DietaryRestrictions,
		TargetNutrition:     req.Target,
		Days:                days,
	}
	p.Recompute()
	return p
}

func checkIngredientIndex(p *plan.Plan, dayIdx, mealIdx, ingIdx int) error {
	if dayIdx < 0 || dayIdx >= len(p.Days) {
		return fmt.Errorf("day index %d out of range", dayIdx)
	}
	d := p.Days[dayIdx]
	if mealIdx < 0 || mealIdx >= len(d.Meals) {
		return fmt.Errorf("meal index %d out of range", mealIdx)
	}
	if ingIdx < 0 || ingIdx >= len(d.Meals[mealIdx].Ingredients) {
		return fmt.Errorf("ingredient index %d out of range", ingIdx)
	}
	return nil
}

func findMeal(p *plan.Plan, date string, mealType plan.MealType) *plan.Meal {
	for di := range p.Days {
		if p.Days[di].Date != date {
			continue
		}
		for mi := range p.Days[di].Meals {
			if p.Days[di].Meals[mi].MealType == mealType {
				return &p.Days[di].Meals[mi]
			}
		}
	}
	return nil
}
