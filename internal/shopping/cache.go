package shopping

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"mealdesk/internal/plan"
)

// Cache serves the per-plan shopping list: cached when present, freshly
// generated and persisted otherwise. Generation is serialized per plan;
// a second request while one is in flight is served by the in-flight
// result instead of issuing a duplicate build.
type Cache struct {
	store  Store
	gen    *Generator
	group  singleflight.Group
	logger *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewCache creates a cache over store, building fresh lists with gen.
func NewCache(store Store, gen *Generator, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{store: store, gen: gen, logger: logger, now: time.Now}
}

// GetOrGenerate returns the cached list for the plan, generating and
// persisting a fresh one when there is none or when force is set. A
// cached hit is returned unchanged, with no recomputation or merge.
func (c *Cache) GetOrGenerate(ctx context.Context, p *plan.Plan, force bool) (*List, error) {
	v, err, shared := c.group.Do(p.ID, func() (any, error) {
		if !force {
			cached, err := c.store.GetByPlanID(ctx, p.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to load cached shopping list: %w", err)
			}
			if cached != nil {
				return cached, nil
			}
		}

		list := c.gen.Generate(p)
		list.UpdatedAt = c.now().UTC()
		if err := c.store.Replace(ctx, list); err != nil {
			return nil, fmt.Errorf("failed to persist shopping list: %w", err)
		}
		c.logger.Debug("shopping list generated",
			"plan", p.ID, "items", len(list.Items), "forced", force)
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("shopping list request served by in-flight generation", "plan", p.ID)
	}
	return v.(*List), nil
}

// Invalidate drops the cached list for a plan, e.g. when the plan is
// deleted.
func (c *Cache) Invalidate(ctx context.Context, planID string) error {
	return c.store.DeleteByPlanID(ctx, planID)
}
