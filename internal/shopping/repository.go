package shopping

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
)

// Store is the persistence boundary for cached shopping lists: at most
// one list per plan.
type Store interface {
	GetByPlanID(ctx context.Context, planID string) (*List, error) // nil, nil when absent
	Replace(ctx context.Context, list *List) error
	DeleteByPlanID(ctx context.Context, planID string) error
}

// Repository persists shopping lists in SQLite, keyed by plan.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a shopping list repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetByPlanID retrieves the cached list for a plan, or nil if none has
// been generated yet.
func (r *Repository) GetByPlanID(ctx context.Context, planID string) (*List, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT list_data FROM shopping_lists WHERE plan_id = ?`, planID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil // No shopping list cached for this plan
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shopping list for plan %s: %w", planID, err)
	}

	var list List
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shopping list for plan %s: %w", planID, err)
	}
	return &list, nil
}

// Replace stores the list, superseding any prior cached list for the
// same plan.
func (r *Repository) Replace(ctx context.Context, list *List) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal shopping list: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO shopping_lists (plan_id, list_data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(plan_id) DO UPDATE SET list_data = excluded.list_data, updated_at = excluded.updated_at`,
		list.PlanID, data, list.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save shopping list for plan %s: %w", list.PlanID, err)
	}
	return nil
}

// DeleteByPlanID drops the cached list for a plan.
func (r *Repository) DeleteByPlanID(ctx context.Context, planID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM shopping_lists WHERE plan_id = ?`, planID); err != nil {
		return fmt.Errorf("failed to delete shopping list for plan %s: %w", planID, err)
	}
	return nil
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu    sync.Mutex
	lists map[string]*List

	// ReplaceErr, when set, makes Replace fail.
	ReplaceErr error
	// Replaces counts Replace calls, i.e. completed generations.
	Replaces int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lists: make(map[string]*List)}
}

func (s *MemoryStore) GetByPlanID(ctx context.Context, planID string) (*List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.lists[planID]; ok {
		cp := *l
		cp.Items = append([]Item(nil), l.Items...)
		return &cp, nil
	}
	return nil, nil
}

func (s *MemoryStore) Replace(ctx context.Context, list *List) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReplaceErr != nil {
		return s.ReplaceErr
	}
	s.Replaces++
	cp := *list
	cp.Items = append([]Item(nil), list.Items...)
	s.lists[list.PlanID] = &cp
	return nil
}

func (s *MemoryStore) DeleteByPlanID(ctx context.Context, planID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lists, planID)
	return nil
}
