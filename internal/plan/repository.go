package plan

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Store is the persistence boundary for plans.
type Store interface {
	Save(ctx context.Context, p *Plan) error
	Get(ctx context.Context, id string) (*Plan, error) // nil, nil when absent
	ListRecent(ctx context.Context, limit int) ([]*Plan, error)
	Delete(ctx context.Context, id string) error
}

// Repository persists plans as whole JSON documents in SQLite.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a plan repository over db.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts or replaces the full serialized plan.
func (r *Repository) Save(ctx context.Context, p *Plan) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal plan %s: %w", p.ID, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO meal_plans (id, plan_data, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET plan_data = excluded.plan_data, updated_at = excluded.updated_at`,
		p.ID, data, p.CreatedAt.UTC(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save plan %s: %w", p.ID, err)
	}
	return nil
}

// Get loads a plan by id, or nil when no such plan exists.
func (r *Repository) Get(ctx context.Context, id string) (*Plan, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT plan_data FROM meal_plans WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan %s: %w", id, err)
	}

	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan %s: %w", id, err)
	}
	return &p, nil
}

// ListRecent returns up to limit plans, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]*Plan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT plan_data FROM meal_plans ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []*Plan
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan plan row: %w", err)
		}
		var p Plan
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
		}
		plans = append(plans, &p)
	}
	return plans, rows.Err()
}

// Delete removes a plan. The cached shopping list for the plan follows
// via the schema's cascading foreign key.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM meal_plans WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete plan %s: %w", id, err)
	}
	return nil
}

// MemoryStore is an in-memory Store for tests. Like the SQLite
// repository it hands out detached copies, serialized through JSON.
type MemoryStore struct {
	mu    sync.Mutex
	plans map[string][]byte

	// SaveErr, when set, makes every Save fail. Tests use it to force
	// edit-session rollbacks.
	SaveErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plans: make(map[string][]byte)}
}

func (s *MemoryStore) Save(ctx context.Context, p *Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	s.plans[p.ID] = data
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.plans[id]
	if !ok {
		return nil, nil
	}
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *MemoryStore) ListRecent(ctx context.Context, limit int) ([]*Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var plans []*Plan
	for _, data := range s.plans {
		var p Plan
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		plans = append(plans, &p)
	}
	sort.Slice(plans, func(i, j int) bool {
		return plans[i].CreatedAt.After(plans[j].CreatedAt)
	})
	if limit > 0 && len(plans) > limit {
		plans = plans[:limit]
	}
	return plans, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.plans, id)
	return nil
}
