package foodlog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"mealdesk/internal/plan"
)

// Repository appends food-log entries to SQLite.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a food-log repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Append inserts one entry.
func (r *Repository) Append(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO food_log (id, log_date, meal_type, name, amount, unit, calories, protein, carbs, fat, logged_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Date, string(e.MealType), e.Name, e.Amount, e.Unit,
		e.Calories, e.Protein, e.Carbs, e.Fat, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to append food log entry: %w", err)
	}
	return nil
}

// ListByDate returns the entries logged for a date, oldest first.
func (r *Repository) ListByDate(ctx context.Context, date string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, log_date, meal_type, name, amount, unit, calories, protein, carbs, fat
		FROM food_log WHERE log_date = ? ORDER BY logged_at`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list food log for %s: %w", date, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var mealType string
		if err := rows.Scan(&e.ID, &e.Date, &mealType, &e.Name, &e.Amount, &e.Unit,
			&e.Calories, &e.Protein, &e.Carbs, &e.Fat); err != nil {
			return nil, fmt.Errorf("failed to scan food log row: %w", err)
		}
		e.MealType = plan.MealType(mealType)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu      sync.Mutex
	Entries []Entry

	// FailNames makes Append fail for the listed entry names.
	FailNames map[string]bool
	// Appends counts Append calls including failed ones.
	Appends int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{FailNames: make(map[string]bool)}
}

func (s *MemoryStore) Append(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Appends++
	if s.FailNames[e.Name] {
		return fmt.Errorf("append rejected for %s", e.Name)
	}
	s.Entries = append(s.Entries, e)
	return nil
}
