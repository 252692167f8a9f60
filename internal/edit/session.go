// Package edit implements the optimistic edit session used for every
// mutation of a plan or shopping list: changes accumulate in a transient
// buffer, are applied locally (with a synchronous aggregate recompute) on
// save, and are rolled back to the committed snapshot if persistence
// fails. At most one session may be open per entity.
package edit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"mealdesk/internal/notify"
	"mealdesk/internal/nutrition"
)

// State of a session. Sessions are created in StateEditing; StateIdle is
// the implicit state of an entity with no open session.
type State int

const (
	StateIdle State = iota
	StateEditing
	StateSaving
	StateCommitted
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditing:
		return "editing"
	case StateSaving:
		return "saving"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled back"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Draft field keys shared by sessions and entity adapters.
const (
	FieldName     = "name"
	FieldAmount   = "amount"
	FieldUnit     = "unit"
	FieldCalories = "calories"
	FieldProtein  = "protein"
	FieldCarbs    = "carbs"
	FieldFat      = "fat"
	FieldNotes    = "notes"
	FieldChecked  = "isChecked"
	FieldCategory = "category"
)

var (
	// ErrSessionOpen is returned by Begin while another session holds the
	// same entity, including one that is mid-save.
	ErrSessionOpen = errors.New("edit session already open for entity")
	// ErrNotEditing is returned by mutations on a session that has left
	// the editing state.
	ErrNotEditing = errors.New("edit session is not in the editing state")
	// ErrSaving is returned by Cancel once a save is in flight; the
	// session must run to commit or rollback.
	ErrSaving = errors.New("edit session is saving and cannot be canceled")
)

// Entity is the committed object a session edits. Apply and Snapshot
// speak the draft-field vocabulary above; Recompute refreshes every
// ancestor aggregate after local state changes.
type Entity interface {
	EntityID() string
	Snapshot() map[string]any
	Apply(fields map[string]any)
	Recompute()
}

// Saver persists the committed fields of one entity.
type Saver interface {
	Save(ctx context.Context, entityID string, fields map[string]any) error
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(ctx context.Context, entityID string, fields map[string]any) error

func (f SaverFunc) Save(ctx context.Context, entityID string, fields map[string]any) error {
	return f(ctx, entityID, fields)
}

// NutritionResolver yields amount-scaled nutrition for an ingredient
// name, or nil when the lookup missed or failed.
type NutritionResolver interface {
	Resolve(ctx context.Context, name string, amount float64, unit string) *nutrition.Totals
}

// Manager hands out sessions and enforces the one-session-per-entity
// rule.
type Manager struct {
	mu       sync.Mutex
	open     map[string]*Session
	notifier notify.Notifier
}

// NewManager creates a session manager reporting rollbacks through
// notifier.
func NewManager(notifier notify.Notifier) *Manager {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Manager{
		open:     make(map[string]*Session),
		notifier: notifier,
	}
}

// Begin opens a session for entity, committing through saver. The
// buffer starts as a copy of the committed snapshot. Begin fails with
// ErrSessionOpen while any session, editing or saving, holds the
// entity.
func (m *Manager) Begin(entity Entity, saver Saver) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := entity.EntityID()
	if _, exists := m.open[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrSessionOpen, id)
	}

	snapshot := entity.Snapshot()
	s := &Session{
		manager:  m,
		entity:   entity,
		saver:    saver,
		state:    StateEditing,
		token:    uuid.NewString(),
		snapshot: copyFields(snapshot),
		fields:   copyFields(snapshot),
	}
	m.open[id] = s
	return s, nil
}

func (m *Manager) release(entityID string) {
	m.mu.Lock()
	delete(m.open, entityID)
	m.mu.Unlock()
}

// Session is one in-flight edit of one entity.
type Session struct {
	mu       sync.Mutex
	manager  *Manager
	entity   Entity
	saver    Saver
	state    State
	token    string // buffer identity; rotated on every field change
	snapshot map[string]any
	fields   map[string]any
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Set updates one draft field. Committed state is untouched. Rotating
// the buffer token here is what invalidates resolver lookups that were
// started against the previous draft.
func (s *Session) Set(field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return fmt.Errorf("%w (%s)", ErrNotEditing, s.state)
	}
	s.fields[field] = value
	s.token = uuid.NewString()
	return nil
}

// Field reads one draft field.
func (s *Session) Field(field string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.fields[field]
	return v, ok
}

// ResolveAsync looks up nutrition for the drafted name/amount/unit in
// the background and writes the result into the buffer. The result is
// silently dropped when it arrives late: after cancel, after save, or
// after another Set has superseded the draft it was computed for. The
// returned channel closes when the lookup has been fully handled, which
// callers may ignore.
func (s *Session) ResolveAsync(ctx context.Context, res NutritionResolver) <-chan struct{} {
	done := make(chan struct{})

	s.mu.Lock()
	if s.state != StateEditing {
		s.mu.Unlock()
		close(done)
		return done
	}
	token := s.token
	name := StringField(s.fields, FieldName)
	amount := FloatField(s.fields, FieldAmount)
	unit := StringField(s.fields, FieldUnit)
	s.mu.Unlock()

	go func() {
		defer close(done)
		totals := res.Resolve(ctx, name, amount, unit)
		if totals == nil {
			return // miss or transport failure; draft keeps its prior value
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state != StateEditing || s.token != token {
			return // stale result, never applied
		}
		s.fields[FieldCalories] = totals.Calories
		s.fields[FieldProtein] = totals.Protein
		s.fields[FieldCarbs] = totals.Carbs
		s.fields[FieldFat] = totals.Fat
	}()
	return done
}

// Cancel discards the draft with no mutation to committed state and no
// network call. Canceling is rejected once a save is in flight.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateSaving:
		return ErrSaving
	case StateEditing:
		s.state = StateIdle
		s.manager.release(s.entity.EntityID())
		return nil
	default:
		return fmt.Errorf("%w (%s)", ErrNotEditing, s.state)
	}
}

// Save applies the draft to local state, synchronously recomputes every
// ancestor aggregate, then submits the fields for persistence. On
// success the optimistic state becomes authoritative; on failure the
// pre-edit snapshot (aggregates included) is restored exactly and the
// user is notified. There is no automatic retry.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateEditing {
		s.mu.Unlock()
		return fmt.Errorf("%w (%s)", ErrNotEditing, s.state)
	}
	s.state = StateSaving
	fields := copyFields(s.fields)
	entityID := s.entity.EntityID()

	// Optimistic local mutation happens before the network round-trip so
	// readers are always at least as current as the store.
	s.entity.Apply(fields)
	s.entity.Recompute()
	s.mu.Unlock()

	err := s.saver.Save(ctx, entityID, fields)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.entity.Apply(s.snapshot)
		s.entity.Recompute()
		s.state = StateRolledBack
		s.manager.release(entityID)
		s.manager.notifier.Notify(notify.KindError,
			fmt.Sprintf("could not save changes to %s, edit was reverted", entityID))
		return fmt.Errorf("save %s: %w", entityID, err)
	}
	s.state = StateCommitted
	s.manager.release(entityID)
	return nil
}

func copyFields(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// StringField reads a string draft field, defaulting to "". Entity
// adapters use these helpers to coerce drafts back into typed fields.
func StringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// FloatField reads a numeric draft field, accepting the integer types a
// caller may plausibly hand to Set.
func FloatField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// BoolField reads a boolean draft field, defaulting to false.
func BoolField(m map[string]any, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}
