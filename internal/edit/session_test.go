package edit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealdesk/internal/nutrition"
)

// testEntity is a minimal entity with one numeric and one string field
// plus a derived aggregate, enough to observe optimistic apply, ancestor
// recompute and rollback.
type testEntity struct {
	id         string
	amount     float64
	unit       string
	aggregate  float64 // recomputed as amount * 2
	recomputes int
}

func (e *testEntity) EntityID() string { return e.id }

func (e *testEntity) Snapshot() map[string]any {
	return map[string]any{FieldAmount: e.amount, FieldUnit: e.unit}
}

func (e *testEntity) Apply(fields map[string]any) {
	e.amount = FloatField(fields, FieldAmount)
	e.unit = StringField(fields, FieldUnit)
}

func (e *testEntity) Recompute() {
	e.recomputes++
	e.aggregate = e.amount * 2
}

type recordingSaver struct {
	mu     sync.Mutex
	calls  int
	err    error
	fields map[string]any
}

func (s *recordingSaver) Save(ctx context.Context, entityID string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.fields = fields
	return s.err
}

type stubResolver struct {
	totals *nutrition.Totals
	block  chan struct{} // when set, Resolve waits until closed
}

func (r *stubResolver) Resolve(ctx context.Context, name string, amount float64, unit string) *nutrition.Totals {
	if r.block != nil {
		<-r.block
	}
	return r.totals
}

func newTestSession(t *testing.T, entity *testEntity, saver Saver) *Session {
	t.Helper()
	m := NewManager(nil)
	s, err := m.Begin(entity, saver)
	require.NoError(t, err)
	return s
}

func TestSaveCommitsOptimistically(t *testing.T) {
	entity := &testEntity{id: "e1", amount: 50, unit: "g"}
	saver := &recordingSaver{}
	s := newTestSession(t, entity, saver)

	require.NoError(t, s.Set(FieldAmount, 75.0))
	require.NoError(t, s.Save(context.Background()))

	assert.Equal(t, StateCommitted, s.State())
	assert.Equal(t, 75.0, entity.amount)
	assert.Equal(t, 150.0, entity.aggregate, "aggregates recomputed on save")
	assert.Equal(t, 1, saver.calls)
	assert.Equal(t, 75.0, saver.fields[FieldAmount])
}

func TestSaveFailureRollsBackExactly(t *testing.T) {
	entity := &testEntity{id: "e1", amount: 50, unit: "g"}
	entity.Recompute()
	saver := &recordingSaver{err: errors.New("store unavailable")}
	s := newTestSession(t, entity, saver)

	require.NoError(t, s.Set(FieldAmount, 75.0))
	err := s.Save(context.Background())
	require.Error(t, err)

	assert.Equal(t, StateRolledBack, s.State())
	assert.Equal(t, 50.0, entity.amount, "committed value restored")
	assert.Equal(t, 100.0, entity.aggregate, "aggregates restored")
}

func TestCancelDiscardsWithoutSideEffects(t *testing.T) {
	entity := &testEntity{id: "e1", amount: 50, unit: "g"}
	saver := &recordingSaver{}
	s := newTestSession(t, entity, saver)

	require.NoError(t, s.Set(FieldAmount, 99.0))
	require.NoError(t, s.Cancel())

	assert.Equal(t, 50.0, entity.amount, "no mutation to committed state")
	assert.Zero(t, saver.calls, "no network call")
	assert.Zero(t, entity.recomputes)
}

func TestOnlyOneSessionPerEntity(t *testing.T) {
	entity := &testEntity{id: "e1"}
	m := NewManager(nil)
	_, err := m.Begin(entity, &recordingSaver{})
	require.NoError(t, err)

	_, err = m.Begin(entity, &recordingSaver{})
	assert.ErrorIs(t, err, ErrSessionOpen)
}

func TestEntityReleasedAfterTerminalStates(t *testing.T) {
	entity := &testEntity{id: "e1", amount: 1}
	m := NewManager(nil)

	s, err := m.Begin(entity, &recordingSaver{})
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background()))

	// Committed releases the entity for the next session.
	s2, err := m.Begin(entity, &recordingSaver{})
	require.NoError(t, err)
	require.NoError(t, s2.Cancel())

	_, err = m.Begin(entity, &recordingSaver{})
	assert.NoError(t, err, "cancel releases the entity too")
}

func TestCancelRejectedWhileSaving(t *testing.T) {
	entity := &testEntity{id: "e1", amount: 1}
	started := make(chan struct{})
	release := make(chan struct{})
	saver := SaverFunc(func(ctx context.Context, id string, fields map[string]any) error {
		close(started)
		<-release
		return nil
	})
	s := newTestSession(t, entity, saver)

	done := make(chan error, 1)
	go func() { done <- s.Save(context.Background()) }()

	<-started
	assert.ErrorIs(t, s.Cancel(), ErrSaving)

	close(release)
	require.NoError(t, <-done)
}

func TestResolveAsyncFillsBuffer(t *testing.T) {
	entity := &testEntity{id: "e1", amount: 100, unit: "g"}
	s := newTestSession(t, entity, &recordingSaver{})
	res := &stubResolver{totals: &nutrition.Totals{Calories: 89, Protein: 1.1, Carbs: 23, Fat: 0.3}}

	<-s.ResolveAsync(context.Background(), res)

	v, ok := s.Field(FieldCalories)
	require.True(t, ok)
	assert.Equal(t, 89.0, v)
	assert.Equal(t, 100.0, entity.amount, "committed entity untouched before save")
}

func TestStaleResolutionAfterCancelIsDropped(t *testing.T) {
	entity := &testEntity{id: "e1", amount: 100, unit: "g"}
	s := newTestSession(t, entity, &recordingSaver{})
	res := &stubResolver{
		totals: &nutrition.Totals{Calories: 500},
		block:  make(chan struct{}),
	}

	done := s.ResolveAsync(context.Background(), res)
	require.NoError(t, s.Cancel())
	close(res.block)
	<-done

	_, ok := s.Field(FieldCalories)
	assert.False(t, ok, "late resolution must never land after cancel")
}

func TestSupersededResolutionIsDropped(t *testing.T) {
	entity := &testEntity{id: "e1", amount: 100, unit: "g"}
	s := newTestSession(t, entity, &recordingSaver{})
	res := &stubResolver{
		totals: &nutrition.Totals{Calories: 500},
		block:  make(chan struct{}),
	}

	done := s.ResolveAsync(context.Background(), res)
	// A newer field change supersedes the draft the lookup was started for.
	require.NoError(t, s.Set(FieldAmount, 200.0))
	close(res.block)
	<-done

	_, ok := s.Field(FieldCalories)
	assert.False(t, ok, "resolution for a superseded draft must be dropped")
}

func TestResolveMissKeepsPriorValue(t *testing.T) {
	entity := &testEntity{id: "e1", amount: 100, unit: "g"}
	s := newTestSession(t, entity, &recordingSaver{})
	require.NoError(t, s.Set(FieldCalories, 42.0))

	<-s.ResolveAsync(context.Background(), &stubResolver{totals: nil})

	v, _ := s.Field(FieldCalories)
	assert.Equal(t, 42.0, v, "miss leaves the draft at its previous value")
}

func TestSetAfterTerminalStateRejected(t *testing.T) {
	entity := &testEntity{id: "e1"}
	s := newTestSession(t, entity, &recordingSaver{})
	require.NoError(t, s.Save(context.Background()))
	assert.ErrorIs(t, s.Set(FieldAmount, 1.0), ErrNotEditing)
}
