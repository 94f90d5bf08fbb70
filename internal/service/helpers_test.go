package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/dayplanner/internal/domain"
	"github.com/alexanderramin/dayplanner/internal/kvstore"
	"github.com/alexanderramin/dayplanner/internal/repository"
	"github.com/alexanderramin/dayplanner/internal/testutil"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

const today domain.DateKey = "2025-06-01"

// recordingScheduler captures reminder calls.
type recordingScheduler struct {
	mu        sync.Mutex
	scheduled []domain.ClockTime
	cancels   int
}

func (s *recordingScheduler) ScheduleDaily(at domain.ClockTime) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled = append(s.scheduled, at)
	return nil
}

func (s *recordingScheduler) CancelAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels++
	return nil
}

func (s *recordingScheduler) last() (domain.ClockTime, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.scheduled) == 0 {
		return domain.ClockTime{}, false
	}
	return s.scheduled[len(s.scheduled)-1], true
}

func (s *recordingScheduler) cancelCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancels
}

// recordingObserver captures use-case names.
type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) byName(name string) []UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []UseCaseEvent
	for _, e := range o.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

type fakeExtractor struct {
	titles []string
	err    error
}

func (f fakeExtractor) Extract(context.Context, string) ([]string, error) {
	return f.titles, f.err
}

type plannerFixture struct {
	planner   *Planner
	repo      *repository.KVPlanRepo
	store     *testutil.FailingStore
	reminders *recordingScheduler
	observer  *recordingObserver
}

type fixtureOption func(*PlannerDeps)

func withExtractor(e fakeExtractor) fixtureOption {
	return func(d *PlannerDeps) { d.Tasks = e }
}

// newFixture builds a Planner over a real SQLite store wrapped for fault
// injection. The planner is not loaded.
func newFixture(t *testing.T, opts ...fixtureOption) *plannerFixture {
	t.Helper()
	return newFixtureOver(t, testutil.NewTestStore(t), opts...)
}

func newFixtureOver(t *testing.T, inner kvstore.Store, opts ...fixtureOption) *plannerFixture {
	t.Helper()
	store := testutil.NewFailingStore(inner)
	repo := repository.NewKVPlanRepo(store, repository.Options{})
	reminders := &recordingScheduler{}
	observer := &recordingObserver{}
	deps := PlannerDeps{
		Reminders: reminders,
		Now:       func() time.Time { return fixedNow },
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return &plannerFixture{
		planner:   NewPlanner(repo, deps, observer),
		repo:      repo,
		store:     store,
		reminders: reminders,
		observer:  observer,
	}
}

// loaded returns a fixture whose planner has completed Load.
func loaded(t *testing.T, opts ...fixtureOption) *plannerFixture {
	t.Helper()
	f := newFixture(t, opts...)
	require.NoError(t, f.planner.Load(context.Background()))
	return f
}
