package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/dayplanner/internal/domain"
	"github.com/alexanderramin/dayplanner/internal/intelligence"
	"github.com/alexanderramin/dayplanner/internal/notify"
	"github.com/alexanderramin/dayplanner/internal/repository"
	"github.com/alexanderramin/dayplanner/internal/share"
)

// State is the planner lifecycle stage.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// PlannerDeps holds the optional collaborators of a Planner.
type PlannerDeps struct {
	Reminders notify.Scheduler
	Tasks     intelligence.TaskExtractor
	Now       func() time.Time
	Logger    *slog.Logger
}

// Planner keeps the in-memory application state and routes every change
// through the repository. Mutations write first and then reload; a failed
// write leaves memory at its last-known-good value.
type Planner struct {
	repo      repository.PlanRepo
	reminders notify.Scheduler
	tasks     intelligence.TaskExtractor
	now       func() time.Time
	log       *slog.Logger
	observer  UseCaseObserver

	// reloadMu orders reloads so memory ends at the latest read.
	reloadMu sync.Mutex

	mu       sync.RWMutex
	state    State
	plans    domain.Plans
	username *string
	gender   domain.Gender
	settings domain.Settings
}

func NewPlanner(repo repository.PlanRepo, deps PlannerDeps, observers ...UseCaseObserver) *Planner {
	if deps.Reminders == nil {
		deps.Reminders = notify.NoopScheduler{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	return &Planner{
		repo:      repo,
		reminders: deps.Reminders,
		tasks:     deps.Tasks,
		now:       deps.Now,
		log:       deps.Logger,
		observer:  useCaseObserverOrNoop(observers),
		plans:     domain.Plans{},
		gender:    domain.GenderMale,
		settings:  domain.DefaultSettings(),
	}
}

func (p *Planner) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Planner) IsLoading() bool {
	return p.State() == StateLoading
}

// Load reads plans, username, gender and settings concurrently. A failed
// read is logged and replaced by its default, so Load always ends Ready.
// The stored reminder is applied once loading finishes.
func (p *Planner) Load(ctx context.Context) (err error) {
	done := p.observe(ctx, "load", nil)
	defer done(&err)

	p.mu.Lock()
	p.state = StateLoading
	p.mu.Unlock()

	var (
		wg       sync.WaitGroup
		plans    domain.Plans
		username string
		hasName  bool
		gender   domain.Gender
		settings domain.Settings
	)
	wg.Add(4)
	go func() {
		defer wg.Done()
		var e error
		if plans, e = p.repo.GetAllPlans(ctx); e != nil {
			p.log.WarnContext(ctx, "loading plans failed", "error", e)
			plans = domain.Plans{}
		}
	}()
	go func() {
		defer wg.Done()
		var e error
		if username, hasName, e = p.repo.GetUserName(ctx); e != nil {
			p.log.WarnContext(ctx, "loading username failed", "error", e)
			hasName = false
		}
	}()
	go func() {
		defer wg.Done()
		var e error
		if gender, e = p.repo.GetGender(ctx); e != nil {
			p.log.WarnContext(ctx, "loading gender failed", "error", e)
			gender = domain.GenderMale
		}
	}()
	go func() {
		defer wg.Done()
		var e error
		if settings, e = p.repo.GetSettings(ctx); e != nil {
			p.log.WarnContext(ctx, "loading settings failed", "error", e)
			settings = domain.DefaultSettings()
		}
	}()
	wg.Wait()

	p.mu.Lock()
	p.plans = plans
	p.username = nil
	if hasName {
		p.username = &username
	}
	p.gender = gender
	p.settings = settings
	p.state = StateReady
	p.mu.Unlock()

	p.applyReminder(ctx, settings)
	return nil
}

// Close cancels any scheduled reminder.
func (p *Planner) Close() error {
	return p.reminders.CancelAll()
}

func (p *Planner) ready() error {
	if p.State() != StateReady {
		return ErrNotReady
	}
	return nil
}

// Reads serve the in-memory snapshot and return copies. Before Load they
// return empty defaults.

func (p *Planner) Plans() domain.Plans {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.plans.Clone()
}

// Plan returns the tasks for date, or an empty list.
func (p *Planner) Plan(date domain.DateKey) []domain.Task {
	p.mu.RLock()
	defer p.mu.RUnlock()
	tasks := domain.CloneTasks(p.plans[date])
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks
}

func (p *Planner) Username() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.username == nil {
		return "", false
	}
	return *p.username, true
}

func (p *Planner) Gender() domain.Gender {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.gender
}

func (p *Planner) Settings() domain.Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings
}

func (p *Planner) Profile() domain.Profile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	prof := domain.Profile{Gender: p.gender}
	if p.username != nil {
		name := *p.username
		prof.Username = &name
	}
	return prof
}

func (p *Planner) Stats() domain.PlanStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return domain.Stats(p.plans)
}

// Completion is the weighted completion percentage for date.
func (p *Planner) Completion(date domain.DateKey) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return domain.WeightedCompletion(p.plans[date])
}

func (p *Planner) OccupiedDates() []domain.DateKey {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.plans.OccupiedDates()
}

// FirstEmptyDate is the first day from today without tasks.
func (p *Planner) FirstEmptyDate() domain.DateKey {
	today := p.Today()
	p.mu.RLock()
	defer p.mu.RUnlock()
	return domain.FirstEmptyDate(p.plans, today, 0)
}

// Surrounding lists the planned days around center, upcoming first.
func (p *Planner) Surrounding(center domain.DateKey) []domain.DateKey {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return domain.SurroundingDates(p.plans, center, domain.DefaultSurroundingDays)
}

func (p *Planner) Today() domain.DateKey {
	return domain.Today(p.now())
}

// ShareText renders date as plain text addressed from the current user.
func (p *Planner) ShareText(date domain.DateKey) string {
	owner, _ := p.Username()
	return share.FormatPlan(date, p.Plan(date), share.FormatOptions{Owner: owner})
}

// GenerateTasks asks the extractor for task titles. The planner state is
// never touched.
func (p *Planner) GenerateTasks(ctx context.Context, paragraph string) (titles []string, err error) {
	done := p.observe(ctx, "generate-tasks", map[string]any{"chars": len(paragraph)})
	defer done(&err)

	if p.tasks == nil {
		return nil, ErrAIUnavailable
	}
	titles, err = p.tasks.Extract(ctx, paragraph)
	if err != nil {
		return nil, err
	}
	return titles, nil
}
