package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alexanderramin/dayplanner/internal/domain"
	"github.com/alexanderramin/dayplanner/internal/kvstore"
)

// Options configures a KVPlanRepo.
type Options struct {
	// Strict surfaces unreadable stored values as ErrCorruptData instead
	// of falling back to empty data.
	Strict bool
	Logger *slog.Logger
}

// KVPlanRepo implements PlanRepo on a kvstore.Store. The whole plans
// mapping lives under PlansKey.
type KVPlanRepo struct {
	store  kvstore.Store
	strict bool
	log    *slog.Logger

	// writeMu serializes read-modify-write cycles on the plans value.
	writeMu sync.Mutex
}

// NewKVPlanRepo creates a new KVPlanRepo.
func NewKVPlanRepo(store kvstore.Store, opts Options) *KVPlanRepo {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &KVPlanRepo{store: store, strict: opts.Strict, log: log.With("component", "repository")}
}

func (r *KVPlanRepo) GetAllPlans(ctx context.Context) (domain.Plans, error) {
	raw, ok, err := r.store.Get(ctx, PlansKey)
	if err != nil {
		return nil, fmt.Errorf("reading plans: %w", err)
	}
	if !ok {
		return domain.Plans{}, nil
	}
	plans, err := decodePlans(raw)
	if err != nil {
		if r.strict {
			return nil, fmt.Errorf("reading plans: %w: %v", ErrCorruptData, err)
		}
		r.log.Warn("discarding unreadable plans", "bytes", len(raw), "error", err)
		return domain.Plans{}, nil
	}
	return plans, nil
}

func (r *KVPlanRepo) GetPlan(ctx context.Context, date domain.DateKey) ([]domain.Task, error) {
	plans, err := r.GetAllPlans(ctx)
	if err != nil {
		return nil, err
	}
	tasks, ok := plans[date]
	if !ok {
		return []domain.Task{}, nil
	}
	return tasks, nil
}

func (r *KVPlanRepo) SavePlan(ctx context.Context, date domain.DateKey, tasks []domain.Task) error {
	if err := validatePlan(date, tasks); err != nil {
		return err
	}
	return r.mutate(ctx, func(plans domain.Plans) (bool, error) {
		plans[date] = nonNil(domain.CloneTasks(tasks))
		return true, nil
	})
}

// DeletePlan removes the date entirely. Deleting an absent date succeeds.
func (r *KVPlanRepo) DeletePlan(ctx context.Context, date domain.DateKey) error {
	if !date.IsValid() {
		return fmt.Errorf("%w: %w", ErrValidation, domain.ErrInvalidDate)
	}
	return r.mutate(ctx, func(plans domain.Plans) (bool, error) {
		if _, ok := plans[date]; !ok {
			return false, nil
		}
		delete(plans, date)
		return true, nil
	})
}

// UpdateTask merges patch into the task with taskID on date. An unknown
// date or id leaves storage untouched and is not an error.
func (r *KVPlanRepo) UpdateTask(ctx context.Context, date domain.DateKey, taskID string, patch domain.TaskPatch) error {
	if !date.IsValid() {
		return fmt.Errorf("%w: %w", ErrValidation, domain.ErrInvalidDate)
	}
	return r.mutate(ctx, func(plans domain.Plans) (bool, error) {
		tasks := plans[date]
		changed := false
		for i, t := range tasks {
			if t.ID != taskID {
				continue
			}
			updated := patch.Apply(t)
			if err := updated.Validate(); err != nil {
				return false, fmt.Errorf("%w: %w", ErrValidation, err)
			}
			tasks[i] = updated
			changed = true
		}
		return changed, nil
	})
}

// RemoveTask drops the task with taskID from date. An unknown date or id
// is a no-op. A day whose last task is removed stays as an empty list.
func (r *KVPlanRepo) RemoveTask(ctx context.Context, date domain.DateKey, taskID string) error {
	if !date.IsValid() {
		return fmt.Errorf("%w: %w", ErrValidation, domain.ErrInvalidDate)
	}
	return r.mutate(ctx, func(plans domain.Plans) (bool, error) {
		tasks, ok := plans[date]
		if !ok {
			return false, nil
		}
		kept := make([]domain.Task, 0, len(tasks))
		for _, t := range tasks {
			if t.ID != taskID {
				kept = append(kept, t)
			}
		}
		if len(kept) == len(tasks) {
			return false, nil
		}
		plans[date] = kept
		return true, nil
	})
}

// AppendTasks adds tasks after whatever date holds in storage at write
// time, creating the date if needed.
func (r *KVPlanRepo) AppendTasks(ctx context.Context, date domain.DateKey, tasks []domain.Task) error {
	if err := validatePlan(date, tasks); err != nil {
		return err
	}
	if len(tasks) == 0 {
		return nil
	}
	return r.mutate(ctx, func(plans domain.Plans) (bool, error) {
		merged := append(nonNil(plans[date]), domain.CloneTasks(tasks)...)
		if err := validatePlan(date, merged); err != nil {
			return false, err
		}
		plans[date] = merged
		return true, nil
	})
}

// mutate runs one locked read-modify-write of the plans value. fn reports
// whether it changed anything; unchanged mappings are not written back and
// an fn error aborts without writing.
func (r *KVPlanRepo) mutate(ctx context.Context, fn func(domain.Plans) (bool, error)) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	plans, err := r.GetAllPlans(ctx)
	if err != nil {
		return err
	}
	changed, err := fn(plans)
	if err != nil || !changed {
		return err
	}
	raw, err := encodePlans(plans)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, PlansKey, raw); err != nil {
		return fmt.Errorf("writing plans: %w", err)
	}
	return nil
}

func (r *KVPlanRepo) ClearAll(ctx context.Context) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if err := r.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing data: %w", err)
	}
	return nil
}

func validatePlan(date domain.DateKey, tasks []domain.Task) error {
	if !date.IsValid() {
		return fmt.Errorf("%w: %w", ErrValidation, domain.ErrInvalidDate)
	}
	seen := make(map[string]bool, len(tasks))
	for i, t := range tasks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%w: task %d: %w", ErrValidation, i+1, err)
		}
		if seen[t.ID] {
			return fmt.Errorf("%w: duplicate task id %q", ErrValidation, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

func decodePlans(raw string) (domain.Plans, error) {
	if err := validatePlansShape(raw); err != nil {
		return nil, err
	}
	var plans domain.Plans
	if err := json.Unmarshal([]byte(raw), &plans); err != nil {
		return nil, err
	}
	if plans == nil {
		return nil, errors.New("plans value is null")
	}
	for date, tasks := range plans {
		for i := range tasks {
			if !tasks[i].Priority.IsValid() {
				tasks[i].Priority = domain.PriorityUnset
			}
		}
		plans[date] = nonNil(tasks)
	}
	return plans, nil
}

func encodePlans(plans domain.Plans) (string, error) {
	raw, err := json.Marshal(plans)
	if err != nil {
		return "", fmt.Errorf("encoding plans: %w", err)
	}
	return string(raw), nil
}

func nonNil(tasks []domain.Task) []domain.Task {
	if tasks == nil {
		return []domain.Task{}
	}
	return tasks
}
