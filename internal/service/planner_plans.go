package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/dayplanner/internal/domain"
)

// SavePlan replaces the tasks for date.
func (p *Planner) SavePlan(ctx context.Context, date domain.DateKey, tasks []domain.Task) (err error) {
	done := p.observe(ctx, "save-plan", map[string]any{"date": date.String(), "tasks": len(tasks)})
	defer done(&err)

	if err = p.ready(); err != nil {
		return err
	}
	return p.writeThenReload(ctx, func() error {
		return p.repo.SavePlan(ctx, date, tasks)
	}, func(plans domain.Plans) {
		plans[date] = domain.CloneTasks(tasks)
	})
}

func (p *Planner) DeletePlan(ctx context.Context, date domain.DateKey) (err error) {
	done := p.observe(ctx, "delete-plan", map[string]any{"date": date.String()})
	defer done(&err)

	if err = p.ready(); err != nil {
		return err
	}
	return p.writeThenReload(ctx, func() error {
		return p.repo.DeletePlan(ctx, date)
	}, func(plans domain.Plans) {
		delete(plans, date)
	})
}

// UpdateTask merges patch into one task. Unknown dates or ids are no-ops.
func (p *Planner) UpdateTask(ctx context.Context, date domain.DateKey, taskID string, patch domain.TaskPatch) (err error) {
	done := p.observe(ctx, "update-task", map[string]any{"date": date.String(), "task_id": taskID})
	defer done(&err)

	if err = p.ready(); err != nil {
		return err
	}
	if patch.IsEmpty() {
		return nil
	}
	return p.writeThenReload(ctx, func() error {
		return p.repo.UpdateTask(ctx, date, taskID, patch)
	}, func(plans domain.Plans) {
		for i, t := range plans[date] {
			if t.ID == taskID {
				plans[date][i] = patch.Apply(t)
			}
		}
	})
}

// ToggleTask flips the done flag of one task.
func (p *Planner) ToggleTask(ctx context.Context, date domain.DateKey, taskID string) error {
	task, ok := p.findTask(date, taskID)
	if !ok {
		return p.ready()
	}
	return p.UpdateTask(ctx, date, taskID, domain.DonePatch(!task.Done))
}

// CyclePriority moves a task to its next priority.
func (p *Planner) CyclePriority(ctx context.Context, date domain.DateKey, taskID string) error {
	task, ok := p.findTask(date, taskID)
	if !ok {
		return p.ready()
	}
	return p.UpdateTask(ctx, date, taskID, domain.PriorityPatch(task.Priority.Next()))
}

// RemoveTask drops one task from the stored day. Unknown ids are no-ops.
func (p *Planner) RemoveTask(ctx context.Context, date domain.DateKey, taskID string) (err error) {
	done := p.observe(ctx, "remove-task", map[string]any{"date": date.String(), "task_id": taskID})
	defer done(&err)

	if err = p.ready(); err != nil {
		return err
	}
	return p.writeThenReload(ctx, func() error {
		return p.repo.RemoveTask(ctx, date, taskID)
	}, func(plans domain.Plans) {
		tasks, ok := plans[date]
		if !ok {
			return
		}
		kept := tasks[:0]
		for _, t := range tasks {
			if t.ID != taskID {
				kept = append(kept, t)
			}
		}
		plans[date] = kept
	})
}

// CopyPlan appends copies of the selected tasks of from onto to. An empty
// ids list copies every task. Copies are pending and get fresh ids.
func (p *Planner) CopyPlan(ctx context.Context, from, to domain.DateKey, ids []string) (copied int, err error) {
	done := p.observe(ctx, "copy-plan", map[string]any{"from": from.String(), "to": to.String()})
	defer done(&err)

	if err = p.ready(); err != nil {
		return 0, err
	}
	if from == to {
		return 0, fmt.Errorf("copy target must differ from source %s", from)
	}
	copies := domain.CopyTasks(p.Plan(from), ids)
	if len(copies) == 0 {
		return 0, nil
	}
	err = p.writeThenReload(ctx, func() error {
		return p.repo.AppendTasks(ctx, to, copies)
	}, func(plans domain.Plans) {
		plans[to] = append(plans[to], domain.CloneTasks(copies)...)
	})
	if err != nil {
		return 0, err
	}
	return len(copies), nil
}

// RefreshPlans replaces the in-memory plans with a fresh read.
func (p *Planner) RefreshPlans(ctx context.Context) (err error) {
	done := p.observe(ctx, "refresh-plans", nil)
	defer done(&err)

	if err = p.ready(); err != nil {
		return err
	}
	return p.reload(ctx)
}

// DeleteAll wipes every stored key and resets memory to defaults.
func (p *Planner) DeleteAll(ctx context.Context, confirmed bool) (err error) {
	done := p.observe(ctx, "delete-all", map[string]any{"confirmed": confirmed})
	defer done(&err)

	if err = p.ready(); err != nil {
		return err
	}
	if p.Settings().AskBeforeDeleteAll && !confirmed {
		return ErrConfirmationRequired
	}
	if err = p.repo.ClearAll(ctx); err != nil {
		return err
	}

	settings := domain.DefaultSettings()
	p.mu.Lock()
	p.plans = domain.Plans{}
	p.username = nil
	p.gender = domain.GenderMale
	p.settings = settings
	p.mu.Unlock()

	p.applyReminder(ctx, settings)
	return nil
}

// writeThenReload runs write and, on success, reloads all plans. A failed
// write leaves memory untouched. Once the write has landed, a failed reload
// is not reported: apply replays the change on the in-memory plans instead.
func (p *Planner) writeThenReload(ctx context.Context, write func() error, apply func(domain.Plans)) error {
	if err := write(); err != nil {
		return err
	}
	if err := p.reload(ctx); err != nil {
		p.log.WarnContext(ctx, "reload after write failed, applying change locally", "error", err)
		p.mu.Lock()
		apply(p.plans)
		p.mu.Unlock()
	}
	return nil
}

func (p *Planner) reload(ctx context.Context) error {
	p.reloadMu.Lock()
	defer p.reloadMu.Unlock()

	plans, err := p.repo.GetAllPlans(ctx)
	if err != nil {
		return fmt.Errorf("reloading plans: %w", err)
	}
	p.mu.Lock()
	p.plans = plans
	p.mu.Unlock()
	return nil
}

func (p *Planner) findTask(date domain.DateKey, taskID string) (domain.Task, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, t := range p.plans[date] {
		if t.ID == taskID {
			return t, true
		}
	}
	return domain.Task{}, false
}
