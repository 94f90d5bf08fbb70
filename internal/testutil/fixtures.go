package testutil

import (
	"fmt"
	"sync/atomic"

	"github.com/alexanderramin/dayplanner/internal/domain"
	"github.com/google/uuid"
)

var testTaskCounter atomic.Int64

// Task options
type TaskOption func(*domain.Task)

func WithPriority(p domain.Priority) TaskOption {
	return func(t *domain.Task) {
		t.Priority = p
	}
}

func WithDone() TaskOption {
	return func(t *domain.Task) {
		t.Done = true
	}
}

func WithID(id string) TaskOption {
	return func(t *domain.Task) {
		t.ID = id
	}
}

// NewTestTask builds a valid undone task. An empty title gets a numbered one.
func NewTestTask(title string, opts ...TaskOption) domain.Task {
	if title == "" {
		title = fmt.Sprintf("Task %d", testTaskCounter.Add(1))
	}
	t := domain.Task{
		ID:    uuid.New().String(),
		Title: title,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// NewTestTasks builds n default tasks.
func NewTestTasks(n int) []domain.Task {
	tasks := make([]domain.Task, n)
	for i := range tasks {
		tasks[i] = NewTestTask("")
	}
	return tasks
}

// NewTestPlans builds a Plans with n default tasks on each given date.
func NewTestPlans(n int, dates ...domain.DateKey) domain.Plans {
	plans := make(domain.Plans, len(dates))
	for _, d := range dates {
		plans[d] = NewTestTasks(n)
	}
	return plans
}
