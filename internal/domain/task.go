package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrEmptyTitle      = errors.New("task title is required")
	ErrInvalidPriority = errors.New("invalid task priority")
)

// Priority is a task's urgency. PriorityUnset is the explicit default
// variant for tasks stored without a priority field.
type Priority string

const (
	PriorityUnset  Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityUnset, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Weight is the priority's contribution to weighted completion.
// Unset counts the same as low.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

// Next cycles low -> medium -> high -> low. Unset enters the cycle at low.
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityLow
	}
}

// Label returns a display name; unset renders as "low".
func (p Priority) Label() string {
	if p == PriorityUnset {
		return string(PriorityLow)
	}
	return string(p)
}

// ParsePriority accepts low, medium, high (any case) and the empty string.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return PriorityUnset, fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return p, nil
}

type Task struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Done     bool     `json:"done"`
	Priority Priority `json:"priority,omitempty"`
}

// NewTask creates an undone task with a fresh id.
func NewTask(title string, priority Priority) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}
	if !priority.IsValid() {
		return Task{}, fmt.Errorf("%w: %q", ErrInvalidPriority, priority)
	}
	return Task{
		ID:       NewTaskID(),
		Title:    title,
		Priority: priority,
	}, nil
}

// NewTaskID returns an opaque unique task id.
func NewTaskID() string {
	return uuid.New().String()
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	return nil
}

// TaskPatch holds the fields to overwrite on a task. Nil fields are kept.
type TaskPatch struct {
	Title    *string
	Done     *bool
	Priority *Priority
}

// Apply returns t with the patch merged in. The id is never changed.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Done != nil {
		t.Done = *p.Done
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	return t
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Done == nil && p.Priority == nil
}

// DonePatch is the patch used by toggling.
func DonePatch(done bool) TaskPatch {
	return TaskPatch{Done: &done}
}

func PriorityPatch(p Priority) TaskPatch {
	return TaskPatch{Priority: &p}
}
