package domain

import (
	"math"
	"sort"
)

// Plans maps a day to its ordered task list.
type Plans map[DateKey][]Task

// Clone deep-copies the mapping so callers cannot alias stored slices.
func (p Plans) Clone() Plans {
	out := make(Plans, len(p))
	for date, tasks := range p {
		out[date] = CloneTasks(tasks)
	}
	return out
}

// Dates returns every stored key in ascending order.
func (p Plans) Dates() []DateKey {
	dates := make([]DateKey, 0, len(p))
	for date := range p {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
	return dates
}

// OccupiedDates returns keys with at least one task, ascending.
func (p Plans) OccupiedDates() []DateKey {
	var dates []DateKey
	for _, date := range p.Dates() {
		if len(p[date]) > 0 {
			dates = append(dates, date)
		}
	}
	return dates
}

// HasPlan reports whether date holds at least one task.
func (p Plans) HasPlan(date DateKey) bool {
	return len(p[date]) > 0
}

func CloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}

// WeightedCompletion returns the priority-weighted done percentage, rounded.
func WeightedCompletion(tasks []Task) int {
	var doneWeight, totalWeight int
	for _, t := range tasks {
		w := t.Priority.Weight()
		totalWeight += w
		if t.Done {
			doneWeight += w
		}
	}
	if totalWeight == 0 {
		return 0
	}
	return int(math.Round(float64(doneWeight) / float64(totalWeight) * 100))
}

func CompletionCounts(tasks []Task) (done, total int) {
	for _, t := range tasks {
		if t.Done {
			done++
		}
	}
	return done, len(tasks)
}

// SortedByPriority returns a copy ordered heaviest first, stable within a weight.
func SortedByPriority(tasks []Task) []Task {
	out := CloneTasks(tasks)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Weight() > out[j].Priority.Weight()
	})
	return out
}

// DefaultEmptyDateHorizon bounds the forward search for a free day.
const DefaultEmptyDateHorizon = 365

// DefaultSurroundingDays is how many planned days an overview shows.
const DefaultSurroundingDays = 4

// FirstEmptyDate returns the first day on or after from with no tasks.
// If every day within maxDays is taken, from is returned.
func FirstEmptyDate(plans Plans, from DateKey, maxDays int) DateKey {
	if maxDays <= 0 {
		maxDays = DefaultEmptyDateHorizon
	}
	current := from
	for i := 0; i < maxDays; i++ {
		if !plans.HasPlan(current) {
			return current
		}
		current = current.AddDays(1)
	}
	return from
}

// SurroundingDates picks up to n occupied days around center: the nearest
// future days first, then the nearest past days.
func SurroundingDates(plans Plans, center DateKey, n int) []DateKey {
	if n <= 0 {
		n = DefaultSurroundingDays
	}
	var future, past []DateKey
	for _, date := range plans.OccupiedDates() {
		switch {
		case date > center:
			future = append(future, date)
		case date < center:
			past = append(past, date)
		}
	}
	sort.Slice(past, func(i, j int) bool { return past[i] > past[j] })

	selected := future
	if len(selected) < n {
		need := n - len(selected)
		if need > len(past) {
			need = len(past)
		}
		selected = append(selected, past[:need]...)
	}
	if len(selected) > n {
		selected = selected[:n]
	}
	return selected
}

// CopyTasks returns the tasks whose id is in ids (all of them when ids is
// empty) with fresh ids and done cleared, in source order.
func CopyTasks(tasks []Task, ids []string) []Task {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if len(want) > 0 && !want[t.ID] {
			continue
		}
		t.ID = NewTaskID()
		t.Done = false
		out = append(out, t)
	}
	return out
}

type PlanStats struct {
	TotalPlans     int
	TotalTasks     int
	CompletedTasks int
}

// CompletionPct is the unweighted share of completed tasks, 0-100.
func (s PlanStats) CompletionPct() int {
	if s.TotalTasks == 0 {
		return 0
	}
	return int(math.Round(float64(s.CompletedTasks) / float64(s.TotalTasks) * 100))
}

func Stats(plans Plans) PlanStats {
	stats := PlanStats{TotalPlans: len(plans)}
	for _, tasks := range plans {
		done, total := CompletionCounts(tasks)
		stats.TotalTasks += total
		stats.CompletedTasks += done
	}
	return stats
}
