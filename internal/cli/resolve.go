package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/dayplanner/internal/domain"
)

// parseDate accepts YYYY-MM-DD, "today", "tomorrow", "yesterday" and
// signed day offsets such as "+2" or "-1".
func parseDate(input string, today domain.DateKey) (domain.DateKey, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	switch s {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	case "yesterday":
		return today.AddDays(-1), nil
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		if n, err := strconv.Atoi(s); err == nil {
			return today.AddDays(n), nil
		}
	}
	return domain.ParseDateKey(s)
}

// dateArg parses args[i] as a date, defaulting to today when absent.
func dateArg(args []string, i int, today domain.DateKey) (domain.DateKey, error) {
	if i >= len(args) {
		return today, nil
	}
	return parseDate(args[i], today)
}

// resolveTask finds a task by 1-based position, exact id, or unique id
// prefix.
func resolveTask(tasks []domain.Task, ref string) (domain.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.Task{}, fmt.Errorf("task reference is required")
	}

	// 1. Position in the list. Out-of-range numbers may still be an
	// all-digit id prefix.
	n, numErr := strconv.Atoi(ref)
	if numErr == nil && n >= 1 && n <= len(tasks) {
		return tasks[n-1], nil
	}

	// 2. Exact id
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
	}

	// 3. Id prefix
	var matches []domain.Task
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		if numErr == nil {
			return domain.Task{}, fmt.Errorf("no task #%d (the day has %d)", n, len(tasks))
		}
		return domain.Task{}, fmt.Errorf("task not found: %q", ref)
	case 1:
		return matches[0], nil
	default:
		return domain.Task{}, fmt.Errorf("task id prefix %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// resolveTasks resolves each reference; duplicates collapse.
func resolveTasks(tasks []domain.Task, refs []string) ([]string, error) {
	seen := make(map[string]bool, len(refs))
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		t, err := resolveTask(tasks, ref)
		if err != nil {
			return nil, err
		}
		if !seen[t.ID] {
			seen[t.ID] = true
			ids = append(ids, t.ID)
		}
	}
	return ids, nil
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
