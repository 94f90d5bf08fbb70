package intelligence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alexanderramin/dayplanner/internal/llm"
)

const (
	// MaxTasks caps how many titles one extraction returns.
	MaxTasks = 10
	// MaxTitleLen is the rune limit for a single extracted title.
	MaxTitleLen = 100
)

var (
	ErrEmptyParagraph = errors.New("paragraph is empty")
	ErrNoTasks        = errors.New("no tasks found in paragraph")
)

// TaskExtractor turns free-form text into task titles.
type TaskExtractor interface {
	Extract(ctx context.Context, paragraph string) ([]string, error)
}

// taskList accepts either {"tasks": [...]} or a bare [...] array.
type taskList []string

func (l *taskList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = arr
		return nil
	}
	var obj struct {
		Tasks []string `json:"tasks"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.Tasks == nil {
		return errors.New(`missing "tasks" array`)
	}
	*l = obj.Tasks
	return nil
}

type taskExtractor struct {
	client llm.LLMClient
}

// NewTaskExtractor creates a TaskExtractor backed by an LLM client.
func NewTaskExtractor(client llm.LLMClient) TaskExtractor {
	return &taskExtractor{client: client}
}

func (e *taskExtractor) Extract(ctx context.Context, paragraph string) ([]string, error) {
	paragraph = strings.TrimSpace(paragraph)
	if paragraph == "" {
		return nil, ErrEmptyParagraph
	}

	resp, err := e.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskExtractTasks,
		SystemPrompt: extractTasksSystemPrompt,
		UserPrompt:   paragraph,
		JSON:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("llm task extraction failed: %w", err)
	}

	list, err := llm.ExtractJSON[taskList](resp.Text, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to extract task list: %w", err)
	}

	titles := normalizeTitles(list)
	if len(titles) == 0 {
		return nil, ErrNoTasks
	}
	return titles, nil
}

// normalizeTitles trims, drops blanks, truncates and caps the list.
func normalizeTitles(raw []string) []string {
	titles := make([]string, 0, len(raw))
	for _, title := range raw {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		titles = append(titles, truncate(title, MaxTitleLen))
		if len(titles) == MaxTasks {
			break
		}
	}
	return titles
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n]))
}
