package domain

// Draft is the unsaved task list a user builds before saving a day.
type Draft struct {
	tasks []Task
}

func NewDraft(tasks ...Task) *Draft {
	return &Draft{tasks: CloneTasks(tasks)}
}

// Add appends a new task; blank titles are rejected.
func (d *Draft) Add(title string, priority Priority) (Task, error) {
	t, err := NewTask(title, priority)
	if err != nil {
		return Task{}, err
	}
	d.tasks = append(d.tasks, t)
	return t, nil
}

// AddTitles appends one unset-priority task per non-blank title and
// returns how many were added.
func (d *Draft) AddTitles(titles []string) int {
	added := 0
	for _, title := range titles {
		if _, err := d.Add(title, PriorityUnset); err == nil {
			added++
		}
	}
	return added
}

func (d *Draft) Remove(id string) bool {
	for i, t := range d.tasks {
		if t.ID == id {
			d.tasks = append(d.tasks[:i], d.tasks[i+1:]...)
			return true
		}
	}
	return false
}

func (d *Draft) CyclePriority(id string) bool {
	for i, t := range d.tasks {
		if t.ID == id {
			d.tasks[i].Priority = t.Priority.Next()
			return true
		}
	}
	return false
}

func (d *Draft) Tasks() []Task {
	return CloneTasks(d.tasks)
}

func (d *Draft) Len() int {
	return len(d.tasks)
}

func (d *Draft) Reset() {
	d.tasks = nil
}
