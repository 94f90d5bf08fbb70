package cli

import (
	"testing"

	"github.com/alexanderramin/dayplanner/internal/domain"
	"github.com/alexanderramin/dayplanner/internal/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newDayDriver loads the planner and opens the day view on date.
func newDayDriver(t *testing.T, env *testEnv, date domain.DateKey) *teatest.Driver {
	t.Helper()
	mustExec(t, env.app, "stats")
	d := teatest.New(t, newDayView(env.app.Planner, date), teatest.WithSize(100, 30))
	d.DrainInit()
	return d
}

func TestDayView_RendersTasks(t *testing.T) {
	env := testApp(t)
	mustExec(t, env.app, "plan", "save", "today", "Buy milk", "Gym")

	d := newDayDriver(t, env, "2025-06-01")
	d.RequireViewContains("TODAY · JUN 1, 2025")
	d.RequireViewContains("❯  1. ○ Buy milk")
	d.RequireViewContains("0/2 done")
}

func TestDayView_EmptyDay(t *testing.T) {
	env := testApp(t)
	d := newDayDriver(t, env, "2025-06-01")
	d.RequireViewContains("Nothing planned")
}

func TestDayView_ToggleAndCycle(t *testing.T) {
	env := testApp(t)
	mustExec(t, env.app, "plan", "save", "today", "A", "B")

	d := newDayDriver(t, env, "2025-06-01")
	d.PressKey('j')
	d.PressSpace()

	tasks := env.app.Planner.Plan("2025-06-01")
	assert.False(t, tasks[0].Done)
	assert.True(t, tasks[1].Done)
	d.RequireViewContains("1/2 done")

	d.PressKey('p')
	d.PressKey('p')
	assert.Equal(t, domain.PriorityMedium, env.app.Planner.Plan("2025-06-01")[1].Priority)
	d.RequireViewContains("● MEDIUM")
}

func TestDayView_RemoveClampsCursor(t *testing.T) {
	env := testApp(t)
	mustExec(t, env.app, "plan", "save", "today", "A", "B")

	d := newDayDriver(t, env, "2025-06-01")
	d.PressDown()
	d.PressDown()
	d.PressUp()
	d.PressDown()
	d.PressKey('x')

	tasks := env.app.Planner.Plan("2025-06-01")
	require.Len(t, tasks, 1)
	assert.Equal(t, "A", tasks[0].Title)
	d.RequireViewContains(`Removed "B"`)
	d.RequireViewContains("❯  1. ○ A")
}

func TestDayView_AddTask(t *testing.T) {
	env := testApp(t)
	d := newDayDriver(t, env, "2025-06-01")

	d.PressKey('a')
	d.Type("Call mom")
	d.PressEnter()

	tasks := env.app.Planner.Plan("2025-06-01")
	require.Len(t, tasks, 1)
	assert.Equal(t, "Call mom", tasks[0].Title)
	d.RequireViewContains(`Added "Call mom"`)

	d.PressKey('a')
	d.Type("ignored")
	d.PressEsc()
	assert.Len(t, env.app.Planner.Plan("2025-06-01"), 1)
}

func TestDayView_NavigatesDays(t *testing.T) {
	env := testApp(t)
	mustExec(t, env.app, "plan", "save", "tomorrow", "Later")

	d := newDayDriver(t, env, "2025-06-01")
	d.PressKey('l')
	d.RequireViewContains("TOMORROW · JUN 2, 2025")
	d.RequireViewContains("Later")

	d.PressLeft()
	d.PressLeft()
	d.RequireViewContains("YESTERDAY · MAY 31, 2025")

	d.PressKey('t')
	d.RequireViewContains("TODAY · JUN 1, 2025")

	d.PressRight()
	d.RequireViewContains("Later")
}

func TestDayView_Quit(t *testing.T) {
	env := testApp(t)
	d := newDayDriver(t, env, "2025-06-01")
	d.PressKey('q')
	assert.True(t, d.Quitting)

	d = newDayDriver(t, env, "2025-06-01")
	d.PressCtrlC()
	assert.True(t, d.Quitting)
}
