package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/dayplanner/internal/domain"
	"github.com/alexanderramin/dayplanner/internal/intelligence"
	"github.com/alexanderramin/dayplanner/internal/kvstore"
	"github.com/alexanderramin/dayplanner/internal/repository"
	"github.com/alexanderramin/dayplanner/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanner_RejectsMutationsBeforeLoad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, StateUninitialized, f.planner.State())
	assert.False(t, f.planner.IsLoading())
	assert.ErrorIs(t, f.planner.SavePlan(ctx, today, testutil.NewTestTasks(1)), ErrNotReady)
	assert.ErrorIs(t, f.planner.SetUsername(ctx, "Ada"), ErrNotReady)
	assert.ErrorIs(t, f.planner.RefreshPlans(ctx), ErrNotReady)
	_, err := f.planner.UpdateSettings(ctx, domain.SettingsPatch{})
	assert.ErrorIs(t, err, ErrNotReady)

	assert.Empty(t, f.planner.Plans())
	assert.Equal(t, domain.DefaultSettings(), f.planner.Settings())
	assert.Zero(t, f.store.Writes())
}

func TestPlanner_LoadRestoresStoredState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tasks := []domain.Task{testutil.NewTestTask("Buy milk", testutil.WithPriority(domain.PriorityHigh))}
	require.NoError(t, f.repo.SavePlan(ctx, today, tasks))
	require.NoError(t, f.repo.SaveUserName(ctx, "Ada"))
	require.NoError(t, f.repo.SaveGender(ctx, domain.GenderFemale))
	settings := domain.DefaultSettings()
	settings.NotificationTime = "21:15"
	require.NoError(t, f.repo.SaveSettings(ctx, settings))

	require.NoError(t, f.planner.Load(ctx))

	assert.Equal(t, StateReady, f.planner.State())
	assert.Equal(t, tasks, f.planner.Plan(today))
	name, ok := f.planner.Username()
	assert.True(t, ok)
	assert.Equal(t, "Ada", name)
	assert.Equal(t, domain.GenderFemale, f.planner.Gender())
	assert.Equal(t, settings, f.planner.Settings())

	at, ok := f.reminders.last()
	require.True(t, ok)
	assert.Equal(t, domain.ClockTime{Hour: 21, Minute: 15}, at)
}

func TestPlanner_LoadFallsBackToDefaultsOnReadFailure(t *testing.T) {
	f := newFixture(t)
	f.store.FailReads(true)

	require.NoError(t, f.planner.Load(context.Background()))

	assert.Equal(t, StateReady, f.planner.State())
	assert.Empty(t, f.planner.Plans())
	_, ok := f.planner.Username()
	assert.False(t, ok)
	assert.Equal(t, domain.GenderMale, f.planner.Gender())
	assert.Equal(t, domain.DefaultSettings(), f.planner.Settings())
}

func TestPlanner_LoadPartialFailureKeepsOtherValues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.SaveUserName(ctx, "Ada"))
	require.NoError(t, f.repo.SavePlan(ctx, today, testutil.NewTestTasks(2)))
	f.store.FailKey(repository.PlansKey)

	require.NoError(t, f.planner.Load(ctx))

	assert.Empty(t, f.planner.Plans())
	name, _ := f.planner.Username()
	assert.Equal(t, "Ada", name)
}

func TestPlanner_SavePlanReloadsFromStorage(t *testing.T) {
	f := loaded(t)
	ctx := context.Background()
	tasks := testutil.NewTestTasks(3)

	require.NoError(t, f.planner.SavePlan(ctx, today, tasks))

	assert.Equal(t, tasks, f.planner.Plan(today))
	stored, err := f.repo.GetPlan(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, stored, f.planner.Plan(today))
}

func TestPlanner_FailedWriteLeavesMemoryUntouched(t *testing.T) {
	f := loaded(t)
	ctx := context.Background()
	original := testutil.NewTestTasks(1)
	require.NoError(t, f.planner.SavePlan(ctx, today, original))

	f.store.FailWrites(true)
	err := f.planner.SavePlan(ctx, today, testutil.NewTestTasks(4))
	assert.ErrorIs(t, err, testutil.ErrInjected)
	assert.Equal(t, original, f.planner.Plan(today))

	err = f.planner.ToggleTask(ctx, today, original[0].ID)
	assert.ErrorIs(t, err, testutil.ErrInjected)
	assert.False(t, f.planner.Plan(today)[0].Done)

	err = f.planner.SetUsername(ctx, "Ada")
	assert.ErrorIs(t, err, testutil.ErrInjected)
	_, ok := f.planner.Username()
	assert.False(t, ok)
}

func TestPlanner_ValidationErrorSkipsStorage(t *testing.T) {
	f := loaded(t)
	writes := f.store.Writes()

	err := f.planner.SavePlan(context.Background(), today, []domain.Task{{ID: "1", Title: "  "}})
	assert.ErrorIs(t, err, repository.ErrValidation)
	assert.Equal(t, writes, f.store.Writes())
}

func TestPlanner_TaskOperations(t *testing.T) {
	f := loaded(t)
	ctx := context.Background()
	a := testutil.NewTestTask("a", testutil.WithPriority(domain.PriorityLow))
	b := testutil.NewTestTask("b", testutil.WithPriority(domain.PriorityHigh))
	require.NoError(t, f.planner.SavePlan(ctx, today, []domain.Task{a, b}))

	require.NoError(t, f.planner.ToggleTask(ctx, today, a.ID))
	assert.True(t, f.planner.Plan(today)[0].Done)
	assert.Equal(t, 25, f.planner.Completion(today))

	require.NoError(t, f.planner.ToggleTask(ctx, today, a.ID))
	assert.False(t, f.planner.Plan(today)[0].Done)

	require.NoError(t, f.planner.CyclePriority(ctx, today, a.ID))
	assert.Equal(t, domain.PriorityMedium, f.planner.Plan(today)[0].Priority)

	require.NoError(t, f.planner.RemoveTask(ctx, today, a.ID))
	require.Len(t, f.planner.Plan(today), 1)
	assert.Equal(t, b.ID, f.planner.Plan(today)[0].ID)

	require.NoError(t, f.planner.DeletePlan(ctx, today))
	assert.Empty(t, f.planner.Plan(today))
	assert.NotContains(t, f.planner.Plans(), today)
}

func TestPlanner_UnknownTaskIsNoOp(t *testing.T) {
	f := loaded(t)
	ctx := context.Background()
	require.NoError(t, f.planner.SavePlan(ctx, today, []domain.Task{testutil.NewTestTask("kept", testutil.WithID("known"))}))
	writes := f.store.Writes()

	assert.NoError(t, f.planner.ToggleTask(ctx, today, "missing"))
	assert.NoError(t, f.planner.CyclePriority(ctx, "2025-07-01", "missing"))
	assert.NoError(t, f.planner.RemoveTask(ctx, today, "missing"))
	assert.NoError(t, f.planner.UpdateTask(ctx, "2025-07-01", "missing", domain.DonePatch(true)))
	assert.Equal(t, writes, f.store.Writes())
	assert.NotContains(t, f.planner.Plans(), domain.DateKey("2025-07-01"))
	assert.Equal(t, "known", f.planner.Plan(today)[0].ID)
	assert.False(t, f.planner.Plan(today)[0].Done)
}

func TestPlanner_CopyPlan(t *testing.T) {
	f := loaded(t)
	ctx := context.Background()
	src := []domain.Task{
		testutil.NewTestTask("a", testutil.WithDone()),
		testutil.NewTestTask("b"),
	}
	existing := testutil.NewTestTask("existing")
	require.NoError(t, f.planner.SavePlan(ctx, today, src))
	require.NoError(t, f.planner.SavePlan(ctx, "2025-06-02", []domain.Task{existing}))

	n, err := f.planner.CopyPlan(ctx, today, "2025-06-02", []string{src[0].ID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	target := f.planner.Plan("2025-06-02")
	require.Len(t, target, 2)
	assert.Equal(t, existing, target[0])
	assert.Equal(t, "a", target[1].Title)
	assert.False(t, target[1].Done)
	assert.NotEqual(t, src[0].ID, target[1].ID)

	_, err = f.planner.CopyPlan(ctx, today, today, nil)
	assert.Error(t, err)

	n, err = f.planner.CopyPlan(ctx, "2025-05-01", today, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPlanner_RefreshPlansPicksUpExternalWrites(t *testing.T) {
	f := loaded(t)
	ctx := context.Background()
	require.NoError(t, f.repo.SavePlan(ctx, "2025-06-03", testutil.NewTestTasks(2)))
	assert.Empty(t, f.planner.Plans())

	require.NoError(t, f.planner.RefreshPlans(ctx))
	assert.Len(t, f.planner.Plan("2025-06-03"), 2)
}

func TestPlanner_DerivedReads(t *testing.T) {
	f := loaded(t)
	ctx := context.Background()
	require.NoError(t, f.planner.SavePlan(ctx, today, testutil.NewTestTasks(1)))
	require.NoError(t, f.planner.SavePlan(ctx, "2025-06-02", []domain.Task{testutil.NewTestTask("", testutil.WithDone())}))
	require.NoError(t, f.planner.SavePlan(ctx, "2025-05-20", testutil.NewTestTasks(1)))

	assert.Equal(t, domain.DateKey("2025-06-03"), f.planner.FirstEmptyDate())
	assert.Equal(t, []domain.DateKey{"2025-05-20", "2025-06-01", "2025-06-02"}, f.planner.OccupiedDates())
	assert.Equal(t, []domain.DateKey{"2025-06-02", "2025-05-20"}, f.planner.Surrounding(today))
	assert.Equal(t, domain.PlanStats{TotalPlans: 3, TotalTasks: 3, CompletedTasks: 1}, f.planner.Stats())
	assert.Equal(t, today, f.planner.Today())
}

func TestPlanner_ReadsReturnCopies(t *testing.T) {
	f := loaded(t)
	ctx := context.Background()
	require.NoError(t, f.planner.SavePlan(ctx, today, []domain.Task{testutil.NewTestTask("keep")}))

	plans := f.planner.Plans()
	plans[today][0].Title = "mutated"
	f.planner.Plan(today)[0].Title = "mutated"

	assert.Equal(t, "keep", f.planner.Plan(today)[0].Title)
}

func TestPlanner_SetUsername(t *testing.T) {
	f := loaded(t)
	ctx := context.Background()

	require.NoError(t, f.planner.SetUsername(ctx, "  Ada  "))
	name, ok := f.planner.Username()
	assert.True(t, ok)
	assert.Equal(t, "Ada", name)

	stored, _, err := f.repo.GetUserName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada", stored)

	err = f.planner.SetUsername(ctx, "   ")
	assert.ErrorIs(t, err, repository.ErrValidation)
	name, _ = f.planner.Username()
	assert.Equal(t, "Ada", name)
}

func TestPlanner_SetGender(t *testing.T) {
	f := loaded(t)
	ctx := context.Background()

	require.NoError(t, f.planner.SetGender(ctx, domain.GenderFemale))
	assert.Equal(t, domain.GenderFemale, f.planner.Gender())

	assert.ErrorIs(t, f.planner.SetGender(ctx, "other"), repository.ErrValidation)
	assert.Equal(t, domain.GenderFemale, f.planner.Gender())
}

func TestPlanner_UpdateSettingsMergesAndReschedules(t *testing.T) {
	f := loaded(t)
	ctx := context.Background()

	dark := true
	got, err := f.planner.UpdateSettings(ctx, domain.SettingsPatch{DarkMode: &dark})
	require.NoError(t, err)
	assert.True(t, got.DarkMode)
	assert.True(t, got.AskBeforeDeleteAll)
	assert.Equal(t, got, f.planner.Settings())
	scheduledAfterLoad := len(f.reminders.scheduled)

	at := "19:45"
	_, err = f.planner.UpdateSettings(ctx, domain.SettingsPatch{NotificationTime: &at})
	require.NoError(t, err)
	last, _ := f.reminders.last()
	assert.Equal(t, domain.ClockTime{Hour: 19, Minute: 45}, last)
	assert.Len(t, f.reminders.scheduled, scheduledAfterLoad+1)

	off := false
	_, err = f.planner.UpdateSettings(ctx, domain.SettingsPatch{NotificationsEnabled: &off})
	require.NoError(t, err)
	assert.Equal(t, 1, f.reminders.cancelCount())

	stored, err := f.repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Settings{
		AskBeforeDeleteAll:   true,
		DarkMode:             true,
		NotificationsEnabled: false,
		NotificationTime:     "19:45",
	}, stored)
}

func TestPlanner_UpdateSettingsRejectsBadTime(t *testing.T) {
	f := loaded(t)
	writes := f.store.Writes()

	bad := "25:00"
	_, err := f.planner.UpdateSettings(context.Background(), domain.SettingsPatch{NotificationTime: &bad})
	assert.ErrorIs(t, err, repository.ErrValidation)
	assert.ErrorIs(t, err, domain.ErrInvalidTime)
	assert.Equal(t, domain.DefaultSettings(), f.planner.Settings())
	assert.Equal(t, writes, f.store.Writes())
}

func TestPlanner_UpdateSettingsStoresPaddedTime(t *testing.T) {
	f := loaded(t)
	ctx := context.Background()

	for _, tc := range []struct{ in, want string }{
		{"8:5", "08:05"},
		{" 7:30 ", "07:30"},
	} {
		at := tc.in
		got, err := f.planner.UpdateSettings(ctx, domain.SettingsPatch{NotificationTime: &at})
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got.NotificationTime)

		stored, err := f.repo.GetSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, tc.want, stored.NotificationTime)
	}

	signed := "+8:-0"
	_, err := f.planner.UpdateSettings(ctx, domain.SettingsPatch{NotificationTime: &signed})
	assert.ErrorIs(t, err, domain.ErrInvalidTime)
	assert.Equal(t, "07:30", f.planner.Settings().NotificationTime)
}

func TestPlanner_SaveProfile(t *testing.T) {
	f := loaded(t)
	ctx := context.Background()
	name := " Grace "
	settings := domain.DefaultSettings()
	settings.NotificationsEnabled = false

	require.NoError(t, f.planner.SaveProfile(ctx, domain.Profile{Username: &name, Gender: domain.GenderFemale}, settings))

	prof := f.planner.Profile()
	require.NotNil(t, prof.Username)
	assert.Equal(t, "Grace", *prof.Username)
	assert.Equal(t, domain.GenderFemale, prof.Gender)
	assert.Equal(t, settings, f.planner.Settings())
	assert.Equal(t, 1, f.reminders.cancelCount())
}

func TestPlanner_SyncReminderPicksUpExternalSettings(t *testing.T) {
	f := loaded(t)
	ctx := context.Background()
	before := len(f.reminders.scheduled)

	require.NoError(t, f.planner.SyncReminder(ctx))
	assert.Len(t, f.reminders.scheduled, before, "unchanged settings do not reschedule")

	changed := domain.DefaultSettings()
	changed.NotificationTime = "06:30"
	require.NoError(t, f.repo.SaveSettings(ctx, changed))

	require.NoError(t, f.planner.SyncReminder(ctx))
	last, _ := f.reminders.last()
	assert.Equal(t, domain.ClockTime{Hour: 6, Minute: 30}, last)
	assert.Equal(t, changed, f.planner.Settings())
}

func TestPlanner_DeleteAllRequiresConfirmation(t *testing.T) {
	f := loaded(t)
	ctx := context.Background()
	require.NoError(t, f.planner.SavePlan(ctx, today, testutil.NewTestTasks(2)))
	require.NoError(t, f.planner.SetUsername(ctx, "Ada"))

	assert.ErrorIs(t, f.planner.DeleteAll(ctx, false), ErrConfirmationRequired)
	assert.Len(t, f.planner.Plan(today), 2)

	require.NoError(t, f.planner.DeleteAll(ctx, true))
	assert.Empty(t, f.planner.Plans())
	_, ok := f.planner.Username()
	assert.False(t, ok)

	stored, err := f.repo.GetAllPlans(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestPlanner_DeleteAllWithoutPrompt(t *testing.T) {
	f := loaded(t)
	ctx := context.Background()
	ask := false
	_, err := f.planner.UpdateSettings(ctx, domain.SettingsPatch{AskBeforeDeleteAll: &ask})
	require.NoError(t, err)
	require.NoError(t, f.planner.SavePlan(ctx, today, testutil.NewTestTasks(1)))

	require.NoError(t, f.planner.DeleteAll(ctx, false))
	assert.Empty(t, f.planner.Plans())
	assert.True(t, f.planner.Settings().AskBeforeDeleteAll, "settings reset to defaults")
}

func TestPlanner_GenerateTasks(t *testing.T) {
	ctx := context.Background()

	f := loaded(t, withExtractor(fakeExtractor{titles: []string{"Buy milk", "Call mom"}}))
	titles, err := f.planner.GenerateTasks(ctx, "buy milk and call mom")
	require.NoError(t, err)
	assert.Equal(t, []string{"Buy milk", "Call mom"}, titles)
	assert.Empty(t, f.planner.Plans())

	failing := loaded(t, withExtractor(fakeExtractor{err: intelligence.ErrNoTasks}))
	require.NoError(t, failing.planner.SavePlan(ctx, today, testutil.NewTestTasks(1)))
	_, err = failing.planner.GenerateTasks(ctx, "nothing")
	assert.ErrorIs(t, err, intelligence.ErrNoTasks)
	assert.Len(t, failing.planner.Plan(today), 1)

	unwired := loaded(t)
	_, err = unwired.planner.GenerateTasks(ctx, "anything")
	assert.ErrorIs(t, err, ErrAIUnavailable)
}

func TestPlanner_ShareText(t *testing.T) {
	f := loaded(t)
	ctx := context.Background()
	require.NoError(t, f.planner.SetUsername(ctx, "Ada"))
	require.NoError(t, f.planner.SavePlan(ctx, today, []domain.Task{
		{ID: "1", Title: "Buy milk", Done: true, Priority: domain.PriorityHigh},
		{ID: "2", Title: "Walk dog", Priority: domain.PriorityLow},
	}))

	assert.Equal(t,
		"Ada's plan for Jun 1, 2025\n\n1. [x] Buy milk (high)\n2. [ ] Walk dog (low)\n\n1/2 done, 75% weighted\n",
		f.planner.ShareText(today))
}

func TestPlanner_ReportsUseCases(t *testing.T) {
	f := loaded(t)
	ctx := context.Background()
	require.NoError(t, f.planner.SavePlan(ctx, today, testutil.NewTestTasks(1)))
	f.store.FailWrites(true)
	require.Error(t, f.planner.SavePlan(ctx, today, testutil.NewTestTasks(1)))

	events := f.observer.byName("save-plan")
	require.Len(t, events, 2)
	assert.True(t, events[0].Success)
	assert.False(t, events[1].Success)
	assert.ErrorIs(t, events[1].Err, testutil.ErrInjected)
	assert.Equal(t, "2025-06-01", events[0].Fields["date"])
	assert.Len(t, f.observer.byName("load"), 1)
}

func TestPlanner_ConcurrentMutationsAndReads(t *testing.T) {
	f := loaded(t)
	ctx := context.Background()
	tasks := testutil.NewTestTasks(10)
	require.NoError(t, f.planner.SavePlan(ctx, today, tasks))

	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(2)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, f.planner.UpdateTask(ctx, today, id, domain.DonePatch(true)))
		}(task.ID)
		go func() {
			defer wg.Done()
			_ = f.planner.Stats()
			_ = f.planner.Plan(today)
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, f.planner.Completion(today))
}

func TestPlanner_CloseCancelsReminder(t *testing.T) {
	f := loaded(t)
	require.NoError(t, f.planner.Close())
	assert.Equal(t, 1, f.reminders.cancelCount())
}

func TestPlanner_ReloadFailureAfterWriteAppliesChangeLocally(t *testing.T) {
	f := loaded(t)
	ctx := context.Background()
	a := testutil.NewTestTask("a")
	b := testutil.NewTestTask("b")
	require.NoError(t, f.planner.SavePlan(ctx, today, []domain.Task{a, b}))

	steps := map[string]func() error{
		"copy": func() error {
			n, err := f.planner.CopyPlan(ctx, today, "2025-06-02", nil)
			assert.Equal(t, 2, n)
			return err
		},
		"toggle": func() error { return f.planner.ToggleTask(ctx, today, a.ID) },
		"remove": func() error { return f.planner.RemoveTask(ctx, today, b.ID) },
		"save":   func() error { return f.planner.SavePlan(ctx, "2025-06-03", testutil.NewTestTasks(2)) },
		"delete": func() error { return f.planner.DeletePlan(ctx, "2025-06-02") },
	}
	for _, name := range []string{"copy", "toggle", "remove", "save", "delete"} {
		f.store.FailReadAfterNextWrite()
		require.NoError(t, steps[name](), name)

		stored, err := f.repo.GetAllPlans(ctx)
		require.NoError(t, err)
		assert.Equal(t, stored, f.planner.Plans(), "memory must match storage after %s", name)
	}

	assert.True(t, f.planner.Plan(today)[0].Done)
	assert.Len(t, f.planner.Plan(today), 1)
	assert.Len(t, f.planner.Plan("2025-06-03"), 2)
	assert.NotContains(t, f.planner.Plans(), domain.DateKey("2025-06-02"))
}

// slowWrites delays every Set so concurrent mutations overlap.
type slowWrites struct {
	kvstore.Store
}

func (s slowWrites) Set(ctx context.Context, key, value string) error {
	time.Sleep(time.Millisecond)
	return s.Store.Set(ctx, key, value)
}

func TestPlanner_ConcurrentRemovesAndCopies(t *testing.T) {
	f := newFixtureOver(t, slowWrites{kvstore.NewMemoryStore()})
	ctx := context.Background()
	require.NoError(t, f.planner.Load(ctx))

	tasks := testutil.NewTestTasks(10)
	require.NoError(t, f.planner.SavePlan(ctx, today, tasks))
	require.NoError(t, f.planner.SavePlan(ctx, "2025-05-31", testutil.NewTestTasks(1)))

	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(2)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, f.planner.RemoveTask(ctx, today, id))
		}(task.ID)
		go func() {
			defer wg.Done()
			_, err := f.planner.CopyPlan(ctx, "2025-05-31", "2025-06-02", nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := f.repo.GetAllPlans(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored[today], "removed tasks must not come back")
	assert.Len(t, stored["2025-06-02"], 10)
	assert.Equal(t, stored, f.planner.Plans())
}
