package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/dayplanner/internal/domain"
	"github.com/alexanderramin/dayplanner/internal/kvstore"
	"github.com/alexanderramin/dayplanner/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*KVPlanRepo, kvstore.Store) {
	t.Helper()
	store := testutil.NewTestStore(t)
	return NewKVPlanRepo(store, Options{}), store
}

func TestGetAllPlans_EmptyStore(t *testing.T) {
	repo, _ := newTestRepo(t)
	plans, err := repo.GetAllPlans(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, plans)
	assert.Empty(t, plans)
}

func TestSavePlan_RoundTripPreservesOrder(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	want := domain.Plans{
		"2025-06-01": {
			testutil.NewTestTask("first", testutil.WithPriority(domain.PriorityHigh)),
			testutil.NewTestTask("second", testutil.WithDone()),
			testutil.NewTestTask("third", testutil.WithPriority(domain.PriorityMedium)),
		},
		"2025-06-02": {testutil.NewTestTask("solo")},
		"2025-06-03": {},
	}
	for _, date := range want.Dates() {
		require.NoError(t, repo.SavePlan(ctx, date, want[date]))
	}

	got, err := repo.GetAllPlans(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSavePlan_FullReplace(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SavePlan(ctx, "2025-06-01", testutil.NewTestTasks(3)))
	replacement := []domain.Task{testutil.NewTestTask("only")}
	require.NoError(t, repo.SavePlan(ctx, "2025-06-01", replacement))

	got, err := repo.GetPlan(ctx, "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, replacement, got)
}

func TestSavePlan_StoresNilAsEmptyArray(t *testing.T) {
	repo, store := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SavePlan(ctx, "2025-06-01", nil))
	raw, ok, err := store.Get(ctx, PlansKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"2025-06-01":[]}`, raw)
}

func TestSavePlan_ValidationSkipsStorage(t *testing.T) {
	fs := testutil.NewFailingStore(nil)
	repo := NewKVPlanRepo(fs, Options{})
	ctx := context.Background()

	err := repo.SavePlan(ctx, "2025-13-01", testutil.NewTestTasks(1))
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	err = repo.SavePlan(ctx, "2025-06-01", []domain.Task{{ID: "1", Title: "  "}})
	assert.ErrorIs(t, err, ErrValidation)

	dup := testutil.NewTestTask("a")
	err = repo.SavePlan(ctx, "2025-06-01", []domain.Task{dup, dup})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, 0, fs.Writes())
}

func TestGetPlan_MissingDateIsEmpty(t *testing.T) {
	repo, _ := newTestRepo(t)
	got, err := repo.GetPlan(context.Background(), "2030-01-01")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDeletePlan_Idempotent(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SavePlan(ctx, "2025-06-01", testutil.NewTestTasks(1)))
	require.NoError(t, repo.SavePlan(ctx, "2025-06-02", testutil.NewTestTasks(1)))

	require.NoError(t, repo.DeletePlan(ctx, "2025-06-01"))
	once, err := repo.GetAllPlans(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.DeletePlan(ctx, "2025-06-01"))
	twice, err := repo.GetAllPlans(ctx)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.NotContains(t, twice, domain.DateKey("2025-06-01"))
	assert.Contains(t, twice, domain.DateKey("2025-06-02"))
}

func TestUpdateTask_PartialIsolation(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	tasks := []domain.Task{
		{ID: "a", Title: "Alpha", Priority: domain.PriorityHigh},
		{ID: "b", Title: "Beta", Priority: domain.PriorityMedium},
		{ID: "c", Title: "Gamma"},
	}
	require.NoError(t, repo.SavePlan(ctx, "2025-06-01", tasks))
	require.NoError(t, repo.SavePlan(ctx, "2025-06-02", []domain.Task{{ID: "b", Title: "Other day"}}))

	require.NoError(t, repo.UpdateTask(ctx, "2025-06-01", "b", domain.DonePatch(true)))

	got, err := repo.GetAllPlans(ctx)
	require.NoError(t, err)
	want := domain.CloneTasks(tasks)
	want[1].Done = true
	assert.Equal(t, want, got["2025-06-01"])
	assert.Equal(t, []domain.Task{{ID: "b", Title: "Other day"}}, got["2025-06-02"])
}

func TestUpdateTask_UnknownIDIsNoop(t *testing.T) {
	fs := testutil.NewFailingStore(nil)
	repo := NewKVPlanRepo(fs, Options{})
	ctx := context.Background()

	require.NoError(t, repo.SavePlan(ctx, "2025-06-01", testutil.NewTestTasks(2)))
	before, err := repo.GetAllPlans(ctx)
	require.NoError(t, err)
	writes := fs.Writes()

	require.NoError(t, repo.UpdateTask(ctx, "2025-06-01", "missing", domain.DonePatch(true)))
	require.NoError(t, repo.UpdateTask(ctx, "2025-07-01", "missing", domain.DonePatch(true)))

	after, err := repo.GetAllPlans(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, writes, fs.Writes())
	assert.NotContains(t, after, domain.DateKey("2025-07-01"), "unknown date must not be created")
}

func TestUpdateTask_RejectsInvalidResult(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.SavePlan(ctx, "2025-06-01", []domain.Task{{ID: "1", Title: "ok"}}))

	blank := " "
	err := repo.UpdateTask(ctx, "2025-06-01", "1", domain.TaskPatch{Title: &blank})
	assert.ErrorIs(t, err, ErrValidation)

	got, err := repo.GetPlan(ctx, "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, "ok", got[0].Title)
}

func TestScenario_AddToggleDelete(t *testing.T) {
	repo, store := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SavePlan(ctx, "2025-06-01", []domain.Task{
		{ID: "1", Title: "Buy milk", Done: false, Priority: domain.PriorityLow},
	}))
	require.NoError(t, repo.UpdateTask(ctx, "2025-06-01", "1", domain.DonePatch(true)))

	got, err := repo.GetAllPlans(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Plans{
		"2025-06-01": {{ID: "1", Title: "Buy milk", Done: true, Priority: domain.PriorityLow}},
	}, got)

	raw, _, err := store.Get(ctx, PlansKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"2025-06-01":[{"id":"1","title":"Buy milk","done":true,"priority":"low"}]}`, raw)

	require.NoError(t, repo.DeletePlan(ctx, "2025-06-01"))
	got, err = repo.GetAllPlans(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Plans{}, got)

	raw, _, err = store.Get(ctx, PlansKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, raw)
}

func TestGetAllPlans_AbsentPriorityStaysAbsent(t *testing.T) {
	repo, store := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, PlansKey, `{"2025-06-01":[{"id":"1","title":"x","done":false}]}`))

	got, err := repo.GetAllPlans(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityUnset, got["2025-06-01"][0].Priority)

	require.NoError(t, repo.UpdateTask(ctx, "2025-06-01", "1", domain.DonePatch(true)))
	raw, _, err := store.Get(ctx, PlansKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"2025-06-01":[{"id":"1","title":"x","done":true}]}`, raw)
}

func TestGetAllPlans_Corruption(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"2025-06-01": [`,
		"array root":      `[1,2,3]`,
		"null":            `null`,
		"bad date key":    `{"tomorrow":[]}`,
		"tasks not array": `{"2025-06-01":{"id":"1"}}`,
		"missing done":    `{"2025-06-01":[{"id":"1","title":"x"}]}`,
		"wrong type":      `{"2025-06-01":[{"id":1,"title":"x","done":false}]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := kvstore.NewMemoryStore()
			require.NoError(t, store.Set(ctx, PlansKey, raw))

			soft := NewKVPlanRepo(store, Options{})
			plans, err := soft.GetAllPlans(ctx)
			require.NoError(t, err)
			assert.Empty(t, plans)

			strict := NewKVPlanRepo(store, Options{Strict: true})
			_, err = strict.GetAllPlans(ctx)
			assert.ErrorIs(t, err, ErrCorruptData)
			assert.ErrorIs(t, strict.SavePlan(ctx, "2025-06-01", nil), ErrCorruptData)

			stored, _, err := store.Get(ctx, PlansKey)
			require.NoError(t, err)
			assert.Equal(t, raw, stored, "strict mode must not overwrite corrupt data")
		})
	}
}

func TestGetAllPlans_UnknownPriorityNormalized(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, PlansKey, `{"2025-06-01":[{"id":"1","title":"x","done":false,"priority":"urgent"}]}`))

	plans, err := NewKVPlanRepo(store, Options{Strict: true}).GetAllPlans(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityUnset, plans["2025-06-01"][0].Priority)
}

func TestStorageUnavailable_Propagates(t *testing.T) {
	fs := testutil.NewFailingStore(nil)
	repo := NewKVPlanRepo(fs, Options{})
	ctx := context.Background()
	require.NoError(t, repo.SavePlan(ctx, "2025-06-01", testutil.NewTestTasks(1)))

	fs.FailWrites(true)
	assert.ErrorIs(t, repo.SavePlan(ctx, "2025-06-02", testutil.NewTestTasks(1)), kvstore.ErrUnavailable)
	assert.ErrorIs(t, repo.DeletePlan(ctx, "2025-06-01"), kvstore.ErrUnavailable)

	fs.FailWrites(false)
	fs.FailReads(true)
	_, err := repo.GetAllPlans(ctx)
	assert.ErrorIs(t, err, kvstore.ErrUnavailable)
	assert.ErrorIs(t, repo.SavePlan(ctx, "2025-06-02", nil), kvstore.ErrUnavailable)

	fs.FailReads(false)
	plans, err := repo.GetAllPlans(ctx)
	require.NoError(t, err)
	assert.Len(t, plans, 1, "failed mutations must leave storage unchanged")
}

func TestClearAll(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.SavePlan(ctx, "2025-06-01", testutil.NewTestTasks(1)))
	require.NoError(t, repo.SaveUserName(ctx, "Ada"))

	require.NoError(t, repo.ClearAll(ctx))

	plans, err := repo.GetAllPlans(ctx)
	require.NoError(t, err)
	assert.Empty(t, plans)
	_, ok, err := repo.GetUserName(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoveTask(t *testing.T) {
	fs := testutil.NewFailingStore(nil)
	repo := NewKVPlanRepo(fs, Options{})
	ctx := context.Background()
	tasks := []domain.Task{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}
	require.NoError(t, repo.SavePlan(ctx, "2025-06-01", tasks))

	require.NoError(t, repo.RemoveTask(ctx, "2025-06-01", "a"))
	got, err := repo.GetPlan(ctx, "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, []domain.Task{{ID: "b", Title: "B"}}, got)

	writes := fs.Writes()
	require.NoError(t, repo.RemoveTask(ctx, "2025-06-01", "a"))
	require.NoError(t, repo.RemoveTask(ctx, "2025-07-01", "b"))
	assert.Equal(t, writes, fs.Writes(), "no-op removals must not write")

	require.NoError(t, repo.RemoveTask(ctx, "2025-06-01", "b"))
	plans, err := repo.GetAllPlans(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Plans{"2025-06-01": {}}, plans)

	assert.ErrorIs(t, repo.RemoveTask(ctx, "June 1", "b"), ErrValidation)
}

func TestAppendTasks(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	first := testutil.NewTestTask("first")
	require.NoError(t, repo.SavePlan(ctx, "2025-06-01", []domain.Task{first}))

	extra := []domain.Task{testutil.NewTestTask("second"), testutil.NewTestTask("third")}
	require.NoError(t, repo.AppendTasks(ctx, "2025-06-01", extra))
	require.NoError(t, repo.AppendTasks(ctx, "2025-06-02", extra[:1]))

	got, err := repo.GetAllPlans(ctx)
	require.NoError(t, err)
	assert.Equal(t, append([]domain.Task{first}, extra...), got["2025-06-01"])
	assert.Equal(t, extra[:1], got["2025-06-02"])

	err = repo.AppendTasks(ctx, "2025-06-01", []domain.Task{first})
	assert.ErrorIs(t, err, ErrValidation, "ids already stored on the day are rejected")
	got, err = repo.GetAllPlans(ctx)
	require.NoError(t, err)
	assert.Len(t, got["2025-06-01"], 3)
}
