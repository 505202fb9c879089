package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"vessel-ops/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDB("file:"+uuid.NewString()+"?mode=memory&cache=shared", nil)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func insertTask(t *testing.T, repo *TaskRepository, task model.Task) model.Task {
	t.Helper()
	if task.Status == "" {
		task.Status = model.StatusOpen
	}
	if task.Category == "" {
		task.Category = model.CategoryDaily
	}
	saved, err := repo.Insert(context.Background(), task)
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	return saved
}

func TestItemRepository_ConditionalMarkComplete(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(newTestDB(t))
	task := insertTask(t, repo, model.Task{VesselID: "v1", Title: "Sound tanks"})

	at := time.Date(2024, 1, 9, 8, 30, 0, 0, time.UTC)
	c := model.Completion{At: at, ByID: "crew:1", ByName: "Ann"}
	require.NoError(t, repo.ConditionalMarkComplete(ctx, task.ID, model.StatusOpen, c))

	stored, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	got, ok := stored.Completion()
	require.True(t, ok)
	assert.True(t, at.Equal(got.At))
	assert.Equal(t, "crew:1", got.ByID)
	assert.Equal(t, "Ann", got.ByName)

	err = repo.ConditionalMarkComplete(ctx, task.ID, model.StatusOpen, model.Completion{At: at.Add(time.Hour), ByID: "crew:2", ByName: "Bob"})
	assert.ErrorIs(t, err, ErrConflict)

	stored, err = repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CompletedByName)
	assert.Equal(t, "Ann", *stored.CompletedByName)
}

func TestItemRepository_ConditionalMarkCompleteMissing(t *testing.T) {
	repo := NewYardJobRepository(newTestDB(t))
	err := repo.ConditionalMarkComplete(context.Background(), uuid.NewString(), model.StatusOpen,
		model.Completion{At: time.Now(), ByID: "crew:1", ByName: "Ann"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestItemRepository_FindByIDNotFound(t *testing.T) {
	repo := NewTaskRepository(newTestDB(t))
	_, err := repo.FindByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestItemRepository_DeleteCompletedBefore(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(newTestDB(t))
	boundary := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	complete := func(title string, at time.Time) model.Task {
		task := insertTask(t, repo, model.Task{VesselID: "v1", Title: title})
		require.NoError(t, repo.ConditionalMarkComplete(ctx, task.ID, model.StatusOpen,
			model.Completion{At: at, ByID: "crew:1", ByName: "Ann"}))
		return task
	}
	before := complete("before", boundary.Add(-time.Millisecond))
	atBoundary := complete("at boundary", boundary)
	after := complete("after", boundary.Add(time.Millisecond))
	open := insertTask(t, repo, model.Task{VesselID: "v1", Title: "still open"})
	otherVessel := insertTask(t, repo, model.Task{VesselID: "v2", Title: "other vessel"})
	require.NoError(t, repo.ConditionalMarkComplete(ctx, otherVessel.ID, model.StatusOpen,
		model.Completion{At: boundary.AddDate(0, -1, 0), ByID: "crew:1", ByName: "Ann"}))

	n, err := repo.DeleteCompletedBefore(ctx, "v1", boundary)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.FindByID(ctx, before.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	for _, id := range []string{atBoundary.ID, after.ID, open.ID, otherVessel.ID} {
		_, err := repo.FindByID(ctx, id)
		assert.NoError(t, err)
	}

	n, err = repo.DeleteCompletedBefore(ctx, "v1", boundary)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestItemRepository_DeleteCompletedBeforeOtherZone(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(newTestDB(t))
	loc := time.FixedZone("UTC+3", 3*3600)
	boundary := time.Date(2024, 3, 1, 0, 0, 0, 0, loc)

	task := insertTask(t, repo, model.Task{VesselID: "v1", Title: "late entry"})
	// 22:30 UTC on Feb 29 is 01:30 on Mar 1 in UTC+3.
	require.NoError(t, repo.ConditionalMarkComplete(ctx, task.ID, model.StatusOpen,
		model.Completion{At: time.Date(2024, 2, 29, 22, 30, 0, 0, time.UTC), ByID: "crew:1", ByName: "Ann"}))

	n, err := repo.DeleteCompletedBefore(ctx, "v1", boundary)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestItemRepository_ResolveID(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(newTestDB(t))
	a := insertTask(t, repo, model.Task{ID: "aaaa1111-0000-0000-0000-000000000001", VesselID: "v1", Title: "a"})
	insertTask(t, repo, model.Task{ID: "aaaa2222-0000-0000-0000-000000000002", VesselID: "v1", Title: "b"})
	insertTask(t, repo, model.Task{ID: "bbbb1111-0000-0000-0000-000000000003", VesselID: "v2", Title: "c"})

	id, err := repo.ResolveID(ctx, "v1", "aaaa1")
	require.NoError(t, err)
	assert.Equal(t, a.ID, id)

	_, err = repo.ResolveID(ctx, "v1", "aaaa")
	assert.ErrorIs(t, err, ErrAmbiguous)

	_, err = repo.ResolveID(ctx, "v1", "bbbb")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskRepository_ListByVesselAndCategory(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(newTestDB(t))
	soon := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	later := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)

	noDate := insertTask(t, repo, model.Task{VesselID: "v1", Title: "no date", Category: model.CategoryWeekly})
	laterTask := insertTask(t, repo, model.Task{VesselID: "v1", Title: "later", Category: model.CategoryWeekly, DoneByDate: &later})
	soonTask := insertTask(t, repo, model.Task{VesselID: "v1", Title: "soon", Category: model.CategoryWeekly, DoneByDate: &soon})
	insertTask(t, repo, model.Task{VesselID: "v1", Title: "daily", Category: model.CategoryDaily})

	tasks, err := repo.ListByVesselAndCategory(ctx, "v1", model.CategoryWeekly)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{soonTask.ID, laterTask.ID, noDate.ID}, []string{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}

func TestItemRepository_ListOpenByVessel(t *testing.T) {
	ctx := context.Background()
	repo := NewYardJobRepository(newTestDB(t))
	open, err := repo.Insert(ctx, model.YardJob{VesselID: "v1", Title: "Paint hull", Status: model.StatusOpen})
	require.NoError(t, err)
	done, err := repo.Insert(ctx, model.YardJob{VesselID: "v1", Title: "Replace anodes", Status: model.StatusOpen})
	require.NoError(t, err)
	require.NoError(t, repo.ConditionalMarkComplete(ctx, done.ID, model.StatusOpen,
		model.Completion{At: time.Now(), ByID: "crew:1", ByName: "Ann"}))

	jobs, err := repo.ListOpenByVessel(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, open.ID, jobs[0].ID)
}

func TestItemRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(newTestDB(t))
	task := insertTask(t, repo, model.Task{VesselID: "v1", Title: "gone"})

	require.NoError(t, repo.Delete(ctx, task.ID))
	require.NoError(t, repo.Delete(ctx, task.ID))
	_, err := repo.FindByID(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWatermarkRepository_NeverRegresses(t *testing.T) {
	ctx := context.Background()
	repo := NewWatermarkRepository(newTestDB(t))

	_, ok, err := repo.GetWatermark(ctx, "v1")
	require.NoError(t, err)
	assert.False(t, ok)

	march := model.Period{Year: 2024, Month: time.March}
	require.NoError(t, repo.SetWatermark(ctx, "v1", march))
	require.NoError(t, repo.SetWatermark(ctx, "v1", model.Period{Year: 2024, Month: time.February}))

	got, ok, err := repo.GetWatermark(ctx, "v1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, march, got)

	april := model.Period{Year: 2024, Month: time.April}
	require.NoError(t, repo.SetWatermark(ctx, "v1", april))
	got, _, err = repo.GetWatermark(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, april, got)

	_, ok, err = repo.GetWatermark(ctx, "v2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVesselRepository_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewVesselRepository(newTestDB(t))

	first, err := repo.GetOrCreate(ctx, " MV Aurora ")
	require.NoError(t, err)
	second, err := repo.GetOrCreate(ctx, "MV Aurora")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "MV Aurora", second.Name)

	_, err = repo.GetOrCreate(ctx, "  ")
	assert.Error(t, err)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCrewRepository_UpsertAndAssign(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	crew := NewCrewRepository(db)
	vessel, err := NewVesselRepository(db).GetOrCreate(ctx, "MV Aurora")
	require.NoError(t, err)

	member, err := crew.UpsertFromTelegram(ctx, 42, "Ann", "", "ann")
	require.NoError(t, err)
	require.NoError(t, crew.AssignVessel(ctx, member, vessel.ID))

	again, err := crew.UpsertFromTelegram(ctx, 42, "Ann", "Lee", "ann")
	require.NoError(t, err)
	assert.Equal(t, member.ID, again.ID)
	require.NotNil(t, again.VesselID)
	assert.Equal(t, vessel.ID, *again.VesselID)
	assert.Equal(t, "Ann Lee", again.Actor().Name)

	renamed, err := crew.UpsertFromTelegram(ctx, 42, "Ann", "Lee", "ann_lee")
	require.NoError(t, err)
	assert.Equal(t, "ann_lee", renamed.Username)
	require.NotNil(t, renamed.VesselID)
	assert.Equal(t, vessel.ID, *renamed.VesselID)

	other, err := crew.UpsertFromTelegram(ctx, 43, "Bo", "", "")
	require.NoError(t, err)
	assert.NotEqual(t, member.ID, other.ID)
	assert.Nil(t, other.VesselID)

	all, err := crew.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
