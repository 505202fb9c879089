package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vessel-ops/internal/model"
	"vessel-ops/internal/repository"
)

type testStack struct {
	vessels   *VesselService
	tasks     *TaskService
	jobs      *YardJobService
	reminders *ReminderService
	taskRepo  *repository.TaskRepository
}

func newTestStack(t *testing.T) testStack {
	t.Helper()
	db, err := repository.NewDB("file:"+uuid.NewString()+"?mode=memory&cache=shared", nil)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	taskRepo := repository.NewTaskRepository(db)
	jobRepo := repository.NewYardJobRepository(db)
	cleanup := NewCleanupService(repository.NewWatermarkRepository(db), nil, nil, taskRepo, jobRepo)
	return testStack{
		vessels:   NewVesselService(repository.NewVesselRepository(db)),
		tasks:     NewTaskService(taskRepo, cleanup, nil),
		jobs:      NewYardJobService(jobRepo, cleanup, nil),
		reminders: NewReminderService(taskRepo, jobRepo),
		taskRepo:  taskRepo,
	}
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestTaskService_RecurringLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStack(t)

	vessel, err := st.vessels.Register(ctx, "MV Aurora")
	require.NoError(t, err)

	created := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	task, err := st.tasks.CreateTask(ctx, TaskInput{
		VesselID:   vessel.ID,
		Category:   model.CategoryWeekly,
		Title:      " Test fire pumps ",
		DoneByDate: date(2024, 1, 10),
		Recurrence: model.Recur7Days,
	}, created)
	require.NoError(t, err)
	assert.Equal(t, "Test fire pumps", task.Title)

	hub, err := st.tasks.OpenHub(ctx, vessel.ID, model.CategoryWeekly, time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, hub, 1)
	assert.Equal(t, UrgencyCritical, hub[0].Urgency)

	completedAt := time.Date(2024, 1, 9, 18, 0, 0, 0, time.UTC)
	res, err := st.tasks.Complete(ctx, task.ID, model.Actor{ID: "crew:1", Name: "Ann"}, completedAt)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, res.Outcome)
	require.NotNil(t, res.Successor)
	successor := *res.Successor
	require.NotNil(t, successor.DoneByDate)
	assert.True(t, successor.DoneByDate.Equal(time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)))

	again, err := st.tasks.Complete(ctx, task.ID, model.Actor{ID: "crew:2", Name: "Bob"}, completedAt.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyCompleted, again.Outcome)
	assert.Nil(t, again.Successor)

	open, err := st.tasks.ListOpen(ctx, vessel.ID)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, successor.ID, open[0].ID)

	// Same month: completed history stays visible.
	hub, err = st.tasks.OpenHub(ctx, vessel.ID, model.CategoryWeekly, time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, hub, 2)
	assert.Equal(t, successor.ID, hub[0].Item.ID)
	assert.Equal(t, UrgencyOverdue, hub[0].Urgency)
	assert.Equal(t, UrgencyNone, hub[1].Urgency)

	// First visit in February purges January's completions.
	hub, err = st.tasks.OpenHub(ctx, vessel.ID, model.CategoryWeekly, time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, hub, 1)
	assert.Equal(t, successor.ID, hub[0].Item.ID)

	_, err = st.tasks.Get(ctx, task.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTaskService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	st := newTestStack(t)
	now := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input TaskInput
	}{
		{name: "no vessel", input: TaskInput{Category: model.CategoryDaily, Title: "x"}},
		{name: "no title", input: TaskInput{VesselID: "v1", Category: model.CategoryDaily, Title: "  "}},
		{name: "bad category", input: TaskInput{VesselID: "v1", Category: "YEARLY", Title: "x"}},
		{name: "bad recurrence", input: TaskInput{VesselID: "v1", Category: model.CategoryDaily, Title: "x", Recurrence: "9_DAYS"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := st.tasks.CreateTask(ctx, tt.input, now)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestTaskService_CompleteValidatesActorFirst(t *testing.T) {
	st := newTestStack(t)
	_, err := st.tasks.Complete(context.Background(), uuid.NewString(), model.Actor{}, time.Now())
	assert.ErrorIs(t, err, ErrInvalidActor)

	_, err = st.tasks.Complete(context.Background(), uuid.NewString(), model.Actor{ID: "crew:1", Name: "Ann"}, time.Now())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTaskService_ResolveAndDelete(t *testing.T) {
	ctx := context.Background()
	st := newTestStack(t)
	task, err := st.tasks.CreateTask(ctx, TaskInput{VesselID: "v1", Category: model.CategoryDaily, Title: "Log fuel soundings"}, time.Now())
	require.NoError(t, err)

	id, err := st.tasks.Resolve(ctx, "v1", task.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, task.ID, id)

	require.NoError(t, st.tasks.Delete(ctx, task.ID))
	_, err = st.tasks.Resolve(ctx, "v1", task.ID[:8])
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestYardJobService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStack(t)
	now := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)

	job, err := st.jobs.CreateYardJob(ctx, YardJobInput{
		VesselID:   "v1",
		Title:      "Renew anodes",
		Yard:       "Damen Shiprepair",
		DoneByDate: date(2024, 5, 12),
		Recurrence: model.Recur30Days,
	}, now)
	require.NoError(t, err)

	hub, err := st.jobs.OpenHub(ctx, "v1", now)
	require.NoError(t, err)
	require.Len(t, hub, 1)
	assert.Equal(t, UrgencySafe, hub[0].Urgency)

	res, err := st.jobs.Complete(ctx, job.ID, model.Actor{ID: "crew:1", Name: "Ann"}, now.Add(24*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, res.Successor)
	assert.Equal(t, "Damen Shiprepair", res.Successor.Yard)
	assert.True(t, res.Successor.DoneByDate.Equal(time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)))
}

func TestReminderService_VesselSummary(t *testing.T) {
	ctx := context.Background()
	st := newTestStack(t)
	vessel, err := st.vessels.Register(ctx, "MV Aurora")
	require.NoError(t, err)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err = st.tasks.CreateTask(ctx, TaskInput{VesselID: vessel.ID, Category: model.CategoryDaily, Title: "Later task", DoneByDate: date(2024, 1, 30)}, created)
	require.NoError(t, err)
	_, err = st.tasks.CreateTask(ctx, TaskInput{VesselID: vessel.ID, Category: model.CategoryDaily, Title: "Late task", DoneByDate: date(2024, 1, 2)}, created)
	require.NoError(t, err)

	text, err := st.reminders.VesselSummary(ctx, *vessel, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Contains(t, text, "MV Aurora")
	assert.Contains(t, text, "no open yard jobs")
	assert.Contains(t, text, "<b>overdue</b>")
	assert.Less(t, strings.Index(text, "Late task"), strings.Index(text, "Later task"))
}
