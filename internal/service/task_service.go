package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"vessel-ops/internal/model"
	"vessel-ops/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	VesselID    string
	Category    model.TaskCategory
	Title       string
	Description string
	DoneByDate  *time.Time
	Recurrence  model.Recurrence
}

// TaskService wraps task-related business logic.
type TaskService struct {
	*itemService[model.Task]
	taskRepo *repository.TaskRepository
	cleanup  *CleanupService
}

func NewTaskService(taskRepo *repository.TaskRepository, cleanup *CleanupService, log *zap.Logger) *TaskService {
	return &TaskService{
		itemService: newItemService[model.Task](taskRepo, log),
		taskRepo:    taskRepo,
		cleanup:     cleanup,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, input TaskInput, now time.Time) (*model.Task, error) {
	if err := validateNewItem(input.VesselID, input.Title, input.Recurrence); err != nil {
		return nil, err
	}
	if _, err := model.ParseCategory(string(input.Category)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	task, err := s.taskRepo.Insert(ctx, model.Task{
		VesselID:    input.VesselID,
		Category:    input.Category,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		DoneByDate:  dateOrNil(input.DoneByDate),
		Status:      model.StatusOpen,
		Recurrence:  input.Recurrence,
		CreatedAt:   now.UTC(),
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// OpenHub is what a category hub screen calls: it passes the vessel through the
// cleanup gate, then lists the category with urgency annotations.
// Cleanup problems never prevent the listing.
func (s *TaskService) OpenHub(ctx context.Context, vesselID string, category model.TaskCategory, now time.Time) ([]Annotated[model.Task], error) {
	if s.cleanup != nil {
		s.cleanup.MaybeRunCleanup(ctx, vesselID, now)
	}
	tasks, err := s.taskRepo.ListByVesselAndCategory(ctx, vesselID, category)
	if err != nil {
		return nil, err
	}
	return Annotate(tasks, now), nil
}

func (s *TaskService) ListOpen(ctx context.Context, vesselID string) ([]model.Task, error) {
	return s.taskRepo.ListOpenByVessel(ctx, vesselID)
}
