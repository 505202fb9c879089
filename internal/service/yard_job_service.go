package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"vessel-ops/internal/model"
	"vessel-ops/internal/repository"
)

type YardJobInput struct {
	VesselID   string
	Title      string
	Yard       string
	Contractor string
	DoneByDate *time.Time
	Recurrence model.Recurrence
}

// YardJobService wraps yard-job business logic.
type YardJobService struct {
	*itemService[model.YardJob]
	jobRepo *repository.YardJobRepository
	cleanup *CleanupService
}

func NewYardJobService(jobRepo *repository.YardJobRepository, cleanup *CleanupService, log *zap.Logger) *YardJobService {
	return &YardJobService{
		itemService: newItemService[model.YardJob](jobRepo, log),
		jobRepo:     jobRepo,
		cleanup:     cleanup,
	}
}

func (s *YardJobService) CreateYardJob(ctx context.Context, input YardJobInput, now time.Time) (*model.YardJob, error) {
	if err := validateNewItem(input.VesselID, input.Title, input.Recurrence); err != nil {
		return nil, err
	}
	job, err := s.jobRepo.Insert(ctx, model.YardJob{
		VesselID:   input.VesselID,
		Title:      strings.TrimSpace(input.Title),
		Yard:       strings.TrimSpace(input.Yard),
		Contractor: strings.TrimSpace(input.Contractor),
		DoneByDate: dateOrNil(input.DoneByDate),
		Status:     model.StatusOpen,
		Recurrence: input.Recurrence,
		CreatedAt:  now.UTC(),
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// OpenHub runs the cleanup gate and lists the vessel's yard jobs with urgency.
func (s *YardJobService) OpenHub(ctx context.Context, vesselID string, now time.Time) ([]Annotated[model.YardJob], error) {
	if s.cleanup != nil {
		s.cleanup.MaybeRunCleanup(ctx, vesselID, now)
	}
	jobs, err := s.jobRepo.ListByVessel(ctx, vesselID)
	if err != nil {
		return nil, err
	}
	return Annotate(jobs, now), nil
}

func (s *YardJobService) ListOpen(ctx context.Context, vesselID string) ([]model.YardJob, error) {
	return s.jobRepo.ListOpenByVessel(ctx, vesselID)
}
