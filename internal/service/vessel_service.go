package service

import (
	"context"

	"vessel-ops/internal/model"
	"vessel-ops/internal/repository"
)

// VesselService provides helpers around vessels.
type VesselService struct {
	repo *repository.VesselRepository
}

func NewVesselService(repo *repository.VesselRepository) *VesselService {
	return &VesselService{repo: repo}
}

func (s *VesselService) Register(ctx context.Context, name string) (*model.Vessel, error) {
	return s.repo.GetOrCreate(ctx, name)
}

func (s *VesselService) Get(ctx context.Context, id string) (*model.Vessel, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *VesselService) List(ctx context.Context) ([]model.Vessel, error) {
	return s.repo.ListAll(ctx)
}
