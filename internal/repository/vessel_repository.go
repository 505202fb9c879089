package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"vessel-ops/internal/model"
)

// VesselRepository manages vessels.
type VesselRepository struct {
	db *gorm.DB
}

func NewVesselRepository(db *gorm.DB) *VesselRepository {
	return &VesselRepository{db: db}
}

func (r *VesselRepository) GetOrCreate(ctx context.Context, name string) (*model.Vessel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("vessel name is required")
	}

	var vessel model.Vessel
	db := r.db.WithContext(ctx)
	err := db.Where("name = ?", name).First(&vessel).Error
	switch {
	case err == nil:
		return &vessel, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		vessel = model.Vessel{Name: name}
		if err := db.Create(&vessel).Error; err != nil {
			return nil, fmt.Errorf("create vessel: %w", err)
		}
		return &vessel, nil
	default:
		return nil, fmt.Errorf("find vessel: %w", err)
	}
}

func (r *VesselRepository) GetByID(ctx context.Context, id string) (*model.Vessel, error) {
	var vessel model.Vessel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&vessel).Error
	switch {
	case err == nil:
		return &vessel, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("find vessel %s: %w", id, ErrNotFound)
	default:
		return nil, fmt.Errorf("find vessel %s: %w", id, err)
	}
}

func (r *VesselRepository) ListAll(ctx context.Context) ([]model.Vessel, error) {
	var vessels []model.Vessel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&vessels).Error; err != nil {
		return nil, err
	}
	return vessels, nil
}
