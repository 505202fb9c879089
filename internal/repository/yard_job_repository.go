package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"vessel-ops/internal/model"
)

// YardJobRepository handles CRUD for yard jobs.
type YardJobRepository struct {
	*ItemRepository[model.YardJob]
}

func NewYardJobRepository(db *gorm.DB) *YardJobRepository {
	return &YardJobRepository{ItemRepository: newItemRepository[model.YardJob](db, "yard job")}
}

func (r *YardJobRepository) ListByVessel(ctx context.Context, vesselID string) ([]model.YardJob, error) {
	var jobs []model.YardJob
	if err := r.db.WithContext(ctx).
		Where("vessel_id = ?", vesselID).
		Order("status DESC, done_by_date NULLS LAST, created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list yard jobs: %w", err)
	}
	return jobs, nil
}
