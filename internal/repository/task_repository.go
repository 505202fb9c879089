package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"vessel-ops/internal/model"
)

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	*ItemRepository[model.Task]
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{ItemRepository: newItemRepository[model.Task](db, "task")}
}

// ListByVesselAndCategory returns open and completed tasks of one hub category.
func (r *TaskRepository) ListByVesselAndCategory(ctx context.Context, vesselID string, category model.TaskCategory) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("vessel_id = ? AND category = ?", vesselID, category).
		Order("status DESC, done_by_date NULLS LAST, created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}
