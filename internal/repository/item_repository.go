package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"vessel-ops/internal/model"
)

// ItemRepository holds the storage operations shared by every work-item kind.
type ItemRepository[T model.Item[T]] struct {
	db   *gorm.DB
	kind string
}

func newItemRepository[T model.Item[T]](db *gorm.DB, kind string) *ItemRepository[T] {
	return &ItemRepository[T]{db: db, kind: kind}
}

// Insert persists a new item; the store assigns its id.
func (r *ItemRepository[T]) Insert(ctx context.Context, item T) (T, error) {
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		var zero T
		return zero, fmt.Errorf("create %s: %w", r.kind, err)
	}
	return item, nil
}

func (r *ItemRepository[T]) FindByID(ctx context.Context, id string) (T, error) {
	var item T
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	switch {
	case err == nil:
		return item, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return item, fmt.Errorf("find %s %s: %w", r.kind, id, ErrNotFound)
	default:
		return item, fmt.Errorf("find %s %s: %w", r.kind, id, err)
	}
}

func (r *ItemRepository[T]) ListOpenByVessel(ctx context.Context, vesselID string) ([]T, error) {
	var items []T
	if err := r.db.WithContext(ctx).
		Where("vessel_id = ? AND status = ?", vesselID, model.StatusOpen).
		Order("done_by_date NULLS LAST, created_at DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list open %s: %w", r.kind, err)
	}
	return items, nil
}

// ResolveID expands an id prefix, as shown to crew, to the full id of an item on the vessel.
func (r *ItemRepository[T]) ResolveID(ctx context.Context, vesselID, prefix string) (string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(new(T)).
		Where("vessel_id = ? AND id LIKE ?", vesselID, prefix+"%").
		Limit(2).
		Pluck("id", &ids).Error; err != nil {
		return "", fmt.Errorf("resolve %s id: %w", r.kind, err)
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("resolve %s id %q: %w", r.kind, prefix, ErrNotFound)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("resolve %s id %q: %w", r.kind, prefix, ErrAmbiguous)
	}
}

// ConditionalMarkComplete writes the completion fields only while the stored
// status still equals expected. ErrConflict means another writer got there
// first or the item was deleted.
func (r *ItemRepository[T]) ConditionalMarkComplete(ctx context.Context, id string, expected model.Status, c model.Completion) error {
	res := r.db.WithContext(ctx).Model(new(T)).
		Where("id = ? AND status = ?", id, expected).
		Updates(map[string]interface{}{
			"status":            model.StatusCompleted,
			"completed_at":      c.At.UTC(),
			"completed_by_id":   c.ByID,
			"completed_by_name": c.ByName,
		})
	if res.Error != nil {
		return fmt.Errorf("complete %s %s: %w", r.kind, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("complete %s %s: %w", r.kind, id, ErrConflict)
	}
	return nil
}

// DeleteCompletedBefore removes completed items whose completion precedes boundary.
// Deleting rows that are already gone is not an error.
func (r *ItemRepository[T]) DeleteCompletedBefore(ctx context.Context, vesselID string, boundary time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("vessel_id = ? AND status = ? AND completed_at < ?", vesselID, model.StatusCompleted, boundary.UTC()).
		Delete(new(T))
	if res.Error != nil {
		return 0, fmt.Errorf("purge %s: %w", r.kind, res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes an item regardless of its status.
func (r *ItemRepository[T]) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T)).Error; err != nil {
		return fmt.Errorf("delete %s: %w", r.kind, err)
	}
	return nil
}
