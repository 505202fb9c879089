package service

import (
	"context"
	"time"

	"vessel-ops/internal/model"
)

// ItemStore is the part of the work item store the completion flow writes to.
type ItemStore[T model.Item[T]] interface {
	Insert(ctx context.Context, item T) (T, error)
	ConditionalMarkComplete(ctx context.Context, id string, expected model.Status, c model.Completion) error
}

// itemRepository adds the lookups the per-kind services need.
type itemRepository[T model.Item[T]] interface {
	ItemStore[T]
	FindByID(ctx context.Context, id string) (T, error)
	ResolveID(ctx context.Context, vesselID, prefix string) (string, error)
	Delete(ctx context.Context, id string) error
}

// Purger deletes completed history for a vessel.
type Purger interface {
	DeleteCompletedBefore(ctx context.Context, vesselID string, boundary time.Time) (int64, error)
}

// WatermarkStore holds the authoritative cleanup watermark.
type WatermarkStore interface {
	GetWatermark(ctx context.Context, vesselID string) (model.Period, bool, error)
	SetWatermark(ctx context.Context, vesselID string, period model.Period) error
}

// WatermarkCache is an advisory copy of the watermark. It may be missing or stale.
type WatermarkCache interface {
	Get(ctx context.Context, vesselID string) (model.Period, bool, error)
	Set(ctx context.Context, vesselID string, period model.Period) error
}
