package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"vessel-ops/internal/model"
)

// WatermarkRepository stores the authoritative per-vessel cleanup watermark.
type WatermarkRepository struct {
	db *gorm.DB
}

func NewWatermarkRepository(db *gorm.DB) *WatermarkRepository {
	return &WatermarkRepository{db: db}
}

// GetWatermark returns the last purged period; ok is false when no purge has run yet.
func (r *WatermarkRepository) GetWatermark(ctx context.Context, vesselID string) (model.Period, bool, error) {
	var wm model.CleanupWatermark
	err := r.db.WithContext(ctx).Where("vessel_id = ?", vesselID).First(&wm).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.Period{}, false, nil
	case err != nil:
		return model.Period{}, false, fmt.Errorf("get watermark: %w", err)
	}
	period, err := model.ParsePeriod(wm.Period)
	if err != nil {
		return model.Period{}, false, fmt.Errorf("get watermark: %w", err)
	}
	return period, true, nil
}

// SetWatermark records period for the vessel. An older or equal period leaves
// the stored value unchanged, so the watermark never moves backwards.
func (r *WatermarkRepository) SetWatermark(ctx context.Context, vesselID string, period model.Period) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wm model.CleanupWatermark
		err := tx.Where("vessel_id = ?", vesselID).First(&wm).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&model.CleanupWatermark{VesselID: vesselID, Period: period.String()}).Error
		case err != nil:
			return err
		}

		stored, err := model.ParsePeriod(wm.Period)
		if err == nil && !stored.Before(period) {
			return nil
		}
		return tx.Model(&wm).Update("period", period.String()).Error
	})
	if err != nil {
		return fmt.Errorf("set watermark: %w", err)
	}
	return nil
}
