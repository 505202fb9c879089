package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"vessel-ops/internal/model"
)

// CleanupReport describes one pass through the cleanup gate.
type CleanupReport struct {
	VesselID string
	Period   model.Period
	// Attempted is true when the gate was open and purges were requested.
	Attempted bool
	Purged    int64
	// Err is kept for diagnostics only; cleanup failures are never surfaced to users.
	Err error
}

// CleanupService purges completed history at most once per vessel per calendar month.
type CleanupService struct {
	watermarks WatermarkStore
	cache      WatermarkCache
	purgers    []Purger
	log        *zap.Logger
}

// NewCleanupService wires the gate. cache may be nil.
func NewCleanupService(watermarks WatermarkStore, cache WatermarkCache, log *zap.Logger, purgers ...Purger) *CleanupService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CleanupService{watermarks: watermarks, cache: cache, purgers: purgers, log: log}
}

// MaybeRunCleanup deletes completed items that were finished before the start
// of now's month, unless that already happened for this month. On any failure
// the watermark stays put so the next call retries.
func (s *CleanupService) MaybeRunCleanup(ctx context.Context, vesselID string, now time.Time) CleanupReport {
	period := model.PeriodOf(now)
	report := CleanupReport{VesselID: vesselID, Period: period}

	if cached, ok := s.cachedPeriod(ctx, vesselID); ok && !cached.Before(period) {
		return report
	}

	stored, ok, err := s.watermarks.GetWatermark(ctx, vesselID)
	if err != nil {
		s.log.Warn("cleanup: read watermark", zap.String("vessel_id", vesselID), zap.Error(err))
		report.Err = err
		return report
	}
	if ok && !stored.Before(period) {
		s.remember(ctx, vesselID, stored)
		return report
	}

	boundary := period.Start(now.Location())
	report.Attempted = true
	for _, p := range s.purgers {
		n, err := p.DeleteCompletedBefore(ctx, vesselID, boundary)
		if err != nil {
			s.log.Warn("cleanup: purge", zap.String("vessel_id", vesselID), zap.Time("boundary", boundary), zap.Error(err))
			report.Err = err
			return report
		}
		report.Purged += n
	}

	if err := s.watermarks.SetWatermark(ctx, vesselID, period); err != nil {
		s.log.Warn("cleanup: write watermark", zap.String("vessel_id", vesselID), zap.Error(err))
		report.Err = err
		return report
	}
	s.remember(ctx, vesselID, period)

	s.log.Info("cleanup done",
		zap.String("vessel_id", vesselID),
		zap.Stringer("period", period),
		zap.Int64("purged", report.Purged),
	)
	return report
}

func (s *CleanupService) cachedPeriod(ctx context.Context, vesselID string) (model.Period, bool) {
	if s.cache == nil {
		return model.Period{}, false
	}
	period, ok, err := s.cache.Get(ctx, vesselID)
	if err != nil {
		s.log.Debug("cleanup: watermark cache get", zap.String("vessel_id", vesselID), zap.Error(err))
		return model.Period{}, false
	}
	return period, ok
}

func (s *CleanupService) remember(ctx context.Context, vesselID string, period model.Period) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, vesselID, period); err != nil {
		s.log.Debug("cleanup: watermark cache set", zap.String("vessel_id", vesselID), zap.Error(err))
	}
}
