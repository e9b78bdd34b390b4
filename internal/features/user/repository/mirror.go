package repository

import (
	"context"

	"reels-miniapp-backend/internal/common/logger"
	"reels-miniapp-backend/internal/features/user/models"
)

// Mirror reproduces the historical dual-file layout: every write fans out to
// a legacy-named copy of the same collection, each sink keeping its own
// atomic-write discipline, and an empty primary is backfilled from the
// legacy copy on read. The primary stays the source of truth; a legacy sink
// failure is logged, never surfaced.
type Mirror struct {
	primary UserRepository
	legacy  UserRepository
}

var _ UserRepository = (*Mirror)(nil)

func NewMirror(primary, legacy UserRepository) *Mirror {
	return &Mirror{primary: primary, legacy: legacy}
}

func (m *Mirror) ReadAll(ctx context.Context) ([]*models.UserProfile, error) {
	records, err := m.primary.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		return records, nil
	}

	fallback, err := m.legacy.ReadAll(ctx)
	if err != nil || len(fallback) == 0 {
		if err != nil {
			logger.Warn().Err(err).Msg("legacy collection unreadable, keeping primary")
		}
		return records, nil
	}
	if err := m.primary.WriteAll(ctx, fallback); err != nil {
		logger.Warn().Err(err).Msg("backfill of primary collection failed")
	}
	return fallback, nil
}

func (m *Mirror) WriteAll(ctx context.Context, records []*models.UserProfile) error {
	if err := m.primary.WriteAll(ctx, records); err != nil {
		return err
	}
	if err := m.legacy.WriteAll(ctx, records); err != nil {
		logger.Warn().Err(err).Msg("legacy collection write failed")
	}
	return nil
}
