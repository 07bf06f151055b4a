package gallery

import (
	"context"

	"github.com/tangerinesoft/photo-service/internal/types/settings"
)

// Settings returns the public site settings with defaults filled in.
func (s *Service) Settings(ctx context.Context) (map[string]string, error) {
	stored, err := s.catalog.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	return settings.WithDefaults(stored), nil
}

func (s *Service) UpdateSettings(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	return s.catalog.UpsertSettings(ctx, values)
}

func (s *Service) RecordVisit(ctx context.Context) (int64, error) {
	return s.catalog.IncrementSiteStat(ctx, settings.StatSiteVisits)
}

func (s *Service) Stats(ctx context.Context) (settings.Stats, error) {
	return s.catalog.GetStats(ctx)
}
