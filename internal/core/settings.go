package core

import (
	"context"

	"hrdesk/internal/events"
	"hrdesk/pkg/domain"
)

// GetSettings returns the settings document.
func (s *Service) GetSettings(ctx context.Context) (domain.Settings, error) {
	var out domain.Settings
	err := s.observe(ctx, "get_settings", func(ctx context.Context) error {
		return s.view(ctx, func(v domain.TransactionView) error {
			out = v.Settings()
			return nil
		})
	})
	return out, err
}

// SaveSettings merges patch into the settings document.
func (s *Service) SaveSettings(ctx context.Context, patch domain.SettingsPatch) (domain.Settings, error) {
	var updated domain.Settings
	_, err := s.mutate(ctx, "save_settings", domain.EntitySettings, func(tx domain.Transaction) (string, []events.Event, error) {
		before := tx.Snapshot().Settings()
		var err error
		updated, err = tx.UpdateSettings(func(st *domain.Settings) error {
			patch.Apply(st)
			return nil
		})
		if err != nil {
			return "", nil, err
		}
		return "", []events.Event{mutationEvent(events.SettingsUpdated, domain.EntitySettings, "", before, updated)}, nil
	})
	return updated, err
}
