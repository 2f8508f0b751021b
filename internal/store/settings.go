package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// SettingPublishInterval is the settings key for the publish spacing in
// minutes, read by queue-all when computing slots.
const SettingPublishInterval = "publish_interval_minutes"

// Setting returns a runtime setting value. The second return reports
// whether the key exists.
func (s *Store) Setting(ctx context.Context, key string) (string, bool, error) {
	ctx = ensureContext(ctx)
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM app_settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read setting %q: %w", key, err)
	}
	return value, true, nil
}

// SetSetting upserts a runtime setting.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	ctx = ensureContext(ctx)
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO app_settings (key, value) VALUES (?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key,
		value,
	)
	if err != nil {
		return fmt.Errorf("write setting %q: %w", key, err)
	}
	return nil
}

// PublishIntervalMinutes returns the runtime publish interval, falling
// back to the supplied default when unset or unparseable.
func (s *Store) PublishIntervalMinutes(ctx context.Context, fallback int) int {
	value, ok, err := s.Setting(ctx, SettingPublishInterval)
	if err != nil || !ok {
		return fallback
	}
	minutes, err := strconv.Atoi(value)
	if err != nil || minutes <= 0 {
		return fallback
	}
	return minutes
}
