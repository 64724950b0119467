package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Keys read by the maintenance job. last_event_job holds the date of the
// last successful run and is absent until then.
const (
	KeyAutoCleanup    = "auto_cleanup"
	KeyKeepEventsDays = "keep_events_days"
	KeyAutoGenerate   = "auto_generate"
	KeyWeeksAhead     = "weeks_ahead"
	KeyLastEventJob   = "last_event_job"
)

var maintenanceKeys = []string{
	KeyAutoCleanup,
	KeyKeepEventsDays,
	KeyAutoGenerate,
	KeyWeeksAhead,
	KeyLastEventJob,
}

// SettingsStore is a string key/value table.
type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) lookup(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SettingsStore) Get(key string) (string, error) {
	value, ok, err := s.lookup(key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("setting %q: %w", key, ErrNotFound)
	}
	return value, nil
}

// GetOr returns the stored value for key, or def when it is unset.
func (s *SettingsStore) GetOr(key, def string) (string, error) {
	value, ok, err := s.lookup(key)
	if err != nil || !ok {
		return def, err
	}
	return value, nil
}

func (s *SettingsStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// GetMaintenanceSettings returns the maintenance keys that are set.
func (s *SettingsStore) GetMaintenanceSettings() (map[string]string, error) {
	args := make([]any, len(maintenanceKeys))
	for i, k := range maintenanceKeys {
		args[i] = k
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")

	rows, err := s.db.Query(`SELECT key, value FROM settings WHERE key IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("get maintenance settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string, len(maintenanceKeys))
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}
