package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// SetConfig stores value at jsonPath within the JSON document held under
// key in app_config, creating both the row and any intermediate path
// segments if they don't exist yet. Used for settings too small and varied
// to warrant their own column (default provider/model, onboarding flags,
// per-agent overrides), stored as a single schemaless blob per key.
func (s *Store) SetConfig(ctx context.Context, key, jsonPath string, value any) error {
	current, err := s.rawConfig(ctx, key)
	if err != nil {
		return err
	}
	updated, err := sjson.Set(current, jsonPath, value)
	if err != nil {
		return fmt.Errorf("store: set app_config %s/%s: %w", key, jsonPath, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO app_config (key, value_json) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value_json = excluded.value_json
	`, key, updated)
	if err != nil {
		return fmt.Errorf("store: upsert app_config %s: %w", key, err)
	}
	return nil
}

// GetConfig reads jsonPath out of the JSON document held under key,
// reporting false if the key or path doesn't exist.
func (s *Store) GetConfig(ctx context.Context, key, jsonPath string) (gjson.Result, bool, error) {
	raw, err := s.rawConfig(ctx, key)
	if err != nil {
		return gjson.Result{}, false, err
	}
	if raw == "" {
		return gjson.Result{}, false, nil
	}
	result := gjson.Get(raw, jsonPath)
	return result, result.Exists(), nil
}

func (s *Store) rawConfig(ctx context.Context, key string) (string, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value_json FROM app_config WHERE key = ?`, key).Scan(&raw)
	switch {
	case err == sql.ErrNoRows:
		return "{}", nil
	case err != nil:
		return "", fmt.Errorf("store: read app_config %s: %w", key, err)
	default:
		return raw, nil
	}
}
