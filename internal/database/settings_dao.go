package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/prototypeforge/aicxo/internal/types"
)

// SettingsDAO is a small JSON-valued key/value store for runtime
// configuration that admins can change without a restart, like the
// chair model or the default board model.
type SettingsDAO interface {
	// Get unmarshals the value stored under key into dest.
	// Returns false if the key does not exist.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores a JSON-encoded value under key, replacing any existing value
	Set(ctx context.Context, key string, value any) error

	// Delete removes a key, succeeding silently if absent
	Delete(ctx context.Context, key string) error
}

// settingsDAO implements SettingsDAO
type settingsDAO struct {
	db *DB
}

// NewSettingsDAO creates a new settings DAO
func NewSettingsDAO(db *DB) SettingsDAO {
	return &settingsDAO{db: db}
}

// Get unmarshals the value stored under key into dest
func (d *settingsDAO) Get(ctx context.Context, key string, dest any) (bool, error) {
	var raw string
	err := d.db.conn.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, types.WrapError(types.DB_QUERY_FAILED, "failed to get setting", err)
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal setting %q: %w", key, err)
	}

	return true, nil
}

// Set stores a JSON-encoded value under key, replacing any existing value
func (d *settingsDAO) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal setting %q: %w", key, err)
	}

	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`

	if _, err := d.db.conn.ExecContext(ctx, query, key, string(raw)); err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to set setting", err)
	}

	return nil
}

// Delete removes a key, succeeding silently if absent
func (d *settingsDAO) Delete(ctx context.Context, key string) error {
	if _, err := d.db.conn.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key); err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to delete setting", err)
	}
	return nil
}
