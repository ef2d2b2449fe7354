package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

var ErrSettingNotFound = errors.New("setting not found")

// Setting keys
const (
	settingLastNotified = "last_notified_at"
)

// GetSetting reads a per-user setting value
func (db *DB) GetSetting(ctx context.Context, userID int, key string) (string, error) {
	var value string
	err := db.Pool.QueryRow(ctx, `
		SELECT value FROM user_settings WHERE user_id = $1 AND key = $2
	`, userID, key).Scan(&value)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrSettingNotFound
		}
		return "", err
	}

	return value, nil
}

// SetSetting upserts a per-user setting value
func (db *DB) SetSetting(ctx context.Context, userID int, key, value string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO user_settings (user_id, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, key) DO UPDATE SET value = $3, updated_at = NOW()
	`, userID, key, value)
	return err
}

// LastNotified returns when the user was last sent a critical-item
// alert. A user who was never notified gets the zero time.
func (db *DB) LastNotified(ctx context.Context, userID int) (time.Time, error) {
	value, err := db.GetSetting(ctx, userID, settingLastNotified)
	if err != nil {
		if errors.Is(err, ErrSettingNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		// Unreadable timestamp: treat as never notified
		return time.Time{}, nil
	}

	return t, nil
}

// SetLastNotified records the time of the latest critical-item alert
func (db *DB) SetLastNotified(ctx context.Context, userID int, t time.Time) error {
	return db.SetSetting(ctx, userID, settingLastNotified, t.UTC().Format(time.RFC3339))
}
