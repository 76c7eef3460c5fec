package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// CalibrationKey is the settings key holding the gesture thresholds.
const CalibrationKey = "calibration"

// SettingsRepository reads and writes key-value settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the value stored under key.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now(),
	)
	return err
}

// Delete removes key.
func (r *SettingsRepository) Delete(key string) error {
	result, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Calibration is the persisted form of gesture.Thresholds. Durations are
// stored in seconds.
type Calibration struct {
	ClickThreshold      float64 `json:"click_threshold"`
	ScrollThreshold     float64 `json:"scroll_threshold"`
	HistoryLength       int     `json:"history_length"`
	ClickCooldown       float64 `json:"click_cooldown"`
	DoubleClickInterval float64 `json:"double_click_interval"`
	ModeSwitchCooldown  float64 `json:"mode_switch_cooldown"`
	ScrollDivisor       float64 `json:"scroll_divisor"`
}

// CalibrationFrom converts thresholds into their persisted form.
func CalibrationFrom(th gesture.Thresholds) Calibration {
	return Calibration{
		ClickThreshold:      th.ClickThreshold,
		ScrollThreshold:     th.ScrollThreshold,
		HistoryLength:       th.HistoryLength,
		ClickCooldown:       th.ClickCooldown.Seconds(),
		DoubleClickInterval: th.DoubleClickInterval.Seconds(),
		ModeSwitchCooldown:  th.ModeSwitchCooldown.Seconds(),
		ScrollDivisor:       th.ScrollDivisor,
	}
}

// Thresholds converts the calibration back for the classifier.
func (c Calibration) Thresholds() gesture.Thresholds {
	return gesture.Thresholds{
		ClickThreshold:      c.ClickThreshold,
		ScrollThreshold:     c.ScrollThreshold,
		HistoryLength:       c.HistoryLength,
		ClickCooldown:       seconds(c.ClickCooldown),
		DoubleClickInterval: seconds(c.DoubleClickInterval),
		ModeSwitchCooldown:  seconds(c.ModeSwitchCooldown),
		ScrollDivisor:       c.ScrollDivisor,
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// LoadThresholds returns the persisted calibration, or ErrNotFound when
// none has been saved.
func (r *SettingsRepository) LoadThresholds() (gesture.Thresholds, error) {
	raw, err := r.Get(CalibrationKey)
	if err != nil {
		return gesture.Thresholds{}, err
	}

	var c Calibration
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return gesture.Thresholds{}, fmt.Errorf("decode calibration: %w", err)
	}
	return c.Thresholds(), nil
}

// SaveThresholds persists th after validating it.
func (r *SettingsRepository) SaveThresholds(th gesture.Thresholds) error {
	if err := th.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(CalibrationFrom(th))
	if err != nil {
		return err
	}
	return r.Set(CalibrationKey, string(raw))
}
