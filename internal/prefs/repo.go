// Package prefs remembers the last birth date, time and calendar an owner
// entered, so the form comes back filled in.
package prefs

import (
	"context"
	"database/sql"
	"fmt"

	"ziwei/pkg/models"
)

const (
	KeyDOB      = "ziwei.dob"
	KeyTOB      = "ziwei.tob"
	KeyCalendar = "ziwei.calendar"

	DefaultDOB = "1995-01-01"
	DefaultTOB = "12:00"

	leapSuffix = "+leap"
)

// Prefs holds the stored strings. Calendar is empty when never saved, which
// reads as the solar calendar.
type Prefs struct {
	DOB      string `json:"dob"`
	TOB      string `json:"tob"`
	Calendar string `json:"calendar,omitempty"`
}

// CalendarValue encodes a calendar and leap-month flag for storage.
func CalendarValue(cal models.Calendar, leap bool) string {
	if cal == models.CalendarLunar && leap {
		return string(cal) + leapSuffix
	}
	return string(cal)
}

// DateCalendar decodes the stored calendar. Unknown values fall back to the
// solar calendar.
func (p Prefs) DateCalendar() (cal models.Calendar, leap bool) {
	switch p.Calendar {
	case string(models.CalendarLunar):
		return models.CalendarLunar, false
	case string(models.CalendarLunar) + leapSuffix:
		return models.CalendarLunar, true
	}
	return models.CalendarSolar, false
}

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Load returns the owner's remembered values, with defaults for anything
// never saved.
func (r *Repo) Load(ctx context.Context, owner string) (Prefs, error) {
	p := Prefs{DOB: DefaultDOB, TOB: DefaultTOB}
	if owner == "" {
		return p, nil
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT name, value
		FROM prefs
		WHERE owner = ? AND name IN (?, ?, ?)
	`, owner, KeyDOB, KeyTOB, KeyCalendar)
	if err != nil {
		return p, fmt.Errorf("load prefs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return p, fmt.Errorf("scan prefs row: %w", err)
		}
		if value == "" {
			continue
		}
		switch key {
		case KeyDOB:
			p.DOB = value
		case KeyTOB:
			p.TOB = value
		case KeyCalendar:
			p.Calendar = value
		}
	}
	if err := rows.Err(); err != nil {
		return p, fmt.Errorf("rows err: %w", err)
	}
	return p, nil
}

// Save stores every key in one transaction. An empty value clears the stored
// one so Load falls back to the default.
func (r *Repo) Save(ctx context.Context, owner string, p Prefs) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save prefs: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, kv := range [][2]string{{KeyDOB, p.DOB}, {KeyTOB, p.TOB}, {KeyCalendar, p.Calendar}} {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO prefs (owner, name, value, updated_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(owner, name) DO UPDATE SET
				value = excluded.value,
				updated_at = CURRENT_TIMESTAMP
		`, owner, kv[0], kv[1]); err != nil {
			return fmt.Errorf("save pref %s: %w", kv[0], err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save prefs: %w", err)
	}
	return nil
}

// Adopt copies a visitor's prefs to an account after sign-in, unless the
// account already has its own. The keys move as a set so a date never pairs
// with another visitor's calendar.
func (r *Repo) Adopt(ctx context.Context, from, to string) error {
	if from == "" || to == "" || from == to {
		return nil
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT OR IGNORE INTO prefs (owner, name, value, updated_at)
		SELECT ?, name, value, updated_at
		FROM prefs
		WHERE owner = ?
			AND NOT EXISTS (SELECT 1 FROM prefs WHERE owner = ?)
	`, to, from, to)
	if err != nil {
		return fmt.Errorf("adopt prefs: %w", err)
	}
	return nil
}
