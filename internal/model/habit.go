package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultHabitColor is used when a habit is created without a color.
const DefaultHabitColor = "#3b82f6"

// Habit is a tracked activity owned by a single user.
//
// ID is chosen by the client and is only unique per user, so the storage
// key is (UserID, ID). UserID and CreatedAt never leave the server.
type Habit struct {
	UserID      string      `json:"-"           db:"user_id"`
	ID          int64       `json:"id"          db:"habit_id"`
	Name        string      `json:"name"        db:"name"`
	Color       string      `json:"color"       db:"color"`
	Completions Completions `json:"completions" db:"completions"`
	CreatedAt   time.Time   `json:"-"           db:"created_at"`
}

// HabitPatch carries the optional fields of a partial update.
// A nil pointer means "leave unchanged".
type HabitPatch struct {
	Name        *string      `json:"name,omitempty"`
	Color       *string      `json:"color,omitempty"`
	Completions *Completions `json:"completions,omitempty"`
}

// DefaultHabits returns the habits every new account starts with.
func DefaultHabits(userID string) []Habit {
	defaults := []struct {
		name  string
		color string
	}{
		{"Read", "#3b82f6"},
		{"Workout", "#0ea5e9"},
		{"Meditate", "#06b6d4"},
		{"Journal", "#2563eb"},
		{"Drink water", "#1d4ed8"},
		{"Drawing", "#0284c7"},
	}

	habits := make([]Habit, 0, len(defaults))
	for i, d := range defaults {
		habits = append(habits, Habit{
			UserID:      userID,
			ID:          int64(i + 1),
			Name:        d.name,
			Color:       d.color,
			Completions: Completions{},
		})
	}
	return habits
}

// Completions maps a date key (as sent by the client, e.g. "2026-10-16")
// to whether the habit was done that day.
//
// It is stored as a JSON text column, so it implements sql.Scanner and
// driver.Valuer. A nil map is stored and serialized as {}.
type Completions map[string]bool

// Value implements driver.Valuer.
func (c Completions) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]bool(c))
	if err != nil {
		return nil, fmt.Errorf("model: encoding completions: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (c *Completions) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*c = Completions{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("model: cannot scan %T into Completions", src)
	}

	m := map[string]bool{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &m); err != nil {
			return fmt.Errorf("model: decoding completions: %w", err)
		}
	}
	*c = m
	return nil
}

// MarshalJSON keeps a nil map from being rendered as null.
func (c Completions) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]bool(c))
}
