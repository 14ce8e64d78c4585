// Package repository declares the storage interfaces the service layer
// depends on. Implementations live in the sub-packages (sqlstore, memory).
package repository

import (
	"context"
	"time"

	"github.com/sakif/habit-tracker/internal/model"
)

// UserRepository persists accounts.
type UserRepository interface {
	// CreateWithHabits inserts the user and its starting habits atomically.
	// Returns apperror.ErrDuplicateEmail when the email is taken.
	CreateWithHabits(ctx context.Context, user *model.User, habits []model.Habit) error
	// GetByEmail returns apperror.ErrNotFound when no account matches.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// HabitRepository persists habits. Every method is scoped by userID.
type HabitRepository interface {
	ListHabits(ctx context.Context, userID string) ([]model.Habit, error)
	GetHabit(ctx context.Context, userID string, habitID int64) (*model.Habit, error)
	// CreateHabit returns apperror.ErrConflict if (userID, habit.ID) exists.
	CreateHabit(ctx context.Context, habit *model.Habit) error
	// UpdateHabit returns apperror.ErrNotFound if nothing matched.
	UpdateHabit(ctx context.Context, habit *model.Habit) error
	// DeleteHabit reports whether a row was removed; a miss is not an error.
	DeleteHabit(ctx context.Context, userID string, habitID int64) (bool, error)
	// ReplaceHabits swaps the user's whole habit set in one transaction.
	ReplaceHabits(ctx context.Context, userID string, habits []model.Habit) error
}

// SessionRepository stores server-side sessions keyed by token.
type SessionRepository interface {
	SaveSession(ctx context.Context, session *model.Session) error
	// GetSession returns apperror.ErrNotFound for an unknown token.
	GetSession(ctx context.Context, token string) (*model.Session, error)
	// DeleteSession is a no-op for an unknown token.
	DeleteSession(ctx context.Context, token string) error
	// DeleteExpiredSessions removes every session expiring at or before now.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// ContactRepository stores contact-form submissions.
type ContactRepository interface {
	CreateContact(ctx context.Context, msg *model.ContactMessage) error
}
