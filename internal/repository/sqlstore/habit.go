package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sakif/habit-tracker/internal/apperror"
	"github.com/sakif/habit-tracker/internal/model"
	"github.com/sakif/habit-tracker/internal/repository"
)

var _ repository.HabitRepository = (*Store)(nil)

const habitColumns = `user_id, habit_id, name, color, completions, created_at`

var errHabitExists = &apperror.AppError{
	Err:     apperror.ErrConflict,
	Message: "Habit id already exists",
	Field:   "id",
}

// ListHabits returns the user's habits ordered by id. A user with no
// habits gets an empty, non-nil slice.
func (s *Store) ListHabits(ctx context.Context, userID string) ([]model.Habit, error) {
	habits := []model.Habit{}
	err := s.db.SelectContext(ctx, &habits, s.db.Rebind(
		`SELECT `+habitColumns+` FROM habits WHERE user_id = ? ORDER BY habit_id`), userID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing habits for user %s: %w", userID, err)
	}
	return habits, nil
}

func (s *Store) GetHabit(ctx context.Context, userID string, habitID int64) (*model.Habit, error) {
	var h model.Habit
	err := s.db.GetContext(ctx, &h, s.db.Rebind(
		`SELECT `+habitColumns+` FROM habits WHERE user_id = ? AND habit_id = ?`), userID, habitID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFoundMessage("Habit not found")
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: getting habit %d: %w", habitID, err)
	}
	return &h, nil
}

func (s *Store) CreateHabit(ctx context.Context, habit *model.Habit) error {
	habit.CreatedAt = time.Now().UTC()
	return insertHabit(ctx, s.db, habit)
}

// UpdateHabit overwrites name, color and completions of an existing habit.
func (s *Store) UpdateHabit(ctx context.Context, habit *model.Habit) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(
		`UPDATE habits SET name = ?, color = ?, completions = ?
		 WHERE user_id = ? AND habit_id = ?`),
		habit.Name, habit.Color, habit.Completions, habit.UserID, habit.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: updating habit %d: %w", habit.ID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFoundMessage("Habit not found")
	}
	return nil
}

func (s *Store) DeleteHabit(ctx context.Context, userID string, habitID int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(
		`DELETE FROM habits WHERE user_id = ? AND habit_id = ?`), userID, habitID)
	if err != nil {
		return false, fmt.Errorf("sqlstore: deleting habit %d: %w", habitID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlstore: checking rows affected: %w", err)
	}
	return n > 0, nil
}

// ReplaceHabits deletes every habit the user owns and inserts habits in
// their place. Either all of it happens or none of it does.
func (s *Store) ReplaceHabits(ctx context.Context, userID string, habits []model.Habit) error {
	now := time.Now().UTC()

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(
			`DELETE FROM habits WHERE user_id = ?`), userID); err != nil {
			return fmt.Errorf("sqlstore: clearing habits for user %s: %w", userID, err)
		}

		for i := range habits {
			habits[i].UserID = userID
			habits[i].CreatedAt = now
			if err := insertHabit(ctx, tx, &habits[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// insertHabit is shared by the pool and by transactions.
func insertHabit(ctx context.Context, ex sqlx.ExtContext, h *model.Habit) error {
	_, err := ex.ExecContext(ctx, ex.Rebind(
		`INSERT INTO habits (`+habitColumns+`) VALUES (?, ?, ?, ?, ?, ?)`),
		h.UserID, h.ID, h.Name, h.Color, h.Completions, h.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errHabitExists
		}
		return fmt.Errorf("sqlstore: inserting habit %d: %w", h.ID, err)
	}
	return nil
}
