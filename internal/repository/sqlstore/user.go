package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"
	"github.com/sakif/habit-tracker/internal/apperror"
	"github.com/sakif/habit-tracker/internal/model"
	"github.com/sakif/habit-tracker/internal/repository"
)

// compile-time check that *Store implements repository.UserRepository
var _ repository.UserRepository = (*Store)(nil)

const userColumns = `id, username, email, password_hash, created_at`

// CreateWithHabits inserts user and habits in a single transaction.
// The user ID and timestamps are assigned here and written back into the
// arguments. A taken email returns apperror.ErrDuplicateEmail and leaves
// nothing behind.
func (s *Store) CreateWithHabits(ctx context.Context, user *model.User, habits []model.Habit) error {
	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.CreatedAt = now

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?)`),
			user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperror.DuplicateEmail()
			}
			return fmt.Errorf("sqlstore: inserting user: %w", err)
		}

		for i := range habits {
			habits[i].UserID = user.ID
			habits[i].CreatedAt = now
			if err := insertHabit(ctx, tx, &habits[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByEmail looks a user up by their normalized email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.db.GetContext(ctx, &u, s.db.Rebind(
		`SELECT `+userColumns+` FROM users WHERE email = ?`), email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("user", email)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: getting user by email: %w", err)
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := s.db.GetContext(ctx, &u, s.db.Rebind(
		`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: getting user %s: %w", id, err)
	}
	return &u, nil
}
