package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sakif/habit-tracker/internal/apperror"
	"github.com/sakif/habit-tracker/internal/auth"
	"github.com/sakif/habit-tracker/internal/model"
	"github.com/sakif/habit-tracker/internal/repository"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService owns signup, signin and logout. A successful signup or signin
// also starts a session.
type AuthService struct {
	users     repository.UserRepository
	sessions  *auth.SessionManager
	passwords *auth.PasswordService
	recorder  Recorder
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	sessions *auth.SessionManager,
	passwords *auth.PasswordService,
	recorder Recorder,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		passwords: passwords,
		recorder:  orNop(recorder),
		logger:    logger,
	}
}

// AuthResult is what the handler needs to answer a signup or signin: the
// user to echo back and the session cookie to set.
type AuthResult struct {
	User    *model.User
	Session *model.Session
	Cookie  string
}

// Signup validates input, creates the user with the default habits and
// logs them in.
func (s *AuthService) Signup(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)

	if username == "" || email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "All fields are required")
	}
	if utf8.RuneCountInString(username) < MinUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("Username must be at least %d characters", MinUsernameLength))
	}
	if !emailPattern.MatchString(email) {
		return nil, apperror.ValidationFailed("email", "Please enter a valid email address")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}

	// Pre-check for a friendly error; the UNIQUE constraint still catches races.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		s.recorder.AuthEvent("signup", "duplicate")
		return nil, apperror.DuplicateEmail()
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking email: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperror.ValidationFailed("password",
				fmt.Sprintf("Password must be %d bytes or fewer", auth.MaxPasswordBytes))
		}
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	user := &model.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.users.CreateWithHabits(ctx, user, model.DefaultHabits("")); err != nil {
		if errors.Is(err, apperror.ErrDuplicateEmail) {
			s.recorder.AuthEvent("signup", "duplicate")
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user signed up",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)
	s.recorder.AuthEvent("signup", "success")

	return s.startSession(ctx, user)
}

// Signin checks credentials and starts a session. An unknown email and a
// wrong password produce the same error.
func (s *AuthService) Signin(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.recorder.AuthEvent("signin", "failure")
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.recorder.AuthEvent("signin", "failure")
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: verifying password for user %s: %w", user.ID, err)
	}

	s.recorder.AuthEvent("signin", "success")
	return s.startSession(ctx, user)
}

// Logout destroys the session. Store failures are returned so the caller
// can report them.
func (s *AuthService) Logout(ctx context.Context, sess *model.Session) error {
	if err := s.sessions.Destroy(ctx, sess.Token); err != nil {
		return fmt.Errorf("service/auth: %w", err)
	}
	s.logger.Info("user logged out", slog.String("userID", sess.UserID))
	s.recorder.AuthEvent("logout", "success")
	return nil
}

func (s *AuthService) startSession(ctx context.Context, user *model.User) (*AuthResult, error) {
	sess, cookie, err := s.sessions.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("service/auth: starting session for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Session: sess, Cookie: cookie}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
