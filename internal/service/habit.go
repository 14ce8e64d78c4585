package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sakif/habit-tracker/internal/apperror"
	"github.com/sakif/habit-tracker/internal/model"
	"github.com/sakif/habit-tracker/internal/repository"
)

const MaxHabitNameLength = 100

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// HabitService applies validation and defaults on top of the habit store.
// The userID argument always comes from the session, never the request body.
type HabitService struct {
	repo     repository.HabitRepository
	recorder Recorder
	logger   *slog.Logger
}

func NewHabitService(repo repository.HabitRepository, recorder Recorder, logger *slog.Logger) *HabitService {
	return &HabitService{
		repo:     repo,
		recorder: orNop(recorder),
		logger:   logger,
	}
}

func (s *HabitService) List(ctx context.Context, userID string) ([]model.Habit, error) {
	habits, err := s.repo.ListHabits(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/habit: listing: %w", err)
	}
	return habits, nil
}

// ReplaceAll swaps the user's habits for the given set. The payload is
// validated as a whole before anything is written.
func (s *HabitService) ReplaceAll(ctx context.Context, userID string, habits []model.Habit) error {
	seen := make(map[int64]struct{}, len(habits))
	normalized := make([]model.Habit, 0, len(habits))

	for _, h := range habits {
		n, err := normalizeHabit(h)
		if err != nil {
			return err
		}
		if _, dup := seen[n.ID]; dup {
			return apperror.ValidationFailed("id", fmt.Sprintf("Duplicate habit id %d", n.ID))
		}
		seen[n.ID] = struct{}{}
		normalized = append(normalized, n)
	}

	if err := s.repo.ReplaceHabits(ctx, userID, normalized); err != nil {
		s.logger.Error("failed to replace habits",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("service/habit: replacing: %w", err)
	}

	s.recorder.HabitWrite("replace")
	s.logger.Info("habits saved",
		slog.String("userID", userID),
		slog.Int("count", len(normalized)),
	)
	return nil
}

// Create adds a single habit. An empty color gets DefaultHabitColor.
func (s *HabitService) Create(ctx context.Context, userID string, id int64, name, color string) (*model.Habit, error) {
	h, err := normalizeHabit(model.Habit{ID: id, Name: name, Color: color})
	if err != nil {
		return nil, err
	}
	h.UserID = userID

	if err := s.repo.CreateHabit(ctx, &h); err != nil {
		return nil, fmt.Errorf("service/habit: creating %d: %w", id, err)
	}

	s.recorder.HabitWrite("create")
	return &h, nil
}

// Update applies the non-empty fields of patch to an existing habit.
func (s *HabitService) Update(ctx context.Context, userID string, id int64, patch model.HabitPatch) (*model.Habit, error) {
	if id <= 0 {
		return nil, apperror.ValidationFailed("id", "Habit id must be a positive integer")
	}

	h, err := s.repo.GetHabit(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("service/habit: loading %d: %w", id, err)
	}

	if patch.Name != nil {
		if name := strings.TrimSpace(*patch.Name); name != "" {
			if len(name) > MaxHabitNameLength {
				return nil, apperror.ValidationFailed("name",
					fmt.Sprintf("Habit name must be %d characters or less", MaxHabitNameLength))
			}
			h.Name = name
		}
	}
	if patch.Color != nil && *patch.Color != "" {
		if !colorPattern.MatchString(*patch.Color) {
			return nil, invalidColor()
		}
		h.Color = *patch.Color
	}
	if patch.Completions != nil {
		h.Completions = *patch.Completions
		if h.Completions == nil {
			h.Completions = model.Completions{}
		}
	}

	if err := s.repo.UpdateHabit(ctx, h); err != nil {
		return nil, fmt.Errorf("service/habit: updating %d: %w", id, err)
	}

	s.recorder.HabitWrite("update")
	return h, nil
}

// Delete removes a habit. Deleting a habit that does not exist succeeds.
func (s *HabitService) Delete(ctx context.Context, userID string, id int64) error {
	if id <= 0 {
		return apperror.ValidationFailed("id", "Habit id must be a positive integer")
	}

	removed, err := s.repo.DeleteHabit(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("service/habit: deleting %d: %w", id, err)
	}
	if removed {
		s.recorder.HabitWrite("delete")
	}
	return nil
}

func normalizeHabit(h model.Habit) (model.Habit, error) {
	if h.ID <= 0 {
		return h, apperror.ValidationFailed("id", "Habit id must be a positive integer")
	}

	h.Name = strings.TrimSpace(h.Name)
	if h.Name == "" {
		return h, apperror.ValidationFailed("name", "Habit name is required")
	}
	if len(h.Name) > MaxHabitNameLength {
		return h, apperror.ValidationFailed("name",
			fmt.Sprintf("Habit name must be %d characters or less", MaxHabitNameLength))
	}

	if h.Color == "" {
		h.Color = model.DefaultHabitColor
	} else if !colorPattern.MatchString(h.Color) {
		return h, invalidColor()
	}

	if h.Completions == nil {
		h.Completions = model.Completions{}
	}
	return h, nil
}

func invalidColor() error {
	return apperror.ValidationFailed("color", "Color must be a hex value like #3b82f6")
}
