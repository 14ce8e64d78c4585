package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/habit-tracker/internal/apperror"
	"github.com/sakif/habit-tracker/internal/model"
)

func newTestHabitService() (*HabitService, *fakeHabitRepo, *fakeRecorder) {
	repo := newFakeHabitRepo()
	rec := newFakeRecorder()
	return NewHabitService(repo, rec, discardLogger()), repo, rec
}

func ptr[T any](v T) *T { return &v }

// =========================================================================
// REPLACE ALL
// =========================================================================

func TestReplaceAll_NormalizesAndStores(t *testing.T) {
	svc, repo, rec := newTestHabitService()
	ctx := context.Background()

	err := svc.ReplaceAll(ctx, "u1", []model.Habit{
		{ID: 2, Name: "  Run  ", Color: ""},
		{ID: 1, Name: "Read", Color: "#ABC", Completions: model.Completions{"2026-10-16": true}},
	})
	if err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	habits, _ := svc.List(ctx, "u1")
	if len(habits) != 2 {
		t.Fatalf("List() = %d habits, want 2", len(habits))
	}
	if habits[1].Name != "Run" || habits[1].Color != model.DefaultHabitColor {
		t.Errorf("habit 2 = %+v, want trimmed name and default color", habits[1])
	}
	if habits[1].Completions == nil {
		t.Error("nil completions should be stored as an empty map")
	}
	if repo.replaced != 1 || rec.count("habit:replace") != 1 {
		t.Errorf("replaced = %d, recorded = %d", repo.replaced, rec.count("habit:replace"))
	}
}

func TestReplaceAll_IsIdempotent(t *testing.T) {
	svc, _, _ := newTestHabitService()
	ctx := context.Background()
	payload := []model.Habit{{ID: 1, Name: "Read", Color: "#3b82f6"}}

	for range 2 {
		if err := svc.ReplaceAll(ctx, "u1", payload); err != nil {
			t.Fatalf("ReplaceAll() error = %v", err)
		}
	}
	habits, _ := svc.List(ctx, "u1")
	if len(habits) != 1 {
		t.Errorf("List() = %d habits, want 1", len(habits))
	}
}

func TestReplaceAll_RejectsBadPayloadWithoutWriting(t *testing.T) {
	tests := []struct {
		name   string
		habits []model.Habit
		field  string
	}{
		{"zero id", []model.Habit{{ID: 0, Name: "x"}}, "id"},
		{"negative id", []model.Habit{{ID: -3, Name: "x"}}, "id"},
		{"blank name", []model.Habit{{ID: 1, Name: "   "}}, "name"},
		{"bad color", []model.Habit{{ID: 1, Name: "x", Color: "blue"}}, "color"},
		{"duplicate ids", []model.Habit{{ID: 1, Name: "a"}, {ID: 1, Name: "b"}}, "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestHabitService()

			err := svc.ReplaceAll(context.Background(), "u1", tt.habits)
			var appErr *apperror.AppError
			if !errors.As(err, &appErr) || !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("ReplaceAll() error = %v, want validation error", err)
			}
			if appErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", appErr.Field, tt.field)
			}
			if repo.replaced != 0 {
				t.Error("repository was called despite invalid payload")
			}
		})
	}
}

func TestReplaceAll_RepositoryFailure(t *testing.T) {
	svc, repo, _ := newTestHabitService()
	repo.failWith = errDBDown

	err := svc.ReplaceAll(context.Background(), "u1", []model.Habit{{ID: 1, Name: "x"}})
	if !errors.Is(err, errDBDown) {
		t.Errorf("ReplaceAll() error = %v, want wrapped errDBDown", err)
	}
}

// =========================================================================
// CREATE
// =========================================================================

func TestCreate_Defaults(t *testing.T) {
	svc, _, _ := newTestHabitService()

	h, err := svc.Create(context.Background(), "u1", 7, "Stretch", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if h.Color != model.DefaultHabitColor {
		t.Errorf("Color = %q, want %q", h.Color, model.DefaultHabitColor)
	}
	if h.Completions == nil || len(h.Completions) != 0 {
		t.Errorf("Completions = %v, want {}", h.Completions)
	}
	if h.UserID != "u1" {
		t.Errorf("UserID = %q, want u1", h.UserID)
	}
}

func TestCreate_DuplicateIDConflicts(t *testing.T) {
	svc, _, _ := newTestHabitService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u1", 1, "Read", ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, "u1", 1, "Read again", ""); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create(duplicate) error = %v, want ErrConflict", err)
	}
	// Same id for a different user is fine.
	if _, err := svc.Create(ctx, "u2", 1, "Read", ""); err != nil {
		t.Errorf("Create(other user) error = %v", err)
	}
}

// =========================================================================
// UPDATE
// =========================================================================

func TestUpdate_OnlySuppliedFieldsChange(t *testing.T) {
	svc, _, _ := newTestHabitService()
	ctx := context.Background()
	svc.Create(ctx, "u1", 1, "Read", "#111111")

	h, err := svc.Update(ctx, "u1", 1, model.HabitPatch{
		Name:        ptr(""),
		Completions: ptr(model.Completions{"2026-10-16": true}),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if h.Name != "Read" || h.Color != "#111111" {
		t.Errorf("unchanged fields were modified: %+v", h)
	}
	if !h.Completions["2026-10-16"] {
		t.Errorf("Completions = %v", h.Completions)
	}

	h, err = svc.Update(ctx, "u1", 1, model.HabitPatch{Name: ptr("Read more"), Color: ptr("#222")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if h.Name != "Read more" || h.Color != "#222" || !h.Completions["2026-10-16"] {
		t.Errorf("Update() = %+v", h)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _, _ := newTestHabitService()

	_, err := svc.Update(context.Background(), "u1", 42, model.HabitPatch{Name: ptr("x")})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestUpdate_BadColor(t *testing.T) {
	svc, _, _ := newTestHabitService()
	svc.Create(context.Background(), "u1", 1, "Read", "")

	_, err := svc.Update(context.Background(), "u1", 1, model.HabitPatch{Color: ptr("#12")})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Update() error = %v, want ErrValidation", err)
	}
}

// =========================================================================
// DELETE
// =========================================================================

func TestDelete_Idempotent(t *testing.T) {
	svc, _, rec := newTestHabitService()
	ctx := context.Background()
	svc.Create(ctx, "u1", 1, "Read", "")

	for range 2 {
		if err := svc.Delete(ctx, "u1", 1); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
	}
	if rec.count("habit:delete") != 1 {
		t.Errorf("recorded %d deletes, want 1", rec.count("habit:delete"))
	}
}

func TestDelete_InvalidID(t *testing.T) {
	svc, _, _ := newTestHabitService()
	if err := svc.Delete(context.Background(), "u1", 0); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Delete(0) error = %v, want ErrValidation", err)
	}
}
