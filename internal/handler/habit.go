package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/habit-tracker/internal/apperror"
	"github.com/sakif/habit-tracker/internal/auth"
	"github.com/sakif/habit-tracker/internal/model"
)

type HabitService interface {
	List(ctx context.Context, userID string) ([]model.Habit, error)
	ReplaceAll(ctx context.Context, userID string, habits []model.Habit) error
	Create(ctx context.Context, userID string, id int64, name, color string) (*model.Habit, error)
	Update(ctx context.Context, userID string, id int64, patch model.HabitPatch) (*model.Habit, error)
	Delete(ctx context.Context, userID string, id int64) error
}

// HabitHandler serves /api/habits. Every route sits behind RequireSession
// and takes the user id from the session.
type HabitHandler struct {
	habits HabitService
	logger *slog.Logger
}

func NewHabitHandler(habits HabitService, logger *slog.Logger) *HabitHandler {
	return &HabitHandler{habits: habits, logger: logger}
}

type habitListResponse struct {
	Success bool          `json:"success"`
	Habits  []model.Habit `json:"habits"`
}

type habitResponse struct {
	Success bool         `json:"success"`
	Habit   *model.Habit `json:"habit"`
}

type saveHabitsRequest struct {
	Habits *[]model.Habit `json:"habits"`
}

type createHabitRequest struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// HandleList handles GET /api/habits.
func (h *HabitHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r, "Error fetching habits")
	if !ok {
		return
	}

	habits, err := h.habits.List(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, h.logger, r, err, "Error fetching habits")
		return
	}
	writeJSON(w, http.StatusOK, habitListResponse{Success: true, Habits: habits})
}

// HandleSave handles POST /api/habits/save, replacing the whole set.
func (h *HabitHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r, "Error saving habits")
	if !ok {
		return
	}

	var req saveHabitsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, r, err, "Error saving habits")
		return
	}
	if req.Habits == nil {
		writeError(w, h.logger, r, apperror.ValidationFailed("habits", "Habits array is required"), "Error saving habits")
		return
	}

	if err := h.habits.ReplaceAll(r.Context(), sess.UserID, *req.Habits); err != nil {
		writeError(w, h.logger, r, err, "Error saving habits")
		return
	}
	writeOK(w, "Habits saved successfully")
}

// HandleCreate handles POST /api/habits.
func (h *HabitHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r, "Error creating habit")
	if !ok {
		return
	}

	var req createHabitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, r, err, "Error creating habit")
		return
	}

	habit, err := h.habits.Create(r.Context(), sess.UserID, req.ID, req.Name, req.Color)
	if err != nil {
		writeError(w, h.logger, r, err, "Error creating habit")
		return
	}
	writeJSON(w, http.StatusOK, habitResponse{Success: true, Habit: habit})
}

// HandleUpdate handles PUT /api/habits/{id}.
func (h *HabitHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r, "Error updating habit")
	if !ok {
		return
	}

	id, err := habitID(r)
	if err != nil {
		writeError(w, h.logger, r, err, "Error updating habit")
		return
	}

	var patch model.HabitPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, h.logger, r, err, "Error updating habit")
		return
	}

	habit, err := h.habits.Update(r.Context(), sess.UserID, id, patch)
	if err != nil {
		writeError(w, h.logger, r, err, "Error updating habit")
		return
	}
	writeJSON(w, http.StatusOK, habitResponse{Success: true, Habit: habit})
}

// HandleDelete handles DELETE /api/habits/{id}.
func (h *HabitHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r, "Error deleting habit")
	if !ok {
		return
	}

	id, err := habitID(r)
	if err != nil {
		writeError(w, h.logger, r, err, "Error deleting habit")
		return
	}

	if err := h.habits.Delete(r.Context(), sess.UserID, id); err != nil {
		writeError(w, h.logger, r, err, "Error deleting habit")
		return
	}
	writeOK(w, "Habit deleted")
}

func (h *HabitHandler) session(w http.ResponseWriter, r *http.Request, fallback string) (*model.Session, bool) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, r, apperror.Unauthorized(), fallback)
	}
	return sess, ok
}

func habitID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed("id", "Invalid habit id")
	}
	return id, nil
}
