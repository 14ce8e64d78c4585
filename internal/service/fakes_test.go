package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/sakif/habit-tracker/internal/apperror"
	"github.com/sakif/habit-tracker/internal/model"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// Hand-written in-memory implementations of the repository interfaces.
// failWith makes every call return that error, to drive the 500 paths.

var errDBDown = errors.New("database is down")

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type fakeUserRepo struct {
	users    map[string]*model.User // by email
	habits   map[string][]model.Habit
	nextID   int
	failWith error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[string]*model.User),
		habits: make(map[string][]model.Habit),
	}
}

func (f *fakeUserRepo) CreateWithHabits(_ context.Context, user *model.User, habits []model.Habit) error {
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.users[user.Email]; ok {
		return apperror.DuplicateEmail()
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	stored := *user
	f.users[user.Email] = &stored
	for i := range habits {
		habits[i].UserID = user.ID
	}
	f.habits[user.ID] = habits
	return nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	u, ok := f.users[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	result := *u
	return &result, nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

type habitKey struct {
	userID string
	id     int64
}

type fakeHabitRepo struct {
	habits   map[habitKey]model.Habit
	replaced int
	failWith error
}

func newFakeHabitRepo() *fakeHabitRepo {
	return &fakeHabitRepo{habits: make(map[habitKey]model.Habit)}
}

func (f *fakeHabitRepo) ListHabits(_ context.Context, userID string) ([]model.Habit, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []model.Habit{}
	for k, h := range f.habits {
		if k.userID == userID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeHabitRepo) GetHabit(_ context.Context, userID string, id int64) (*model.Habit, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	h, ok := f.habits[habitKey{userID, id}]
	if !ok {
		return nil, apperror.NotFoundMessage("Habit not found")
	}
	return &h, nil
}

func (f *fakeHabitRepo) CreateHabit(_ context.Context, h *model.Habit) error {
	if f.failWith != nil {
		return f.failWith
	}
	k := habitKey{h.UserID, h.ID}
	if _, ok := f.habits[k]; ok {
		return &apperror.AppError{Err: apperror.ErrConflict, Message: "Habit id already exists"}
	}
	f.habits[k] = *h
	return nil
}

func (f *fakeHabitRepo) UpdateHabit(_ context.Context, h *model.Habit) error {
	if f.failWith != nil {
		return f.failWith
	}
	k := habitKey{h.UserID, h.ID}
	if _, ok := f.habits[k]; !ok {
		return apperror.NotFoundMessage("Habit not found")
	}
	f.habits[k] = *h
	return nil
}

func (f *fakeHabitRepo) DeleteHabit(_ context.Context, userID string, id int64) (bool, error) {
	if f.failWith != nil {
		return false, f.failWith
	}
	k := habitKey{userID, id}
	_, ok := f.habits[k]
	delete(f.habits, k)
	return ok, nil
}

func (f *fakeHabitRepo) ReplaceHabits(_ context.Context, userID string, habits []model.Habit) error {
	if f.failWith != nil {
		return f.failWith
	}
	for k := range f.habits {
		if k.userID == userID {
			delete(f.habits, k)
		}
	}
	for _, h := range habits {
		h.UserID = userID
		f.habits[habitKey{userID, h.ID}] = h
	}
	f.replaced++
	return nil
}

type fakeContactRepo struct {
	messages []model.ContactMessage
	failWith error
}

func (f *fakeContactRepo) CreateContact(_ context.Context, msg *model.ContactMessage) error {
	if f.failWith != nil {
		return f.failWith
	}
	msg.ID = fmt.Sprintf("msg-%d", len(f.messages)+1)
	f.messages = append(f.messages, *msg)
	return nil
}

// fakeRecorder counts events by name.
type fakeRecorder struct {
	mu     sync.Mutex
	events map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{events: make(map[string]int)}
}

func (r *fakeRecorder) AuthEvent(event, outcome string) { r.inc("auth:" + event + ":" + outcome) }
func (r *fakeRecorder) HabitWrite(op string)            { r.inc("habit:" + op) }
func (r *fakeRecorder) ContactReceived()                { r.inc("contact") }

func (r *fakeRecorder) inc(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[key]++
}

func (r *fakeRecorder) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[key]
}
