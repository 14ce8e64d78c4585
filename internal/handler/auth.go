package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/habit-tracker/internal/apperror"
	"github.com/sakif/habit-tracker/internal/auth"
	"github.com/sakif/habit-tracker/internal/model"
	"github.com/sakif/habit-tracker/internal/service"
)

// AuthService is the slice of service.AuthService the handlers use.
type AuthService interface {
	Signup(ctx context.Context, username, email, password string) (*service.AuthResult, error)
	Signin(ctx context.Context, email, password string) (*service.AuthResult, error)
	Logout(ctx context.Context, sess *model.Session) error
}

type AuthHandler struct {
	auth   AuthService
	logger *slog.Logger
}

func NewAuthHandler(svc AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, logger: logger}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	User    model.UserView `json:"user"`
}

// HandleSignup handles POST /api/signup.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, r, err, "Server error during signup")
		return
	}

	res, err := h.auth.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, r, err, "Server error during signup")
		return
	}

	auth.SetCookie(w, res.Cookie, res.Session.ExpiresAt)
	writeJSON(w, http.StatusOK, userResponse{
		Success: true,
		Message: "Account created successfully",
		User:    res.User.View(),
	})
}

// HandleSignin handles POST /api/signin.
func (h *AuthHandler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, r, err, "Server error during signin")
		return
	}

	res, err := h.auth.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, r, err, "Server error during signin")
		return
	}

	auth.SetCookie(w, res.Cookie, res.Session.ExpiresAt)
	writeJSON(w, http.StatusOK, userResponse{
		Success: true,
		Message: "Login successful",
		User:    res.User.View(),
	})
}

// HandleLogout handles POST /api/logout. The cookie is only cleared once
// the session is really gone.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, r, apperror.Unauthorized(), "Error logging out")
		return
	}

	if err := h.auth.Logout(r.Context(), sess); err != nil {
		writeError(w, h.logger, r, err, "Error logging out")
		return
	}

	auth.ClearCookie(w)
	writeOK(w, "Logged out successfully")
}

// HandleMe handles GET /api/me.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, r, apperror.Unauthorized(), "Server error")
		return
	}
	writeJSON(w, http.StatusOK, userResponse{Success: true, User: sess.User()})
}
