package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/habit-tracker/internal/model"
)

type ContactService interface {
	Submit(ctx context.Context, msg model.ContactMessage) (*model.ContactMessage, error)
}

type ContactHandler struct {
	contact ContactService
	logger  *slog.Logger
}

func NewContactHandler(contact ContactService, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{contact: contact, logger: logger}
}

// HandleSubmit handles POST /api/contact. No session is required.
func (h *ContactHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var msg model.ContactMessage
	if err := decodeJSON(w, r, &msg); err != nil {
		writeError(w, h.logger, r, err, "Error sending message")
		return
	}

	if _, err := h.contact.Submit(r.Context(), msg); err != nil {
		writeError(w, h.logger, r, err, "Error sending message")
		return
	}
	writeOK(w, "Your message has been sent successfully!")
}
