package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/habit-tracker/internal/apperror"
	"github.com/sakif/habit-tracker/internal/model"
	"github.com/sakif/habit-tracker/internal/repository"
)

type ContactService struct {
	repo     repository.ContactRepository
	recorder Recorder
	logger   *slog.Logger
}

func NewContactService(repo repository.ContactRepository, recorder Recorder, logger *slog.Logger) *ContactService {
	return &ContactService{
		repo:     repo,
		recorder: orNop(recorder),
		logger:   logger,
	}
}

// Submit stores a contact-form message. Every field must be non-blank; the
// values are stored as given.
func (s *ContactService) Submit(ctx context.Context, msg model.ContactMessage) (*model.ContactMessage, error) {
	for _, v := range []string{msg.FirstName, msg.LastName, msg.Email, msg.Subject, msg.Message} {
		if strings.TrimSpace(v) == "" {
			return nil, apperror.ValidationFailed("", "All fields are required")
		}
	}

	if err := s.repo.CreateContact(ctx, &msg); err != nil {
		return nil, fmt.Errorf("service/contact: storing message: %w", err)
	}

	s.logger.Info("contact message received",
		slog.String("id", msg.ID),
		slog.String("subject", msg.Subject),
	)
	s.recorder.ContactReceived()
	return &msg, nil
}
