package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/habit-tracker/internal/model"
	"github.com/sakif/habit-tracker/internal/repository"
)

var _ repository.ContactRepository = (*Store)(nil)

// CreateContact stores a contact-form submission, assigning its ID and
// CreatedAt.
func (s *Store) CreateContact(ctx context.Context, msg *model.ContactMessage) error {
	msg.ID = xid.New().String()
	msg.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO contact_messages (id, first_name, last_name, email, subject, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		msg.ID, msg.FirstName, msg.LastName, msg.Email, msg.Subject, msg.Message, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: inserting contact message: %w", err)
	}
	return nil
}

// CountContacts returns how many messages have been stored.
func (s *Store) CountContacts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM contact_messages`); err != nil {
		return 0, fmt.Errorf("sqlstore: counting contact messages: %w", err)
	}
	return n, nil
}
