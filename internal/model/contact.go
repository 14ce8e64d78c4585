package model

import "time"

// ContactMessage is a submission from the public "Contact Us" form.
// It is write-once and has no relation to users or habits.
type ContactMessage struct {
	ID        string    `json:"id"        db:"id"`
	FirstName string    `json:"firstName" db:"first_name"`
	LastName  string    `json:"lastName"  db:"last_name"`
	Email     string    `json:"email"     db:"email"`
	Subject   string    `json:"subject"   db:"subject"`
	Message   string    `json:"message"   db:"message"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
