package models

import "time"

// Support ticket statuses.
const (
	MessageStatusOpen   = "open"
	MessageStatusClosed = "closed"
)

// Message is a support ticket submitted through the public contact form and
// handled by administrators.
type Message struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Subject   string    `json:"subject" db:"subject"`
	Body      string    `json:"body" db:"body"`
	Status    string    `json:"status" db:"status"`
	Reply     *string   `json:"reply,omitempty" db:"reply"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
