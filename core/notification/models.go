package notification

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// notification types
const (
	TypeTask       = "TASK"
	TypeSubmission = "SUBMISSION"
	TypeSystem     = "SYSTEM"
)

type Notification struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	TaskID    null.Int  `json:"task_id,omitempty" db:"task_id"`
	Title     string    `json:"title" db:"title"`
	Message   string    `json:"message" db:"message"`
	Type      string    `json:"type" db:"type"`
	IsRead    bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
