package task

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/eaduck/eaduck/core"
)

// Status classifies a task for a student's dashboard.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusLate      Status = "late"
	StatusPending   Status = "pending"
)

// Task types
const (
	TypeAssignment   = "ASSIGNMENT"
	TypeExam         = "EXAM"
	TypeForum        = "FORUM"
	TypeAnnouncement = "ANNOUNCEMENT"
)

type Task struct {
	ID          int       `json:"id" db:"id"`
	ClassroomID int       `json:"classroom_id" db:"classroom_id"`
	CreatedByID int       `json:"created_by_id" db:"created_by_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Type        string    `json:"type" db:"type"`
	DueDate     null.Time `json:"due_date,omitempty" db:"due_date"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	// denormalized for API responses
	ClassroomName string `json:"classroom_name,omitempty" db:"-"`
}

// Classify determines the task's status for a student. A submitted task is
// completed regardless of timing; otherwise lateness compares calendar dates,
// so a task is never late on its due date.
func (t Task) Classify(hasSubmission bool, now time.Time) Status {
	if hasSubmission {
		return StatusCompleted
	}
	if t.DueDate.Valid && dateOnly(now).After(dateOnly(t.DueDate.Time)) {
		return StatusLate
	}
	return StatusPending
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type NewTask struct {
	ClassroomID int       `json:"classroom_id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Type        string    `json:"type" validate:"omitempty,oneof=ASSIGNMENT EXAM FORUM ANNOUNCEMENT"`
	DueDate     null.Time `json:"due_date"`
}

func (nt *NewTask) Validate() error {
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	return core.Validate.Struct(nt)
}

type UpdateTask struct {
	ClassroomID int       `json:"classroom_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type" validate:"omitempty,oneof=ASSIGNMENT EXAM FORUM ANNOUNCEMENT"`
	DueDate     null.Time `json:"due_date"`
}

func (ut *UpdateTask) Validate() error {
	ut.Title = core.CleanString(ut.Title)
	ut.Description = core.CleanString(ut.Description)
	return core.Validate.Struct(ut)
}
