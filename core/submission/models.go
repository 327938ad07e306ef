package submission

import (
	"fmt"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/eaduck/eaduck/core"
)

// MaxFileSize caps uploaded attachments at 8 MiB.
const MaxFileSize = 8 * 1024 * 1024

// allowedContentTypes lists the attachment MIME types students may upload.
var allowedContentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-powerpoint":                                     true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"text/plain":                   true,
	"image/jpeg":                   true,
	"image/png":                    true,
	"application/zip":              true,
	"application/x-rar-compressed": true,
}

type Submission struct {
	ID          int          `json:"id" db:"id"`
	TaskID      int          `json:"task_id" db:"task_id"`
	StudentID   int          `json:"student_id" db:"student_id"`
	Content     string       `json:"content" db:"content"`
	FileURL     null.String  `json:"file_url,omitempty" db:"file_url"`
	Grade       null.Float64 `json:"grade,omitempty" db:"grade"`
	Feedback    null.String  `json:"feedback,omitempty" db:"feedback"`
	EvaluatedAt null.Time    `json:"evaluated_at,omitempty" db:"evaluated_at"`
	SubmittedAt time.Time    `json:"submitted_at" db:"submitted_at"`
}

func (s Submission) IsEvaluated() bool { return s.EvaluatedAt.Valid }

// File is an uploaded attachment pending validation and storage.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f *File) Validate() error {
	if len(f.Data) > MaxFileSize {
		err := fmt.Errorf("file exceeds the maximum size of %d bytes", MaxFileSize)
		return core.NewValidationError(err, core.FieldError{Field: "file", Error: err.Error()})
	}
	if !allowedContentTypes[f.ContentType] {
		err := fmt.Errorf("file type %q is not allowed", f.ContentType)
		return core.NewValidationError(err, core.FieldError{Field: "file", Error: err.Error()})
	}
	return nil
}

type NewSubmission struct {
	TaskID  int    `json:"task_id" validate:"required"`
	Content string `json:"content"`
	File    *File  `json:"-"`
}

func (ns *NewSubmission) Validate() error {
	ns.Content = core.CleanString(ns.Content)
	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	if ns.File != nil {
		return ns.File.Validate()
	}
	return nil
}

type Evaluation struct {
	Grade    float64 `json:"grade" validate:"min=0,max=100"`
	Feedback string  `json:"feedback"`
}

func (ev *Evaluation) Validate() error {
	ev.Feedback = core.CleanString(ev.Feedback)
	return core.Validate.Struct(ev)
}
