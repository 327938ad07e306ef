package message

import (
	"time"

	"github.com/eaduck/eaduck/core"
)

type Message struct {
	ID          int       `json:"id" db:"id"`
	SenderID    int       `json:"sender_id" db:"sender_id"`
	RecipientID int       `json:"recipient_id" db:"recipient_id"`
	Content     string    `json:"content" db:"content"`
	IsRead      bool      `json:"is_read" db:"is_read"`
	SentAt      time.Time `json:"sent_at" db:"sent_at"`
}

type NewMessage struct {
	RecipientID int    `json:"recipient_id" validate:"required"`
	Content     string `json:"content" validate:"required"`
}

func (nm *NewMessage) Validate() error {
	nm.Content = core.CleanString(nm.Content)
	return core.Validate.Struct(nm)
}
