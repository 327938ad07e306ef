package sqlxrepos

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/eaduck/eaduck/core/message"
)

type messageRepository struct {
	db *sqlx.DB
}

var _ message.Repository = (*messageRepository)(nil) // interface compliance check

func NewMessageRepository(db *sqlx.DB) message.Repository {
	return &messageRepository{db: db}
}

func (repo *messageRepository) CreateMessage(msg message.Message) (message.Message, error) {
	query := `
		INSERT INTO message (sender_id, recipient_id, content, is_read, sent_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := repo.db.Get(&msg.ID, query, msg.SenderID, msg.RecipientID, msg.Content, msg.IsRead, msg.SentAt)
	if err != nil {
		return message.Message{}, errors.Wrap(err, "creating message")
	}
	return msg, nil
}

func (repo *messageRepository) GetMessageByID(id int) (message.Message, error) {
	var msg message.Message
	if err := repo.db.Get(&msg, `SELECT * FROM message WHERE id = $1`, id); err != nil {
		if isNoRows(err) {
			return message.Message{}, message.ErrNotFound
		}
		return message.Message{}, errors.Wrap(err, "getting message")
	}
	return msg, nil
}

func (repo *messageRepository) QueryMessagesBySenderID(userID int) ([]message.Message, error) {
	var msgs []message.Message
	query := `SELECT * FROM message WHERE sender_id = $1 ORDER BY id`
	if err := repo.db.Select(&msgs, query, userID); err != nil {
		return nil, errors.Wrap(err, "querying sent messages")
	}
	return msgs, nil
}

func (repo *messageRepository) QueryMessagesByRecipientID(userID int) ([]message.Message, error) {
	var msgs []message.Message
	query := `SELECT * FROM message WHERE recipient_id = $1 ORDER BY id`
	if err := repo.db.Select(&msgs, query, userID); err != nil {
		return nil, errors.Wrap(err, "querying received messages")
	}
	return msgs, nil
}

func (repo *messageRepository) UpdateMessage(msg message.Message) (message.Message, error) {
	query := `UPDATE message SET is_read = $1 WHERE id = $2`
	res, err := repo.db.Exec(query, msg.IsRead, msg.ID)
	if err != nil {
		return message.Message{}, errors.Wrap(err, "updating message")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return message.Message{}, message.ErrNotFound
	}
	return msg, nil
}
