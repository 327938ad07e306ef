package dummydb

import (
	"sort"

	"github.com/eaduck/eaduck/core/message"
)

type messageRepository struct {
	db *messageTable
}

var _ message.Repository = (*messageRepository)(nil) // interface compliance check

func NewMessageRepository(db *DB) message.Repository {
	return &messageRepository{db: db.message}
}

func (repo *messageRepository) query() []message.Message {
	msgs := make([]message.Message, 0, len(repo.db.table))
	for _, msg := range repo.db.table {
		msgs = append(msgs, *msg)
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].ID < msgs[j].ID })
	return msgs
}

func (repo *messageRepository) CreateMessage(msg message.Message) (message.Message, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	msg.ID = repo.db.pkCount
	repo.db.table[msg.ID] = &msg
	return msg, nil
}

func (repo *messageRepository) GetMessageByID(id int) (message.Message, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if msg, ok := repo.db.table[id]; ok {
		return *msg, nil
	}
	return message.Message{}, message.ErrNotFound
}

func (repo *messageRepository) QueryMessagesBySenderID(userID int) ([]message.Message, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var msgs []message.Message
	for _, msg := range repo.query() {
		if msg.SenderID == userID {
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

func (repo *messageRepository) QueryMessagesByRecipientID(userID int) ([]message.Message, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var msgs []message.Message
	for _, msg := range repo.query() {
		if msg.RecipientID == userID {
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

func (repo *messageRepository) UpdateMessage(msg message.Message) (message.Message, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[msg.ID]; !ok {
		return message.Message{}, message.ErrNotFound
	}
	repo.db.table[msg.ID] = &msg
	return msg, nil
}
