package message

import (
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/eaduck/eaduck/core/notification"
	"github.com/eaduck/eaduck/core/user"
)

var ErrNotFound = errors.New("message not found")

type (
	Repository interface {
		CreateMessage(msg Message) (Message, error)
		GetMessageByID(id int) (Message, error)
		QueryMessagesBySenderID(userID int) ([]Message, error)
		QueryMessagesByRecipientID(userID int) ([]Message, error)
		UpdateMessage(msg Message) (Message, error)
	}

	Notifier interface {
		NotifyUser(userID int, taskID null.Int, typ, title, message string)
	}

	Service struct {
		repo     Repository
		usrRepo  user.Repository
		notifier Notifier
	}
)

func NewService(repo Repository, usrRepo user.Repository, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		usrRepo:  usrRepo,
		notifier: notifier,
	}
}

// Send delivers a direct message. The recipient must exist and gets an
// in-app notification, best effort.
func (svc *Service) Send(nm NewMessage, sender user.User) (Message, error) {
	if _, err := svc.usrRepo.GetUserByID(nm.RecipientID); err != nil {
		return Message{}, err
	}
	msg, err := svc.repo.CreateMessage(Message{
		SenderID:    sender.ID,
		RecipientID: nm.RecipientID,
		Content:     nm.Content,
		SentAt:      time.Now().UTC(),
	})
	if err != nil {
		return Message{}, err
	}
	svc.notifier.NotifyUser(
		nm.RecipientID, null.Int{}, notification.TypeSystem,
		"New message from "+sender.Name, nm.Content,
	)
	return msg, nil
}

func (svc *Service) Sent(usr user.User) ([]Message, error) {
	return svc.repo.QueryMessagesBySenderID(usr.ID)
}

func (svc *Service) Received(usr user.User) ([]Message, error) {
	return svc.repo.QueryMessagesByRecipientID(usr.ID)
}

func (svc *Service) GetByID(id int) (Message, error) {
	return svc.repo.GetMessageByID(id)
}

func (svc *Service) MarkRead(id int) (Message, error) {
	msg, err := svc.repo.GetMessageByID(id)
	if err != nil {
		return Message{}, err
	}
	msg.IsRead = true
	return svc.repo.UpdateMessage(msg)
}
