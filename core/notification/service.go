package notification

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/eaduck/eaduck/core"
	"github.com/eaduck/eaduck/core/classroom"
	"github.com/eaduck/eaduck/core/user"
)

var ErrNotFound = errors.New("notification not found")

type (
	Repository interface {
		CreateNotification(notif Notification) (Notification, error)
		QueryAllNotifications() ([]Notification, error)
		QueryNotificationsByUserID(userID int) ([]Notification, error)
		GetNotificationByID(id int) (Notification, error)
		UpdateNotification(notif Notification) (Notification, error)
		DeleteNotificationsByID(ids ...int) error
		CountNotifications() (int, error)
	}

	Service struct {
		repo     Repository
		roomRepo classroom.Repository
		logger   core.Logger
	}
)

func NewService(repo Repository, roomRepo classroom.Repository, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		roomRepo: roomRepo,
		logger:   logger,
	}
}

// NotifyUser records an in-app notification for a single user. Failures are
// logged and never propagated; notifying must not break the triggering action.
func (svc *Service) NotifyUser(userID int, taskID null.Int, typ, title, message string) {
	notif := Notification{
		UserID:    userID,
		TaskID:    taskID,
		Title:     title,
		Message:   message,
		Type:      typ,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := svc.repo.CreateNotification(notif); err != nil {
		svc.logger.Error(fmt.Sprintf("notifying user %d: %v", userID, err), err)
	}
}

// NotifyClassroom fans a notification out to every student in the classroom.
// A failed recipient is logged and skipped; the fan-out continues.
func (svc *Service) NotifyClassroom(roomID int, taskID null.Int, typ, title, message string) {
	room, err := svc.roomRepo.GetClassroomByID(roomID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("notifying classroom %d: %v", roomID, err), err)
		return
	}
	for _, uid := range room.StudentIDs {
		svc.NotifyUser(uid, taskID, typ, title, message)
	}
}

// QueryForUser returns all notifications for an admin, otherwise the user's own.
func (svc *Service) QueryForUser(usr user.User) ([]Notification, error) {
	if usr.IsAdmin() {
		return svc.repo.QueryAllNotifications()
	}
	return svc.repo.QueryNotificationsByUserID(usr.ID)
}

func (svc *Service) GetByID(id int) (Notification, error) {
	return svc.repo.GetNotificationByID(id)
}

func (svc *Service) MarkRead(id int) (Notification, error) {
	notif, err := svc.repo.GetNotificationByID(id)
	if err != nil {
		return Notification{}, err
	}
	notif.IsRead = true
	return svc.repo.UpdateNotification(notif)
}

func (svc *Service) Count() (int, error) {
	return svc.repo.CountNotifications()
}
