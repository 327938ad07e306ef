package sqlxrepos

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/eaduck/eaduck/core/notification"
)

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) notification.Repository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(notif notification.Notification) (notification.Notification, error) {
	query := `
		INSERT INTO notification (user_id, task_id, title, message, type, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := repo.db.Get(
		&notif.ID, query,
		notif.UserID, notif.TaskID, notif.Title, notif.Message, notif.Type, notif.IsRead, notif.CreatedAt,
	)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "creating notification")
	}
	return notif, nil
}

func (repo *notificationRepository) QueryAllNotifications() ([]notification.Notification, error) {
	var notifs []notification.Notification
	if err := repo.db.Select(&notifs, `SELECT * FROM notification ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	return notifs, nil
}

func (repo *notificationRepository) QueryNotificationsByUserID(userID int) ([]notification.Notification, error) {
	var notifs []notification.Notification
	query := `SELECT * FROM notification WHERE user_id = $1 ORDER BY id`
	if err := repo.db.Select(&notifs, query, userID); err != nil {
		return nil, errors.Wrap(err, "querying notifications by user")
	}
	return notifs, nil
}

func (repo *notificationRepository) GetNotificationByID(id int) (notification.Notification, error) {
	var notif notification.Notification
	if err := repo.db.Get(&notif, `SELECT * FROM notification WHERE id = $1`, id); err != nil {
		if isNoRows(err) {
			return notification.Notification{}, notification.ErrNotFound
		}
		return notification.Notification{}, errors.Wrap(err, "getting notification")
	}
	return notif, nil
}

func (repo *notificationRepository) UpdateNotification(notif notification.Notification) (notification.Notification, error) {
	query := `UPDATE notification SET is_read = $1 WHERE id = $2`
	res, err := repo.db.Exec(query, notif.IsRead, notif.ID)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "updating notification")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notification.Notification{}, notification.ErrNotFound
	}
	return notif, nil
}

func (repo *notificationRepository) DeleteNotificationsByID(ids ...int) error {
	if _, err := repo.db.Exec(`DELETE FROM notification WHERE id = ANY($1)`, pqIntArray(ids)); err != nil {
		return errors.Wrap(err, "deleting notifications")
	}
	return nil
}

func (repo *notificationRepository) CountNotifications() (int, error) {
	var count int
	if err := repo.db.Get(&count, `SELECT COUNT(*) FROM notification`); err != nil {
		return 0, errors.Wrap(err, "counting notifications")
	}
	return count, nil
}
