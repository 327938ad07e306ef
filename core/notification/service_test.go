package notification_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/eaduck/eaduck/core"
	"github.com/eaduck/eaduck/core/classroom"
	"github.com/eaduck/eaduck/core/notification"
	"github.com/eaduck/eaduck/core/user"
	logsvc "github.com/eaduck/eaduck/services/logger"
	dummydb "github.com/eaduck/eaduck/storage/database/dummy"
)

// flakyRepo fails CreateNotification for one user and delegates the rest.
type flakyRepo struct {
	notification.Repository
	failForUserID int
}

func (repo *flakyRepo) CreateNotification(notif notification.Notification) (notification.Notification, error) {
	if notif.UserID == repo.failForUserID {
		return notification.Notification{}, errors.New("storage exploded")
	}
	return repo.Repository.CreateNotification(notif)
}

func newTestEnv(t *testing.T) (notification.Repository, classroom.Repository, user.Repository) {
	t.Helper()
	core.Conf = &core.Config{TestMode: true, AppName: "EaDuck", RootAdminID: 1}

	db, err := dummydb.Open()
	require.NoError(t, err)
	return dummydb.NewNotificationRepository(db), dummydb.NewClassroomRepository(db), dummydb.NewUserRepository(db)
}

func TestNotifyClassroomSurvivesPartialFailure(t *testing.T) {
	notifRepo, roomRepo, usrRepo := newTestEnv(t)

	var students []user.User
	for _, name := range []string{"alice", "bob", "carol"} {
		usr, err := usrRepo.CreateUser(user.User{Name: name, Email: name + "@eaduck.test", Role: user.RoleStudent, IsActive: true})
		require.NoError(t, err)
		students = append(students, usr)
	}
	room, err := roomRepo.CreateClassroom(classroom.Classroom{
		Name: "6th Grade A", AcademicYear: "2020-2021",
		StudentIDs: []int{students[0].ID, students[1].ID, students[2].ID},
	})
	require.NoError(t, err)

	flaky := &flakyRepo{Repository: notifRepo, failForUserID: students[1].ID}
	svc := notification.NewService(flaky, roomRepo, logsvc.NewStdLogger(nil))

	svc.NotifyClassroom(room.ID, null.Int{}, notification.TypeSystem, "Snow day", "School is closed tomorrow.")

	// bob's write failed but alice and carol still got theirs
	for i, want := range []int{1, 0, 1} {
		notifs, err := notifRepo.QueryNotificationsByUserID(students[i].ID)
		require.NoError(t, err)
		assert.Len(t, notifs, want)
	}
}

func TestNotifyClassroomUnknownRoom(t *testing.T) {
	notifRepo, roomRepo, _ := newTestEnv(t)

	svc := notification.NewService(notifRepo, roomRepo, logsvc.NewStdLogger(nil))
	svc.NotifyClassroom(404, null.Int{}, notification.TypeSystem, "Void", "nobody hears this")

	count, err := notifRepo.CountNotifications()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkRead(t *testing.T) {
	notifRepo, roomRepo, usrRepo := newTestEnv(t)

	usr, err := usrRepo.CreateUser(user.User{Name: "alice", Email: "alice@eaduck.test", Role: user.RoleStudent, IsActive: true})
	require.NoError(t, err)

	svc := notification.NewService(notifRepo, roomRepo, logsvc.NewStdLogger(nil))
	svc.NotifyUser(usr.ID, null.Int{}, notification.TypeSystem, "Welcome", "Glad to have you.")

	notifs, err := svc.QueryForUser(usr)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.False(t, notifs[0].IsRead)

	notif, err := svc.MarkRead(notifs[0].ID)
	require.NoError(t, err)
	assert.True(t, notif.IsRead)

	_, err = svc.MarkRead(404)
	assert.Equal(t, notification.ErrNotFound, err)
}
