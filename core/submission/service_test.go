package submission_test

import (
	"bytes"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eaduck/eaduck/core"
	"github.com/eaduck/eaduck/core/classroom"
	"github.com/eaduck/eaduck/core/notification"
	"github.com/eaduck/eaduck/core/submission"
	"github.com/eaduck/eaduck/core/task"
	"github.com/eaduck/eaduck/core/user"
	emailsvc "github.com/eaduck/eaduck/services/email"
	logsvc "github.com/eaduck/eaduck/services/logger"
	dummydb "github.com/eaduck/eaduck/storage/database/dummy"
	"github.com/eaduck/eaduck/storage/files"
)

type testEnv struct {
	usrRepo   user.Repository
	roomRepo  classroom.Repository
	taskRepo  task.Repository
	subRepo   submission.Repository
	notifRepo notification.Repository
	store     *files.LocalStore
	subSvc    *submission.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	core.Conf = &core.Config{
		TestMode:         true,
		AppName:          "EaDuck",
		SecretKey:        []byte("s3cr3t"),
		DefaultFromEmail: mail.Address{Name: "EaDuck", Address: "noreply@eaduck.test"},
	}
	emailsvc.ClearSentMessages()

	db, err := dummydb.Open()
	require.NoError(t, err)

	store, err := files.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	env := &testEnv{
		usrRepo:   dummydb.NewUserRepository(db),
		roomRepo:  dummydb.NewClassroomRepository(db),
		taskRepo:  dummydb.NewTaskRepository(db),
		subRepo:   dummydb.NewSubmissionRepository(db),
		notifRepo: dummydb.NewNotificationRepository(db),
		store:     store,
	}
	logger := logsvc.NewStdLogger(nil)
	notifSvc := notification.NewService(env.notifRepo, env.roomRepo, logger)
	env.subSvc = submission.NewService(
		env.subRepo, env.taskRepo, env.usrRepo, store,
		notifSvc, emailsvc.NewConsoleService(), logger,
	)
	return env
}

func (env *testEnv) fixtures(t *testing.T) (teacher, alice user.User, tsk task.Task) {
	t.Helper()
	var err error
	teacher, err = env.usrRepo.CreateUser(user.User{Name: "teacher", Email: "teacher@eaduck.test", Role: user.RoleTeacher, IsActive: true})
	require.NoError(t, err)
	alice, err = env.usrRepo.CreateUser(user.User{Name: "alice", Email: "alice@eaduck.test", Role: user.RoleStudent, IsActive: true})
	require.NoError(t, err)
	room, err := env.roomRepo.CreateClassroom(classroom.Classroom{
		Name: "6th Grade A", AcademicYear: "2020-2021",
		TeacherIDs: []int{teacher.ID}, StudentIDs: []int{alice.ID},
	})
	require.NoError(t, err)
	tsk, err = env.taskRepo.CreateTask(task.Task{ClassroomID: room.ID, CreatedByID: teacher.ID, Title: "Essay"})
	require.NoError(t, err)
	return teacher, alice, tsk
}

func TestSubmit(t *testing.T) {
	env := newTestEnv(t)
	teacher, alice, tsk := env.fixtures(t)

	sub, err := env.subSvc.Submit(submission.NewSubmission{
		TaskID:  tsk.ID,
		Content: "my essay",
		File: &submission.File{
			Name:        "essay final (1).pdf",
			ContentType: "application/pdf",
			Data:        []byte("%PDF-1.4 ..."),
		},
	}, alice)
	require.NoError(t, err)
	assert.NotZero(t, sub.ID)
	assert.Equal(t, alice.ID, sub.StudentID)
	assert.False(t, sub.IsEvaluated())
	require.True(t, sub.FileURL.Valid)

	// the stored file is readable through its URL
	data, err := env.store.Open(sub.FileURL.String)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 ..."), data)

	// the task's creator is alerted in-app and by email
	notifs, err := env.notifRepo.QueryNotificationsByUserID(teacher.ID)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, notification.TypeSubmission, notifs[0].Type)
	require.Len(t, emailsvc.SentMessages, 2)
	assert.Equal(t, "New submission: Essay", emailsvc.SentMessages[0].Subject)
	assert.Equal(t, teacher.Email, emailsvc.SentMessages[0].To[0].Address)

	// and the student gets a confirmation of their own
	notifs, err = env.notifRepo.QueryNotificationsByUserID(alice.ID)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, notification.TypeSubmission, notifs[0].Type)
	assert.Equal(t, "Submission received: Essay", notifs[0].Title)
	assert.Equal(t, alice.Email, emailsvc.SentMessages[1].To[0].Address)
	assert.Contains(t, emailsvc.SentMessages[1].TextContent, "submitted successfully")
}

func TestSubmitDuplicate(t *testing.T) {
	env := newTestEnv(t)
	_, alice, tsk := env.fixtures(t)

	_, err := env.subSvc.Submit(submission.NewSubmission{TaskID: tsk.ID, Content: "first"}, alice)
	require.NoError(t, err)

	_, err = env.subSvc.Submit(submission.NewSubmission{TaskID: tsk.ID, Content: "second"}, alice)
	assert.Equal(t, submission.ErrDuplicate, err)

	subs, err := env.subRepo.QuerySubmissionsByTaskID(tsk.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "first", subs[0].Content)
}

func TestSubmitUnknownTask(t *testing.T) {
	env := newTestEnv(t)
	_, alice, _ := env.fixtures(t)

	_, err := env.subSvc.Submit(submission.NewSubmission{TaskID: 404, Content: "void"}, alice)
	assert.Equal(t, task.ErrNotFound, err)
}

func TestSubmitFileRejected(t *testing.T) {
	env := newTestEnv(t)
	_, alice, tsk := env.fixtures(t)

	tests := []struct {
		name string
		file *submission.File
	}{
		{
			name: "executable content type",
			file: &submission.File{Name: "payload.exe", ContentType: "application/x-msdownload", Data: []byte("MZ")},
		},
		{
			name: "oversized",
			file: &submission.File{
				Name:        "huge.pdf",
				ContentType: "application/pdf",
				Data:        bytes.Repeat([]byte("a"), submission.MaxFileSize+1),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.subSvc.Submit(submission.NewSubmission{TaskID: tsk.ID, File: tt.file}, alice)
			var vErr *core.ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Len(t, vErr.Fields, 1)
			assert.Equal(t, "file", vErr.Fields[0].Field)

			// nothing was persisted
			subs, err := env.subRepo.QuerySubmissionsByTaskID(tsk.ID)
			require.NoError(t, err)
			assert.Empty(t, subs)
		})
	}
}

func TestEvaluate(t *testing.T) {
	env := newTestEnv(t)
	_, alice, tsk := env.fixtures(t)

	sub, err := env.subSvc.Submit(submission.NewSubmission{TaskID: tsk.ID, Content: "my essay"}, alice)
	require.NoError(t, err)
	emailsvc.ClearSentMessages()

	sub, err = env.subSvc.Evaluate(sub.ID, submission.Evaluation{Grade: 55, Feedback: "needs work"})
	require.NoError(t, err)
	assert.True(t, sub.IsEvaluated())
	assert.Equal(t, 55.0, sub.Grade.Float64)

	// re-evaluation replaces grade and feedback
	sub, err = env.subSvc.Evaluate(sub.ID, submission.Evaluation{Grade: 72.5, Feedback: "better"})
	require.NoError(t, err)
	assert.Equal(t, 72.5, sub.Grade.Float64)
	assert.Equal(t, "better", sub.Feedback.String)

	// the student is alerted each time, on top of the submission confirmation
	notifs, err := env.notifRepo.QueryNotificationsByUserID(alice.ID)
	require.NoError(t, err)
	assert.Len(t, notifs, 3)
	require.Len(t, emailsvc.SentMessages, 2)
	assert.Equal(t, alice.Email, emailsvc.SentMessages[0].To[0].Address)
	assert.Contains(t, emailsvc.SentMessages[1].TextContent, "72.50")
}
