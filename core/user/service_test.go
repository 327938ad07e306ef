package user_test

import (
	"net/mail"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eaduck/eaduck/core"
	"github.com/eaduck/eaduck/core/user"
	emailsvc "github.com/eaduck/eaduck/services/email"
	logsvc "github.com/eaduck/eaduck/services/logger"
	dummydb "github.com/eaduck/eaduck/storage/database/dummy"
)

func newTestService(t *testing.T) (*user.Service, user.Repository) {
	t.Helper()
	core.Conf = &core.Config{
		TestMode:                  true,
		AppName:                   "EaDuck",
		SecretKey:                 []byte("s3cr3t"),
		FrontendBaseURL:           "http://localhost:4200",
		RootAdminID:               1,
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		DefaultFromEmail:          mail.Address{Name: "EaDuck", Address: "noreply@eaduck.test"},
	}
	emailsvc.ClearSentMessages()

	db, err := dummydb.Open()
	require.NoError(t, err)
	repo := dummydb.NewUserRepository(db)
	return user.NewService(repo, emailsvc.NewConsoleService(), logsvc.NewStdLogger(nil)), repo
}

func TestRegister(t *testing.T) {
	svc, _ := newTestService(t)

	usr, err := svc.Register(user.NewUser{Email: "jdoe2021@eaduck.test", Password: "hunter2"})
	require.NoError(t, err)
	assert.NotZero(t, usr.ID)
	assert.Equal(t, user.RoleStudent, usr.Role)
	assert.Equal(t, "jdoe", usr.Name)
	assert.True(t, usr.IsActive)
	assert.NoError(t, usr.CheckPassword("hunter2"))
	assert.Error(t, usr.CheckPassword("wrong"))

	teacher, err := svc.Register(user.NewUser{Name: "Jane", Email: "jane@eaduck.test", Password: "pwd", Role: user.RoleTeacher})
	require.NoError(t, err)
	assert.Equal(t, user.RoleTeacher, teacher.Role)
	assert.Equal(t, "Jane", teacher.Name)
}

func TestNewUserValidateUniqueEmail(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(user.NewUser{Email: "jdoe@eaduck.test", Password: "pwd"})
	require.NoError(t, err)

	nu := user.NewUser{Email: "jdoe@eaduck.test", Password: "Hunter2!x"}
	err = nu.Validate(svc)
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Fields, 1)
	assert.Equal(t, "email", vErr.Fields[0].Field)
}

func TestGetByEmailIsCaseInsensitive(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(user.NewUser{Email: "jdoe@eaduck.test", Password: "pwd"})
	require.NoError(t, err)

	usr, err := svc.GetByEmail("  JDoe@EaDuck.Test ")
	require.NoError(t, err)
	assert.Equal(t, "jdoe@eaduck.test", usr.Email)
}

func TestSetRoleAndStatus(t *testing.T) {
	svc, _ := newTestService(t)

	usr, err := svc.Register(user.NewUser{Email: "jdoe@eaduck.test", Password: "pwd"})
	require.NoError(t, err)

	usr, err = svc.SetRole(usr.ID, user.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, user.RoleTeacher, usr.Role)

	usr, err = svc.SetStatus(usr.ID, false)
	require.NoError(t, err)
	assert.False(t, usr.IsActive)

	_, err = svc.SetRole(404, user.RoleTeacher)
	assert.Equal(t, user.ErrNotFound, err)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _ := newTestService(t)

	usr, err := svc.Register(user.NewUser{Email: "jdoe@eaduck.test", Password: "old"})
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset("jdoe@eaduck.test"))
	require.Len(t, emailsvc.SentMessages, 1)

	// pull uid and token out of the emailed link
	text := emailsvc.SentMessages[0].TextContent
	link := text[strings.Index(text, "http"):]
	u, err := url.Parse(link)
	require.NoError(t, err)
	uid, token := u.Query().Get("uid"), u.Query().Get("token")
	require.NotEmpty(t, uid)
	require.NotEmpty(t, token)

	usr, err = svc.ConfirmPasswordReset(user.ResetPassword{UID: uid, Token: token, Password: "new"})
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword("new"))
	assert.Error(t, usr.CheckPassword("old"))

	// the token is single use: the password change invalidates it
	_, err = svc.ConfirmPasswordReset(user.ResetPassword{UID: uid, Token: token, Password: "again"})
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	svc, _ := newTestService(t)

	assert.Equal(t, user.ErrNotFound, svc.RequestPasswordReset("ghost@eaduck.test"))
	assert.Empty(t, emailsvc.SentMessages)
}
