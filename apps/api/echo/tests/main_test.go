package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"net/textproto"
	"os"
	"strconv"
	"testing"
	"time"

	echoapi "github.com/eaduck/eaduck/apps/api/echo"
	"github.com/eaduck/eaduck/core"
	"github.com/eaduck/eaduck/core/classroom"
	"github.com/eaduck/eaduck/core/message"
	"github.com/eaduck/eaduck/core/notification"
	"github.com/eaduck/eaduck/core/submission"
	"github.com/eaduck/eaduck/core/task"
	"github.com/eaduck/eaduck/core/user"
	emailsvc "github.com/eaduck/eaduck/services/email"
	logsvc "github.com/eaduck/eaduck/services/logger"
	dummydb "github.com/eaduck/eaduck/storage/database/dummy"
	"github.com/eaduck/eaduck/storage/files"
)

var (
	app *echoapi.Server

	usrRepo   user.Repository
	roomRepo  classroom.Repository
	taskRepo  task.Repository
	subRepo   submission.Repository
	notifRepo notification.Repository

	usrSvc *user.Service

	// rootAdmin is created first so it gets id 1
	rootAdmin  user.User
	otherAdmin user.User
)

func TestMain(m *testing.M) {
	core.Conf = &core.Config{
		TestMode:                  true,
		Debug:                     true,
		AppName:                   "EaDuck",
		SecretKey:                 []byte("s3cr3t"),
		FrontendBaseURL:           "http://localhost:4200",
		RootAdminID:               1,
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		DefaultFromEmail:          mail.Address{Name: "EaDuck", Address: "noreply@eaduck.test"},
		Server: core.ServerConfig{
			JWTExpirationDelta:        2 * time.Hour,
			JWTRefreshExpirationDelta: 7 * 24 * time.Hour,
			JWTClockSkew:              5 * time.Minute,
		},
	}

	db, err := dummydb.Open()
	if err != nil {
		fmt.Printf("dummydb.Open(): %v", err)
		os.Exit(1)
	}
	usrRepo = dummydb.NewUserRepository(db)
	roomRepo = dummydb.NewClassroomRepository(db)
	taskRepo = dummydb.NewTaskRepository(db)
	subRepo = dummydb.NewSubmissionRepository(db)
	notifRepo = dummydb.NewNotificationRepository(db)
	msgRepo := dummydb.NewMessageRepository(db)

	uploadsDir, err := ioutil.TempDir("", "eaduck-uploads")
	if err != nil {
		fmt.Printf("ioutil.TempDir(): %v", err)
		os.Exit(1)
	}
	store, err := files.NewLocalStore(uploadsDir)
	if err != nil {
		fmt.Printf("files.NewLocalStore(): %v", err)
		os.Exit(1)
	}

	logger := logsvc.NewStdLogger(nil)
	mailSvc := emailsvc.NewConsoleService()
	notifSvc := notification.NewService(notifRepo, roomRepo, logger)
	usrSvc = user.NewService(usrRepo, mailSvc, logger)
	roomSvc := classroom.NewService(roomRepo, usrRepo, logger)
	taskSvc := task.NewService(taskRepo, roomRepo, usrRepo, subRepo, notifSvc, mailSvc, logger)
	subSvc := submission.NewService(subRepo, taskRepo, usrRepo, store, notifSvc, mailSvc, logger)
	msgSvc := message.NewService(msgRepo, usrRepo, notifSvc)

	app = echoapi.NewServer(echoapi.ServerDeps{
		Logger:          logger,
		UserSvc:         usrSvc,
		ClassroomSvc:    roomSvc,
		TaskSvc:         taskSvc,
		SubmissionSvc:   subSvc,
		NotificationSvc: notifSvc,
		MessageSvc:      msgSvc,
		FileStore:       store,
	})

	rootAdmin = mustCreateUser("root", user.RoleAdmin)
	otherAdmin = mustCreateUser("admin2", user.RoleAdmin)

	code := m.Run()
	os.RemoveAll(uploadsDir)
	os.Exit(code)
}

func mustCreateUser(name string, role user.Role) user.User {
	usr := user.User{
		Name:     name,
		Email:    name + "@eaduck.test",
		Role:     role,
		IsActive: true,
	}
	if err := usr.SetPassword("secret"); err != nil {
		fmt.Printf("SetPassword(): %v", err)
		os.Exit(1)
	}
	usr, err := usrRepo.CreateUser(usr)
	if err != nil {
		fmt.Printf("CreateUser(): %v", err)
		os.Exit(1)
	}
	return usr
}

func createUser(t *testing.T, name string, role user.Role) user.User {
	t.Helper()
	usr := user.User{
		Name:     name,
		Email:    name + "@eaduck.test",
		Role:     role,
		IsActive: true,
	}
	if err := usr.SetPassword("secret"); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := usrRepo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := echoapi.GenerateToken(echoapi.GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

// doMultipart posts a submission with an optional attachment.
func doMultipart(t *testing.T, path, token, content, fileName, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("content", content); err != nil {
		t.Fatalf("writing field: %v", err)
	}
	if fileName != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
		h.Set("Content-Type", contentType)
		fw, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("creating part: %v", err)
		}
		if _, err = fw.Write(data); err != nil {
			t.Fatalf("writing part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func itoa(id int) string { return strconv.Itoa(id) }

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}
