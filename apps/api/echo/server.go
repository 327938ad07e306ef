package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/eaduck/eaduck/core"
	"github.com/eaduck/eaduck/core/classroom"
	"github.com/eaduck/eaduck/core/message"
	"github.com/eaduck/eaduck/core/notification"
	"github.com/eaduck/eaduck/core/submission"
	"github.com/eaduck/eaduck/core/task"
	"github.com/eaduck/eaduck/core/user"
	"github.com/eaduck/eaduck/storage/files"
)

type (
	ServerDeps struct {
		Logger          core.Logger
		UserSvc         *user.Service
		ClassroomSvc    *classroom.Service
		TaskSvc         *task.Service
		SubmissionSvc   *submission.Service
		NotificationSvc *notification.Service
		MessageSvc      *message.Service
		FileStore       files.Store
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !core.Conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.SignalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig())

	registerUserAPI(v1, jwt, s.deps.UserSvc)
	registerClassroomAPI(v1, jwt, s.deps)
	registerTaskAPI(v1, jwt, s.deps)
	registerSubmissionAPI(v1, jwt, s.deps)
	registerNotificationAPI(v1, jwt, s.deps)
	registerMessageAPI(v1, jwt, s.deps)
	registerDashboardAPI(v1, jwt, s.deps)
	registerSearchAPI(v1, jwt, s.deps)
	registerFilesAPI(s.app, jwt, s.deps)
}

func (s *Server) Start() {
	if err := s.app.Start(core.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown is used by the error handler to trigger a graceful shutdown
// on integrity errors.
func (s *Server) SignalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+core.Conf.AppName+" API!")
}
