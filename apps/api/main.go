package main

import (
	"context"
	"expvar"
	"log"
	"net/http"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

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
	"github.com/eaduck/eaduck/storage/database"
	"github.com/eaduck/eaduck/storage/database/sqlxrepos"
	"github.com/eaduck/eaduck/storage/files"
)

const migrationsDir = "storage/database/migrations"

func main() {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	if err := run(stdLogger); err != nil {
		stdLogger.Fatalf("main error: %+v", err)
	}
}

func run(stdLogger *log.Logger) error {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	defer logger.Close()

	db, err := setUpDB(conf, stdLogger)
	if err != nil {
		return err
	}
	defer db.Close()

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	store, err := files.NewLocalStore(conf.Uploads.Dir)
	if err != nil {
		return errors.Wrap(err, "initializing file store")
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	roomRepo := sqlxrepos.NewClassroomRepository(db)
	taskRepo := sqlxrepos.NewTaskRepository(db)
	subRepo := sqlxrepos.NewSubmissionRepository(db)
	notifRepo := sqlxrepos.NewNotificationRepository(db)
	msgRepo := sqlxrepos.NewMessageRepository(db)

	notifSvc := notification.NewService(notifRepo, roomRepo, logger)
	usrSvc := user.NewService(usrRepo, mailSvc, logger)
	roomSvc := classroom.NewService(roomRepo, usrRepo, logger)
	taskSvc := task.NewService(taskRepo, roomRepo, usrRepo, subRepo, notifSvc, mailSvc, logger)
	subSvc := submission.NewService(subRepo, taskRepo, usrRepo, store, notifSvc, mailSvc, logger)
	msgSvc := message.NewService(msgRepo, usrRepo, notifSvc)

	// /debug/vars
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	go func() {
		stdLogger.Printf("main: debug server listening on %s", conf.Server.DebugHost)
		err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux)
		stdLogger.Printf("main: debug server closed: %v", err)
	}()

	server := echoapi.NewServer(echoapi.ServerDeps{
		Logger:          logger,
		UserSvc:         usrSvc,
		ClassroomSvc:    roomSvc,
		TaskSvc:         taskSvc,
		SubmissionSvc:   subSvc,
		NotificationSvc: notifSvc,
		MessageSvc:      msgSvc,
		FileStore:       store,
	})
	defer server.Close()
	go server.Start()

	select {
	case err := <-server.Errors():
		return errors.Wrap(err, "server error")
	case sig := <-server.ShutdownSignal():
		stdLogger.Printf("main: %v: start shutdown", sig)

		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			server.Close()
			return errors.Wrapf(err, "could not stop server gracefully")
		}
	}
	return nil
}

func setUpDB(conf *core.Config, stdLogger *log.Logger) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, errors.Wrap(err, "creating database")
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	stdLogger.Printf("main: connected to database %s on %s", conf.Database.Name, conf.Database.Address())

	if err = database.Migrate(db.DB, migrationsDir); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrating database")
	}
	return db, nil
}
