package submission

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/eaduck/eaduck/core"
	"github.com/eaduck/eaduck/core/notification"
	"github.com/eaduck/eaduck/core/task"
	"github.com/eaduck/eaduck/core/user"
)

var (
	ErrNotFound = errors.New("submission not found")

	// ErrDuplicate is returned when a student submits twice for the same task.
	ErrDuplicate = errors.New("a submission for this task already exists")
)

type (
	Repository interface {
		CreateSubmission(sub Submission) (Submission, error)
		GetSubmissionByID(id int) (Submission, error)
		GetSubmissionByTaskAndStudent(taskID, studentID int) (Submission, error)
		QuerySubmissionsByTaskID(taskID int) ([]Submission, error)
		QuerySubmissionsByStudentID(studentID int) ([]Submission, error)
		ExistsForTask(taskID int) (bool, error)
		ExistsForTaskAndStudent(taskID, studentID int) (bool, error)
		UpdateSubmission(sub Submission) (Submission, error)
		CountSubmissions() (int, error)
	}

	// FileStore persists attachments and yields a serving URL.
	FileStore interface {
		Save(name string, data []byte) (string, error)
	}

	Notifier interface {
		NotifyUser(userID int, taskID null.Int, typ, title, message string)
	}

	Service struct {
		repo     Repository
		taskRepo task.Repository
		usrRepo  user.Repository
		store    FileStore
		notifier Notifier
		mailSvc  core.EmailService
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	taskRepo task.Repository,
	usrRepo user.Repository,
	store FileStore,
	notifier Notifier,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		taskRepo: taskRepo,
		usrRepo:  usrRepo,
		store:    store,
		notifier: notifier,
		mailSvc:  mailSvc,
		logger:   logger,
	}
}

// Submit records a student's one submission for a task. The attachment, if
// any, is validated and stored before the row is written; the task's creator
// is then alerted, best effort.
func (svc *Service) Submit(ns NewSubmission, student user.User) (Submission, error) {
	t, err := svc.taskRepo.GetTaskByID(ns.TaskID)
	if err != nil {
		return Submission{}, err
	}
	if _, err = svc.repo.GetSubmissionByTaskAndStudent(t.ID, student.ID); err == nil {
		return Submission{}, ErrDuplicate
	} else if err != ErrNotFound {
		return Submission{}, err
	}

	sub := Submission{
		TaskID:      t.ID,
		StudentID:   student.ID,
		Content:     ns.Content,
		SubmittedAt: time.Now().UTC(),
	}
	if ns.File != nil {
		if err = ns.File.Validate(); err != nil {
			return Submission{}, err
		}
		url, err := svc.store.Save(ns.File.Name, ns.File.Data)
		if err != nil {
			return Submission{}, errors.Wrap(err, "storing attachment")
		}
		sub.FileURL = null.StringFrom(url)
	}

	sub, err = svc.repo.CreateSubmission(sub)
	if err != nil {
		return Submission{}, err
	}

	svc.notifier.NotifyUser(
		t.CreatedByID, null.IntFrom(t.ID), notification.TypeSubmission,
		"New submission: "+t.Title,
		fmt.Sprintf("%s submitted work for %q.", student.Name, t.Title),
	)
	svc.notifier.NotifyUser(
		student.ID, null.IntFrom(t.ID), notification.TypeSubmission,
		"Submission received: "+t.Title,
		fmt.Sprintf("Your work for %q was submitted successfully.", t.Title),
	)
	svc.mailTaskCreator(t, student)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:          []mail.Address{{Name: student.Name, Address: student.Email}},
		Subject:     "Submission received: " + t.Title,
		TextContent: fmt.Sprintf("Your work for %q was submitted successfully.", t.Title),
	})
	return sub, nil
}

func (svc *Service) mailTaskCreator(t task.Task, student user.User) {
	creator, err := svc.usrRepo.GetUserByID(t.CreatedByID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("mailing creator of task %d: %v", t.ID, err), err)
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:          []mail.Address{{Name: creator.Name, Address: creator.Email}},
		Subject:     "New submission: " + t.Title,
		TextContent: fmt.Sprintf("%s submitted work for %q.", student.Name, t.Title),
	})
}

// Evaluate grades a submission. Re-evaluating replaces the previous grade
// and feedback; the student is alerted each time.
func (svc *Service) Evaluate(id int, ev Evaluation) (Submission, error) {
	sub, err := svc.repo.GetSubmissionByID(id)
	if err != nil {
		return Submission{}, err
	}
	sub.Grade = null.Float64From(ev.Grade)
	sub.Feedback = null.StringFrom(ev.Feedback)
	sub.EvaluatedAt = null.TimeFrom(time.Now().UTC())

	sub, err = svc.repo.UpdateSubmission(sub)
	if err != nil {
		return Submission{}, err
	}

	svc.notifier.NotifyUser(
		sub.StudentID, null.IntFrom(sub.TaskID), notification.TypeSubmission,
		"Your submission was graded",
		fmt.Sprintf("You received %.2f.", ev.Grade),
	)
	svc.mailStudent(sub)
	return sub, nil
}

func (svc *Service) mailStudent(sub Submission) {
	student, err := svc.usrRepo.GetUserByID(sub.StudentID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("mailing student %d: %v", sub.StudentID, err), err)
		return
	}
	t, err := svc.taskRepo.GetTaskByID(sub.TaskID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("mailing student %d: %v", sub.StudentID, err), err)
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:          []mail.Address{{Name: student.Name, Address: student.Email}},
		Subject:     "Your submission was graded",
		TextContent: fmt.Sprintf("Your submission for %q received %.2f.", t.Title, sub.Grade.Float64),
	})
}

func (svc *Service) GetByID(id int) (Submission, error) {
	return svc.repo.GetSubmissionByID(id)
}

func (svc *Service) QueryByTask(taskID int) ([]Submission, error) {
	return svc.repo.QuerySubmissionsByTaskID(taskID)
}

func (svc *Service) QueryByStudent(studentID int) ([]Submission, error) {
	return svc.repo.QuerySubmissionsByStudentID(studentID)
}

func (svc *Service) Count() (int, error) {
	return svc.repo.CountSubmissions()
}
