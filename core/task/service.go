package task

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/eaduck/eaduck/core"
	"github.com/eaduck/eaduck/core/classroom"
	"github.com/eaduck/eaduck/core/notification"
	"github.com/eaduck/eaduck/core/user"
)

var (
	ErrNotFound = errors.New("task not found")

	// ErrLocked is returned when mutating a task that already has submissions.
	ErrLocked = errors.New("task already has submissions and can no longer be modified")
)

type (
	Repository interface {
		CreateTask(t Task) (Task, error)
		QueryAllTasks() ([]Task, error)
		GetTaskByID(id int) (Task, error)
		QueryTasksByClassroomIDs(roomIDs ...int) ([]Task, error)
		UpdateTask(t Task) (Task, error)
		DeleteTasksByID(ids ...int) error
		CountTasks() (int, error)
	}

	// SubmissionChecker reports submission existence without this package
	// depending on the submission one.
	SubmissionChecker interface {
		ExistsForTask(taskID int) (bool, error)
		ExistsForTaskAndStudent(taskID, studentID int) (bool, error)
	}

	Notifier interface {
		NotifyClassroom(roomID int, taskID null.Int, typ, title, message string)
	}

	// Dashboard buckets a student's tasks by status.
	Dashboard struct {
		Completed []Task `json:"completed"`
		Late      []Task `json:"late"`
		Pending   []Task `json:"pending"`
	}

	Service struct {
		repo     Repository
		roomRepo classroom.Repository
		usrRepo  user.Repository
		subs     SubmissionChecker
		notifier Notifier
		mailSvc  core.EmailService
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	roomRepo classroom.Repository,
	usrRepo user.Repository,
	subs SubmissionChecker,
	notifier Notifier,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		roomRepo: roomRepo,
		usrRepo:  usrRepo,
		subs:     subs,
		notifier: notifier,
		mailSvc:  mailSvc,
		logger:   logger,
	}
}

// Create persists a task in its classroom and alerts the students, both
// in-app and by email. The alerts are best effort.
func (svc *Service) Create(nt NewTask, creator user.User) (Task, error) {
	room, err := svc.roomRepo.GetClassroomByID(nt.ClassroomID)
	if err != nil {
		if err == classroom.ErrNotFound {
			return Task{}, core.NewValidationError(err, core.FieldError{Field: "classroom_id", Error: err.Error()})
		}
		return Task{}, err
	}

	typ := nt.Type
	if typ == "" {
		typ = TypeAssignment
	}
	now := time.Now().UTC()
	t := Task{
		ClassroomID: room.ID,
		CreatedByID: creator.ID,
		Title:       nt.Title,
		Description: nt.Description,
		Type:        typ,
		DueDate:     nt.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	t, err = svc.repo.CreateTask(t)
	if err != nil {
		return Task{}, err
	}
	t.ClassroomName = room.Name

	svc.notifier.NotifyClassroom(
		room.ID, null.IntFrom(t.ID), notification.TypeTask,
		"New task: "+t.Title,
		fmt.Sprintf("A new task was posted in %s.", room.Name),
	)
	svc.mailStudents(room, t)
	return t, nil
}

func (svc *Service) mailStudents(room classroom.Classroom, t Task) {
	msgs := make([]*core.EmailMessage, 0, len(room.StudentIDs))
	for _, uid := range room.StudentIDs {
		usr, err := svc.usrRepo.GetUserByID(uid)
		if err != nil {
			svc.logger.Error(fmt.Sprintf("mailing student %d about task %d: %v", uid, t.ID, err), err)
			continue
		}
		body := fmt.Sprintf("A new task %q was posted in %s.", t.Title, room.Name)
		if t.DueDate.Valid {
			body += fmt.Sprintf(" It is due on %s.", t.DueDate.Time.Format("2006-01-02"))
		}
		msgs = append(msgs, &core.EmailMessage{
			To:          []mail.Address{{Name: usr.Name, Address: usr.Email}},
			Subject:     "New task: " + t.Title,
			TextContent: body,
		})
	}
	svc.mailSvc.SendMessages(msgs...)
}

// QueryForUser returns the tasks visible to usr: everything for an admin,
// otherwise the tasks of the user's classrooms.
func (svc *Service) QueryForUser(usr user.User) ([]Task, error) {
	var (
		rooms []classroom.Classroom
		err   error
	)
	switch {
	case usr.IsAdmin():
		rooms, err = svc.roomRepo.QueryAllClassrooms()
	case usr.IsTeacher():
		rooms, err = svc.roomRepo.QueryClassroomsByTeacherID(usr.ID)
	default:
		rooms, err = svc.roomRepo.QueryClassroomsByStudentID(usr.ID)
	}
	if err != nil {
		return nil, err
	}

	var tasks []Task
	if usr.IsAdmin() {
		tasks, err = svc.repo.QueryAllTasks()
	} else {
		ids := make([]int, len(rooms))
		for i, room := range rooms {
			ids[i] = room.ID
		}
		tasks, err = svc.repo.QueryTasksByClassroomIDs(ids...)
	}
	if err != nil {
		return nil, err
	}

	names := make(map[int]string, len(rooms))
	for _, room := range rooms {
		names[room.ID] = room.Name
	}
	for i := range tasks {
		tasks[i].ClassroomName = names[tasks[i].ClassroomID]
	}
	return tasks, nil
}

func (svc *Service) GetByID(id int) (Task, error) {
	return svc.repo.GetTaskByID(id)
}

func (svc *Service) QueryByClassroom(roomID int) ([]Task, error) {
	return svc.repo.QueryTasksByClassroomIDs(roomID)
}

// Update applies the non-zero fields of ut. A task with submissions is
// locked and rejects any change.
func (svc *Service) Update(id int, ut UpdateTask) (Task, error) {
	t, err := svc.repo.GetTaskByID(id)
	if err != nil {
		return Task{}, err
	}
	if err = svc.checkUnlocked(id); err != nil {
		return Task{}, err
	}
	if ut.ClassroomID != 0 && ut.ClassroomID != t.ClassroomID {
		if _, err = svc.roomRepo.GetClassroomByID(ut.ClassroomID); err != nil {
			if err == classroom.ErrNotFound {
				return Task{}, core.NewValidationError(err, core.FieldError{Field: "classroom_id", Error: err.Error()})
			}
			return Task{}, err
		}
		t.ClassroomID = ut.ClassroomID
	}
	if ut.Title != "" {
		t.Title = ut.Title
	}
	if ut.Description != "" {
		t.Description = ut.Description
	}
	if ut.Type != "" {
		t.Type = ut.Type
	}
	if ut.DueDate.Valid {
		t.DueDate = ut.DueDate
	}
	t.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTask(t)
}

// Delete removes a task. Like Update, it refuses once submissions exist.
func (svc *Service) Delete(id int) error {
	if _, err := svc.repo.GetTaskByID(id); err != nil {
		return err
	}
	if err := svc.checkUnlocked(id); err != nil {
		return err
	}
	return svc.repo.DeleteTasksByID(id)
}

func (svc *Service) checkUnlocked(id int) error {
	locked, err := svc.subs.ExistsForTask(id)
	if err != nil {
		return err
	}
	if locked {
		return ErrLocked
	}
	return nil
}

// ClassroomDashboard classifies a classroom's tasks as of now. A task counts
// as completed when anyone in the classroom has submitted.
func (svc *Service) ClassroomDashboard(roomID int) (Dashboard, error) {
	room, err := svc.roomRepo.GetClassroomByID(roomID)
	if err != nil {
		return Dashboard{}, err
	}
	tasks, err := svc.repo.QueryTasksByClassroomIDs(room.ID)
	if err != nil {
		return Dashboard{}, err
	}

	now := time.Now().UTC()
	dash := Dashboard{
		Completed: []Task{},
		Late:      []Task{},
		Pending:   []Task{},
	}
	for _, t := range tasks {
		t.ClassroomName = room.Name
		submitted, err := svc.subs.ExistsForTask(t.ID)
		if err != nil {
			return Dashboard{}, err
		}
		switch t.Classify(submitted, now) {
		case StatusCompleted:
			dash.Completed = append(dash.Completed, t)
		case StatusLate:
			dash.Late = append(dash.Late, t)
		default:
			dash.Pending = append(dash.Pending, t)
		}
	}
	return dash, nil
}

// StudentDashboard classifies the student's tasks as of now.
func (svc *Service) StudentDashboard(usr user.User) (Dashboard, error) {
	tasks, err := svc.QueryForUser(usr)
	if err != nil {
		return Dashboard{}, err
	}

	now := time.Now().UTC()
	dash := Dashboard{
		Completed: []Task{},
		Late:      []Task{},
		Pending:   []Task{},
	}
	for _, t := range tasks {
		submitted, err := svc.subs.ExistsForTaskAndStudent(t.ID, usr.ID)
		if err != nil {
			return Dashboard{}, err
		}
		switch t.Classify(submitted, now) {
		case StatusCompleted:
			dash.Completed = append(dash.Completed, t)
		case StatusLate:
			dash.Late = append(dash.Late, t)
		default:
			dash.Pending = append(dash.Pending, t)
		}
	}
	return dash, nil
}

func (svc *Service) Count() (int, error) {
	return svc.repo.CountTasks()
}
