package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/eaduck/eaduck/core/classroom"
	"github.com/eaduck/eaduck/core/submission"
	"github.com/eaduck/eaduck/core/task"
	"github.com/eaduck/eaduck/core/user"
)

type dashboardApi struct {
	usrSvc  *user.Service
	roomSvc *classroom.Service
	taskSvc *task.Service
	subSvc  *submission.Service
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := dashboardApi{
		usrSvc:  deps.UserSvc,
		roomSvc: deps.ClassroomSvc,
		taskSvc: deps.TaskSvc,
		subSvc:  deps.SubmissionSvc,
	}
	g.GET("/dashboard", api.dashboard, jwt)
}

type (
	// AdminDashboard reports system-wide totals.
	AdminDashboard struct {
		Users       int `json:"users"`
		Classrooms  int `json:"classrooms"`
		Tasks       int `json:"tasks"`
		Submissions int `json:"submissions"`
	}

	// TeacherDashboard lists what the teacher runs.
	TeacherDashboard struct {
		Classrooms []classroom.Classroom `json:"classrooms"`
		Tasks      []task.Task           `json:"tasks"`
	}
)

// dashboard adapts its payload to the caller's role: totals for admins,
// classrooms and tasks for teachers, and the classified task buckets for
// students.
func (api *dashboardApi) dashboard(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	switch {
	case ctxUsr.IsAdmin():
		return api.adminDashboard(ctx)
	case ctxUsr.IsTeacher():
		return api.teacherDashboard(ctx, ctxUsr)
	default:
		return api.studentDashboard(ctx, ctxUsr)
	}
}

func (api *dashboardApi) adminDashboard(ctx echo.Context) error {
	var dash AdminDashboard
	var err error
	if dash.Users, err = api.usrSvc.Count(); err != nil {
		return errors.Wrap(err, "counting users")
	}
	if dash.Classrooms, err = api.roomSvc.Count(); err != nil {
		return errors.Wrap(err, "counting classrooms")
	}
	if dash.Tasks, err = api.taskSvc.Count(); err != nil {
		return errors.Wrap(err, "counting tasks")
	}
	if dash.Submissions, err = api.subSvc.Count(); err != nil {
		return errors.Wrap(err, "counting submissions")
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api *dashboardApi) teacherDashboard(ctx echo.Context, ctxUsr user.User) error {
	rooms, err := api.roomSvc.QueryForUser(ctxUsr)
	if err != nil {
		return errors.Wrap(err, "querying classrooms")
	}
	tasks, err := api.taskSvc.QueryForUser(ctxUsr)
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	if rooms == nil {
		rooms = []classroom.Classroom{}
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return ctx.JSON(http.StatusOK, TeacherDashboard{Classrooms: rooms, Tasks: tasks})
}

func (api *dashboardApi) studentDashboard(ctx echo.Context, ctxUsr user.User) error {
	dash, err := api.taskSvc.StudentDashboard(ctxUsr)
	if err != nil {
		return errors.Wrap(err, "classifying tasks")
	}
	return ctx.JSON(http.StatusOK, dash)
}
