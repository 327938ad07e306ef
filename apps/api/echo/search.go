package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/eaduck/eaduck/core/classroom"
	"github.com/eaduck/eaduck/core/task"
	"github.com/eaduck/eaduck/core/user"
)

type searchApi struct {
	usrSvc  *user.Service
	roomSvc *classroom.Service
	taskSvc *task.Service
}

func registerSearchAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := searchApi{usrSvc: deps.UserSvc, roomSvc: deps.ClassroomSvc, taskSvc: deps.TaskSvc}
	g.GET("/search", api.search, jwt)
}

// SearchResults only ever contains entries the caller could reach through
// the regular list endpoints.
type SearchResults struct {
	Users      []user.User           `json:"users"`
	Classrooms []classroom.Classroom `json:"classrooms"`
	Tasks      []task.Task           `json:"tasks"`
}

func (api *searchApi) search(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	results := SearchResults{
		Users:      []user.User{},
		Classrooms: []classroom.Classroom{},
		Tasks:      []task.Task{},
	}
	q := strings.ToLower(strings.TrimSpace(ctx.QueryParam("q")))
	if q == "" {
		return ctx.JSON(http.StatusOK, results)
	}

	// user search is an admin affair
	if ctxUsr.IsAdmin() {
		users, err := api.usrSvc.QueryAll()
		if err != nil {
			return errors.Wrap(err, "querying users")
		}
		for _, usr := range users {
			if strings.Contains(strings.ToLower(usr.Name), q) || strings.Contains(strings.ToLower(usr.Email), q) {
				results.Users = append(results.Users, usr)
			}
		}
	}

	rooms, err := api.roomSvc.QueryForUser(ctxUsr)
	if err != nil {
		return errors.Wrap(err, "querying classrooms")
	}
	for _, room := range rooms {
		if strings.Contains(strings.ToLower(room.Name), q) {
			results.Classrooms = append(results.Classrooms, room)
		}
	}

	tasks, err := api.taskSvc.QueryForUser(ctxUsr)
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Description), q) {
			results.Tasks = append(results.Tasks, t)
		}
	}

	return ctx.JSON(http.StatusOK, results)
}
