package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/eaduck/eaduck/core"
	"github.com/eaduck/eaduck/core/access"
	"github.com/eaduck/eaduck/core/classroom"
	"github.com/eaduck/eaduck/core/task"
	"github.com/eaduck/eaduck/core/user"
)

type taskApi struct {
	svc     *task.Service
	roomSvc *classroom.Service
	usrSvc  *user.Service
}

func registerTaskAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := taskApi{svc: deps.TaskSvc, roomSvc: deps.ClassroomSvc, usrSvc: deps.UserSvc}

	tg := g.Group("/tasks", jwt)
	tg.GET("", api.query)
	tg.POST("", api.create)
	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id", api.update)
	tg.DELETE("/:id", api.destroy)

	g.GET("/classrooms/:id/tasks", api.queryByClassroom, jwt)
	g.GET("/classrooms/:id/dashboard", api.classroomDashboard, jwt)
}

func (api *taskApi) getTask(ctx echo.Context) (task.Task, classroom.Classroom, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return task.Task{}, classroom.Classroom{}, errHttpNotFound
	}
	t, err := api.svc.GetByID(id)
	if err != nil {
		if errors.Cause(err) == task.ErrNotFound {
			return task.Task{}, classroom.Classroom{}, errHttpNotFound
		}
		return task.Task{}, classroom.Classroom{}, errors.Wrap(err, "finding task by ID")
	}
	room, err := api.roomSvc.GetByID(t.ClassroomID)
	if err != nil {
		return task.Task{}, classroom.Classroom{}, errors.Wrap(err, "finding task classroom")
	}
	t.ClassroomName = room.Name
	return t, room, nil
}

// Handlers

func (api *taskApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	tasks, err := api.svc.QueryForUser(ctxUsr)
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *taskApi) queryByClassroom(ctx echo.Context) error {
	roomID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	room, err := api.roomSvc.GetByID(roomID)
	if err != nil {
		if errors.Cause(err) == classroom.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding classroom by ID")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if d := access.CanViewClassroom(ctxUsr, room); !d.Allowed {
		return errHttpForbidden
	}

	tasks, err := api.svc.QueryByClassroom(room.ID)
	if err != nil {
		return errors.Wrap(err, "querying classroom tasks")
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return ctx.JSON(http.StatusOK, tasks)
}

// classroomDashboard buckets a classroom's tasks by status, counting a task
// as completed once anyone in the classroom has submitted.
func (api *taskApi) classroomDashboard(ctx echo.Context) error {
	roomID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	room, err := api.roomSvc.GetByID(roomID)
	if err != nil {
		if errors.Cause(err) == classroom.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding classroom by ID")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if d := access.CanViewClassroom(ctxUsr, room); !d.Allowed {
		return errHttpForbidden
	}

	dash, err := api.svc.ClassroomDashboard(room.ID)
	if err != nil {
		return errors.Wrap(err, "building classroom dashboard")
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api *taskApi) create(ctx echo.Context) error {
	var data task.NewTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	room, err := api.roomSvc.GetByID(data.ClassroomID)
	if err != nil {
		if errors.Cause(err) == classroom.ErrNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "classroom_id", Error: err.Error()})
		}
		return errors.Wrap(err, "finding classroom by ID")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if d := access.CanCreateTask(ctxUsr, room); !d.Allowed {
		return errHttpForbidden
	}

	t, err := api.svc.Create(data, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "creating task")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *taskApi) retrieve(ctx echo.Context) error {
	t, room, err := api.getTask(ctx)
	if err != nil {
		return err
	}
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if d := access.CanViewTask(ctxUsr, room); !d.Allowed {
		return errHttpForbidden
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *taskApi) update(ctx echo.Context) error {
	t, room, err := api.getTask(ctx)
	if err != nil {
		return err
	}
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if d := access.CanEditTask(ctxUsr, room); !d.Allowed {
		return errHttpForbidden
	}

	var data task.UpdateTask
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTask")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	// reassigning needs task-create rights on the target classroom
	if data.ClassroomID != 0 && data.ClassroomID != t.ClassroomID {
		target, err := api.roomSvc.GetByID(data.ClassroomID)
		if err != nil {
			if errors.Cause(err) == classroom.ErrNotFound {
				return core.NewValidationError(err, core.FieldError{Field: "classroom_id", Error: err.Error()})
			}
			return errors.Wrap(err, "finding classroom by ID")
		}
		if d := access.CanCreateTask(ctxUsr, target); !d.Allowed {
			return errHttpForbidden
		}
		room = target
	}

	t, err = api.svc.Update(t.ID, data)
	if err != nil {
		return err
	}
	t.ClassroomName = room.Name
	return ctx.JSON(http.StatusOK, t)
}

func (api *taskApi) destroy(ctx echo.Context) error {
	t, room, err := api.getTask(ctx)
	if err != nil {
		return err
	}
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if d := access.CanEditTask(ctxUsr, room); !d.Allowed {
		return errHttpForbidden
	}

	if err = api.svc.Delete(t.ID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
