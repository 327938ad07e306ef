package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/eaduck/eaduck/core/access"
	"github.com/eaduck/eaduck/core/classroom"
	"github.com/eaduck/eaduck/core/user"
)

type classroomApi struct {
	svc    *classroom.Service
	usrSvc *user.Service
}

func registerClassroomAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := classroomApi{svc: deps.ClassroomSvc, usrSvc: deps.UserSvc}

	cg := g.Group("/classrooms", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)
	cg.GET("/:id/members", api.members)
	cg.POST("/:id/students/:userID", api.addStudent)
	cg.DELETE("/:id/students/:userID", api.removeStudent)
	cg.POST("/:id/teachers/:userID", api.addTeacher, adminMiddleware())
	cg.DELETE("/:id/teachers/:userID", api.removeTeacher, adminMiddleware())
}

// getRoom resolves the :id param. Unknown rooms 404 before any access check
// so the two cannot be told apart by probing.
func (api *classroomApi) getRoom(ctx echo.Context) (classroom.Classroom, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return classroom.Classroom{}, errHttpNotFound
	}
	room, err := api.svc.GetByID(id)
	if err != nil {
		if errors.Cause(err) == classroom.ErrNotFound {
			return classroom.Classroom{}, errHttpNotFound
		}
		return classroom.Classroom{}, errors.Wrap(err, "finding classroom by ID")
	}
	return room, nil
}

// Handlers

func (api *classroomApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	rooms, err := api.svc.QueryForUser(ctxUsr)
	if err != nil {
		return errors.Wrap(err, "querying classrooms")
	}
	if rooms == nil {
		rooms = []classroom.Classroom{}
	}
	return ctx.JSON(http.StatusOK, rooms)
}

func (api *classroomApi) create(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if d := access.CanCreateClassroom(ctxUsr); !d.Allowed {
		return errHttpForbidden
	}

	var data classroom.NewClassroom
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClassroom")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	room, err := api.svc.Create(data, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "creating classroom")
	}
	return ctx.JSON(http.StatusCreated, room)
}

func (api *classroomApi) retrieve(ctx echo.Context) error {
	room, err := api.getRoom(ctx)
	if err != nil {
		return err
	}
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if d := access.CanViewClassroom(ctxUsr, room); !d.Allowed {
		return errHttpForbidden
	}
	return ctx.JSON(http.StatusOK, room)
}

func (api *classroomApi) update(ctx echo.Context) error {
	room, err := api.getRoom(ctx)
	if err != nil {
		return err
	}
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if d := access.CanUpdateClassroom(ctxUsr, room); !d.Allowed {
		return errHttpForbidden
	}

	var data classroom.UpdateClassroom
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClassroom")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	room, err = api.svc.Update(room.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating classroom")
	}
	return ctx.JSON(http.StatusOK, room)
}

func (api *classroomApi) destroy(ctx echo.Context) error {
	room, err := api.getRoom(ctx)
	if err != nil {
		return err
	}
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if d := access.CanDeleteClassroom(ctxUsr); !d.Allowed {
		return errHttpForbidden
	}

	if err = api.svc.Delete(room.ID); err != nil {
		return errors.Wrap(err, "deleting classroom")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *classroomApi) members(ctx echo.Context) error {
	room, err := api.getRoom(ctx)
	if err != nil {
		return err
	}
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if d := access.CanViewClassroom(ctxUsr, room); !d.Allowed {
		return errHttpForbidden
	}

	members, err := api.svc.Members(room.ID)
	if err != nil {
		return errors.Wrap(err, "listing classroom members")
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *classroomApi) addStudent(ctx echo.Context) error {
	return api.changeStudent(ctx, api.svc.AddStudent)
}

func (api *classroomApi) removeStudent(ctx echo.Context) error {
	return api.changeStudent(ctx, api.svc.RemoveStudent)
}

func (api *classroomApi) changeStudent(ctx echo.Context, op func(roomID, userID int) (classroom.Classroom, error)) error {
	room, err := api.getRoom(ctx)
	if err != nil {
		return err
	}
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if d := access.CanManageClassroomStudents(ctxUsr, room); !d.Allowed {
		return errHttpForbidden
	}

	userID, err := strconv.Atoi(ctx.Param("userID"))
	if err != nil {
		return errHttpNotFound
	}
	room, err = op(room.ID, userID)
	if err != nil {
		return errors.Wrap(err, "changing classroom students")
	}
	return ctx.JSON(http.StatusOK, room)
}

func (api *classroomApi) addTeacher(ctx echo.Context) error {
	return api.changeTeacher(ctx, api.svc.AddTeacher)
}

func (api *classroomApi) removeTeacher(ctx echo.Context) error {
	return api.changeTeacher(ctx, api.svc.RemoveTeacher)
}

func (api *classroomApi) changeTeacher(ctx echo.Context, op func(roomID, userID int) (classroom.Classroom, error)) error {
	room, err := api.getRoom(ctx)
	if err != nil {
		return err
	}
	userID, err := strconv.Atoi(ctx.Param("userID"))
	if err != nil {
		return errHttpNotFound
	}
	room, err = op(room.ID, userID)
	if err != nil {
		return errors.Wrap(err, "changing classroom teachers")
	}
	return ctx.JSON(http.StatusOK, room)
}
