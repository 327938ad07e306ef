package echoapi

import (
	"io/ioutil"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/eaduck/eaduck/core/access"
	"github.com/eaduck/eaduck/core/classroom"
	"github.com/eaduck/eaduck/core/submission"
	"github.com/eaduck/eaduck/core/task"
	"github.com/eaduck/eaduck/core/user"
)

type submissionApi struct {
	svc     *submission.Service
	taskSvc *task.Service
	roomSvc *classroom.Service
	usrSvc  *user.Service
}

func registerSubmissionAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := submissionApi{
		svc:     deps.SubmissionSvc,
		taskSvc: deps.TaskSvc,
		roomSvc: deps.ClassroomSvc,
		usrSvc:  deps.UserSvc,
	}

	g.POST("/tasks/:id/submissions", api.submit, jwt)
	g.GET("/tasks/:id/submissions", api.queryByTask, jwt)
	g.GET("/students/:id/submissions", api.queryByStudent, jwt)

	sg := g.Group("/submissions", jwt)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id/evaluate", api.evaluate)
}

func (api *submissionApi) getTaskRoom(ctx echo.Context) (task.Task, classroom.Classroom, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return task.Task{}, classroom.Classroom{}, errHttpNotFound
	}
	t, err := api.taskSvc.GetByID(id)
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
	return t, room, nil
}

// Handlers

// submit accepts a multipart form with an optional "content" text and an
// optional "file" attachment.
func (api *submissionApi) submit(ctx echo.Context) error {
	t, room, err := api.getTaskRoom(ctx)
	if err != nil {
		return err
	}
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if d := access.CanSubmit(ctxUsr, room); !d.Allowed {
		return errHttpForbidden
	}

	data := submission.NewSubmission{
		TaskID:  t.ID,
		Content: ctx.FormValue("content"),
	}
	if fh, err := ctx.FormFile("file"); err == nil {
		src, err := fh.Open()
		if err != nil {
			return errors.Wrap(err, "opening uploaded file")
		}
		defer func() { _ = src.Close() }()
		raw, err := ioutil.ReadAll(src)
		if err != nil {
			return errors.Wrap(err, "reading uploaded file")
		}
		data.File = &submission.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        raw,
		}
	}
	if err = data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.Submit(data, ctxUsr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *submissionApi) queryByTask(ctx echo.Context) error {
	t, room, err := api.getTaskRoom(ctx)
	if err != nil {
		return err
	}
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if d := access.CanViewTaskSubmissions(ctxUsr, room); !d.Allowed {
		return errHttpForbidden
	}

	subs, err := api.svc.QueryByTask(t.ID)
	if err != nil {
		return errors.Wrap(err, "querying task submissions")
	}
	if subs == nil {
		subs = []submission.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *submissionApi) queryByStudent(ctx echo.Context) error {
	studentID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	student, err := api.usrSvc.GetByID(studentID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	rooms, err := api.roomSvc.QueryForUser(student)
	if err != nil {
		return errors.Wrap(err, "querying student classrooms")
	}
	if d := access.CanViewStudentSubmissions(ctxUsr, student.ID, rooms); !d.Allowed {
		return errHttpForbidden
	}

	subs, err := api.svc.QueryByStudent(student.ID)
	if err != nil {
		return errors.Wrap(err, "querying student submissions")
	}
	if subs == nil {
		subs = []submission.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *submissionApi) getSubmission(ctx echo.Context) (submission.Submission, classroom.Classroom, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return submission.Submission{}, classroom.Classroom{}, errHttpNotFound
	}
	sub, err := api.svc.GetByID(id)
	if err != nil {
		if errors.Cause(err) == submission.ErrNotFound {
			return submission.Submission{}, classroom.Classroom{}, errHttpNotFound
		}
		return submission.Submission{}, classroom.Classroom{}, errors.Wrap(err, "finding submission by ID")
	}
	t, err := api.taskSvc.GetByID(sub.TaskID)
	if err != nil {
		return submission.Submission{}, classroom.Classroom{}, errors.Wrap(err, "finding submission task")
	}
	room, err := api.roomSvc.GetByID(t.ClassroomID)
	if err != nil {
		return submission.Submission{}, classroom.Classroom{}, errors.Wrap(err, "finding submission classroom")
	}
	return sub, room, nil
}

func (api *submissionApi) retrieve(ctx echo.Context) error {
	sub, room, err := api.getSubmission(ctx)
	if err != nil {
		return err
	}
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if ctxUsr.ID != sub.StudentID {
		if d := access.CanViewTaskSubmissions(ctxUsr, room); !d.Allowed {
			return errHttpForbidden
		}
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *submissionApi) evaluate(ctx echo.Context) error {
	sub, room, err := api.getSubmission(ctx)
	if err != nil {
		return err
	}
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if d := access.CanEvaluateSubmission(ctxUsr, room); !d.Allowed {
		return errHttpForbidden
	}

	var data submission.Evaluation
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Evaluation")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	sub, err = api.svc.Evaluate(sub.ID, data)
	if err != nil {
		return errors.Wrap(err, "evaluating submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}
