package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/eaduck/eaduck/core"
	"github.com/eaduck/eaduck/core/access"
	"github.com/eaduck/eaduck/core/notification"
	"github.com/eaduck/eaduck/core/user"
)

type notificationApi struct {
	svc    *notification.Service
	usrSvc *user.Service
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := notificationApi{svc: deps.NotificationSvc, usrSvc: deps.UserSvc}

	ng := g.Group("/notifications", jwt)
	ng.GET("", api.query)
	ng.POST("", api.notify)
	ng.PUT("/:id/read", api.markRead)
}

// Handlers

func (api *notificationApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	notifs, err := api.svc.QueryForUser(ctxUsr)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	if notifs == nil {
		notifs = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, notifs)
}

// notify lets staff push an announcement, either to one user or to a whole
// classroom. Delivery is best effort, so the endpoint always accepts.
func (api *notificationApi) notify(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if d := access.CanNotify(ctxUsr); !d.Allowed {
		return errHttpForbidden
	}

	var data NotifyRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NotifyRequest")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	if data.ClassroomID != 0 {
		api.svc.NotifyClassroom(data.ClassroomID, null.Int{}, notification.TypeSystem, data.Title, data.Message)
	} else {
		api.svc.NotifyUser(data.UserID, null.Int{}, notification.TypeSystem, data.Title, data.Message)
	}
	return ctx.NoContent(http.StatusAccepted)
}

func (api *notificationApi) markRead(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	notif, err := api.svc.GetByID(id)
	if err != nil {
		if errors.Cause(err) == notification.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding notification by ID")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if d := access.CanMarkNotificationRead(ctxUsr, notif); !d.Allowed {
		return errHttpForbidden
	}

	notif, err = api.svc.MarkRead(notif.ID)
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	return ctx.JSON(http.StatusOK, notif)
}

type NotifyRequest struct {
	UserID      int    `json:"user_id" validate:"required_without=ClassroomID"`
	ClassroomID int    `json:"classroom_id"`
	Title       string `json:"title" validate:"required"`
	Message     string `json:"message"`
}

func (nr *NotifyRequest) Validate() error {
	nr.Title = core.CleanString(nr.Title)
	nr.Message = core.CleanString(nr.Message)
	return core.Validate.Struct(nr)
}
