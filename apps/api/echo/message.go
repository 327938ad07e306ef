package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	msgsvc "github.com/eaduck/eaduck/core/message"
	"github.com/eaduck/eaduck/core/user"
)

type messageApi struct {
	svc    *msgsvc.Service
	usrSvc *user.Service
}

func registerMessageAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := messageApi{svc: deps.MessageSvc, usrSvc: deps.UserSvc}

	mg := g.Group("/messages", jwt)
	mg.POST("", api.send)
	mg.GET("/sent", api.sent)
	mg.GET("/received", api.received)
	mg.PUT("/:id/read", api.markRead)
}

// Handlers

func (api *messageApi) send(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data msgsvc.NewMessage
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	msg, err := api.svc.Send(data, ctxUsr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, msg)
}

func (api *messageApi) sent(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	msgs, err := api.svc.Sent(ctxUsr)
	if err != nil {
		return errors.Wrap(err, "querying sent messages")
	}
	if msgs == nil {
		msgs = []msgsvc.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *messageApi) received(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	msgs, err := api.svc.Received(ctxUsr)
	if err != nil {
		return errors.Wrap(err, "querying received messages")
	}
	if msgs == nil {
		msgs = []msgsvc.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

// markRead only applies to messages addressed to the caller.
func (api *messageApi) markRead(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	msg, err := api.svc.GetByID(id)
	if err != nil {
		if errors.Cause(err) == msgsvc.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding message by ID")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if msg.RecipientID != ctxUsr.ID && !ctxUsr.IsAdmin() {
		return errHttpForbidden
	}

	msg, err = api.svc.MarkRead(msg.ID)
	if err != nil {
		return errors.Wrap(err, "marking message read")
	}
	return ctx.JSON(http.StatusOK, msg)
}
