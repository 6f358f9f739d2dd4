package controller

import (
	"strconv"
	"toast_backend/internal/service"
	"toast_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	NotificationService *service.NotificationService
	Hub                 *service.NotifyHub
}

func NewNotificationController(notificationService *service.NotificationService, hub *service.NotifyHub) *NotificationController {
	return &NotificationController{NotificationService: notificationService, Hub: hub}
}

// List godoc
// @Summary List my notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread"
// @Param limit query int false "Max rows (default 50)"
// @Success 200 {object} util.Response{data=[]model.Notification}
// @Router /api/notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	onlyUnread, _ := strconv.ParseBool(ctx.DefaultQuery("unread", "false"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))

	notifications, err := c.NotificationService.List(claims.UserID, onlyUnread, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, notifications)
}

// MarkRead godoc
// @Summary Mark one notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} util.Response
// @Router /api/notifications/{id}/read [post]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	if err := c.NotificationService.MarkRead(claims.UserID, ctx.Param("id")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// MarkAllRead godoc
// @Summary Mark every notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/notifications/read-all [post]
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	if err := c.NotificationService.MarkAllRead(claims.UserID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Socket godoc
// @Summary Open the notification websocket
// @Description Upgrades to a websocket that streams notifications in real time. Pass the JWT via ?token= since browsers cannot set headers here.
// @Tags notifications
// @Security BearerAuth
// @Success 101 {string} string "Switching Protocols"
// @Router /api/ws [get]
func (c *NotificationController) Socket(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	if err := c.Hub.ServeWS(ctx.Writer, ctx.Request, claims.UserID); err != nil {
		util.BadRequest(ctx, "websocket upgrade failed")
	}
}
