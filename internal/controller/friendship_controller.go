package controller

import (
	"errors"
	"toast_backend/internal/service"
	"toast_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type FriendshipController struct {
	FriendshipService *service.FriendshipService
}

func NewFriendshipController(friendshipService *service.FriendshipService) *FriendshipController {
	return &FriendshipController{FriendshipService: friendshipService}
}

type FriendRequestInput struct {
	ReceiverID uint   `json:"receiverId" binding:"required"`
	Message    string `json:"message" binding:"max=255"`
}

// SendRequest godoc
// @Summary Send a friend request
// @Description Invites another user. A pending request in the opposite direction is accepted instead of duplicated.
// @Tags friends
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body FriendRequestInput true "Receiver and optional message"
// @Success 201 {object} util.Response{data=model.FriendRequest}
// @Failure 400 {object} util.Response "Already friends or already pending"
// @Router /api/friends/requests [post]
func (c *FriendshipController) SendRequest(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var input FriendRequestInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	req, err := c.FriendshipService.SendRequest(claims.UserID, input.ReceiverID, input.Message)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Created(ctx, req)
}

type RespondInput struct {
	Accept bool `json:"accept"`
}

// Respond godoc
// @Summary Accept or reject a friend request
// @Tags friends
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param body body RespondInput true "Decision"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "Not the receiver"
// @Router /api/friends/requests/{id} [put]
func (c *FriendshipController) Respond(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var input RespondInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err := c.FriendshipService.Respond(claims.UserID, ctx.Param("id"), input.Accept)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrUserNotFound):
			util.NotFound(ctx)
		default:
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, nil)
}

// Friends godoc
// @Summary List my friends
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.User}
// @Router /api/friends [get]
func (c *FriendshipController) Friends(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	friends, err := c.FriendshipService.ListFriends(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, friends)
}

// Pending godoc
// @Summary List friend requests waiting on me
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.FriendRequest}
// @Router /api/friends/requests [get]
func (c *FriendshipController) Pending(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	requests, err := c.FriendshipService.PendingRequests(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, requests)
}
