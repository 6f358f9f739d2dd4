package controller

import (
	"errors"
	"strconv"
	"toast_backend/internal/service"
	"toast_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ShareController struct {
	ShareService *service.ShareService
}

func NewShareController(shareService *service.ShareService) *ShareController {
	return &ShareController{ShareService: shareService}
}

type ShareRequest struct {
	RecipientID uint `json:"recipientId" binding:"required"`
}

// Share godoc
// @Summary Share a toast with a friend
// @Description Only the toast's owner may share, and only with an existing friend. Sharing the same toast to the same friend twice is a no-op.
// @Tags shares
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Toast ID"
// @Param body body ShareRequest true "Recipient"
// @Success 201 {object} util.Response{data=model.ToastShare}
// @Failure 403 {object} util.Response "Not the owner, or not friends"
// @Failure 404 {object} util.Response
// @Router /api/toasts/{id}/share [post]
func (c *ShareController) Share(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req ShareRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	share, err := c.ShareService.Share(claims.UserID, ctx.Param("id"), req.RecipientID)
	if err != nil {
		respondShareError(ctx, err)
		return
	}
	util.Created(ctx, share)
}

func respondShareError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrToastNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrNotFriends):
		util.Error(ctx, 403, "you can only share with friends")
	default:
		util.BadRequest(ctx, err.Error())
	}
}

// SharedWithMe godoc
// @Summary Toasts friends have shared with me
// @Tags shares
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 20)"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/shares/inbox [get]
func (c *ShareController) SharedWithMe(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	shares, total, err := c.ShareService.ListSharedWithMe(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: shares, Total: total, Page: page, Limit: limit})
}

type ReactRequest struct {
	Emoji string `json:"emoji" binding:"required,max=16"`
}

// React godoc
// @Summary React to a toast
// @Description Adds an emoji reaction to a toast visible to the caller. One reaction per user per emoji per toast; duplicates are absorbed.
// @Tags shares
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Toast ID"
// @Param body body ReactRequest true "Emoji"
// @Success 201 {object} util.Response{data=model.ToastReaction}
// @Failure 403 {object} util.Response "Toast not visible to caller"
// @Router /api/toasts/{id}/reactions [post]
func (c *ShareController) React(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req ReactRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reaction, err := c.ShareService.React(claims.UserID, ctx.Param("id"), req.Emoji)
	if err != nil {
		respondShareError(ctx, err)
		return
	}
	util.Created(ctx, reaction)
}

// Unreact godoc
// @Summary Remove my reaction
// @Tags shares
// @Produce json
// @Security BearerAuth
// @Param id path string true "Toast ID"
// @Param emoji query string true "Emoji to remove"
// @Success 200 {object} util.Response
// @Router /api/toasts/{id}/reactions [delete]
func (c *ShareController) Unreact(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	if err := c.ShareService.Unreact(claims.UserID, ctx.Param("id"), ctx.Query("emoji")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Reactions godoc
// @Summary List reactions on a toast
// @Tags shares
// @Produce json
// @Security BearerAuth
// @Param id path string true "Toast ID"
// @Success 200 {object} util.Response{data=[]model.ToastReaction}
// @Router /api/toasts/{id}/reactions [get]
func (c *ShareController) Reactions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	reactions, err := c.ShareService.ListReactions(claims.UserID, ctx.Param("id"))
	if err != nil {
		respondShareError(ctx, err)
		return
	}
	util.Success(ctx, reactions)
}

type CommentRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

// Comment godoc
// @Summary Comment on a toast
// @Tags shares
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Toast ID"
// @Param body body CommentRequest true "Comment text"
// @Success 201 {object} util.Response{data=model.ToastComment}
// @Failure 403 {object} util.Response "Toast not visible to caller"
// @Router /api/toasts/{id}/comments [post]
func (c *ShareController) Comment(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	comment, err := c.ShareService.Comment(claims.UserID, ctx.Param("id"), req.Content)
	if err != nil {
		respondShareError(ctx, err)
		return
	}
	util.Created(ctx, comment)
}

// Comments godoc
// @Summary List comments on a toast
// @Tags shares
// @Produce json
// @Security BearerAuth
// @Param id path string true "Toast ID"
// @Success 200 {object} util.Response{data=[]model.ToastComment}
// @Router /api/toasts/{id}/comments [get]
func (c *ShareController) Comments(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	comments, err := c.ShareService.ListComments(claims.UserID, ctx.Param("id"))
	if err != nil {
		respondShareError(ctx, err)
		return
	}
	util.Success(ctx, comments)
}
