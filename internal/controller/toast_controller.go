package controller

import (
	"errors"
	"strconv"
	"time"
	"toast_backend/internal/repository"
	"toast_backend/internal/service"
	"toast_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ToastController struct {
	ToastService *service.ToastService
	Toasts       *repository.ToastRepository
}

func NewToastController(toastService *service.ToastService, toasts *repository.ToastRepository) *ToastController {
	return &ToastController{ToastService: toastService, Toasts: toasts}
}

// weekAnchor resolves the optional ?date= query through the service so the
// date is interpreted in the user's timezone, not as UTC midnight.
func (c *ToastController) weekAnchor(ctx *gin.Context, userID uint) (time.Time, bool) {
	at, err := c.ToastService.WeekAnchor(userID, ctx.Query("date"))
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, "invalid date, want YYYY-MM-DD")
		}
		return time.Time{}, false
	}
	return at, true
}

// Generate godoc
// @Summary Generate (or fetch) the week's toast
// @Description Aggregates the week's notes into a toast. Idempotent: if the toast for that week already exists it is returned as-is without calling the generation services again.
// @Tags toasts
// @Produce json
// @Security BearerAuth
// @Param date query string false "Any date inside the wanted week (2006-01-02); defaults to today"
// @Success 200 {object} util.Response{data=model.Toast}
// @Failure 422 {object} util.Response "No notes in that week"
// @Failure 502 {object} util.Response "Generation service failed"
// @Router /api/toasts/generate [post]
func (c *ToastController) Generate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	at, ok := c.weekAnchor(ctx, claims.UserID)
	if !ok {
		return
	}

	toast, err := c.ToastService.Generate(ctx.Request.Context(), claims.UserID, at)
	if err != nil {
		respondToastError(ctx, err)
		return
	}
	util.Success(ctx, toast)
}

// Regenerate godoc
// @Summary Rewrite the week's toast
// @Description Replaces an existing toast with a fresh generation for users unhappy with the result. The regeneration counter on the toast is incremented.
// @Tags toasts
// @Produce json
// @Security BearerAuth
// @Param date query string false "Any date inside the wanted week (2006-01-02); defaults to today"
// @Success 200 {object} util.Response{data=model.Toast}
// @Failure 422 {object} util.Response "No notes in that week"
// @Failure 502 {object} util.Response "Generation service failed"
// @Router /api/toasts/regenerate [post]
func (c *ToastController) Regenerate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	at, ok := c.weekAnchor(ctx, claims.UserID)
	if !ok {
		return
	}

	toast, err := c.ToastService.Regenerate(ctx.Request.Context(), claims.UserID, at)
	if err != nil {
		respondToastError(ctx, err)
		return
	}
	util.Success(ctx, toast)
}

func respondToastError(ctx *gin.Context, err error) {
	var genErr *util.GenerationError
	switch {
	case errors.Is(err, util.ErrNoContent):
		util.Error(ctx, 422, "no notes in that week")
	case errors.Is(err, util.ErrUserNotFound):
		util.NotFound(ctx)
	case errors.As(err, &genErr):
		util.Error(ctx, 502, "generation failed at "+genErr.Stage+" stage")
	default:
		util.LogInternalError(ctx, err)
	}
}

// List godoc
// @Summary List my toasts
// @Tags toasts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 20)"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/toasts [get]
func (c *ToastController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	toasts, total, err := c.Toasts.ListByUser(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: toasts, Total: total, Page: page, Limit: limit})
}

// Get godoc
// @Summary Fetch one toast
// @Description Owners always see their toasts; other callers get 404.
// @Tags toasts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Toast ID"
// @Success 200 {object} util.Response{data=model.Toast}
// @Failure 404 {object} util.Response
// @Router /api/toasts/{id} [get]
func (c *ToastController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	toast, err := c.Toasts.FindByID(ctx.Param("id"))
	if err != nil || toast.UserID != claims.UserID {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, toast)
}
