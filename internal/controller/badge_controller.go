package controller

import (
	"toast_backend/internal/model"
	"toast_backend/internal/repository"
	"toast_backend/internal/service"
	"toast_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type BadgeController struct {
	BadgeService *service.BadgeService
	Badges       *repository.BadgeRepository
}

func NewBadgeController(badgeService *service.BadgeService, badges *repository.BadgeRepository) *BadgeController {
	return &BadgeController{BadgeService: badgeService, Badges: badges}
}

// Catalog godoc
// @Summary List all available badges
// @Tags badges
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Badge}
// @Router /api/badges [get]
func (c *BadgeController) Catalog(ctx *gin.Context) {
	badges, err := c.BadgeService.Catalog()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, badges)
}

// Mine godoc
// @Summary List my earned badges
// @Tags badges
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.UserBadge}
// @Router /api/badges/mine [get]
func (c *BadgeController) Mine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	awards, err := c.BadgeService.MyBadges(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, awards)
}

// MarkSeen godoc
// @Summary Acknowledge a badge award
// @Description Marks an award as seen so the UI stops highlighting it. Calling it again is a no-op.
// @Tags badges
// @Produce json
// @Security BearerAuth
// @Param id path int true "UserBadge ID"
// @Success 200 {object} util.Response
// @Router /api/badges/mine/{id}/seen [post]
func (c *BadgeController) MarkSeen(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "invalid award id")
		return
	}

	if err := c.BadgeService.MarkSeen(claims.UserID, id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type BadgeInput struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=255"`
	Category    string `json:"category" binding:"required,max=64"`
	Requirement string `json:"requirement" binding:"required,oneof=note_total note_streak toast_total share_total reaction_total"`
	Threshold   int    `json:"threshold" binding:"required,min=1"`
	Icon        string `json:"icon" binding:"max=255"`
	Enabled     *bool  `json:"enabled"`
}

// AdminList godoc
// @Summary List the full catalog, disabled badges included
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Badge}
// @Router /api/admin/badges [get]
func (c *BadgeController) AdminList(ctx *gin.Context) {
	badges, err := c.Badges.ListAll()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, badges)
}

// AdminCreate godoc
// @Summary Add a badge to the catalog
// @Description Requirement must be one of the known metric keys. New badges apply to users on their next evaluation.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body BadgeInput true "Badge definition"
// @Success 201 {object} util.Response{data=model.Badge}
// @Router /api/admin/badges [post]
func (c *BadgeController) AdminCreate(ctx *gin.Context) {
	var input BadgeInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	badge := &model.Badge{
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Requirement: input.Requirement,
		Threshold:   input.Threshold,
		Icon:        input.Icon,
		Enabled:     input.Enabled == nil || *input.Enabled,
	}
	if err := c.Badges.Create(badge); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, badge)
}

// AdminUpdate godoc
// @Summary Edit a badge definition
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Badge ID"
// @Param body body BadgeInput true "New definition"
// @Success 200 {object} util.Response{data=model.Badge}
// @Failure 404 {object} util.Response
// @Router /api/admin/badges/{id} [put]
func (c *BadgeController) AdminUpdate(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	badge, err := c.Badges.FindByID(id)
	if err != nil {
		util.NotFound(ctx)
		return
	}

	var input BadgeInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	badge.Name = input.Name
	badge.Description = input.Description
	badge.Category = input.Category
	badge.Requirement = input.Requirement
	badge.Threshold = input.Threshold
	badge.Icon = input.Icon
	if input.Enabled != nil {
		badge.Enabled = *input.Enabled
	}

	if err := c.Badges.Update(badge); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, badge)
}

// AdminDelete godoc
// @Summary Remove a badge from the catalog
// @Description Existing awards keep their rows; the badge just stops being evaluated.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Badge ID"
// @Success 200 {object} util.Response
// @Router /api/admin/badges/{id} [delete]
func (c *BadgeController) AdminDelete(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if err := c.Badges.Delete(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Reevaluate godoc
// @Summary Re-run badge evaluation for myself
// @Description Checks every metric against the catalog and awards anything missed, for example after the catalog gained new badges.
// @Tags badges
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.UserBadge}
// @Router /api/badges/evaluate [post]
func (c *BadgeController) Reevaluate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	fresh, err := c.BadgeService.EvaluateAll(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, fresh)
}
