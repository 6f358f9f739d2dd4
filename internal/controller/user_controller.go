package controller

import (
	"toast_backend/internal/service"
	"toast_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// Me godoc
// @Summary Current user's profile
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/me [get]
func (c *UserController) Me(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	user, err := c.UserService.Profile(claims.UserID)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, user)
}

// UpdateMe godoc
// @Summary Update profile
// @Description Edits name, timezone and narration voice. Timezone must be a valid IANA name.
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.UpdateProfileInput true "Fields to change"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 400 {object} util.Response "Unknown timezone"
// @Router /api/me [put]
func (c *UserController) UpdateMe(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var input service.UpdateProfileInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateProfile(claims.UserID, input)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, user)
}

// UploadAvatar godoc
// @Summary Upload a profile image
// @Tags user
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Image file"
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/me/avatar [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	file, err := ctx.FormFile("avatar")
	if err != nil {
		util.BadRequest(ctx, "missing avatar file")
		return
	}

	user, err := c.UserService.UploadAvatar(ctx.Request.Context(), claims.UserID, file)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, user)
}

// Search godoc
// @Summary Search users by name or email
// @Tags user
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search term, at least 2 characters"
// @Success 200 {object} util.Response{data=[]model.User}
// @Router /api/users/search [get]
func (c *UserController) Search(ctx *gin.Context) {
	users, err := c.UserService.Search(ctx.Query("q"))
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, users)
}
