package controller

import (
	"errors"
	"net/http"
	"toast_backend/internal/service"
	"toast_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// Register godoc
// @Summary Register a new account
// @Description Creates a user with an optional IANA timezone (defaults to UTC) and returns a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param body body service.RegisterInput true "Registration details"
// @Success 201 {object} util.Response{data=service.AuthResult}
// @Failure 400 {object} util.Response "Invalid input"
// @Failure 409 {object} util.Response "Email already registered"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var input service.RegisterInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AuthService.Register(input)
	if err != nil {
		if errors.Is(err, util.ErrEmailRegistered) {
			util.Conflict(ctx, "email already registered")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, result)
}

// Login godoc
// @Summary Log in
// @Description Exchanges email and password for a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param body body service.LoginInput true "Credentials"
// @Success 200 {object} util.Response{data=service.AuthResult}
// @Failure 401 {object} util.Response "Bad credentials"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var input service.LoginInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AuthService.Login(input)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) || errors.Is(err, util.ErrPermissionDenied) {
			util.Error(ctx, http.StatusUnauthorized, "invalid email or password")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}
