package service

import (
	"errors"
	"time"
	"toast_backend/internal/config"
	"toast_backend/internal/model"
	"toast_backend/internal/repository"
	"toast_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	Users  *repository.UserRepository
	Config *config.Config
}

func NewAuthService(users *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{Users: users, Config: cfg}
}

type RegisterInput struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Timezone string `json:"timezone" binding:"max=64"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register creates an account. An unparseable timezone falls back to UTC
// rather than failing signup.
func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	if _, err := s.Users.FindByEmail(input.Email); err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	tz := input.Timezone
	if tz == "" {
		tz = "UTC"
	}
	if _, err := time.LoadLocation(tz); err != nil {
		tz = "UTC"
	}

	user := &model.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hash),
		Role:     model.Member,
		Timezone: tz,
	}
	if err := s.Users.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrEmailRegistered
		}
		return nil, err
	}

	return s.issue(user)
}

func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	user, err := s.Users.FindByEmail(input.Email)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	if user.Disabled {
		return nil, util.ErrPermissionDenied
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, util.ErrUserNotFound
	}

	if err := s.Users.UpdateLastLogin(user.ID); err != nil {
		return nil, err
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := util.GenerateJWT(user, s.Config.JWT.Secret, s.Config.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}
