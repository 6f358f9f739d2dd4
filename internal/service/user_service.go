package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"
	"toast_backend/internal/model"
	"toast_backend/internal/repository"
	"toast_backend/internal/util"
)

type UserService struct {
	Repo    *repository.UserRepository
	Storage *StorageService
}

func NewUserService(repo *repository.UserRepository, storage *StorageService) *UserService {
	return &UserService{Repo: repo, Storage: storage}
}

func (s *UserService) Profile(userID uint) (*model.User, error) {
	user, err := s.Repo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	return user, nil
}

type UpdateProfileInput struct {
	Name     string `json:"name" binding:"omitempty,max=100"`
	Timezone string `json:"timezone" binding:"omitempty,max=64"`
	Voice    string `json:"voice" binding:"omitempty,max=64"`
}

// UpdateProfile edits name, timezone and narration voice. The timezone must
// be a loadable IANA name since every week window and streak depends on it.
func (s *UserService) UpdateProfile(userID uint, input UpdateProfileInput) (*model.User, error) {
	user, err := s.Repo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Timezone != "" {
		if _, err := time.LoadLocation(input.Timezone); err != nil {
			return nil, fmt.Errorf("unknown timezone %q", input.Timezone)
		}
		user.Timezone = input.Timezone
	}
	if input.Voice != "" {
		user.Voice = input.Voice
	}

	if err := s.Repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// UploadAvatar stores a profile image and records its URL.
func (s *UserService) UploadAvatar(ctx context.Context, userID uint, file *multipart.FileHeader) (*model.User, error) {
	user, err := s.Repo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mimeType, err := util.ValidateMimeType(src, []string{"image/"})
	if err != nil {
		return nil, err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	filename := fmt.Sprintf("avatars/%d%s", userID, ext)
	url, err := s.Storage.Upload(ctx, filename, src, file.Size, mimeType)
	if err != nil {
		return nil, err
	}

	user.Avatar = url
	if err := s.Repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Search finds users by name or email fragment, for the add-friend flow.
func (s *UserService) Search(term string) ([]model.User, error) {
	term = strings.TrimSpace(term)
	if len(term) < 2 {
		return nil, fmt.Errorf("search term too short")
	}
	return s.Repo.SearchByNameOrEmail(term, 20)
}

func (s *UserService) Touch(userID uint) {
	_ = s.Repo.UpdateLastSeen(userID)
}
