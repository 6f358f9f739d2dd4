package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
	"toast_backend/internal/model"
	"toast_backend/internal/repository"
	"toast_backend/internal/util"
	"toast_backend/pkg/logger"

	"go.uber.org/zap"
)

// NoteService owns the daily reflection lifecycle. Every created note feeds
// the activity log and re-runs badge evaluation, which is how streak and
// note-count badges land without any scheduled job.
type NoteService struct {
	Repo       *repository.NoteRepository
	Users      *repository.UserRepository
	Activities ActivitySink
	Evaluator  AwardEvaluator
	Storage    *StorageService
}

func NewNoteService(repo *repository.NoteRepository, users *repository.UserRepository, activities ActivitySink, evaluator AwardEvaluator, storage *StorageService) *NoteService {
	return &NoteService{
		Repo:       repo,
		Users:      users,
		Activities: activities,
		Evaluator:  evaluator,
		Storage:    storage,
	}
}

type CreateNoteInput struct {
	Content   string `json:"content" binding:"required,max=5000"`
	BundleTag string `json:"bundleTag" binding:"max=64"`
}

// Create stores a text reflection.
func (s *NoteService) Create(userID uint, input CreateNoteInput) (*model.Note, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, util.ErrNoContent
	}

	note := &model.Note{
		UserID:    userID,
		Content:   content,
		BundleTag: input.BundleTag,
	}
	if err := s.Repo.Create(note); err != nil {
		return nil, err
	}

	s.afterCreate(note)
	return note, nil
}

// CreateAudio stores a voice reflection: validate the upload, probe its
// duration, push it to storage and persist the note. Optional content is the
// caller-provided transcript or caption.
func (s *NoteService) CreateAudio(ctx context.Context, userID uint, content string, file *multipart.FileHeader) (*model.Note, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := false
	for _, e := range util.AllowedAudioExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("unsupported audio extension %q", ext)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mimeType, err := util.ValidateMimeType(src, []string{"audio/", "video/webm", "video/mp4", "application/octet-stream"})
	if err != nil {
		return nil, err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	// Spool to disk so ffprobe can read it before upload.
	tmp, err := os.CreateTemp("", "note-audio-*"+ext)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		return nil, err
	}

	info, err := util.GetAudioInfo(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("invalid audio upload: %w", err)
	}
	if info.Duration <= 0 {
		return nil, fmt.Errorf("empty recording")
	}

	filename := fmt.Sprintf("notes/%d/%s%s", userID, model.GenerateUUID(), ext)
	audioURL, err := s.Storage.UploadFile(ctx, filename, tmp.Name(), mimeType)
	if err != nil {
		return nil, err
	}

	note := &model.Note{
		UserID:   userID,
		Content:  strings.TrimSpace(content),
		AudioURL: audioURL,
		Duration: info.Duration,
	}
	if err := s.Repo.Create(note); err != nil {
		return nil, err
	}

	s.afterCreate(note)
	return note, nil
}

func (s *NoteService) afterCreate(note *model.Note) {
	if s.Activities != nil {
		err := s.Activities.Append(&model.UserActivity{
			UserID:   note.UserID,
			Type:     model.ActivityNoteCreated,
			Metadata: fmt.Sprintf(`{"noteId":%q}`, note.ID),
		})
		if err != nil {
			logger.Log.Error("failed to append note activity", zap.Error(err))
		}
	}

	if s.Evaluator != nil {
		if _, err := s.Evaluator.Evaluate(note.UserID, model.ActivityNoteCreated, map[string]interface{}{
			"noteId": note.ID,
		}); err != nil {
			logger.Log.Error("badge evaluation after note failed", zap.Error(err))
		}
	}
}

type UpdateNoteInput struct {
	Content   string `json:"content" binding:"required,max=5000"`
	BundleTag string `json:"bundleTag" binding:"max=64"`
}

// Update edits a note's text. Ownership is enforced by the lookup; the
// original creation time is untouched so streak history stays honest.
func (s *NoteService) Update(userID uint, noteID string, input UpdateNoteInput) (*model.Note, error) {
	note, err := s.Repo.FindByIDAndUser(noteID, userID)
	if err != nil {
		return nil, util.ErrNoteNotFound
	}

	note.Content = strings.TrimSpace(input.Content)
	note.BundleTag = input.BundleTag
	if err := s.Repo.Save(note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, userID uint, noteID string) error {
	note, err := s.Repo.FindByIDAndUser(noteID, userID)
	if err != nil {
		return util.ErrNoteNotFound
	}

	if err := s.Repo.Delete(noteID, userID); err != nil {
		return err
	}

	if note.AudioURL != "" {
		if key, ok := storageKeyFromURL(note.AudioURL); ok {
			if err := s.Storage.Delete(ctx, key); err != nil {
				logger.Log.Warn("orphaned note audio", zap.String("url", note.AudioURL), zap.Error(err))
			}
		}
	}
	return nil
}

func (s *NoteService) Get(userID uint, noteID string) (*model.Note, error) {
	note, err := s.Repo.FindByIDAndUser(noteID, userID)
	if err != nil {
		return nil, util.ErrNoteNotFound
	}
	return note, nil
}

func (s *NoteService) List(userID uint, page, pageSize int) ([]model.Note, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.Repo.ListByUser(userID, page, pageSize)
}

// ListWeek returns the notes inside the week containing at, resolved in the
// user's timezone. This is the same window the aggregator reads. dateOnly
// marks a client-supplied calendar date (parsed to UTC midnight), which is
// reinterpreted in the user's zone before anchoring the window.
func (s *NoteService) ListWeek(userID uint, at time.Time, dateOnly bool) ([]model.Note, error) {
	user, err := s.Users.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	loc := user.Location()
	if dateOnly {
		at = util.DateIn(at, loc)
	}
	start, end := util.WeekWindow(at, loc)
	return s.Repo.ListByUserBetween(userID, start, end)
}

// storageKeyFromURL recovers the storage object key from a serving URL
// produced by a provider's GetURL. Unknown shapes return false and the
// object is left alone.
func storageKeyFromURL(url string) (string, bool) {
	if strings.HasPrefix(url, "/uploads/") {
		return strings.TrimPrefix(url, "/uploads/"), true
	}
	if idx := strings.Index(url, "/notes/"); idx >= 0 {
		return url[idx+1:], true
	}
	if idx := strings.Index(url, "/toasts/"); idx >= 0 {
		return url[idx+1:], true
	}
	return "", false
}
