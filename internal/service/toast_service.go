package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"toast_backend/internal/model"
	"toast_backend/internal/util"
	"toast_backend/pkg/logger"
	"toast_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Collaborator interfaces for the aggregator. Declared on the consumer side
// so the weekly pipeline can be exercised in tests without a database or
// live generation endpoints; the concrete repositories and clients satisfy
// them as-is.

type NoteSource interface {
	ListByUserBetween(userID uint, start, end time.Time) ([]model.Note, error)
}

type ToastStore interface {
	FindByUserAndWeek(userID uint, weekStart time.Time) (*model.Toast, error)
	Create(toast *model.Toast) error
	Save(toast *model.Toast) error
}

type UserSource interface {
	FindByID(id uint) (*model.User, error)
}

type ActivitySink interface {
	Append(activity *model.UserActivity) error
}

type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

type AudioStore interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
}

type AwardEvaluator interface {
	Evaluate(userID uint, activityType model.ActivityType, metadata map[string]interface{}) ([]model.UserBadge, error)
}

type Notifier interface {
	Push(userID uint, kind model.NotificationKind, payload interface{})
}

// ToastService aggregates one week of a user's notes into a generated toast.
// At most one toast exists per (user, week); the existence check plus the
// unique index make Generate idempotent and bound external-API spend.
type ToastService struct {
	notes       NoteSource
	toasts      ToastStore
	users       UserSource
	activities  ActivitySink
	generator   TextGenerator
	synthesizer SpeechSynthesizer
	audio       AudioStore
	evaluator   AwardEvaluator
	notifier    Notifier
	timeout     time.Duration
	modelName   string
}

func NewToastService(
	notes NoteSource,
	toasts ToastStore,
	users UserSource,
	activities ActivitySink,
	generator TextGenerator,
	synthesizer SpeechSynthesizer,
	audio AudioStore,
	evaluator AwardEvaluator,
	notifier Notifier,
	timeout time.Duration,
	modelName string,
) *ToastService {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ToastService{
		notes:       notes,
		toasts:      toasts,
		users:       users,
		activities:  activities,
		generator:   generator,
		synthesizer: synthesizer,
		audio:       audio,
		evaluator:   evaluator,
		notifier:    notifier,
		timeout:     timeout,
		modelName:   modelName,
	}
}

// WeekAnchor resolves an optional client-supplied date (YYYY-MM-DD) into a
// generation anchor. The date is interpreted in the user's timezone: taken as
// a raw UTC instant, a Monday date would still be Sunday for users west of
// UTC and would silently select the previous week. An empty date means now.
func (s *ToastService) WeekAnchor(userID uint, raw string) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}
	parsed, err := time.Parse(util.DateFormat, raw)
	if err != nil {
		return time.Time{}, err
	}
	user, err := s.users.FindByID(userID)
	if err != nil {
		return time.Time{}, util.ErrUserNotFound
	}
	return util.DateIn(parsed, user.Location()), nil
}

// Generate produces the toast for the week containing at (in the user's
// timezone). If the toast already exists it is returned unchanged — no
// duplicate row, no repeated generation spend.
func (s *ToastService) Generate(ctx context.Context, userID uint, at time.Time) (*model.Toast, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	loc := user.Location()
	weekStart, weekEnd := util.WeekWindow(at, loc)

	existing, err := s.toasts.FindByUserAndWeek(userID, weekStart)
	if err == nil {
		monitoring.ToastGenerationCounter.WithLabelValues("cached").Inc()
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	toast, err := s.compose(ctx, user, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	if err := s.toasts.Create(toast); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent trigger won the insert race; its toast is the
			// toast. The unique index is the single source of truth.
			winner, ferr := s.toasts.FindByUserAndWeek(userID, weekStart)
			if ferr != nil {
				return nil, util.ErrDuplicatePeriod
			}
			monitoring.ToastGenerationCounter.WithLabelValues("cached").Inc()
			return winner, nil
		}
		return nil, err
	}

	monitoring.ToastGenerationCounter.WithLabelValues("generated").Inc()
	s.afterGenerate(toast)
	return toast, nil
}

// Regenerate deliberately bypasses the idempotency check and rewrites the
// week's toast. This is the explicit escape hatch for users unhappy with a
// generation, not a bug path.
func (s *ToastService) Regenerate(ctx context.Context, userID uint, at time.Time) (*model.Toast, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	loc := user.Location()
	weekStart, weekEnd := util.WeekWindow(at, loc)

	existing, err := s.toasts.FindByUserAndWeek(userID, weekStart)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh, err := s.compose(ctx, user, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		existing.Content = fresh.Content
		existing.AudioURL = fresh.AudioURL
		existing.GeneratedBy = fresh.GeneratedBy
		existing.Regenerated++
		if err := s.toasts.Save(existing); err != nil {
			return nil, err
		}
		monitoring.ToastGenerationCounter.WithLabelValues("generated").Inc()
		return existing, nil
	}

	if err := s.toasts.Create(fresh); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrDuplicatePeriod
		}
		return nil, err
	}
	monitoring.ToastGenerationCounter.WithLabelValues("generated").Inc()
	s.afterGenerate(fresh)
	return fresh, nil
}

// compose runs the full pipeline — notes → prompt → text → narration — and
// returns an unsaved toast. Nothing is persisted on failure, so a failed
// generation leaves the caller free to retry.
func (s *ToastService) compose(ctx context.Context, user *model.User, weekStart, weekEnd time.Time) (*model.Toast, error) {
	start := time.Now()
	defer func() {
		monitoring.ToastGenerationDuration.Observe(time.Since(start).Seconds())
	}()

	notes, err := s.notes.ListByUserBetween(user.ID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		monitoring.ToastGenerationCounter.WithLabelValues("no_content").Inc()
		return nil, util.ErrNoContent
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := BuildToastPrompt(user.Name, notes, weekStart, user.Location())
	text, err := s.generator.Generate(genCtx, prompt)
	if err != nil {
		monitoring.ToastGenerationCounter.WithLabelValues("failed").Inc()
		return nil, util.NewGenerationError(util.StageText, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		monitoring.ToastGenerationCounter.WithLabelValues("failed").Inc()
		return nil, util.NewGenerationError(util.StageText, errors.New("empty generation result"))
	}

	toast := &model.Toast{
		UserID:      user.ID,
		WeekStart:   weekStart,
		Content:     text,
		GeneratedBy: s.modelName,
	}

	// Narration is best effort: a toast without audio is valid, so synthesis
	// or upload failures must not discard the text.
	if audioURL := s.narrate(genCtx, user, text, weekStart); audioURL != "" {
		toast.AudioURL = audioURL
	}

	return toast, nil
}

func (s *ToastService) narrate(ctx context.Context, user *model.User, text string, weekStart time.Time) string {
	if s.synthesizer == nil || s.audio == nil {
		return ""
	}

	audio, err := s.synthesizer.Synthesize(ctx, text, user.Voice)
	if err != nil {
		logger.Log.Warn("toast narration failed, saving text only",
			zap.Uint("userId", user.ID), zap.Error(err))
		return ""
	}

	filename := fmt.Sprintf("toasts/%d/%s.mp3", user.ID, weekStart.Format(util.DateFormat))
	url, err := s.audio.Upload(ctx, filename, bytes.NewReader(audio), int64(len(audio)), "audio/mpeg")
	if err != nil {
		logger.Log.Warn("toast narration upload failed, saving text only",
			zap.Uint("userId", user.ID), zap.Error(err))
		return ""
	}
	return url
}

// afterGenerate records the activity, re-evaluates badges and pings the UI.
// All best effort: the toast row is already durable.
func (s *ToastService) afterGenerate(toast *model.Toast) {
	if s.activities != nil {
		err := s.activities.Append(&model.UserActivity{
			UserID:   toast.UserID,
			Type:     model.ActivityToastGenerated,
			Metadata: fmt.Sprintf(`{"toastId":%q,"weekStart":%q}`, toast.ID, toast.WeekStart.Format(util.DateFormat)),
		})
		if err != nil {
			logger.Log.Error("failed to append toast activity", zap.Error(err))
		}
	}

	if s.evaluator != nil {
		if _, err := s.evaluator.Evaluate(toast.UserID, model.ActivityToastGenerated, map[string]interface{}{
			"toastId": toast.ID,
		}); err != nil {
			logger.Log.Error("badge evaluation after toast failed", zap.Error(err))
		}
	}

	if s.notifier != nil {
		s.notifier.Push(toast.UserID, model.NotifyNewToast, toast)
	}
}

// GenerateForAllUsers is the weekly cron entry point: it generates last
// week's toast for every active user. Weeks are resolved per user timezone;
// generation is idempotent, so overlapping cron fires are harmless.
func (s *ToastService) GenerateForAllUsers(ctx context.Context, users []model.User) {
	now := time.Now()
	for i := range users {
		user := &users[i]
		loc := user.Location()
		// Anchor inside the previous, fully completed week in the user's zone.
		anchor := util.WeekStart(now, loc).AddDate(0, 0, -7)

		_, err := s.Generate(ctx, user.ID, anchor)
		switch {
		case err == nil:
		case errors.Is(err, util.ErrNoContent):
			logger.Log.Debug("no notes for weekly toast", zap.Uint("userId", user.ID))
		default:
			logger.Log.Error("weekly toast generation failed",
				zap.Uint("userId", user.ID), zap.Error(err))
		}
	}
}

// BuildToastPrompt flattens a week of notes into the user prompt for the
// generation model. Audio-only notes contribute a marker line so the model
// knows a reflection happened even without its text.
func BuildToastPrompt(name string, notes []model.Note, weekStart time.Time, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", name)
	fmt.Fprintf(&b, "Week of %s\n", weekStart.Format("January 2, 2006"))
	b.WriteString("Reflections:\n")

	for _, note := range notes {
		day := note.CreatedAt.In(loc).Format("Monday")
		content := strings.TrimSpace(note.Content)
		if content == "" && note.AudioURL != "" {
			content = "(voice note, no transcript)"
		}
		if content == "" {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", day, content)
	}

	return b.String()
}
