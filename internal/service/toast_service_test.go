package service

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"
	"toast_backend/internal/model"
	"toast_backend/internal/util"
	"toast_backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// --- fakes ---

type fakeNotes struct {
	notes []model.Note
	err   error

	gotStart, gotEnd time.Time
}

func (f *fakeNotes) ListByUserBetween(userID uint, start, end time.Time) ([]model.Note, error) {
	f.gotStart, f.gotEnd = start, end
	return f.notes, f.err
}

type fakeToasts struct {
	existing  *model.Toast
	createErr error

	created *model.Toast
	saved   *model.Toast
}

func (f *fakeToasts) FindByUserAndWeek(userID uint, weekStart time.Time) (*model.Toast, error) {
	if f.existing != nil {
		return f.existing, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeToasts) Create(toast *model.Toast) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = toast
	return nil
}

func (f *fakeToasts) Save(toast *model.Toast) error {
	f.saved = toast
	return nil
}

type fakeUsers struct {
	user *model.User
}

func (f *fakeUsers) FindByID(id uint) (*model.User, error) {
	if f.user == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.user, nil
}

type fakeActivities struct {
	appended []model.UserActivity
}

func (f *fakeActivities) Append(a *model.UserActivity) error {
	f.appended = append(f.appended, *a)
	return nil
}

type fakeGenerator struct {
	text  string
	err   error
	calls int

	gotPrompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.gotPrompt = prompt
	return f.text, f.err
}

type fakeSynthesizer struct {
	audio []byte
	err   error
	calls int
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	f.calls++
	return f.audio, f.err
}

type fakeAudioStore struct {
	url string
	err error
}

func (f *fakeAudioStore) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fakeEvaluator struct {
	calls []model.ActivityType
}

func (f *fakeEvaluator) Evaluate(userID uint, activityType model.ActivityType, metadata map[string]interface{}) ([]model.UserBadge, error) {
	f.calls = append(f.calls, activityType)
	return nil, nil
}

type fakePush struct {
	userID uint
	kind   model.NotificationKind
}

type fakeNotifier struct {
	pushed []fakePush
}

func (f *fakeNotifier) Push(userID uint, kind model.NotificationKind, payload interface{}) {
	f.pushed = append(f.pushed, fakePush{userID, kind})
}

// --- harness ---

type toastFixture struct {
	svc   *ToastService
	notes *fakeNotes
	store *fakeToasts
	gen   *fakeGenerator
	tts   *fakeSynthesizer
	audio *fakeAudioStore
	acts  *fakeActivities
	eval  *fakeEvaluator
	push  *fakeNotifier
}

func newToastFixture(user *model.User, notes []model.Note) *toastFixture {
	f := &toastFixture{
		notes: &fakeNotes{notes: notes},
		store: &fakeToasts{},
		gen:   &fakeGenerator{text: "Here's to a week well lived."},
		tts:   &fakeSynthesizer{audio: []byte("mp3data")},
		audio: &fakeAudioStore{url: "/uploads/toasts/1/audio.mp3"},
		acts:  &fakeActivities{},
		eval:  &fakeEvaluator{},
		push:  &fakeNotifier{},
	}
	f.svc = NewToastService(
		f.notes, f.store, &fakeUsers{user: user}, f.acts,
		f.gen, f.tts, f.audio, f.eval, f.push,
		30*time.Second, "test-model",
	)
	return f
}

func testUser(tz string) *model.User {
	u := &model.User{Name: "Ada", Timezone: tz, Voice: "alloy"}
	u.ID = 1
	return u
}

func noteAt(t time.Time, content string) model.Note {
	n := model.Note{UserID: 1, Content: content}
	n.CreatedAt = t
	return n
}

// --- tests ---

func TestGenerateCreatesToastWithNarration(t *testing.T) {
	anchor := time.Date(2026, 8, 26, 15, 0, 0, 0, time.UTC) // Wednesday
	f := newToastFixture(testUser("UTC"), []model.Note{
		noteAt(anchor.AddDate(0, 0, -1), "shipped the release"),
	})

	toast, err := f.svc.Generate(context.Background(), 1, anchor)
	require.NoError(t, err)
	require.NotNil(t, f.store.created)

	assert.Equal(t, uint(1), toast.UserID)
	assert.Equal(t, "Here's to a week well lived.", toast.Content)
	assert.Equal(t, "/uploads/toasts/1/audio.mp3", toast.AudioURL)
	assert.Equal(t, "test-model", toast.GeneratedBy)

	// Week window is Monday 00:00 through the next Monday.
	wantStart := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	assert.True(t, toast.WeekStart.Equal(wantStart), "got %v", toast.WeekStart)
	assert.True(t, f.notes.gotEnd.Equal(wantStart.AddDate(0, 0, 7)))

	// Side effects fired once each.
	require.Len(t, f.acts.appended, 1)
	assert.Equal(t, model.ActivityToastGenerated, f.acts.appended[0].Type)
	assert.Equal(t, []model.ActivityType{model.ActivityToastGenerated}, f.eval.calls)
	require.Len(t, f.push.pushed, 1)
	assert.Equal(t, model.NotifyNewToast, f.push.pushed[0].kind)
}

func TestGenerateIsIdempotent(t *testing.T) {
	existing := &model.Toast{UserID: 1, Content: "already there"}
	f := newToastFixture(testUser("UTC"), []model.Note{
		noteAt(time.Now(), "note"),
	})
	f.store.existing = existing

	toast, err := f.svc.Generate(context.Background(), 1, time.Now())
	require.NoError(t, err)
	assert.Same(t, existing, toast)
	assert.Zero(t, f.gen.calls, "generator must not run for an existing week")
	assert.Empty(t, f.acts.appended)
	assert.Empty(t, f.push.pushed)
}

func TestGenerateEmptyWeekReturnsNoContent(t *testing.T) {
	f := newToastFixture(testUser("UTC"), nil)

	_, err := f.svc.Generate(context.Background(), 1, time.Now())
	assert.ErrorIs(t, err, util.ErrNoContent)
	assert.Zero(t, f.gen.calls)
	assert.Nil(t, f.store.created)
}

func TestGenerateTextFailurePersistsNothing(t *testing.T) {
	f := newToastFixture(testUser("UTC"), []model.Note{noteAt(time.Now(), "note")})
	f.gen.err = errors.New("upstream 503")

	_, err := f.svc.Generate(context.Background(), 1, time.Now())

	var genErr *util.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, util.StageText, genErr.Stage)
	assert.Nil(t, f.store.created)
	assert.Empty(t, f.acts.appended)
}

func TestGenerateSpeechFailureKeepsText(t *testing.T) {
	f := newToastFixture(testUser("UTC"), []model.Note{noteAt(time.Now(), "note")})
	f.tts.err = errors.New("tts down")

	toast, err := f.svc.Generate(context.Background(), 1, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Here's to a week well lived.", toast.Content)
	assert.Empty(t, toast.AudioURL)
	require.NotNil(t, f.store.created)
}

func TestGenerateUploadFailureKeepsText(t *testing.T) {
	f := newToastFixture(testUser("UTC"), []model.Note{noteAt(time.Now(), "note")})
	f.audio.err = errors.New("bucket gone")

	toast, err := f.svc.Generate(context.Background(), 1, time.Now())
	require.NoError(t, err)
	assert.Empty(t, toast.AudioURL)
}

func TestGenerateRaceReturnsWinner(t *testing.T) {
	f := newToastFixture(testUser("UTC"), []model.Note{noteAt(time.Now(), "note")})

	winner := &model.Toast{UserID: 1, Content: "the winner"}
	first := true
	f.store.createErr = gorm.ErrDuplicatedKey
	// The re-read after the duplicate error must see the winner's row.
	lookup := f.store
	f.svc.toasts = &raceToasts{inner: lookup, winner: winner, firstMiss: &first}

	toast, err := f.svc.Generate(context.Background(), 1, time.Now())
	require.NoError(t, err)
	assert.Same(t, winner, toast)
	assert.Empty(t, f.acts.appended, "losing side must not record activity")
}

// raceToasts misses on the first lookup and returns the winner afterwards,
// simulating an insert that lands between check and create.
type raceToasts struct {
	inner     *fakeToasts
	winner    *model.Toast
	firstMiss *bool
}

func (r *raceToasts) FindByUserAndWeek(userID uint, weekStart time.Time) (*model.Toast, error) {
	if *r.firstMiss {
		*r.firstMiss = false
		return nil, gorm.ErrRecordNotFound
	}
	return r.winner, nil
}

func (r *raceToasts) Create(toast *model.Toast) error { return gorm.ErrDuplicatedKey }
func (r *raceToasts) Save(toast *model.Toast) error   { return r.inner.Save(toast) }

func TestGenerateTimezoneWeekBoundary(t *testing.T) {
	// Sunday 23:00 in Los Angeles is already Monday in UTC. The window must
	// be resolved in the user's zone, so this note belongs to the ending week.
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	anchor := time.Date(2026, 8, 30, 23, 0, 0, 0, la) // Sunday night
	f := newToastFixture(testUser("America/Los_Angeles"), []model.Note{
		noteAt(anchor, "late reflection"),
	})

	toast, err := f.svc.Generate(context.Background(), 1, anchor)
	require.NoError(t, err)

	wantStart := time.Date(2026, 8, 24, 0, 0, 0, 0, la)
	assert.True(t, toast.WeekStart.Equal(wantStart), "got %v", toast.WeekStart)
}

func TestWeekAnchorResolvesDateInUserTimezone(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	f := newToastFixture(testUser("America/Los_Angeles"), []model.Note{
		noteAt(time.Date(2026, 9, 1, 12, 0, 0, 0, la), "tuesday note"),
	})

	// "2026-08-31" is a Monday. Parsed as UTC midnight it is still Sunday
	// evening in Los Angeles and would anchor the week of Aug 24.
	at, err := f.svc.WeekAnchor(1, "2026-08-31")
	require.NoError(t, err)

	wantStart := time.Date(2026, 8, 31, 0, 0, 0, 0, la)
	assert.True(t, util.WeekStart(at, la).Equal(wantStart), "got %v", util.WeekStart(at, la))

	toast, err := f.svc.Generate(context.Background(), 1, at)
	require.NoError(t, err)
	assert.True(t, toast.WeekStart.Equal(wantStart), "got %v", toast.WeekStart)
}

func TestWeekAnchorDefaultsAndValidation(t *testing.T) {
	f := newToastFixture(testUser("UTC"), nil)

	at, err := f.svc.WeekAnchor(1, "")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), at, time.Minute)

	_, err = f.svc.WeekAnchor(1, "08/31/2026")
	assert.Error(t, err)
}

func TestRegenerateOverwritesExisting(t *testing.T) {
	existing := &model.Toast{UserID: 1, Content: "old text", AudioURL: "old.mp3"}
	f := newToastFixture(testUser("UTC"), []model.Note{noteAt(time.Now(), "note")})
	f.store.existing = existing

	toast, err := f.svc.Regenerate(context.Background(), 1, time.Now())
	require.NoError(t, err)

	assert.Same(t, existing, toast)
	assert.Equal(t, "Here's to a week well lived.", toast.Content)
	assert.Equal(t, 1, toast.Regenerated)
	assert.Equal(t, 1, f.gen.calls)
	require.NotNil(t, f.store.saved)
	assert.Empty(t, f.acts.appended, "regeneration is not a new toast activity")
}

func TestRegenerateWithoutExistingCreates(t *testing.T) {
	f := newToastFixture(testUser("UTC"), []model.Note{noteAt(time.Now(), "note")})

	toast, err := f.svc.Regenerate(context.Background(), 1, time.Now())
	require.NoError(t, err)
	assert.NotNil(t, f.store.created)
	assert.Equal(t, 0, toast.Regenerated)
}

func TestBuildToastPrompt(t *testing.T) {
	loc := time.UTC
	weekStart := time.Date(2026, 8, 24, 0, 0, 0, 0, loc)
	notes := []model.Note{
		noteAt(weekStart.Add(10*time.Hour), "started the garden"),
		noteAt(weekStart.AddDate(0, 0, 2), ""),
	}
	notes[1].AudioURL = "/uploads/notes/1/x.mp3"

	prompt := BuildToastPrompt("Ada", notes, weekStart, loc)

	assert.Contains(t, prompt, "Name: Ada")
	assert.Contains(t, prompt, "Week of August 24, 2026")
	assert.Contains(t, prompt, "- Monday: started the garden")
	assert.Contains(t, prompt, "(voice note, no transcript)")
	assert.Equal(t, 1, strings.Count(prompt, "Monday:"), "each note on its own line")
}
