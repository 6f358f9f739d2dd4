package service

import (
	"errors"
	"fmt"
	"strings"
	"toast_backend/internal/model"
	"toast_backend/internal/repository"
	"toast_backend/internal/util"
	"toast_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ShareService handles the social surface around toasts: sharing with
// friends, reactions and comments. Share counts feed the sender's badges;
// reaction counts feed the toast owner's.
type ShareService struct {
	Shares      *repository.ShareRepository
	Toasts      *repository.ToastRepository
	Friendships *repository.FriendshipRepository
	Activities  ActivitySink
	Evaluator   AwardEvaluator
	Notifier    Notifier
}

func NewShareService(
	shares *repository.ShareRepository,
	toasts *repository.ToastRepository,
	friendships *repository.FriendshipRepository,
	activities ActivitySink,
	evaluator AwardEvaluator,
	notifier Notifier,
) *ShareService {
	return &ShareService{
		Shares:      shares,
		Toasts:      toasts,
		Friendships: friendships,
		Activities:  activities,
		Evaluator:   evaluator,
		Notifier:    notifier,
	}
}

// Share makes one of the sender's toasts visible to a friend. Only the owner
// can share, and only with an existing friend. Re-sharing the same toast to
// the same person is absorbed.
func (s *ShareService) Share(senderID uint, toastID string, recipientID uint) (*model.ToastShare, error) {
	if senderID == recipientID {
		return nil, util.ErrPermissionDenied
	}

	toast, err := s.Toasts.FindByID(toastID)
	if err != nil {
		return nil, util.ErrToastNotFound
	}
	if toast.UserID != senderID {
		return nil, util.ErrPermissionDenied
	}

	friends, err := s.Friendships.AreFriends(senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if !friends {
		return nil, util.ErrNotFriends
	}

	share := &model.ToastShare{
		ToastID:     toastID,
		SenderID:    senderID,
		RecipientID: recipientID,
	}
	if err := s.Shares.Create(share); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return share, nil
		}
		return nil, err
	}

	if s.Activities != nil {
		err := s.Activities.Append(&model.UserActivity{
			UserID:   senderID,
			Type:     model.ActivityToastShared,
			Metadata: fmt.Sprintf(`{"toastId":%q,"recipientId":%d}`, toastID, recipientID),
		})
		if err != nil {
			logger.Log.Error("failed to append share activity", zap.Error(err))
		}
	}

	if s.Evaluator != nil {
		if _, err := s.Evaluator.Evaluate(senderID, model.ActivityToastShared, nil); err != nil {
			logger.Log.Error("badge evaluation after share failed", zap.Error(err))
		}
	}

	if s.Notifier != nil {
		s.Notifier.Push(recipientID, model.NotifyNewShare, map[string]interface{}{
			"toastId":  toastID,
			"senderId": senderID,
		})
	}

	return share, nil
}

func (s *ShareService) ListSharedWithMe(userID uint, page, pageSize int) ([]model.ToastShare, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.Shares.ListSharedWith(userID, page, pageSize)
}

// canSee reports whether userID may view toastID: owners always, recipients
// of a share otherwise.
func (s *ShareService) canSee(userID uint, toast *model.Toast) (bool, error) {
	if toast.UserID == userID {
		return true, nil
	}
	return s.Shares.WasSharedWith(toast.ID, userID)
}

// React adds an emoji reaction to a visible toast. Reacting twice with the
// same emoji is absorbed; the owner's reaction count only moves on fresh
// reactions from other users.
func (s *ShareService) React(userID uint, toastID string, emoji string) (*model.ToastReaction, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return nil, fmt.Errorf("empty emoji")
	}

	toast, err := s.Toasts.FindByID(toastID)
	if err != nil {
		return nil, util.ErrToastNotFound
	}

	visible, err := s.canSee(userID, toast)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, util.ErrPermissionDenied
	}

	reaction := &model.ToastReaction{
		ToastID: toastID,
		UserID:  userID,
		Emoji:   emoji,
	}
	if err := s.Shares.CreateReaction(reaction); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return reaction, nil
		}
		return nil, err
	}

	// Self-reactions never count toward the owner's badges.
	if toast.UserID != userID {
		if s.Activities != nil {
			err := s.Activities.Append(&model.UserActivity{
				UserID:   toast.UserID,
				Type:     model.ActivityReactionReceived,
				Metadata: fmt.Sprintf(`{"toastId":%q,"from":%d,"emoji":%q}`, toastID, userID, emoji),
			})
			if err != nil {
				logger.Log.Error("failed to append reaction activity", zap.Error(err))
			}
		}

		if s.Evaluator != nil {
			if _, err := s.Evaluator.Evaluate(toast.UserID, model.ActivityReactionReceived, nil); err != nil {
				logger.Log.Error("badge evaluation after reaction failed", zap.Error(err))
			}
		}

		if s.Notifier != nil {
			s.Notifier.Push(toast.UserID, model.NotifyReaction, map[string]interface{}{
				"toastId": toastID,
				"from":    userID,
				"emoji":   emoji,
			})
		}
	}

	return reaction, nil
}

func (s *ShareService) Unreact(userID uint, toastID string, emoji string) error {
	return s.Shares.DeleteReaction(toastID, userID, emoji)
}

func (s *ShareService) ListReactions(userID uint, toastID string) ([]model.ToastReaction, error) {
	toast, err := s.Toasts.FindByID(toastID)
	if err != nil {
		return nil, util.ErrToastNotFound
	}
	visible, err := s.canSee(userID, toast)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, util.ErrPermissionDenied
	}
	return s.Shares.ListReactions(toastID)
}

// Comment adds a comment to a visible toast and pings the owner.
func (s *ShareService) Comment(userID uint, toastID string, content string) (*model.ToastComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty comment")
	}

	toast, err := s.Toasts.FindByID(toastID)
	if err != nil {
		return nil, util.ErrToastNotFound
	}
	visible, err := s.canSee(userID, toast)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, util.ErrPermissionDenied
	}

	comment := &model.ToastComment{
		ToastID:  toastID,
		AuthorID: userID,
		Content:  content,
	}
	if err := s.Shares.CreateComment(comment); err != nil {
		return nil, err
	}

	if toast.UserID != userID {
		if s.Activities != nil {
			err := s.Activities.Append(&model.UserActivity{
				UserID:   toast.UserID,
				Type:     model.ActivityCommentReceived,
				Metadata: fmt.Sprintf(`{"toastId":%q,"from":%d}`, toastID, userID),
			})
			if err != nil {
				logger.Log.Error("failed to append comment activity", zap.Error(err))
			}
		}

		if s.Notifier != nil {
			s.Notifier.Push(toast.UserID, model.NotifyComment, map[string]interface{}{
				"toastId":   toastID,
				"from":      userID,
				"commentId": comment.ID,
			})
		}
	}

	return comment, nil
}

func (s *ShareService) ListComments(userID uint, toastID string) ([]model.ToastComment, error) {
	toast, err := s.Toasts.FindByID(toastID)
	if err != nil {
		return nil, util.ErrToastNotFound
	}
	visible, err := s.canSee(userID, toast)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, util.ErrPermissionDenied
	}
	return s.Shares.ListComments(toastID)
}
