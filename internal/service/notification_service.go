package service

import (
	"encoding/json"
	"toast_backend/internal/model"
	"toast_backend/internal/repository"
	"toast_backend/pkg/logger"

	"go.uber.org/zap"
)

// NotificationService persists notifications and pushes them over the hub.
// The database row is the source of truth; socket delivery is best effort so
// offline users catch up by polling.
type NotificationService struct {
	Repo *repository.NotificationRepository
	Hub  *NotifyHub
}

func NewNotificationService(repo *repository.NotificationRepository, hub *NotifyHub) *NotificationService {
	return &NotificationService{Repo: repo, Hub: hub}
}

// Push stores the notification and forwards it to any open socket.
func (s *NotificationService) Push(userID uint, kind model.NotificationKind, payload interface{}) {
	blob, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Error("notification payload marshal failed",
			zap.Uint("userId", userID), zap.String("kind", string(kind)), zap.Error(err))
		return
	}

	n := &model.Notification{
		UserID:  userID,
		Kind:    kind,
		Payload: string(blob),
	}
	if err := s.Repo.Create(n); err != nil {
		logger.Log.Error("notification persist failed",
			zap.Uint("userId", userID), zap.String("kind", string(kind)), zap.Error(err))
		// Still try the socket; the user just won't see it after reconnect.
	}

	if s.Hub != nil {
		s.Hub.PushToUsers([]uint{userID}, WSMessage{Type: string(kind), Data: payload})
	}
}

func (s *NotificationService) List(userID uint, onlyUnread bool, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.Repo.ListByUser(userID, onlyUnread, limit)
}

func (s *NotificationService) MarkRead(userID uint, id string) error {
	return s.Repo.MarkRead(userID, id)
}

func (s *NotificationService) MarkAllRead(userID uint) error {
	return s.Repo.MarkAllRead(userID)
}
