package service

import (
	"errors"
	"fmt"
	"toast_backend/internal/model"
	"toast_backend/internal/repository"
	"toast_backend/internal/util"

	"gorm.io/gorm"
)

// FriendshipService manages friend requests and the accepted-pair table that
// gates toast sharing.
type FriendshipService struct {
	Repo  *repository.FriendshipRepository
	Users *repository.UserRepository
}

func NewFriendshipService(repo *repository.FriendshipRepository, users *repository.UserRepository) *FriendshipService {
	return &FriendshipService{Repo: repo, Users: users}
}

// SendRequest invites another user. Duplicate pending invitations and
// invitations to existing friends are rejected.
func (s *FriendshipService) SendRequest(senderID, receiverID uint, message string) (*model.FriendRequest, error) {
	if senderID == receiverID {
		return nil, fmt.Errorf("cannot befriend yourself")
	}

	if _, err := s.Users.FindByID(receiverID); err != nil {
		return nil, util.ErrUserNotFound
	}

	friends, err := s.Repo.AreFriends(senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, fmt.Errorf("already friends")
	}

	if _, err := s.Repo.FindPendingBetween(senderID, receiverID); err == nil {
		return nil, fmt.Errorf("request already pending")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// A pending invitation in the opposite direction means both sides want
	// the friendship; accept it instead of stacking a second request.
	if req, err := s.Repo.FindPendingBetween(receiverID, senderID); err == nil {
		return req, s.accept(req)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	req := &model.FriendRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     "pending",
		Message:    message,
	}
	if err := s.Repo.CreateRequest(req); err != nil {
		return nil, err
	}
	return req, nil
}

// Respond accepts or rejects a pending request. Only the receiver may act.
func (s *FriendshipService) Respond(userID uint, requestID string, accept bool) error {
	req, err := s.Repo.FindRequest(requestID)
	if err != nil {
		return util.ErrUserNotFound
	}
	if req.ReceiverID != userID {
		return util.ErrPermissionDenied
	}
	if req.Status != "pending" {
		return fmt.Errorf("request already %s", req.Status)
	}

	if accept {
		return s.accept(req)
	}

	req.Status = "rejected"
	return s.Repo.UpdateRequest(req)
}

func (s *FriendshipService) accept(req *model.FriendRequest) error {
	if err := s.Repo.CreatePair(req.SenderID, req.ReceiverID); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	req.Status = "accepted"
	return s.Repo.UpdateRequest(req)
}

func (s *FriendshipService) ListFriends(userID uint) ([]model.User, error) {
	return s.Repo.ListFriends(userID)
}

func (s *FriendshipService) PendingRequests(userID uint) ([]model.FriendRequest, error) {
	return s.Repo.ListPendingForReceiver(userID)
}
