package services

import (
	"tastebud/internal/apperr"
	"tastebud/internal/models"
	"tastebud/internal/repositories"
)

// FollowService maintains the directed follower graph. Follow and Unfollow
// are idempotent; self-edges are rejected; both endpoints of an edge must
// exist before any mutation is attempted.
type FollowService struct {
	users   repositories.UserRepository
	follows repositories.FollowRepository
}

// NewFollowService creates a new FollowService.
func NewFollowService(users repositories.UserRepository, follows repositories.FollowRepository) *FollowService {
	return &FollowService{users: users, follows: follows}
}

// resolvePair checks that both identities exist, in follower-then-target
// order, before any edge mutation.
func (s *FollowService) resolvePair(followerID, targetID uint) error {
	if _, err := s.users.GetByID(followerID); err != nil {
		return apperr.ErrUnknownIdentity
	}
	if _, err := s.users.GetByID(targetID); err != nil {
		return apperr.ErrUnknownIdentity
	}
	return nil
}

// Follow inserts the edge from follower to target. Following yourself fails;
// following someone you already follow silently succeeds.
func (s *FollowService) Follow(followerID, targetID uint) error {
	if followerID == targetID {
		return apperr.ErrCannotFollowSelf
	}
	if err := s.resolvePair(followerID, targetID); err != nil {
		return err
	}
	return s.follows.Insert(followerID, targetID)
}

// Unfollow removes the edge from follower to target if present; a missing edge is
// a silent success.
func (s *FollowService) Unfollow(followerID, targetID uint) error {
	if err := s.resolvePair(followerID, targetID); err != nil {
		return err
	}
	return s.follows.Delete(followerID, targetID)
}

// IsFollowing reports whether follower follows target.
func (s *FollowService) IsFollowing(followerID, targetID uint) (bool, error) {
	if err := s.resolvePair(followerID, targetID); err != nil {
		return false, err
	}
	return s.follows.Exists(followerID, targetID)
}

// Followers returns the sanitized identities following id.
func (s *FollowService) Followers(id uint) ([]models.PublicUser, error) {
	if _, err := s.users.GetByID(id); err != nil {
		return nil, apperr.ErrUnknownIdentity
	}
	users, err := s.follows.Followers(id)
	if err != nil {
		return nil, err
	}
	return models.PublicUsers(users), nil
}

// Following returns the sanitized identities id follows.
func (s *FollowService) Following(id uint) ([]models.PublicUser, error) {
	if _, err := s.users.GetByID(id); err != nil {
		return nil, apperr.ErrUnknownIdentity
	}
	users, err := s.follows.Following(id)
	if err != nil {
		return nil, err
	}
	return models.PublicUsers(users), nil
}
