package repositories

import (
	"sync"

	"tastebud/internal/models"
)

type followKey struct {
	follower uint
	followee uint
}

// MockFollowRepository is an in-memory implementation of FollowRepository.
// It resolves identities through a MockUserRepository so Followers and
// Following return full user rows like the relational join does.
type MockFollowRepository struct {
	edges map[followKey]struct{}
	users *MockUserRepository
	mu    sync.RWMutex
}

// NewMockFollowRepository creates a new instance of MockFollowRepository.
func NewMockFollowRepository(users *MockUserRepository) *MockFollowRepository {
	return &MockFollowRepository{
		edges: make(map[followKey]struct{}),
		users: users,
	}
}

// Insert adds the edge; inserting twice is a no-op.
func (r *MockFollowRepository) Insert(followerID, followeeID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.edges[followKey{followerID, followeeID}] = struct{}{}
	return nil
}

// Delete removes the edge; a missing edge is not an error.
func (r *MockFollowRepository) Delete(followerID, followeeID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.edges, followKey{followerID, followeeID})
	return nil
}

// Exists reports whether the edge is present.
func (r *MockFollowRepository) Exists(followerID, followeeID uint) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.edges[followKey{followerID, followeeID}]
	return ok, nil
}

// Followers returns every identity following userID.
func (r *MockFollowRepository) Followers(userID uint) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0)
	for key := range r.edges {
		if key.followee != userID {
			continue
		}
		if u, err := r.users.GetByID(key.follower); err == nil {
			users = append(users, *u)
		}
	}
	return users, nil
}

// Following returns every identity userID follows.
func (r *MockFollowRepository) Following(userID uint) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0)
	for key := range r.edges {
		if key.follower != userID {
			continue
		}
		if u, err := r.users.GetByID(key.followee); err == nil {
			users = append(users, *u)
		}
	}
	return users, nil
}

// CountFollowers counts identities following userID.
func (r *MockFollowRepository) CountFollowers(userID uint) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for key := range r.edges {
		if key.followee == userID {
			count++
		}
	}
	return count, nil
}

// CountFollowing counts identities userID follows.
func (r *MockFollowRepository) CountFollowing(userID uint) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for key := range r.edges {
		if key.follower == userID {
			count++
		}
	}
	return count, nil
}
