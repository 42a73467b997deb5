package repositories

import (
	"sort"
	"sync"

	"tastebud/internal/apperr"
	"tastebud/internal/models"
)

type likeKey struct {
	user   uint
	review uint
}

// MockLikeRepository is an in-memory implementation of LikeRepository.
type MockLikeRepository struct {
	likes  map[likeKey]models.ReviewLike
	nextID uint
	users  *MockUserRepository
	mu     sync.RWMutex
}

// NewMockLikeRepository creates a new instance of MockLikeRepository.
func NewMockLikeRepository(users *MockUserRepository) *MockLikeRepository {
	return &MockLikeRepository{
		likes:  make(map[likeKey]models.ReviewLike),
		nextID: 1,
		users:  users,
	}
}

// Create inserts a like; a duplicate (user, review) pair conflicts, the same
// way the relational unique index would.
func (r *MockLikeRepository) Create(like *models.ReviewLike) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := likeKey{like.UserID, like.ReviewID}
	if _, ok := r.likes[key]; ok {
		return apperr.Conflict("resource already exists")
	}
	if like.ID == 0 {
		like.ID = r.nextID
		r.nextID++
	}
	r.likes[key] = *like
	return nil
}

// Delete removes the like matching (user, review); absence is not an error.
func (r *MockLikeRepository) Delete(userID, reviewID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.likes, likeKey{userID, reviewID})
	return nil
}

// deleteByReview drops every like on a review. Used by the review mock's
// cascade.
func (r *MockLikeRepository) deleteByReview(reviewID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.likes {
		if key.review == reviewID {
			delete(r.likes, key)
		}
	}
}

// Exists reports whether the identity liked the review.
func (r *MockLikeRepository) Exists(userID, reviewID uint) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.likes[likeKey{userID, reviewID}]
	return ok, nil
}

// ExistsBatch resolves liked-ness for many reviews in one pass.
func (r *MockLikeRepository) ExistsBatch(userID uint, reviewIDs []uint) (map[uint]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[uint]bool, len(reviewIDs))
	for _, id := range reviewIDs {
		_, ok := r.likes[likeKey{userID, id}]
		out[id] = ok
	}
	return out, nil
}

// Count counts the likes on a review.
func (r *MockLikeRepository) Count(reviewID uint) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for key := range r.likes {
		if key.review == reviewID {
			count++
		}
	}
	return count, nil
}

// CountBatch counts likes for many reviews in one pass; every requested id
// appears in the result, zero included.
func (r *MockLikeRepository) CountBatch(reviewIDs []uint) (map[uint]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[uint]int64, len(reviewIDs))
	for _, id := range reviewIDs {
		out[id] = 0
	}
	for key := range r.likes {
		if _, wanted := out[key.review]; wanted {
			out[key.review]++
		}
	}
	return out, nil
}

// Likers returns a page of the identities who liked a review.
func (r *MockLikeRepository) Likers(reviewID uint, limit, offset int) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	likes := make([]models.ReviewLike, 0)
	for key, like := range r.likes {
		if key.review == reviewID {
			likes = append(likes, like)
		}
	}
	sort.Slice(likes, func(i, j int) bool { return likes[i].ID < likes[j].ID })

	users := make([]models.User, 0, len(likes))
	for _, like := range likes {
		if r.users == nil {
			continue
		}
		if u, err := r.users.GetByID(like.UserID); err == nil {
			users = append(users, *u)
		}
	}
	return page(users, limit, offset), nil
}
