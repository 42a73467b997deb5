package repositories

import "tastebud/internal/models"

// LikeRepository defines the interface for review-like data access.
// Create relies on the store's uniqueness constraint for the (user, review)
// pair; a violation surfaces as a conflict. Delete is idempotent.
// The batched forms exist so list views resolve likes in one pass instead of
// one query per row.
type LikeRepository interface {
	Create(like *models.ReviewLike) error
	Delete(userID, reviewID uint) error
	Exists(userID, reviewID uint) (bool, error)
	ExistsBatch(userID uint, reviewIDs []uint) (map[uint]bool, error)
	Count(reviewID uint) (int64, error)
	CountBatch(reviewIDs []uint) (map[uint]int64, error)
	Likers(reviewID uint, limit, offset int) ([]models.User, error)
}
