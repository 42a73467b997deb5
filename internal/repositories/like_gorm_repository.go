package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"tastebud/internal/apperr"
	"tastebud/internal/models"
)

// GORMLikeRepository is a GORM implementation of LikeRepository.
type GORMLikeRepository struct {
	db *gorm.DB
}

// NewGORMLikeRepository creates a new instance of GORMLikeRepository.
func NewGORMLikeRepository(db *gorm.DB) *GORMLikeRepository {
	return &GORMLikeRepository{db: db}
}

// Create inserts a like. The composite unique index on (user, review) turns
// a double-like into a conflict; there is no pre-check here.
func (r *GORMLikeRepository) Create(like *models.ReviewLike) error {
	if err := r.db.Create(like).Error; err != nil {
		return apperr.FromStore(fmt.Errorf("failed to create like: %w", err))
	}
	return nil
}

// Delete removes the like matching (user, review); absence is not an error.
func (r *GORMLikeRepository) Delete(userID, reviewID uint) error {
	err := r.db.
		Where("user_id = ? AND review_id = ?", userID, reviewID).
		Delete(&models.ReviewLike{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}
	return nil
}

// Exists reports whether the identity liked the review.
func (r *GORMLikeRepository) Exists(userID, reviewID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.ReviewLike{}).
		Where("user_id = ? AND review_id = ?", userID, reviewID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return count > 0, nil
}

// ExistsBatch resolves liked-ness for many reviews in a single query. Every
// requested id appears in the result map.
func (r *GORMLikeRepository) ExistsBatch(userID uint, reviewIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(reviewIDs))
	for _, id := range reviewIDs {
		out[id] = false
	}
	if len(reviewIDs) == 0 {
		return out, nil
	}
	var liked []uint
	err := r.db.Model(&models.ReviewLike{}).
		Where("user_id = ? AND review_id IN ?", userID, reviewIDs).
		Pluck("review_id", &liked).Error
	if err != nil {
		return nil, fmt.Errorf("failed to batch-check likes: %w", err)
	}
	for _, id := range liked {
		out[id] = true
	}
	return out, nil
}

// Count counts the likes on a review.
func (r *GORMLikeRepository) Count(reviewID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.ReviewLike{}).Where("review_id = ?", reviewID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}

// CountBatch counts likes for many reviews in a single grouped query. Every
// requested id appears in the result map, zero included.
func (r *GORMLikeRepository) CountBatch(reviewIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(reviewIDs))
	for _, id := range reviewIDs {
		out[id] = 0
	}
	if len(reviewIDs) == 0 {
		return out, nil
	}
	type row struct {
		ReviewID uint
		N        int64
	}
	var rows []row
	err := r.db.Model(&models.ReviewLike{}).
		Select("review_id, COUNT(*) AS n").
		Where("review_id IN ?", reviewIDs).
		Group("review_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to batch-count likes: %w", err)
	}
	for _, rw := range rows {
		out[rw.ReviewID] = rw.N
	}
	return out, nil
}

// Likers returns a page of the identities who liked a review.
func (r *GORMLikeRepository) Likers(reviewID uint, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := r.db.
		Joins("JOIN review_likes ON review_likes.user_id = users.id").
		Where("review_likes.review_id = ?", reviewID).
		Order("review_likes.created_at ASC").
		Limit(limit).Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list likers: %w", err)
	}
	return users, nil
}
