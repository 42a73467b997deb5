package repositories

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"tastebud/internal/apperr"
	"tastebud/internal/models"
)

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

// recomputeRating replaces the food's stored average with a full AVG over the
// live review set. COALESCE pins the empty set to 0 instead of NULL.
func recomputeRating(tx *gorm.DB, foodID uint) error {
	var avg float64
	err := tx.Model(&models.FoodReview{}).
		Where("food_id = ?", foodID).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg).Error
	if err != nil {
		return fmt.Errorf("failed to compute rating for food %d: %w", foodID, err)
	}
	err = tx.Model(&models.Food{}).
		Where("id = ?", foodID).
		Update("average_rating", avg).Error
	if err != nil {
		return fmt.Errorf("failed to store rating for food %d: %w", foodID, err)
	}
	return nil
}

// Create inserts the review and recomputes the food's aggregate in one
// transaction. A second review for the same (user, food) pair surfaces as
// the duplicate-review conflict.
func (r *GORMReviewRepository) Create(review *models.FoodReview) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			err = apperr.FromStore(err)
			if apperr.Coerce(err).Kind == apperr.KindConflict {
				return apperr.ErrDuplicateReview
			}
			return fmt.Errorf("failed to create review: %w", err)
		}
		return recomputeRating(tx, review.FoodID)
	})
}

// Update saves the review and, when the rating changed, recomputes the
// aggregate inside the same transaction. Body-only edits skip the recompute.
func (r *GORMReviewRepository) Update(review *models.FoodReview, recompute bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Save(review)
		if res.Error != nil {
			return fmt.Errorf("failed to update review: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("review not found")
		}
		if !recompute {
			return nil
		}
		return recomputeRating(tx, review.FoodID)
	})
}

// Delete removes the review and its likes, then recomputes the aggregate
// over the remaining reviews.
func (r *GORMReviewRepository) Delete(review *models.FoodReview) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", review.ID).Delete(&models.ReviewLike{}).Error; err != nil {
			return fmt.Errorf("failed to delete likes of review %d: %w", review.ID, err)
		}
		if err := tx.Delete(review).Error; err != nil {
			return fmt.Errorf("failed to delete review %d: %w", review.ID, err)
		}
		return recomputeRating(tx, review.FoodID)
	})
}

// GetByID retrieves a review by its ID.
func (r *GORMReviewRepository) GetByID(id uint) (*models.FoodReview, error) {
	var review models.FoodReview
	if err := r.db.First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("review not found")
		}
		return nil, fmt.Errorf("failed to get review %d: %w", id, err)
	}
	return &review, nil
}

// GetByUserAndFood retrieves the unique review for a (user, food) pair.
func (r *GORMReviewRepository) GetByUserAndFood(userID, foodID uint) (*models.FoodReview, error) {
	var review models.FoodReview
	err := r.db.First(&review, "user_id = ? AND food_id = ?", userID, foodID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("review not found")
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

// ListByFood returns a page of reviews for a food, optionally filtered by a
// case-insensitive substring of the body.
func (r *GORMReviewRepository) ListByFood(foodID uint, bodyFilter string, limit, offset int) ([]models.FoodReview, error) {
	q := r.db.Where("food_id = ?", foodID)
	if bodyFilter != "" {
		q = q.Where("LOWER(body) LIKE ?", "%"+strings.ToLower(bodyFilter)+"%")
	}
	var reviews []models.FoodReview
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews by food: %w", err)
	}
	return reviews, nil
}

// ListByUser returns a page of one identity's reviews, optionally filtered by
// a case-insensitive substring of the food name or the review body.
func (r *GORMReviewRepository) ListByUser(userID uint, filter string, limit, offset int) ([]models.FoodReview, error) {
	q := r.db.Model(&models.FoodReview{}).Where("food_reviews.user_id = ?", userID)
	if filter != "" {
		pattern := "%" + strings.ToLower(filter) + "%"
		q = q.Joins("JOIN foods ON foods.id = food_reviews.food_id").
			Where("LOWER(foods.name) LIKE ? OR LOWER(food_reviews.body) LIKE ?", pattern, pattern)
	}
	var reviews []models.FoodReview
	if err := q.Order("food_reviews.created_at DESC").Limit(limit).Offset(offset).Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews by user: %w", err)
	}
	return reviews, nil
}

// ListByUsers returns a page of reviews authored by any of the given
// identities, newest first. Used for the follow feed.
func (r *GORMReviewRepository) ListByUsers(userIDs []uint, limit, offset int) ([]models.FoodReview, error) {
	if len(userIDs) == 0 {
		return []models.FoodReview{}, nil
	}
	var reviews []models.FoodReview
	err := r.db.Where("user_id IN ?", userIDs).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews by users: %w", err)
	}
	return reviews, nil
}

// ListByRestaurant returns a page of reviews across all foods of a restaurant.
func (r *GORMReviewRepository) ListByRestaurant(restaurantID uint, limit, offset int) ([]models.FoodReview, error) {
	var reviews []models.FoodReview
	err := r.db.Model(&models.FoodReview{}).
		Joins("JOIN foods ON foods.id = food_reviews.food_id").
		Where("foods.restaurant_id = ?", restaurantID).
		Order("food_reviews.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews by restaurant: %w", err)
	}
	return reviews, nil
}

// CountByFood counts the reviews attached to a food.
func (r *GORMReviewRepository) CountByFood(foodID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.FoodReview{}).Where("food_id = ?", foodID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}

// CountByUser counts the reviews authored by an identity.
func (r *GORMReviewRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.FoodReview{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}
