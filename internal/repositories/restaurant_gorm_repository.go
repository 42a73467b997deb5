package repositories

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"tastebud/internal/apperr"
	"tastebud/internal/models"
)

// GORMRestaurantRepository is a GORM implementation of RestaurantRepository.
type GORMRestaurantRepository struct {
	db *gorm.DB
}

// NewGORMRestaurantRepository creates a new instance of GORMRestaurantRepository.
func NewGORMRestaurantRepository(db *gorm.DB) *GORMRestaurantRepository {
	return &GORMRestaurantRepository{db: db}
}

// Create inserts a restaurant. A name collision surfaces as a conflict.
func (r *GORMRestaurantRepository) Create(restaurant *models.Restaurant) error {
	if err := r.db.Create(restaurant).Error; err != nil {
		return apperr.FromStore(fmt.Errorf("failed to create restaurant: %w", err))
	}
	return nil
}

// Update saves all fields of restaurant.
func (r *GORMRestaurantRepository) Update(restaurant *models.Restaurant) error {
	res := r.db.Save(restaurant)
	if res.Error != nil {
		return apperr.FromStore(fmt.Errorf("failed to update restaurant: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("restaurant not found")
	}
	return nil
}

// Delete removes a restaurant and everything hanging off it: foods, their
// reviews, and the likes on those reviews, in one transaction.
func (r *GORMRestaurantRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var restaurant models.Restaurant
		if err := tx.First(&restaurant, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("restaurant not found")
			}
			return fmt.Errorf("failed to load restaurant %d: %w", id, err)
		}

		var foodIDs []uint
		if err := tx.Model(&models.Food{}).Where("restaurant_id = ?", id).Pluck("id", &foodIDs).Error; err != nil {
			return fmt.Errorf("failed to list foods of restaurant %d: %w", id, err)
		}
		if len(foodIDs) > 0 {
			var reviewIDs []uint
			if err := tx.Model(&models.FoodReview{}).Where("food_id IN ?", foodIDs).Pluck("id", &reviewIDs).Error; err != nil {
				return fmt.Errorf("failed to list reviews: %w", err)
			}
			if len(reviewIDs) > 0 {
				if err := tx.Where("review_id IN ?", reviewIDs).Delete(&models.ReviewLike{}).Error; err != nil {
					return fmt.Errorf("failed to delete likes: %w", err)
				}
				if err := tx.Where("id IN ?", reviewIDs).Delete(&models.FoodReview{}).Error; err != nil {
					return fmt.Errorf("failed to delete reviews: %w", err)
				}
			}
			if err := tx.Where("id IN ?", foodIDs).Delete(&models.Food{}).Error; err != nil {
				return fmt.Errorf("failed to delete foods: %w", err)
			}
		}
		if err := tx.Delete(&restaurant).Error; err != nil {
			return fmt.Errorf("failed to delete restaurant %d: %w", id, err)
		}
		return nil
	})
}

// GetByID retrieves a restaurant by its ID.
func (r *GORMRestaurantRepository) GetByID(id uint) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := r.db.First(&restaurant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("restaurant not found")
		}
		return nil, fmt.Errorf("failed to get restaurant %d: %w", id, err)
	}
	return &restaurant, nil
}

// Search returns restaurants whose name or short name contains query,
// case-insensitively.
func (r *GORMRestaurantRepository) Search(query string, limit, offset int) ([]models.Restaurant, error) {
	var restaurants []models.Restaurant
	pattern := "%" + strings.ToLower(query) + "%"
	err := r.db.
		Where("LOWER(name) LIKE ? OR LOWER(short_name) LIKE ?", pattern, pattern).
		Limit(limit).Offset(offset).
		Find(&restaurants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search restaurants: %w", err)
	}
	return restaurants, nil
}
