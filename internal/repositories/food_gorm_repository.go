package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tastebud/internal/apperr"
	"tastebud/internal/models"
)

// GORMFoodRepository is a GORM implementation of FoodRepository.
type GORMFoodRepository struct {
	db *gorm.DB
}

// NewGORMFoodRepository creates a new instance of GORMFoodRepository.
func NewGORMFoodRepository(db *gorm.DB) *GORMFoodRepository {
	return &GORMFoodRepository{db: db}
}

// Create inserts a food. A name collision within the restaurant surfaces as
// a conflict.
func (r *GORMFoodRepository) Create(food *models.Food) error {
	if err := r.db.Create(food).Error; err != nil {
		return apperr.FromStore(fmt.Errorf("failed to create food: %w", err))
	}
	return nil
}

// Update saves all fields of food.
func (r *GORMFoodRepository) Update(food *models.Food) error {
	res := r.db.Save(food)
	if res.Error != nil {
		return apperr.FromStore(fmt.Errorf("failed to update food: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("food not found")
	}
	return nil
}

// Delete removes a food with its reviews and their likes in one transaction.
func (r *GORMFoodRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var food models.Food
		if err := tx.First(&food, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("food not found")
			}
			return fmt.Errorf("failed to load food %d: %w", id, err)
		}

		var reviewIDs []uint
		if err := tx.Model(&models.FoodReview{}).Where("food_id = ?", id).Pluck("id", &reviewIDs).Error; err != nil {
			return fmt.Errorf("failed to list reviews of food %d: %w", id, err)
		}
		if len(reviewIDs) > 0 {
			if err := tx.Where("review_id IN ?", reviewIDs).Delete(&models.ReviewLike{}).Error; err != nil {
				return fmt.Errorf("failed to delete likes: %w", err)
			}
			if err := tx.Where("id IN ?", reviewIDs).Delete(&models.FoodReview{}).Error; err != nil {
				return fmt.Errorf("failed to delete reviews: %w", err)
			}
		}
		if err := tx.Delete(&food).Error; err != nil {
			return fmt.Errorf("failed to delete food %d: %w", id, err)
		}
		return nil
	})
}

// GetByID retrieves a food by its ID.
func (r *GORMFoodRepository) GetByID(id uint) (*models.Food, error) {
	var food models.Food
	if err := r.db.First(&food, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("food not found")
		}
		return nil, fmt.Errorf("failed to get food %d: %w", id, err)
	}
	return &food, nil
}

// ListByRestaurant returns every food on a restaurant's menu.
func (r *GORMFoodRepository) ListByRestaurant(restaurantID uint) ([]models.Food, error) {
	var foods []models.Food
	if err := r.db.Where("restaurant_id = ?", restaurantID).Find(&foods).Error; err != nil {
		return nil, fmt.Errorf("failed to list foods: %w", err)
	}
	return foods, nil
}
