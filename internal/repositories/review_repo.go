package repositories

import "tastebud/internal/models"

// ReviewRepository defines the interface for review data access.
//
// Create, Update (with recompute) and Delete run the write and the aggregate
// recomputation for the affected food inside a single transaction. The
// aggregate is always a full AVG over the live review set, never an
// incremental adjustment.
type ReviewRepository interface {
	Create(review *models.FoodReview) error
	Update(review *models.FoodReview, recompute bool) error
	Delete(review *models.FoodReview) error
	GetByID(id uint) (*models.FoodReview, error)
	GetByUserAndFood(userID, foodID uint) (*models.FoodReview, error)
	ListByFood(foodID uint, bodyFilter string, limit, offset int) ([]models.FoodReview, error)
	ListByUser(userID uint, filter string, limit, offset int) ([]models.FoodReview, error)
	ListByUsers(userIDs []uint, limit, offset int) ([]models.FoodReview, error)
	ListByRestaurant(restaurantID uint, limit, offset int) ([]models.FoodReview, error)
	CountByFood(foodID uint) (int64, error)
	CountByUser(userID uint) (int64, error)
}
