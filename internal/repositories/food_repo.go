package repositories

import "tastebud/internal/models"

// FoodRepository defines the interface for food data access.
// Delete cascades to the food's reviews and their likes.
type FoodRepository interface {
	Create(food *models.Food) error
	Update(food *models.Food) error
	Delete(id uint) error
	GetByID(id uint) (*models.Food, error)
	ListByRestaurant(restaurantID uint) ([]models.Food, error)
}
