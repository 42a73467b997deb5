package repositories

import "tastebud/internal/models"

// RestaurantRepository defines the interface for restaurant data access.
// Delete cascades to the restaurant's foods and their reviews and likes.
type RestaurantRepository interface {
	Create(restaurant *models.Restaurant) error
	Update(restaurant *models.Restaurant) error
	Delete(id uint) error
	GetByID(id uint) (*models.Restaurant, error)
	Search(query string, limit, offset int) ([]models.Restaurant, error)
}
