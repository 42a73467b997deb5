package repositories

import "tastebud/internal/models"

// UserRepository defines the interface for identity data access.
type UserRepository interface {
	Create(user *models.User) error
	Update(user *models.User) error
	Delete(id uint) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByToken(token string) (*models.User, error)
	SearchByUsername(query string, limit, offset int) ([]models.User, error)
}
