package repositories

import (
	"sort"
	"sync"

	"tastebud/internal/apperr"
	"tastebud/internal/models"
)

// MockFoodRepository is an in-memory implementation of FoodRepository.
type MockFoodRepository struct {
	foods  map[uint]models.Food
	nextID uint
	mu     sync.RWMutex
}

// NewMockFoodRepository creates a new instance of MockFoodRepository.
func NewMockFoodRepository() *MockFoodRepository {
	return &MockFoodRepository{foods: make(map[uint]models.Food), nextID: 1}
}

// Create adds a food, enforcing per-restaurant name uniqueness.
func (r *MockFoodRepository) Create(food *models.Food) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.foods {
		if f.RestaurantID == food.RestaurantID && f.Name == food.Name {
			return apperr.Conflict("resource already exists")
		}
	}
	if food.ID == 0 {
		food.ID = r.nextID
		r.nextID++
	}
	r.foods[food.ID] = *food
	return nil
}

// Update replaces an existing food.
func (r *MockFoodRepository) Update(food *models.Food) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.foods[food.ID]; !ok {
		return apperr.NotFound("food not found")
	}
	r.foods[food.ID] = *food
	return nil
}

// Delete removes a food by ID.
func (r *MockFoodRepository) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.foods[id]; !ok {
		return apperr.NotFound("food not found")
	}
	delete(r.foods, id)
	return nil
}

// GetByID returns a food by ID.
func (r *MockFoodRepository) GetByID(id uint) (*models.Food, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	food, ok := r.foods[id]
	if !ok {
		return nil, apperr.NotFound("food not found")
	}
	return &food, nil
}

// ListByRestaurant returns every food of a restaurant ordered by ID.
func (r *MockFoodRepository) ListByRestaurant(restaurantID uint) ([]models.Food, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	foods := make([]models.Food, 0)
	for _, f := range r.foods {
		if f.RestaurantID == restaurantID {
			foods = append(foods, f)
		}
	}
	sort.Slice(foods, func(i, j int) bool { return foods[i].ID < foods[j].ID })
	return foods, nil
}

// setAverageRating stores a recomputed aggregate. Used by the in-memory
// review repository's recompute step.
func (r *MockFoodRepository) setAverageRating(foodID uint, avg float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.foods[foodID]; ok {
		f.AverageRating = avg
		r.foods[foodID] = f
	}
}
