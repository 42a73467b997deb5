package repositories

import (
	"sort"
	"strings"
	"sync"

	"tastebud/internal/apperr"
	"tastebud/internal/models"
)

// MockRestaurantRepository is an in-memory implementation of
// RestaurantRepository. Deletion cascades through the food and review mocks
// the way the relational transaction does.
type MockRestaurantRepository struct {
	restaurants map[uint]models.Restaurant
	nextID      uint
	foods       *MockFoodRepository
	reviews     *MockReviewRepository
	mu          sync.RWMutex
}

// NewMockRestaurantRepository creates a new instance of MockRestaurantRepository.
func NewMockRestaurantRepository(foods *MockFoodRepository, reviews *MockReviewRepository) *MockRestaurantRepository {
	return &MockRestaurantRepository{
		restaurants: make(map[uint]models.Restaurant),
		nextID:      1,
		foods:       foods,
		reviews:     reviews,
	}
}

// Create adds a restaurant, enforcing name uniqueness.
func (r *MockRestaurantRepository) Create(restaurant *models.Restaurant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.restaurants {
		if existing.Name == restaurant.Name {
			return apperr.Conflict("resource already exists")
		}
	}
	if restaurant.ID == 0 {
		restaurant.ID = r.nextID
		r.nextID++
	}
	r.restaurants[restaurant.ID] = *restaurant
	return nil
}

// Update replaces an existing restaurant.
func (r *MockRestaurantRepository) Update(restaurant *models.Restaurant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.restaurants[restaurant.ID]; !ok {
		return apperr.NotFound("restaurant not found")
	}
	r.restaurants[restaurant.ID] = *restaurant
	return nil
}

// Delete removes a restaurant and cascades to its foods and their reviews.
func (r *MockRestaurantRepository) Delete(id uint) error {
	r.mu.Lock()
	if _, ok := r.restaurants[id]; !ok {
		r.mu.Unlock()
		return apperr.NotFound("restaurant not found")
	}
	delete(r.restaurants, id)
	r.mu.Unlock()

	if r.foods == nil {
		return nil
	}
	foods, _ := r.foods.ListByRestaurant(id)
	for _, f := range foods {
		if r.reviews != nil {
			r.reviews.deleteByFood(f.ID)
		}
		_ = r.foods.Delete(f.ID)
	}
	return nil
}

// GetByID returns a restaurant by ID.
func (r *MockRestaurantRepository) GetByID(id uint) (*models.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	restaurant, ok := r.restaurants[id]
	if !ok {
		return nil, apperr.NotFound("restaurant not found")
	}
	return &restaurant, nil
}

// Search returns restaurants whose name or short name contains query,
// case-insensitively, ordered by ID for deterministic paging.
func (r *MockRestaurantRepository) Search(query string, limit, offset int) ([]models.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(query)
	matched := make([]models.Restaurant, 0)
	for _, restaurant := range r.restaurants {
		if strings.Contains(strings.ToLower(restaurant.Name), q) ||
			strings.Contains(strings.ToLower(restaurant.ShortName), q) {
			matched = append(matched, restaurant)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return page(matched, limit, offset), nil
}
