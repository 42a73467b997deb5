package repositories

import (
	"sort"
	"strings"
	"sync"
	"time"

	"tastebud/internal/apperr"
	"tastebud/internal/models"
)

// MockReviewRepository is an in-memory implementation of ReviewRepository.
// Rating-affecting writes recompute the owning food's aggregate through the
// food mock, mirroring the transactional recompute of the GORM repository.
type MockReviewRepository struct {
	reviews map[uint]models.FoodReview
	nextID  uint
	foods   *MockFoodRepository
	likes   *MockLikeRepository
	mu      sync.RWMutex
}

// NewMockReviewRepository creates a new instance of MockReviewRepository.
func NewMockReviewRepository(foods *MockFoodRepository, likes *MockLikeRepository) *MockReviewRepository {
	return &MockReviewRepository{
		reviews: make(map[uint]models.FoodReview),
		nextID:  1,
		foods:   foods,
		likes:   likes,
	}
}

// recompute replaces the food's stored average with a full mean over the
// live review set; zero reviews pin the aggregate to 0.
func (r *MockReviewRepository) recompute(foodID uint) {
	if r.foods == nil {
		return
	}
	var sum, n int
	for _, rev := range r.reviews {
		if rev.FoodID == foodID {
			sum += rev.Rating
			n++
		}
	}
	avg := 0.0
	if n > 0 {
		avg = float64(sum) / float64(n)
	}
	r.foods.setAverageRating(foodID, avg)
}

// Create inserts the review and recomputes the aggregate. A second review
// for the same (user, food) pair fails with the duplicate-review conflict.
func (r *MockReviewRepository) Create(review *models.FoodReview) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.reviews {
		if existing.UserID == review.UserID && existing.FoodID == review.FoodID {
			return apperr.ErrDuplicateReview
		}
	}
	if review.ID == 0 {
		review.ID = r.nextID
		r.nextID++
	}
	review.CreatedAt = time.Now()
	r.reviews[review.ID] = *review
	r.recompute(review.FoodID)
	return nil
}

// Update replaces the review and recomputes the aggregate when asked to.
func (r *MockReviewRepository) Update(review *models.FoodReview, recompute bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reviews[review.ID]; !ok {
		return apperr.NotFound("review not found")
	}
	r.reviews[review.ID] = *review
	if recompute {
		r.recompute(review.FoodID)
	}
	return nil
}

// Delete removes the review with its likes and recomputes the aggregate.
func (r *MockReviewRepository) Delete(review *models.FoodReview) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reviews[review.ID]; !ok {
		return apperr.NotFound("review not found")
	}
	delete(r.reviews, review.ID)
	if r.likes != nil {
		r.likes.deleteByReview(review.ID)
	}
	r.recompute(review.FoodID)
	return nil
}

// deleteByFood drops every review of a food. Used by the restaurant mock's
// cascade.
func (r *MockReviewRepository) deleteByFood(foodID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, rev := range r.reviews {
		if rev.FoodID == foodID {
			if r.likes != nil {
				r.likes.deleteByReview(id)
			}
			delete(r.reviews, id)
		}
	}
}

// GetByID returns a review by ID.
func (r *MockReviewRepository) GetByID(id uint) (*models.FoodReview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	review, ok := r.reviews[id]
	if !ok {
		return nil, apperr.NotFound("review not found")
	}
	return &review, nil
}

// GetByUserAndFood returns the unique review for a (user, food) pair.
func (r *MockReviewRepository) GetByUserAndFood(userID, foodID uint) (*models.FoodReview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rev := range r.reviews {
		if rev.UserID == userID && rev.FoodID == foodID {
			review := rev
			return &review, nil
		}
	}
	return nil, apperr.NotFound("review not found")
}

func sortNewestFirst(reviews []models.FoodReview) {
	sort.Slice(reviews, func(i, j int) bool {
		if reviews[i].CreatedAt.Equal(reviews[j].CreatedAt) {
			return reviews[i].ID > reviews[j].ID
		}
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
}

// ListByFood returns a page of reviews for a food, optionally filtered by a
// case-insensitive substring of the body.
func (r *MockReviewRepository) ListByFood(foodID uint, bodyFilter string, limit, offset int) ([]models.FoodReview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(bodyFilter)
	matched := make([]models.FoodReview, 0)
	for _, rev := range r.reviews {
		if rev.FoodID != foodID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(rev.Body), q) {
			continue
		}
		matched = append(matched, rev)
	}
	sortNewestFirst(matched)
	return page(matched, limit, offset), nil
}

// ListByUser returns a page of one identity's reviews, optionally filtered by
// a case-insensitive substring of the food name or review body.
func (r *MockReviewRepository) ListByUser(userID uint, filter string, limit, offset int) ([]models.FoodReview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(filter)
	matched := make([]models.FoodReview, 0)
	for _, rev := range r.reviews {
		if rev.UserID != userID {
			continue
		}
		if q != "" {
			foodName := ""
			if r.foods != nil {
				if f, err := r.foods.GetByID(rev.FoodID); err == nil {
					foodName = f.Name
				}
			}
			if !strings.Contains(strings.ToLower(foodName), q) &&
				!strings.Contains(strings.ToLower(rev.Body), q) {
				continue
			}
		}
		matched = append(matched, rev)
	}
	sortNewestFirst(matched)
	return page(matched, limit, offset), nil
}

// ListByUsers returns a page of reviews authored by any of the given
// identities, newest first.
func (r *MockReviewRepository) ListByUsers(userIDs []uint, limit, offset int) ([]models.FoodReview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[uint]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}
	matched := make([]models.FoodReview, 0)
	for _, rev := range r.reviews {
		if _, ok := wanted[rev.UserID]; ok {
			matched = append(matched, rev)
		}
	}
	sortNewestFirst(matched)
	return page(matched, limit, offset), nil
}

// ListByRestaurant returns a page of reviews across all foods of a restaurant.
func (r *MockReviewRepository) ListByRestaurant(restaurantID uint, limit, offset int) ([]models.FoodReview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.FoodReview, 0)
	for _, rev := range r.reviews {
		if r.foods == nil {
			continue
		}
		f, err := r.foods.GetByID(rev.FoodID)
		if err == nil && f.RestaurantID == restaurantID {
			matched = append(matched, rev)
		}
	}
	sortNewestFirst(matched)
	return page(matched, limit, offset), nil
}

// CountByFood counts the reviews attached to a food.
func (r *MockReviewRepository) CountByFood(foodID uint) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, rev := range r.reviews {
		if rev.FoodID == foodID {
			count++
		}
	}
	return count, nil
}

// CountByUser counts the reviews authored by an identity.
func (r *MockReviewRepository) CountByUser(userID uint) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, rev := range r.reviews {
		if rev.UserID == userID {
			count++
		}
	}
	return count, nil
}
