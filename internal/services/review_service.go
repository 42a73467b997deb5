package services

import (
	"tastebud/internal/apperr"
	"tastebud/internal/models"
	"tastebud/internal/repositories"
	"tastebud/internal/validation"
)

// ReviewService owns the review lifecycle for each (identity, food) pair.
// A review comes into existence via Create only, changes via owner Update
// and leaves via owner Delete. Every rating-affecting write recomputes the
// food's aggregate from the live review set.
type ReviewService struct {
	reviews         repositories.ReviewRepository
	foods           repositories.FoodRepository
	users           repositories.UserRepository
	restaurants     repositories.RestaurantRepository
	createValidator *validation.Validator[validation.CreateReviewPayload]
	updateValidator *validation.Validator[validation.UpdateReviewPayload]
	listValidator   *validation.Validator[validation.ListPayload]
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	reviews repositories.ReviewRepository,
	foods repositories.FoodRepository,
	users repositories.UserRepository,
	restaurants repositories.RestaurantRepository,
	createValidator *validation.Validator[validation.CreateReviewPayload],
	updateValidator *validation.Validator[validation.UpdateReviewPayload],
	listValidator *validation.Validator[validation.ListPayload],
) *ReviewService {
	return &ReviewService{
		reviews:         reviews,
		foods:           foods,
		users:           users,
		restaurants:     restaurants,
		createValidator: createValidator,
		updateValidator: updateValidator,
		listValidator:   listValidator,
	}
}

// Create adds the acting identity's review of a food. A second review of
// the same food by the same identity conflicts instead of updating.
func (s *ReviewService) Create(user *models.User, p *validation.CreateReviewPayload) (*models.FoodReview, error) {
	if err := s.createValidator.Validate(p); err != nil {
		return nil, err
	}
	if _, err := s.foods.GetByID(p.FoodID); err != nil {
		return nil, err
	}
	review := &models.FoodReview{
		UserID: user.ID,
		FoodID: p.FoodID,
		Body:   *p.Body,
		Rating: *p.Rating,
	}
	if err := s.reviews.Create(review); err != nil {
		return nil, err
	}
	return review, nil
}

// Update applies the fields present in the payload to the review. Only the
// owner may update; the aggregate recomputes only when the rating actually
// changed, so body-only edits skip the aggregate query.
func (s *ReviewService) Update(user *models.User, reviewID uint, p *validation.UpdateReviewPayload) (*models.FoodReview, error) {
	if err := s.updateValidator.Validate(p); err != nil {
		return nil, err
	}
	review, err := s.reviews.GetByID(reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != user.ID {
		return nil, apperr.ErrNotReviewOwner
	}

	recompute := false
	if p.Rating != nil && *p.Rating != review.Rating {
		review.Rating = *p.Rating
		recompute = true
	}
	if p.Body != nil {
		review.Body = *p.Body
	}
	if err := s.reviews.Update(review, recompute); err != nil {
		return nil, err
	}
	return review, nil
}

// Delete removes the review. Only the owner may delete; the food's aggregate
// recomputes over the remaining reviews.
func (s *ReviewService) Delete(user *models.User, reviewID uint) error {
	review, err := s.reviews.GetByID(reviewID)
	if err != nil {
		return err
	}
	if review.UserID != user.ID {
		return apperr.ErrNotReviewOwner
	}
	return s.reviews.Delete(review)
}

// Get returns a review by id.
func (s *ReviewService) Get(reviewID uint) (*models.FoodReview, error) {
	return s.reviews.GetByID(reviewID)
}

// ListByFood returns a page of a food's reviews, optionally filtered by a
// case-insensitive substring of the body. An unknown food fails before any
// review query runs.
func (s *ReviewService) ListByFood(foodID uint, p *validation.ListPayload) ([]models.FoodReview, error) {
	if err := s.listValidator.Validate(p); err != nil {
		return nil, err
	}
	if _, err := s.foods.GetByID(foodID); err != nil {
		return nil, err
	}
	return s.reviews.ListByFood(foodID, p.Filter, p.Limit, p.Offset)
}

// ListByUser returns a page of an identity's reviews, optionally filtered by
// a case-insensitive substring of the food name or review body.
func (s *ReviewService) ListByUser(userID uint, p *validation.ListPayload) ([]models.FoodReview, error) {
	if err := s.listValidator.Validate(p); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(userID); err != nil {
		return nil, err
	}
	return s.reviews.ListByUser(userID, p.Filter, p.Limit, p.Offset)
}

// ListByRestaurant returns a page of reviews across every food of a
// restaurant.
func (s *ReviewService) ListByRestaurant(restaurantID uint, p *validation.ListPayload) ([]models.FoodReview, error) {
	if err := s.listValidator.Validate(p); err != nil {
		return nil, err
	}
	if _, err := s.restaurants.GetByID(restaurantID); err != nil {
		return nil, err
	}
	return s.reviews.ListByRestaurant(restaurantID, p.Limit, p.Offset)
}
