package services

import (
	"tastebud/internal/models"
	"tastebud/internal/repositories"
	"tastebud/internal/validation"
)

// LikeService handles per-review likes. Uniqueness of the (identity, review)
// pair is enforced by the store's constraint, not by a read-then-write at
// this layer; a violation surfaces as a conflict. The batched lookups exist
// so list views resolve like state in one pass.
type LikeService struct {
	likes         repositories.LikeRepository
	reviews       repositories.ReviewRepository
	listValidator *validation.Validator[validation.ListPayload]
}

// NewLikeService creates a new LikeService.
func NewLikeService(
	likes repositories.LikeRepository,
	reviews repositories.ReviewRepository,
	listValidator *validation.Validator[validation.ListPayload],
) *LikeService {
	return &LikeService{likes: likes, reviews: reviews, listValidator: listValidator}
}

// Like records that the acting identity liked the review. Liking twice
// conflicts.
func (s *LikeService) Like(user *models.User, reviewID uint) error {
	if _, err := s.reviews.GetByID(reviewID); err != nil {
		return err
	}
	return s.likes.Create(&models.ReviewLike{UserID: user.ID, ReviewID: reviewID})
}

// Unlike removes the identity's like from the review; not having liked it
// is a silent success.
func (s *LikeService) Unlike(user *models.User, reviewID uint) error {
	if _, err := s.reviews.GetByID(reviewID); err != nil {
		return err
	}
	return s.likes.Delete(user.ID, reviewID)
}

// IsLiked reports whether the identity liked the review.
func (s *LikeService) IsLiked(userID, reviewID uint) (bool, error) {
	if _, err := s.reviews.GetByID(reviewID); err != nil {
		return false, err
	}
	return s.likes.Exists(userID, reviewID)
}

// IsLikedBatch resolves liked-ness for many reviews in one pass. Unknown
// review ids simply report false; list views tolerate holes.
func (s *LikeService) IsLikedBatch(userID uint, reviewIDs []uint) (map[uint]bool, error) {
	return s.likes.ExistsBatch(userID, reviewIDs)
}

// CountLikes counts the likes on a review.
func (s *LikeService) CountLikes(reviewID uint) (int64, error) {
	if _, err := s.reviews.GetByID(reviewID); err != nil {
		return 0, err
	}
	return s.likes.Count(reviewID)
}

// CountLikesBatch counts likes for many reviews in one pass.
func (s *LikeService) CountLikesBatch(reviewIDs []uint) (map[uint]int64, error) {
	return s.likes.CountBatch(reviewIDs)
}

// Likers returns a page of sanitized identities who liked the review.
func (s *LikeService) Likers(reviewID uint, p *validation.ListPayload) ([]models.PublicUser, error) {
	if err := s.listValidator.Validate(p); err != nil {
		return nil, err
	}
	if _, err := s.reviews.GetByID(reviewID); err != nil {
		return nil, err
	}
	users, err := s.likes.Likers(reviewID, p.Limit, p.Offset)
	if err != nil {
		return nil, err
	}
	return models.PublicUsers(users), nil
}
