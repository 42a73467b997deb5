package services

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tastebud/internal/apperr"
	"tastebud/internal/models"
	"tastebud/internal/repositories"
	"tastebud/internal/validation"
)

// UserStats summarizes an identity's public footprint.
type UserStats struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
	Reviews   int64 `json:"reviews"`
}

// UserService handles identity profile lifecycle and read surfaces: partial
// update, credential-gated deletion, lookup, stats, search and the follow
// feed.
type UserService struct {
	users           repositories.UserRepository
	follows         repositories.FollowRepository
	reviews         repositories.ReviewRepository
	updateValidator *validation.Validator[validation.UpdateUserPayload]
	deleteValidator *validation.Validator[validation.DeleteUserPayload]
	listValidator   *validation.Validator[validation.ListPayload]
}

// NewUserService creates a new UserService.
func NewUserService(
	users repositories.UserRepository,
	follows repositories.FollowRepository,
	reviews repositories.ReviewRepository,
	updateValidator *validation.Validator[validation.UpdateUserPayload],
	deleteValidator *validation.Validator[validation.DeleteUserPayload],
	listValidator *validation.Validator[validation.ListPayload],
) *UserService {
	return &UserService{
		users:           users,
		follows:         follows,
		reviews:         reviews,
		updateValidator: updateValidator,
		deleteValidator: deleteValidator,
		listValidator:   listValidator,
	}
}

// Update applies the fields present in the payload to the acting identity.
// Absent fields keep their prior value. A password change rotates the access
// token, invalidating every previously issued copy.
func (s *UserService) Update(user *models.User, p *validation.UpdateUserPayload) (*models.User, error) {
	if err := s.updateValidator.Validate(p); err != nil {
		return nil, err
	}

	if p.Email != nil {
		user.Email = *p.Email
	}
	if p.Bio != nil {
		user.Bio = *p.Bio
	}
	if p.Location != nil {
		user.Location = *p.Location
	}
	if p.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*p.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hash)
		user.Token = uuid.New().String()
	}

	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the acting identity after re-authentication with the
// current credentials. A token alone is not enough to destroy an account.
func (s *UserService) Delete(user *models.User, p *validation.DeleteUserPayload) error {
	if err := s.deleteValidator.Validate(p); err != nil {
		return err
	}
	if p.Username != user.Username {
		return apperr.ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(p.Password)); err != nil {
		return apperr.ErrBadCredentials
	}
	return s.users.Delete(user.ID)
}

// Get returns the sanitized projection of an identity.
func (s *UserService) Get(id uint) (*models.PublicUser, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, err
	}
	pub := user.Public()
	return &pub, nil
}

// Stats returns follower, following and review counts for an identity.
func (s *UserService) Stats(id uint) (*UserStats, error) {
	if _, err := s.users.GetByID(id); err != nil {
		return nil, err
	}
	followers, err := s.follows.CountFollowers(id)
	if err != nil {
		return nil, err
	}
	following, err := s.follows.CountFollowing(id)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.CountByUser(id)
	if err != nil {
		return nil, err
	}
	return &UserStats{Followers: followers, Following: following, Reviews: reviews}, nil
}

// Search returns sanitized identities whose username contains the query,
// case-insensitively.
func (s *UserService) Search(query string, p *validation.ListPayload) ([]models.PublicUser, error) {
	if err := s.listValidator.Validate(p); err != nil {
		return nil, err
	}
	users, err := s.users.SearchByUsername(query, p.Limit, p.Offset)
	if err != nil {
		return nil, err
	}
	return models.PublicUsers(users), nil
}

// Feed returns the newest reviews authored by the identities the acting
// user follows.
func (s *UserService) Feed(user *models.User, p *validation.ListPayload) ([]models.FoodReview, error) {
	if err := s.listValidator.Validate(p); err != nil {
		return nil, err
	}
	following, err := s.follows.Following(user.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(following))
	for i := range following {
		ids = append(ids, following[i].ID)
	}
	return s.reviews.ListByUsers(ids, p.Limit, p.Offset)
}
