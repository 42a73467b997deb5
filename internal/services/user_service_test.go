package services_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"tastebud/internal/apperr"
	"tastebud/internal/models"
	"tastebud/internal/repositories"
	"tastebud/internal/services"
	"tastebud/internal/validation"
)

type userFixture struct {
	svc     *services.UserService
	users   *repositories.MockUserRepository
	follows *repositories.MockFollowRepository
	reviews *repositories.MockReviewRepository
	foods   *repositories.MockFoodRepository
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()

	users := repositories.NewMockUserRepository()
	follows := repositories.NewMockFollowRepository(users)
	foods := repositories.NewMockFoodRepository()
	likes := repositories.NewMockLikeRepository(users)
	reviews := repositories.NewMockReviewRepository(foods, likes)

	vd := validator.New()
	return &userFixture{
		svc: services.NewUserService(
			users, follows, reviews,
			validation.NewUpdateUserValidator(vd),
			validation.NewDeleteUserValidator(),
			validation.NewListValidator(),
		),
		users:   users,
		follows: follows,
		reviews: reviews,
		foods:   foods,
	}
}

// seedHashedUser inserts an identity whose password hash matches "password123".
func seedHashedUser(t *testing.T, users *repositories.MockUserRepository, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	assert.NoError(t, err)
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
		Token:    username + "-token",
		Role:     models.RoleUser,
	}
	assert.NoError(t, users.Create(user))
	return user
}

func TestUpdatePreservesAbsentFields(t *testing.T) {
	f := newUserFixture(t)
	user := seedHashedUser(t, f.users, "alice")
	user.Bio = "original bio"
	user.Location = "Lisbon"
	assert.NoError(t, f.users.Update(user))
	token := user.Token

	updated, err := f.svc.Update(user, &validation.UpdateUserPayload{Bio: strPtr("new bio")})
	assert.NoError(t, err)
	assert.Equal(t, "new bio", updated.Bio)
	assert.Equal(t, "Lisbon", updated.Location)
	assert.Equal(t, token, updated.Token, "token must not rotate without a password change")
}

func TestPasswordChangeRotatesToken(t *testing.T) {
	f := newUserFixture(t)
	user := seedHashedUser(t, f.users, "alice")
	oldToken := user.Token
	oldHash := user.Password

	updated, err := f.svc.Update(user, &validation.UpdateUserPayload{Password: strPtr("newpassword")})
	assert.NoError(t, err)
	assert.NotEqual(t, oldToken, updated.Token)
	assert.NotEqual(t, oldHash, updated.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("newpassword")))
}

func TestDeleteRequiresReauthentication(t *testing.T) {
	f := newUserFixture(t)
	user := seedHashedUser(t, f.users, "alice")

	err := f.svc.Delete(user, &validation.DeleteUserPayload{Username: "alice", Password: "wrong"})
	assert.Equal(t, error(apperr.ErrBadCredentials), err)

	err = f.svc.Delete(user, &validation.DeleteUserPayload{Username: "someone-else", Password: "password123"})
	assert.Equal(t, error(apperr.ErrBadCredentials), err)

	// Still present after the rejected attempts.
	_, err = f.users.GetByID(user.ID)
	assert.NoError(t, err)

	assert.NoError(t, f.svc.Delete(user, &validation.DeleteUserPayload{Username: "alice", Password: "password123"}))
	_, err = f.users.GetByID(user.ID)
	assert.Equal(t, error(apperr.ErrUnknownIdentity), err)
}

func TestStatsCountsFootprint(t *testing.T) {
	f := newUserFixture(t)
	alice := seedHashedUser(t, f.users, "alice")
	bob := seedHashedUser(t, f.users, "bob")
	carol := seedHashedUser(t, f.users, "carol")

	assert.NoError(t, f.follows.Insert(bob.ID, alice.ID))
	assert.NoError(t, f.follows.Insert(carol.ID, alice.ID))
	assert.NoError(t, f.follows.Insert(alice.ID, bob.ID))

	food := &models.Food{Name: "Margherita", RestaurantID: 1}
	assert.NoError(t, f.foods.Create(food))
	assert.NoError(t, f.reviews.Create(&models.FoodReview{UserID: alice.ID, FoodID: food.ID, Rating: 10, Body: "ok"}))

	stats, err := f.svc.Stats(alice.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), stats.Followers)
	assert.Equal(t, int64(1), stats.Following)
	assert.Equal(t, int64(1), stats.Reviews)

	_, err = f.svc.Stats(99)
	assert.Equal(t, apperr.KindNotFound, apperr.Coerce(err).Kind)
}

func TestSearchReturnsSanitizedMatches(t *testing.T) {
	f := newUserFixture(t)
	seedHashedUser(t, f.users, "alice")
	seedHashedUser(t, f.users, "alicia")
	seedHashedUser(t, f.users, "bob")

	found, err := f.svc.Search("ALI", &validation.ListPayload{})
	assert.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestFeedShowsOnlyFollowedAuthors(t *testing.T) {
	f := newUserFixture(t)
	alice := seedHashedUser(t, f.users, "alice")
	bob := seedHashedUser(t, f.users, "bob")
	carol := seedHashedUser(t, f.users, "carol")

	food := &models.Food{Name: "Margherita", RestaurantID: 1}
	assert.NoError(t, f.foods.Create(food))
	assert.NoError(t, f.reviews.Create(&models.FoodReview{UserID: bob.ID, FoodID: food.ID, Rating: 15, Body: "bob's take"}))
	assert.NoError(t, f.reviews.Create(&models.FoodReview{UserID: carol.ID, FoodID: food.ID, Rating: 5, Body: "carol's take"}))

	assert.NoError(t, f.follows.Insert(alice.ID, bob.ID))

	feed, err := f.svc.Feed(alice, &validation.ListPayload{})
	assert.NoError(t, err)
	assert.Len(t, feed, 1)
	assert.Equal(t, bob.ID, feed[0].UserID)
}
