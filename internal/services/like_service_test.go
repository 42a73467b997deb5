package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tastebud/internal/apperr"
	"tastebud/internal/models"
	"tastebud/internal/repositories"
	"tastebud/internal/services"
	"tastebud/internal/validation"
)

type likeFixture struct {
	svc    *services.LikeService
	review *models.FoodReview
	alice  *models.User
	bob    *models.User
}

func newLikeFixture(t *testing.T) *likeFixture {
	t.Helper()

	users := repositories.NewMockUserRepository()
	foods := repositories.NewMockFoodRepository()
	likes := repositories.NewMockLikeRepository(users)
	reviews := repositories.NewMockReviewRepository(foods, likes)

	alice := seedUser(t, users, "alice")
	bob := seedUser(t, users, "bob")

	food := &models.Food{Name: "Margherita", RestaurantID: 1}
	assert.NoError(t, foods.Create(food))
	review := &models.FoodReview{UserID: bob.ID, FoodID: food.ID, Rating: 18, Body: "excellent"}
	assert.NoError(t, reviews.Create(review))

	return &likeFixture{
		svc:    services.NewLikeService(likes, reviews, validation.NewListValidator()),
		review: review,
		alice:  alice,
		bob:    bob,
	}
}

func TestLikeUniquenessConflict(t *testing.T) {
	f := newLikeFixture(t)

	assert.NoError(t, f.svc.Like(f.alice, f.review.ID))

	err := f.svc.Like(f.alice, f.review.ID)
	assert.Equal(t, apperr.KindConflict, apperr.Coerce(err).Kind)

	count, err := f.svc.CountLikes(f.review.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUnlikeIsIdempotent(t *testing.T) {
	f := newLikeFixture(t)

	assert.NoError(t, f.svc.Like(f.alice, f.review.ID))
	assert.NoError(t, f.svc.Unlike(f.alice, f.review.ID))
	assert.NoError(t, f.svc.Unlike(f.alice, f.review.ID))

	liked, err := f.svc.IsLiked(f.alice.ID, f.review.ID)
	assert.NoError(t, err)
	assert.False(t, liked)
}

func TestLikeUnknownReviewFails(t *testing.T) {
	f := newLikeFixture(t)

	for _, err := range []error{
		f.svc.Like(f.alice, 99),
		f.svc.Unlike(f.alice, 99),
	} {
		assert.Equal(t, apperr.KindNotFound, apperr.Coerce(err).Kind)
	}

	_, err := f.svc.IsLiked(f.alice.ID, 99)
	assert.Equal(t, apperr.KindNotFound, apperr.Coerce(err).Kind)
	_, err = f.svc.CountLikes(99)
	assert.Equal(t, apperr.KindNotFound, apperr.Coerce(err).Kind)
}

func TestBatchedLikeLookups(t *testing.T) {
	f := newLikeFixture(t)
	assert.NoError(t, f.svc.Like(f.alice, f.review.ID))
	assert.NoError(t, f.svc.Like(f.bob, f.review.ID))

	// Unknown ids report false / zero rather than failing the whole batch.
	ids := []uint{f.review.ID, 99}

	liked, err := f.svc.IsLikedBatch(f.alice.ID, ids)
	assert.NoError(t, err)
	assert.Equal(t, map[uint]bool{f.review.ID: true, 99: false}, liked)

	counts, err := f.svc.CountLikesBatch(ids)
	assert.NoError(t, err)
	assert.Equal(t, map[uint]int64{f.review.ID: 2, 99: 0}, counts)
}

func TestLikersAreSanitized(t *testing.T) {
	f := newLikeFixture(t)
	assert.NoError(t, f.svc.Like(f.alice, f.review.ID))
	assert.NoError(t, f.svc.Like(f.bob, f.review.ID))

	likers, err := f.svc.Likers(f.review.ID, &validation.ListPayload{})
	assert.NoError(t, err)
	assert.Len(t, likers, 2)
	assert.Equal(t, "alice", likers[0].Username)
	assert.Equal(t, "bob", likers[1].Username)

	// Pagination windows apply.
	pageTwo, err := f.svc.Likers(f.review.ID, &validation.ListPayload{Limit: 1, Offset: 1})
	assert.NoError(t, err)
	assert.Len(t, pageTwo, 1)
	assert.Equal(t, "bob", pageTwo[0].Username)
}
