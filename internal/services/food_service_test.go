package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"tastebud/internal/apperr"
	"tastebud/internal/models"
	"tastebud/internal/repositories"
	"tastebud/internal/services"
	"tastebud/internal/validation"
	"tastebud/pkg/blobstore"
)

type foodFixture struct {
	svc         *services.FoodService
	foods       *repositories.MockFoodRepository
	restaurants *repositories.MockRestaurantRepository
	restaurant  *models.Restaurant
}

func newFoodFixture(t *testing.T, blobs blobstore.Store) *foodFixture {
	t.Helper()

	users := repositories.NewMockUserRepository()
	foods := repositories.NewMockFoodRepository()
	likes := repositories.NewMockLikeRepository(users)
	reviews := repositories.NewMockReviewRepository(foods, likes)
	restaurants := repositories.NewMockRestaurantRepository(foods, reviews)

	restaurant := &models.Restaurant{Name: "Bella Napoli"}
	assert.NoError(t, restaurants.Create(restaurant))

	return &foodFixture{
		svc: services.NewFoodService(
			foods, restaurants, blobs,
			validation.NewCreateFoodValidator(),
			validation.NewUpdateFoodValidator(),
		),
		foods:       foods,
		restaurants: restaurants,
		restaurant:  restaurant,
	}
}

func TestCreateFoodRequiresExistingRestaurant(t *testing.T) {
	f := newFoodFixture(t, blobstore.NewMemoryStore())

	_, err := f.svc.Create(context.Background(), &validation.CreateFoodPayload{
		RestaurantID: 99,
		Name:         "Margherita",
	})
	assert.Equal(t, apperr.KindNotFound, apperr.Coerce(err).Kind)
}

func TestFoodNameUniqueWithinRestaurant(t *testing.T) {
	f := newFoodFixture(t, blobstore.NewMemoryStore())
	ctx := context.Background()

	_, err := f.svc.Create(ctx, &validation.CreateFoodPayload{
		RestaurantID: f.restaurant.ID,
		Name:         "Margherita",
	})
	assert.NoError(t, err)

	_, err = f.svc.Create(ctx, &validation.CreateFoodPayload{
		RestaurantID: f.restaurant.ID,
		Name:         "Margherita",
	})
	assert.Equal(t, apperr.KindConflict, apperr.Coerce(err).Kind)

	// The same name under another restaurant is fine.
	other := &models.Restaurant{Name: "Bella Vista"}
	assert.NoError(t, f.restaurants.Create(other))
	_, err = f.svc.Create(ctx, &validation.CreateFoodPayload{
		RestaurantID: other.ID,
		Name:         "Margherita",
	})
	assert.NoError(t, err)
}

func TestCreateFoodCompensatesFailedUpload(t *testing.T) {
	f := newFoodFixture(t, failingStore{})

	_, err := f.svc.Create(context.Background(), &validation.CreateFoodPayload{
		RestaurantID: f.restaurant.ID,
		Name:         "Margherita",
		PhotoBase64:  pngPayload(),
	})
	assert.Equal(t, apperr.KindBadGateway, apperr.Coerce(err).Kind)

	foods, err := f.foods.ListByRestaurant(f.restaurant.ID)
	assert.NoError(t, err)
	assert.Empty(t, foods)
}

func TestFoodPhotoRoundTrip(t *testing.T) {
	f := newFoodFixture(t, blobstore.NewMemoryStore())
	ctx := context.Background()

	food, err := f.svc.Create(ctx, &validation.CreateFoodPayload{
		RestaurantID: f.restaurant.ID,
		Name:         "Margherita",
		PhotoBase64:  pngPayload(),
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, food.PhotoPath)

	data, err := f.svc.Picture(ctx, food.ID)
	assert.NoError(t, err)
	assert.NotEmpty(t, data)

	// A food without a photo has no picture to serve.
	bare, err := f.svc.Create(ctx, &validation.CreateFoodPayload{
		RestaurantID: f.restaurant.ID,
		Name:         "Calzone",
	})
	assert.NoError(t, err)
	_, err = f.svc.Picture(ctx, bare.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.Coerce(err).Kind)
}

func TestFoodUpdatePreservesAbsentFields(t *testing.T) {
	f := newFoodFixture(t, blobstore.NewMemoryStore())
	ctx := context.Background()

	food, err := f.svc.Create(ctx, &validation.CreateFoodPayload{
		RestaurantID: f.restaurant.ID,
		Name:         "Margherita",
		Description:  "Tomato, mozzarella, basil",
	})
	assert.NoError(t, err)

	updated, err := f.svc.Update(ctx, food.ID, &validation.UpdateFoodPayload{
		Description: strPtr("Now with buffalo mozzarella"),
	})
	assert.NoError(t, err)
	assert.Equal(t, "Margherita", updated.Name)
	assert.Equal(t, "Now with buffalo mozzarella", updated.Description)
}
