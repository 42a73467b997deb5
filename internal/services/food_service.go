package services

import (
	"context"
	"fmt"
	"log/slog"

	"tastebud/internal/apperr"
	"tastebud/internal/models"
	"tastebud/internal/repositories"
	"tastebud/internal/validation"
	"tastebud/pkg/blobstore"
)

// FoodService handles menu items and their photos. It follows the same
// two-phase photo policy as RestaurantService.
type FoodService struct {
	foods           repositories.FoodRepository
	restaurants     repositories.RestaurantRepository
	blobs           blobstore.Store
	createValidator *validation.Validator[validation.CreateFoodPayload]
	updateValidator *validation.Validator[validation.UpdateFoodPayload]
}

// NewFoodService creates a new FoodService.
func NewFoodService(
	foods repositories.FoodRepository,
	restaurants repositories.RestaurantRepository,
	blobs blobstore.Store,
	createValidator *validation.Validator[validation.CreateFoodPayload],
	updateValidator *validation.Validator[validation.UpdateFoodPayload],
) *FoodService {
	return &FoodService{
		foods:           foods,
		restaurants:     restaurants,
		blobs:           blobs,
		createValidator: createValidator,
		updateValidator: updateValidator,
	}
}

// Create adds a food to a restaurant's menu. The restaurant must exist, and
// the name must be unused within that restaurant.
func (s *FoodService) Create(ctx context.Context, p *validation.CreateFoodPayload) (*models.Food, error) {
	if err := s.createValidator.Validate(p); err != nil {
		return nil, err
	}
	if _, err := s.restaurants.GetByID(p.RestaurantID); err != nil {
		return nil, err
	}
	var photo []byte
	if p.PhotoBase64 != "" {
		var err error
		if photo, err = decodePhoto(p.PhotoBase64); err != nil {
			return nil, err
		}
	}

	food := &models.Food{
		Name:         p.Name,
		RestaurantID: p.RestaurantID,
		Description:  p.Description,
	}
	if err := s.foods.Create(food); err != nil {
		return nil, err
	}

	if photo != nil {
		ref, err := s.blobs.Upload(ctx, photo, foodPhotoKey(food.ID))
		if err != nil {
			if delErr := s.foods.Delete(food.ID); delErr != nil {
				slog.Error("failed to roll back food after upload failure",
					"food", food.ID, "error", delErr)
			}
			return nil, apperr.BadGateway("photo upload failed")
		}
		food.PhotoPath = ref.Path
		food.PhotoRemoteID = ref.RemoteID
		if err := s.foods.Update(food); err != nil {
			return nil, err
		}
	}
	return food, nil
}

// Update applies the fields present in the payload. A replacement photo
// uploads before the row saves; if the upload fails the old reference stays.
func (s *FoodService) Update(ctx context.Context, id uint, p *validation.UpdateFoodPayload) (*models.Food, error) {
	if err := s.updateValidator.Validate(p); err != nil {
		return nil, err
	}
	food, err := s.foods.GetByID(id)
	if err != nil {
		return nil, err
	}

	oldRef := blobstore.FileRef{Path: food.PhotoPath, RemoteID: food.PhotoRemoteID}
	if p.PhotoBase64 != nil {
		photo, err := decodePhoto(*p.PhotoBase64)
		if err != nil {
			return nil, err
		}
		ref, err := s.blobs.Upload(ctx, photo, foodPhotoKey(id))
		if err != nil {
			return nil, apperr.BadGateway("photo upload failed")
		}
		food.PhotoPath = ref.Path
		food.PhotoRemoteID = ref.RemoteID
	}
	if p.Name != nil {
		food.Name = *p.Name
	}
	if p.Description != nil {
		food.Description = *p.Description
	}
	if err := s.foods.Update(food); err != nil {
		return nil, err
	}
	if p.PhotoBase64 != nil && oldRef.RemoteID != "" && oldRef.RemoteID != food.PhotoRemoteID {
		if err := s.blobs.Delete(ctx, oldRef.Path, &oldRef); err != nil {
			slog.Warn("failed to delete replaced food photo", "food", id, "error", err)
		}
	}
	return food, nil
}

// Delete removes the food, cascading to its reviews and likes, and
// best-effort removes its photo from the blob store.
func (s *FoodService) Delete(ctx context.Context, id uint) error {
	food, err := s.foods.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.foods.Delete(id); err != nil {
		return err
	}
	if food.PhotoRemoteID != "" {
		ref := blobstore.FileRef{Path: food.PhotoPath, RemoteID: food.PhotoRemoteID}
		if err := s.blobs.Delete(ctx, ref.Path, &ref); err != nil {
			slog.Warn("failed to delete food photo", "food", id, "error", err)
		}
	}
	return nil
}

// Get returns a food by id.
func (s *FoodService) Get(id uint) (*models.Food, error) {
	return s.foods.GetByID(id)
}

// Picture downloads the food's photo bytes.
func (s *FoodService) Picture(ctx context.Context, id uint) ([]byte, error) {
	food, err := s.foods.GetByID(id)
	if err != nil {
		return nil, err
	}
	if food.PhotoPath == "" {
		return nil, apperr.NotFound("food has no picture")
	}
	data, err := s.blobs.Download(ctx, food.PhotoPath)
	if err != nil {
		return nil, apperr.BadGateway("photo download failed")
	}
	return data, nil
}

func foodPhotoKey(id uint) string {
	return fmt.Sprintf("food-%d", id)
}
