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

// RestaurantService handles restaurant lifecycle, search and photo storage.
//
// Photo creation is two-phase: the row commits first, then the blob uploads.
// If the upload fails the row is deleted again (compensating delete) and the
// request fails upstream, so a restaurant never lingers half-created. On
// photo updates the previous reference is kept when the upload fails.
type RestaurantService struct {
	restaurants     repositories.RestaurantRepository
	foods           repositories.FoodRepository
	blobs           blobstore.Store
	createValidator *validation.Validator[validation.CreateRestaurantPayload]
	updateValidator *validation.Validator[validation.UpdateRestaurantPayload]
	listValidator   *validation.Validator[validation.ListPayload]
}

// NewRestaurantService creates a new RestaurantService.
func NewRestaurantService(
	restaurants repositories.RestaurantRepository,
	foods repositories.FoodRepository,
	blobs blobstore.Store,
	createValidator *validation.Validator[validation.CreateRestaurantPayload],
	updateValidator *validation.Validator[validation.UpdateRestaurantPayload],
	listValidator *validation.Validator[validation.ListPayload],
) *RestaurantService {
	return &RestaurantService{
		restaurants:     restaurants,
		foods:           foods,
		blobs:           blobs,
		createValidator: createValidator,
		updateValidator: updateValidator,
		listValidator:   listValidator,
	}
}

// Create adds a restaurant, uploading its photo after the row commits.
func (s *RestaurantService) Create(ctx context.Context, p *validation.CreateRestaurantPayload) (*models.Restaurant, error) {
	if err := s.createValidator.Validate(p); err != nil {
		return nil, err
	}
	var photo []byte
	if p.PhotoBase64 != "" {
		var err error
		if photo, err = decodePhoto(p.PhotoBase64); err != nil {
			return nil, err
		}
	}

	restaurant := &models.Restaurant{
		Name:        p.Name,
		ShortName:   p.ShortName,
		Description: p.Description,
	}
	if err := s.restaurants.Create(restaurant); err != nil {
		return nil, err
	}

	if photo != nil {
		ref, err := s.blobs.Upload(ctx, photo, restaurantPhotoKey(restaurant.ID))
		if err != nil {
			// Compensating delete: without it the row would linger photo-less.
			if delErr := s.restaurants.Delete(restaurant.ID); delErr != nil {
				slog.Error("failed to roll back restaurant after upload failure",
					"restaurant", restaurant.ID, "error", delErr)
			}
			return nil, apperr.BadGateway("photo upload failed")
		}
		restaurant.PhotoPath = ref.Path
		restaurant.PhotoRemoteID = ref.RemoteID
		if err := s.restaurants.Update(restaurant); err != nil {
			return nil, err
		}
	}
	return restaurant, nil
}

// Update applies the fields present in the payload. A replacement photo
// uploads before the row saves; if the upload fails the old reference stays.
func (s *RestaurantService) Update(ctx context.Context, id uint, p *validation.UpdateRestaurantPayload) (*models.Restaurant, error) {
	if err := s.updateValidator.Validate(p); err != nil {
		return nil, err
	}
	restaurant, err := s.restaurants.GetByID(id)
	if err != nil {
		return nil, err
	}

	oldRef := blobstore.FileRef{Path: restaurant.PhotoPath, RemoteID: restaurant.PhotoRemoteID}
	if p.PhotoBase64 != nil {
		photo, err := decodePhoto(*p.PhotoBase64)
		if err != nil {
			return nil, err
		}
		ref, err := s.blobs.Upload(ctx, photo, restaurantPhotoKey(id))
		if err != nil {
			return nil, apperr.BadGateway("photo upload failed")
		}
		restaurant.PhotoPath = ref.Path
		restaurant.PhotoRemoteID = ref.RemoteID
	}
	if p.Name != nil {
		restaurant.Name = *p.Name
	}
	if p.ShortName != nil {
		restaurant.ShortName = *p.ShortName
	}
	if p.Description != nil {
		restaurant.Description = *p.Description
	}
	if err := s.restaurants.Update(restaurant); err != nil {
		return nil, err
	}
	if p.PhotoBase64 != nil && oldRef.RemoteID != "" && oldRef.RemoteID != restaurant.PhotoRemoteID {
		if err := s.blobs.Delete(ctx, oldRef.Path, &oldRef); err != nil {
			slog.Warn("failed to delete replaced restaurant photo", "restaurant", id, "error", err)
		}
	}
	return restaurant, nil
}

// Delete removes the restaurant, cascading to its foods and reviews, and
// best-effort removes its photo from the blob store.
func (s *RestaurantService) Delete(ctx context.Context, id uint) error {
	restaurant, err := s.restaurants.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.restaurants.Delete(id); err != nil {
		return err
	}
	if restaurant.PhotoRemoteID != "" {
		ref := blobstore.FileRef{Path: restaurant.PhotoPath, RemoteID: restaurant.PhotoRemoteID}
		if err := s.blobs.Delete(ctx, ref.Path, &ref); err != nil {
			slog.Warn("failed to delete restaurant photo", "restaurant", id, "error", err)
		}
	}
	return nil
}

// Get returns a restaurant by id.
func (s *RestaurantService) Get(id uint) (*models.Restaurant, error) {
	return s.restaurants.GetByID(id)
}

// Menu returns every food of a restaurant. The restaurant must exist.
func (s *RestaurantService) Menu(id uint) ([]models.Food, error) {
	if _, err := s.restaurants.GetByID(id); err != nil {
		return nil, err
	}
	return s.foods.ListByRestaurant(id)
}

// Search returns restaurants whose name or short name contains the query,
// case-insensitively.
func (s *RestaurantService) Search(query string, p *validation.ListPayload) ([]models.Restaurant, error) {
	if err := s.listValidator.Validate(p); err != nil {
		return nil, err
	}
	return s.restaurants.Search(query, p.Limit, p.Offset)
}

// Picture downloads the restaurant's photo bytes.
func (s *RestaurantService) Picture(ctx context.Context, id uint) ([]byte, error) {
	restaurant, err := s.restaurants.GetByID(id)
	if err != nil {
		return nil, err
	}
	if restaurant.PhotoPath == "" {
		return nil, apperr.NotFound("restaurant has no picture")
	}
	data, err := s.blobs.Download(ctx, restaurant.PhotoPath)
	if err != nil {
		return nil, apperr.BadGateway("photo download failed")
	}
	return data, nil
}

func restaurantPhotoKey(id uint) string {
	return fmt.Sprintf("restaurant-%d", id)
}
