package handlers

import (
	"net/http"

	"tastebud/internal/middleware"
	"tastebud/internal/models"
	"tastebud/internal/services"
	"tastebud/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// FoodHandler handles HTTP requests for foods, their reviews and review
// likes.
type FoodHandler struct {
	authService   *services.AuthService
	foodService   *services.FoodService
	reviewService *services.ReviewService
	likeService   *services.LikeService
}

// NewFoodHandler creates a new FoodHandler.
func NewFoodHandler(
	authService *services.AuthService,
	foodService *services.FoodService,
	reviewService *services.ReviewService,
	likeService *services.LikeService,
) *FoodHandler {
	return &FoodHandler{
		authService:   authService,
		foodService:   foodService,
		reviewService: reviewService,
		likeService:   likeService,
	}
}

// RegisterRoutes registers the food, review and like routes with the Fiber
// app. The /food/review subtree registers before /food/:id so "review" never
// parses as a food id.
func (h *FoodHandler) RegisterRoutes(router fiber.Router) {
	authRequired := middleware.AuthRequired(h.authService)
	moderatorOnly := middleware.TierRequired(h.authService, models.RoleModerator)

	foodRoutes := router.Group("/food", authRequired)
	foodRoutes.Post("/", moderatorOnly, h.HandleCreate)

	reviewRoutes := foodRoutes.Group("/review")
	reviewRoutes.Get("/from_restaurant/:id", h.HandleReviewsByRestaurant)
	reviewRoutes.Get("/from_user/:id", h.HandleReviewsByUser)
	reviewRoutes.Post("/:id/like", h.HandleLike)
	reviewRoutes.Delete("/:id/like", h.HandleUnlike)
	reviewRoutes.Get("/:id/like/:userId", h.HandleIsLiked)
	reviewRoutes.Get("/:id/like", h.HandleLikeInfo)
	reviewRoutes.Post("/:id", h.HandleCreateReview)
	reviewRoutes.Patch("/:id", h.HandleUpdateReview)
	reviewRoutes.Delete("/:id", h.HandleDeleteReview)
	reviewRoutes.Get("/:id", h.HandleGetReview)

	foodRoutes.Patch("/:id", moderatorOnly, h.HandleUpdate)
	foodRoutes.Delete("/:id", moderatorOnly, h.HandleDelete)
	foodRoutes.Get("/:id/picture", h.HandlePicture)
	foodRoutes.Get("/:id/reviews", h.HandleReviews)
	foodRoutes.Get("/:id", h.HandleGet)
}

// HandleCreate creates a food under a restaurant.
func (h *FoodHandler) HandleCreate(c *fiber.Ctx) error {
	var p validation.CreateFoodPayload
	if err := parseBody(c, &p); err != nil {
		return respondErr(c, err)
	}
	food, err := h.foodService.Create(c.Context(), &p)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusCreated, food)
}

// HandleUpdate applies a partial update to a food.
func (h *FoodHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var p validation.UpdateFoodPayload
	if err := parseBody(c, &p); err != nil {
		return respondErr(c, err)
	}
	food, err := h.foodService.Update(c.Context(), id, &p)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, food)
}

// HandleDelete removes a food and its reviews.
func (h *FoodHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.foodService.Delete(c.Context(), id); err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, "food deleted")
}

// HandleGet returns a food by id, aggregate rating included.
func (h *FoodHandler) HandleGet(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	food, err := h.foodService.Get(id)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, food)
}

// HandlePicture streams the food's photo bytes.
func (h *FoodHandler) HandlePicture(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	data, err := h.foodService.Picture(c.Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	c.Set(fiber.HeaderContentType, http.DetectContentType(data))
	return c.Send(data)
}

// reviewView is a review enriched with like state for list rendering.
type reviewView struct {
	models.FoodReview
	LikeCount int64 `json:"like_count"`
	Liked     bool  `json:"liked"`
}

// enrichReviews resolves like counts and the viewer's liked flags for a page
// of reviews in two batched queries.
func (h *FoodHandler) enrichReviews(viewer *models.User, reviews []models.FoodReview) ([]reviewView, error) {
	ids := make([]uint, 0, len(reviews))
	for i := range reviews {
		ids = append(ids, reviews[i].ID)
	}
	counts, err := h.likeService.CountLikesBatch(ids)
	if err != nil {
		return nil, err
	}
	liked, err := h.likeService.IsLikedBatch(viewer.ID, ids)
	if err != nil {
		return nil, err
	}
	views := make([]reviewView, 0, len(reviews))
	for i := range reviews {
		views = append(views, reviewView{
			FoodReview: reviews[i],
			LikeCount:  counts[reviews[i].ID],
			Liked:      liked[reviews[i].ID],
		})
	}
	return views, nil
}

// HandleReviews returns a page of a food's reviews with like state.
func (h *FoodHandler) HandleReviews(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	reviews, err := h.reviewService.ListByFood(id, listQuery(c))
	if err != nil {
		return respondErr(c, err)
	}
	views, err := h.enrichReviews(middleware.Identity(c), reviews)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, views)
}

// HandleCreateReview creates the acting identity's review of food :id.
func (h *FoodHandler) HandleCreateReview(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var p validation.CreateReviewPayload
	if err := parseBody(c, &p); err != nil {
		return respondErr(c, err)
	}
	p.FoodID = id
	review, err := h.reviewService.Create(middleware.Identity(c), &p)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusCreated, review)
}

// HandleUpdateReview applies a partial update to review :id.
func (h *FoodHandler) HandleUpdateReview(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var p validation.UpdateReviewPayload
	if err := parseBody(c, &p); err != nil {
		return respondErr(c, err)
	}
	review, err := h.reviewService.Update(middleware.Identity(c), id, &p)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, review)
}

// HandleDeleteReview removes review :id.
func (h *FoodHandler) HandleDeleteReview(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.reviewService.Delete(middleware.Identity(c), id); err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, "review deleted")
}

// HandleGetReview returns review :id with like state.
func (h *FoodHandler) HandleGetReview(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	review, err := h.reviewService.Get(id)
	if err != nil {
		return respondErr(c, err)
	}
	views, err := h.enrichReviews(middleware.Identity(c), []models.FoodReview{*review})
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, views[0])
}

// HandleReviewsByRestaurant returns a page of reviews across every food of
// restaurant :id.
func (h *FoodHandler) HandleReviewsByRestaurant(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	reviews, err := h.reviewService.ListByRestaurant(id, listQuery(c))
	if err != nil {
		return respondErr(c, err)
	}
	views, err := h.enrichReviews(middleware.Identity(c), reviews)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, views)
}

// HandleReviewsByUser returns a page of reviews authored by identity :id.
func (h *FoodHandler) HandleReviewsByUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	reviews, err := h.reviewService.ListByUser(id, listQuery(c))
	if err != nil {
		return respondErr(c, err)
	}
	views, err := h.enrichReviews(middleware.Identity(c), reviews)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, views)
}

// HandleLike records the acting identity's like on review :id.
func (h *FoodHandler) HandleLike(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.likeService.Like(middleware.Identity(c), id); err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusCreated, "review liked")
}

// HandleUnlike removes the acting identity's like from review :id.
func (h *FoodHandler) HandleUnlike(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.likeService.Unlike(middleware.Identity(c), id); err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, "review unliked")
}

// HandleLikeInfo returns the like count and a page of likers for review :id.
func (h *FoodHandler) HandleLikeInfo(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	count, err := h.likeService.CountLikes(id)
	if err != nil {
		return respondErr(c, err)
	}
	likers, err := h.likeService.Likers(id, listQuery(c))
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"count": count, "likers": likers})
}

// HandleIsLiked reports whether identity :userId liked review :id.
func (h *FoodHandler) HandleIsLiked(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	userID, err := paramID(c, "userId")
	if err != nil {
		return respondErr(c, err)
	}
	liked, err := h.likeService.IsLiked(userID, id)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"liked": liked})
}
