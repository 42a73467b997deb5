package handlers

import (
	"net/http"

	"tastebud/internal/middleware"
	"tastebud/internal/models"
	"tastebud/internal/services"
	"tastebud/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// RestaurantHandler handles HTTP requests for restaurants.
type RestaurantHandler struct {
	authService       *services.AuthService
	restaurantService *services.RestaurantService
}

// NewRestaurantHandler creates a new RestaurantHandler.
func NewRestaurantHandler(authService *services.AuthService, restaurantService *services.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{
		authService:       authService,
		restaurantService: restaurantService,
	}
}

// RegisterRoutes registers the restaurant routes with the Fiber app.
// Mutations require the MODERATOR tier; reads require only a valid token.
func (h *RestaurantHandler) RegisterRoutes(router fiber.Router) {
	authRequired := middleware.AuthRequired(h.authService)
	moderatorOnly := middleware.TierRequired(h.authService, models.RoleModerator)

	restaurantRoutes := router.Group("/restaurant", authRequired)
	restaurantRoutes.Post("/", moderatorOnly, h.HandleCreate)
	restaurantRoutes.Patch("/:id", moderatorOnly, h.HandleUpdate)
	restaurantRoutes.Delete("/:id", moderatorOnly, h.HandleDelete)
	restaurantRoutes.Get("/search/:query", h.HandleSearch)
	restaurantRoutes.Get("/:id/picture", h.HandlePicture)
	restaurantRoutes.Get("/:id/menu", h.HandleMenu)
	restaurantRoutes.Get("/:id", h.HandleGet)
}

// HandleCreate creates a restaurant, with an optional base64-encoded photo.
func (h *RestaurantHandler) HandleCreate(c *fiber.Ctx) error {
	var p validation.CreateRestaurantPayload
	if err := parseBody(c, &p); err != nil {
		return respondErr(c, err)
	}
	restaurant, err := h.restaurantService.Create(c.Context(), &p)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusCreated, restaurant)
}

// HandleUpdate applies a partial update to a restaurant.
func (h *RestaurantHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var p validation.UpdateRestaurantPayload
	if err := parseBody(c, &p); err != nil {
		return respondErr(c, err)
	}
	restaurant, err := h.restaurantService.Update(c.Context(), id, &p)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, restaurant)
}

// HandleDelete removes a restaurant and everything under it.
func (h *RestaurantHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.restaurantService.Delete(c.Context(), id); err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, "restaurant deleted")
}

// HandleGet returns a restaurant by id.
func (h *RestaurantHandler) HandleGet(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	restaurant, err := h.restaurantService.Get(id)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, restaurant)
}

// HandleMenu returns every food of a restaurant.
func (h *RestaurantHandler) HandleMenu(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	foods, err := h.restaurantService.Menu(id)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, foods)
}

// HandleSearch returns restaurants matching the query.
func (h *RestaurantHandler) HandleSearch(c *fiber.Ctx) error {
	restaurants, err := h.restaurantService.Search(c.Params("query"), listQuery(c))
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, restaurants)
}

// HandlePicture streams the restaurant's photo bytes.
func (h *RestaurantHandler) HandlePicture(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	data, err := h.restaurantService.Picture(c.Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	c.Set(fiber.HeaderContentType, http.DetectContentType(data))
	return c.Send(data)
}
