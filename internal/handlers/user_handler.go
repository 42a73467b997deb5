package handlers

import (
	"tastebud/internal/middleware"
	"tastebud/internal/services"
	"tastebud/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for identities and the follow graph.
type UserHandler struct {
	authService   *services.AuthService
	userService   *services.UserService
	followService *services.FollowService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(
	authService *services.AuthService,
	userService *services.UserService,
	followService *services.FollowService,
) *UserHandler {
	return &UserHandler{
		authService:   authService,
		userService:   userService,
		followService: followService,
	}
}

// RegisterRoutes registers the identity and follow routes with the Fiber app.
// Literal segments register before the /:id wildcard so "feed", "search" and
// "follow" never parse as identity ids.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	authRequired := middleware.AuthRequired(h.authService)

	userRoutes := router.Group("/user")
	userRoutes.Post("/", h.HandleRegister)
	userRoutes.Post("/login", h.HandleLogin)
	userRoutes.Post("/request-reset", h.HandleRequestReset)
	userRoutes.Post("/password-reset", h.HandleResetPassword)

	userRoutes.Patch("/", authRequired, h.HandleUpdate)
	userRoutes.Delete("/", authRequired, h.HandleDelete)
	userRoutes.Get("/feed", authRequired, h.HandleFeed)
	userRoutes.Get("/search/:query", authRequired, h.HandleSearch)

	followRoutes := userRoutes.Group("/follow", authRequired)
	followRoutes.Post("/:id", h.HandleFollow)
	followRoutes.Delete("/:id", h.HandleUnfollow)
	followRoutes.Get("/:id/followers", h.HandleFollowers)
	followRoutes.Get("/:id/following/:target", h.HandleIsFollowing)
	followRoutes.Get("/:id/following", h.HandleFollowing)

	userRoutes.Get("/:id/stats", authRequired, h.HandleStats)
	userRoutes.Get("/:id", authRequired, h.HandleGet)
}

// HandleRegister handles new identity registration.
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var p validation.RegisterPayload
	if err := parseBody(c, &p); err != nil {
		return respondErr(c, err)
	}
	user, err := h.authService.Register(&p)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusCreated, fiber.Map{
		"user":  user.Public(),
		"token": user.Token,
	})
}

// HandleLogin verifies credentials and returns the current access token.
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var p validation.LoginPayload
	if err := parseBody(c, &p); err != nil {
		return respondErr(c, err)
	}
	user, err := h.authService.Login(&p)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{
		"user":  user.Public(),
		"token": user.Token,
	})
}

// HandleRequestReset starts the password-reset flow for an email address.
func (h *UserHandler) HandleRequestReset(c *fiber.Ctx) error {
	var p validation.ResetRequestPayload
	if err := parseBody(c, &p); err != nil {
		return respondErr(c, err)
	}
	if err := h.authService.RequestPasswordReset(c.Context(), &p); err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, "reset instructions sent")
}

// HandleResetPassword redeems a reset token for a new password.
func (h *UserHandler) HandleResetPassword(c *fiber.Ctx) error {
	var p validation.ResetConfirmPayload
	if err := parseBody(c, &p); err != nil {
		return respondErr(c, err)
	}
	if err := h.authService.ResetPassword(c.Context(), &p); err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, "password updated")
}

// HandleUpdate applies a partial profile update to the acting identity.
func (h *UserHandler) HandleUpdate(c *fiber.Ctx) error {
	var p validation.UpdateUserPayload
	if err := parseBody(c, &p); err != nil {
		return respondErr(c, err)
	}
	user, err := h.userService.Update(middleware.Identity(c), &p)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{
		"user":  user.Public(),
		"token": user.Token,
	})
}

// HandleDelete destroys the acting identity after re-authentication.
func (h *UserHandler) HandleDelete(c *fiber.Ctx) error {
	var p validation.DeleteUserPayload
	if err := parseBody(c, &p); err != nil {
		return respondErr(c, err)
	}
	if err := h.userService.Delete(middleware.Identity(c), &p); err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, "account deleted")
}

// HandleGet returns an identity's public profile.
func (h *UserHandler) HandleGet(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	user, err := h.userService.Get(id)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, user)
}

// HandleStats returns follower, following and review counts.
func (h *UserHandler) HandleStats(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	stats, err := h.userService.Stats(id)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, stats)
}

// HandleSearch returns identities whose username contains the query.
func (h *UserHandler) HandleSearch(c *fiber.Ctx) error {
	users, err := h.userService.Search(c.Params("query"), listQuery(c))
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, users)
}

// HandleFeed returns the newest reviews from followed identities.
func (h *UserHandler) HandleFeed(c *fiber.Ctx) error {
	reviews, err := h.userService.Feed(middleware.Identity(c), listQuery(c))
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, reviews)
}

// HandleFollow inserts a follow edge from the acting identity to :id.
func (h *UserHandler) HandleFollow(c *fiber.Ctx) error {
	target, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.followService.Follow(middleware.Identity(c).ID, target); err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, "followed")
}

// HandleUnfollow removes the follow edge from the acting identity to :id.
func (h *UserHandler) HandleUnfollow(c *fiber.Ctx) error {
	target, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.followService.Unfollow(middleware.Identity(c).ID, target); err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, "unfollowed")
}

// HandleFollowers lists identities following :id.
func (h *UserHandler) HandleFollowers(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	users, err := h.followService.Followers(id)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, users)
}

// HandleFollowing lists identities that :id follows.
func (h *UserHandler) HandleFollowing(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	users, err := h.followService.Following(id)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, users)
}

// HandleIsFollowing reports whether :id follows :target.
func (h *UserHandler) HandleIsFollowing(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	target, err := paramID(c, "target")
	if err != nil {
		return respondErr(c, err)
	}
	following, err := h.followService.IsFollowing(id, target)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"following": following})
}
