package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"tastebud/internal/handlers"
	"tastebud/internal/models"
	"tastebud/internal/repositories"
	"tastebud/internal/services"
	"tastebud/internal/validation"
	"tastebud/pkg/blobstore"
	"tastebud/pkg/keyval"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

// stubSender swallows outbound mail during tests.
type stubSender struct{}

func (stubSender) Send(to, subject, body string) error { return nil }

// testEnv bundles the app with the repositories backing it, so tests can
// reach behind the HTTP surface when a scenario needs it (e.g. promoting a
// user to moderator).
type testEnv struct {
	app   *fiber.App
	users *repositories.MockUserRepository
}

// setupApp builds the full HTTP surface on the in-memory repositories and
// stores; no database, broker or blob host is needed.
func setupApp() *testEnv {
	vd := validator.New()

	users := repositories.NewMockUserRepository()
	follows := repositories.NewMockFollowRepository(users)
	foods := repositories.NewMockFoodRepository()
	likes := repositories.NewMockLikeRepository(users)
	reviews := repositories.NewMockReviewRepository(foods, likes)
	restaurants := repositories.NewMockRestaurantRepository(foods, reviews)

	authService := services.NewAuthService(
		users,
		services.AuthValidators{
			Register:     validation.NewRegisterValidator(vd),
			Login:        validation.NewLoginValidator(),
			ResetRequest: validation.NewResetRequestValidator(vd),
			ResetConfirm: validation.NewResetConfirmValidator(),
		},
		keyval.NewMemoryStore(),
		stubSender{},
		"test-reset-secret",
		time.Minute,
		"noreply@test.local",
	)
	userService := services.NewUserService(
		users, follows, reviews,
		validation.NewUpdateUserValidator(vd),
		validation.NewDeleteUserValidator(),
		validation.NewListValidator(),
	)
	followService := services.NewFollowService(users, follows)
	blobs := blobstore.NewMemoryStore()
	restaurantService := services.NewRestaurantService(
		restaurants, foods, blobs,
		validation.NewCreateRestaurantValidator(),
		validation.NewUpdateRestaurantValidator(),
		validation.NewListValidator(),
	)
	foodService := services.NewFoodService(
		foods, restaurants, blobs,
		validation.NewCreateFoodValidator(),
		validation.NewUpdateFoodValidator(),
	)
	reviewService := services.NewReviewService(
		reviews, foods, users, restaurants,
		validation.NewCreateReviewValidator(),
		validation.NewUpdateReviewValidator(),
		validation.NewListValidator(),
	)
	likeService := services.NewLikeService(likes, reviews, validation.NewListValidator())

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	handlers.NewUserHandler(authService, userService, followService).RegisterRoutes(apiV1)
	handlers.NewRestaurantHandler(authService, restaurantService).RegisterRoutes(apiV1)
	handlers.NewFoodHandler(authService, foodService, reviewService, likeService).RegisterRoutes(apiV1)

	return &testEnv{app: app, users: users}
}

// request performs an HTTP round trip through the app and decodes the JSON
// envelope.
func request(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	defer resp.Body.Close()

	var envelope map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil && err != io.EOF {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return resp.StatusCode, envelope
}

// registerUser registers a fresh identity and returns its access token.
func registerUser(t *testing.T, env *testEnv, username string) string {
	t.Helper()
	status, resp := request(t, env.app, http.MethodPost, "/api/v1/user", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusCreated, status)
	message := resp["message"].(map[string]interface{})
	token := message["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

// promote raises a registered identity to the given tier directly in the
// store. Tier changes have no HTTP surface.
func promote(t *testing.T, env *testEnv, username string, role models.Role) {
	t.Helper()
	user, err := env.users.GetByUsername(username)
	assert.NoError(t, err)
	user.Role = role
	assert.NoError(t, env.users.Update(user))
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestRegisterLoginAndProfile(t *testing.T) {
	env := setupApp()

	token := registerUser(t, env, "alice")

	// Duplicate username conflicts.
	status, _ := request(t, env.app, http.MethodPost, "/api/v1/user", "", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, status)

	// Login returns the same token shape.
	status, resp := request(t, env.app, http.MethodPost, "/api/v1/user/login", "", map[string]string{
		"username": "alice",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, status)
	message := resp["message"].(map[string]interface{})
	assert.NotEmpty(t, message["token"])

	// Wrong password and unknown username are indistinguishable.
	status, resp = request(t, env.app, http.MethodPost, "/api/v1/user/login", "", map[string]string{
		"username": "alice",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid username or password", resp["message"])

	status, resp = request(t, env.app, http.MethodPost, "/api/v1/user/login", "", map[string]string{
		"username": "nobody",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid username or password", resp["message"])

	// Profile reads need a valid token; the hash never leaks.
	status, resp = request(t, env.app, http.MethodGet, "/api/v1/user/1", token, nil)
	assert.Equal(t, http.StatusOK, status)
	profile := resp["message"].(map[string]interface{})
	assert.Equal(t, "alice", profile["username"])
	assert.NotContains(t, profile, "password")

	status, _ = request(t, env.app, http.MethodGet, "/api/v1/user/1", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// A lowercase bearer prefix is not accepted.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/1", nil)
	req.Header.Set("Authorization", "bearer "+token)
	raw, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, raw.StatusCode)
	raw.Body.Close()
}

func TestFollowLifecycle(t *testing.T) {
	env := setupApp()

	aliceToken := registerUser(t, env, "alice")
	registerUser(t, env, "bob")

	// Following twice is idempotent.
	status, _ := request(t, env.app, http.MethodPost, "/api/v1/user/follow/2", aliceToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = request(t, env.app, http.MethodPost, "/api/v1/user/follow/2", aliceToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, resp := request(t, env.app, http.MethodGet, "/api/v1/user/follow/2/followers", aliceToken, nil)
	assert.Equal(t, http.StatusOK, status)
	followers := resp["message"].([]interface{})
	assert.Len(t, followers, 1)

	status, resp = request(t, env.app, http.MethodGet, "/api/v1/user/follow/1/following/2", aliceToken, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, resp["message"].(map[string]interface{})["following"])

	// Self-follow is rejected.
	status, _ = request(t, env.app, http.MethodPost, "/api/v1/user/follow/1", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// Following an unknown identity is a 404 before any edge mutation.
	status, _ = request(t, env.app, http.MethodPost, "/api/v1/user/follow/99", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Unfollow is idempotent too.
	status, _ = request(t, env.app, http.MethodDelete, "/api/v1/user/follow/2", aliceToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = request(t, env.app, http.MethodDelete, "/api/v1/user/follow/2", aliceToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, resp = request(t, env.app, http.MethodGet, "/api/v1/user/follow/1/following/2", aliceToken, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, resp["message"].(map[string]interface{})["following"])
}

// seedFood creates a restaurant with one food through the HTTP surface and
// returns the food id.
func seedFood(t *testing.T, env *testEnv, modToken string) uint {
	t.Helper()
	status, _ := request(t, env.app, http.MethodPost, "/api/v1/restaurant", modToken, map[string]string{
		"name":        "Bella Napoli",
		"short_name":  "bella",
		"description": "Wood-fired pizza",
	})
	assert.Equal(t, http.StatusCreated, status)

	status, resp := request(t, env.app, http.MethodPost, "/api/v1/food", modToken, map[string]interface{}{
		"restaurant_id": 1,
		"name":          "Margherita",
		"description":   "Tomato, mozzarella, basil",
	})
	assert.Equal(t, http.StatusCreated, status)
	food := resp["message"].(map[string]interface{})
	return uint(food["id"].(float64))
}

func foodAverage(t *testing.T, env *testEnv, token string, foodID uint) float64 {
	t.Helper()
	status, resp := request(t, env.app, http.MethodGet, fmt.Sprintf("/api/v1/food/%d", foodID), token, nil)
	assert.Equal(t, http.StatusOK, status)
	food := resp["message"].(map[string]interface{})
	return food["average_rating"].(float64)
}

func TestReviewAggregateFlow(t *testing.T) {
	env := setupApp()

	modToken := registerUser(t, env, "mod")
	promote(t, env, "mod", models.RoleModerator)
	u1Token := registerUser(t, env, "alice")
	u2Token := registerUser(t, env, "bob")

	foodID := seedFood(t, env, modToken)

	// Two reviews: ratings 10 and 20 average to 15.
	status, _ := request(t, env.app, http.MethodPost, "/api/v1/food/review/1", u1Token, map[string]interface{}{
		"rating": 10,
		"body":   "Solid crust, could use more basil.",
	})
	assert.Equal(t, http.StatusCreated, status)

	status, _ = request(t, env.app, http.MethodPost, "/api/v1/food/review/1", u2Token, map[string]interface{}{
		"rating": 20,
		"body":   "Best pizza in town.",
	})
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 15.0, foodAverage(t, env, u1Token, foodID))

	// Rating update recomputes the aggregate.
	status, _ = request(t, env.app, http.MethodPatch, "/api/v1/food/review/1", u1Token, map[string]interface{}{
		"rating": 0,
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 10.0, foodAverage(t, env, u1Token, foodID))

	// A second review of the same food by the same identity conflicts.
	status, _ = request(t, env.app, http.MethodPost, "/api/v1/food/review/1", u1Token, map[string]interface{}{
		"rating": 5,
		"body":   "Trying to double-dip.",
	})
	assert.Equal(t, http.StatusConflict, status)

	// Only the owner may update or delete.
	status, _ = request(t, env.app, http.MethodPatch, "/api/v1/food/review/1", u2Token, map[string]interface{}{
		"rating": 20,
	})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = request(t, env.app, http.MethodDelete, "/api/v1/food/review/1", u2Token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Owner delete leaves only the 20 rating.
	status, _ = request(t, env.app, http.MethodDelete, "/api/v1/food/review/1", u1Token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 20.0, foodAverage(t, env, u1Token, foodID))

	// The delete freed the (identity, food) pair, so a fresh review by the
	// same identity goes through and joins the aggregate.
	status, _ = request(t, env.app, http.MethodPost, "/api/v1/food/review/1", u1Token, map[string]interface{}{
		"rating": 16,
		"body":   "Second visit, much improved.",
	})
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 18.0, foodAverage(t, env, u1Token, foodID))

	// Out-of-range ratings never reach the store.
	status, _ = request(t, env.app, http.MethodPost, "/api/v1/food/review/1", u1Token, map[string]interface{}{
		"rating": 21,
		"body":   "Too enthusiastic.",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDeletedAccountFreesItsUsername(t *testing.T) {
	env := setupApp()

	token := registerUser(t, env, "alice")

	status, _ := request(t, env.app, http.MethodDelete, "/api/v1/user", token, map[string]string{
		"username": "alice",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, status)

	// Username and email are free for a new registration.
	registerUser(t, env, "alice")
}

func TestTierEnforcement(t *testing.T) {
	env := setupApp()

	userToken := registerUser(t, env, "plainuser")
	modToken := registerUser(t, env, "mod")
	promote(t, env, "mod", models.RoleModerator)
	adminToken := registerUser(t, env, "admin")
	promote(t, env, "admin", models.RoleAdmin)

	body := map[string]string{"name": "Gated Diner", "description": "Members only"}

	status, _ := request(t, env.app, http.MethodPost, "/api/v1/restaurant", userToken, body)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = request(t, env.app, http.MethodPost, "/api/v1/restaurant", modToken, body)
	assert.Equal(t, http.StatusCreated, status)

	body["name"] = "Second Diner"
	status, _ = request(t, env.app, http.MethodPost, "/api/v1/restaurant", adminToken, body)
	assert.Equal(t, http.StatusCreated, status)
}

func TestLikeLifecycle(t *testing.T) {
	env := setupApp()

	modToken := registerUser(t, env, "mod")
	promote(t, env, "mod", models.RoleModerator)
	u1Token := registerUser(t, env, "alice")
	u2Token := registerUser(t, env, "bob")

	seedFood(t, env, modToken)
	status, _ := request(t, env.app, http.MethodPost, "/api/v1/food/review/1", u2Token, map[string]interface{}{
		"rating": 18,
		"body":   "Would order again.",
	})
	assert.Equal(t, http.StatusCreated, status)

	// First like lands, second conflicts.
	status, _ = request(t, env.app, http.MethodPost, "/api/v1/food/review/1/like", u1Token, nil)
	assert.Equal(t, http.StatusCreated, status)
	status, _ = request(t, env.app, http.MethodPost, "/api/v1/food/review/1/like", u1Token, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, resp := request(t, env.app, http.MethodGet, "/api/v1/food/review/1/like", u2Token, nil)
	assert.Equal(t, http.StatusOK, status)
	info := resp["message"].(map[string]interface{})
	assert.Equal(t, 1.0, info["count"])
	assert.Len(t, info["likers"].([]interface{}), 1)

	status, resp = request(t, env.app, http.MethodGet, "/api/v1/food/review/1/like/2", u2Token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, resp["message"].(map[string]interface{})["liked"])

	// Review listings carry like state.
	status, resp = request(t, env.app, http.MethodGet, "/api/v1/food/1/reviews", u1Token, nil)
	assert.Equal(t, http.StatusOK, status)
	reviews := resp["message"].([]interface{})
	assert.Len(t, reviews, 1)
	first := reviews[0].(map[string]interface{})
	assert.Equal(t, 1.0, first["like_count"])
	assert.Equal(t, true, first["liked"])

	// Unlike is idempotent.
	status, _ = request(t, env.app, http.MethodDelete, "/api/v1/food/review/1/like", u1Token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = request(t, env.app, http.MethodDelete, "/api/v1/food/review/1/like", u1Token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, resp = request(t, env.app, http.MethodGet, "/api/v1/food/review/1/like/2", u2Token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, resp["message"].(map[string]interface{})["liked"])
}
