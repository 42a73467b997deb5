package main

import (
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tastebud/internal/config"
	"tastebud/internal/handlers"
	"tastebud/internal/models"
	"tastebud/internal/repositories"
	"tastebud/internal/services"
	"tastebud/internal/validation"
	"tastebud/pkg/blobstore"
	"tastebud/pkg/keyval"
	"tastebud/pkg/mailqueue"
)

// repos bundles the persistence interfaces the app is built on, so tests can
// swap in the in-memory implementations.
type repos struct {
	users       repositories.UserRepository
	follows     repositories.FollowRepository
	restaurants repositories.RestaurantRepository
	foods       repositories.FoodRepository
	reviews     repositories.ReviewRepository
	likes       repositories.LikeRepository
}

// newApp wires validators, services and handlers into a Fiber app. It takes
// every external collaborator as an interface so the whole HTTP surface is
// testable without a database, broker or blob host.
func newApp(r repos, kv keyval.Store, mail mailqueue.Sender, blobs blobstore.Store, cfg *config.Config) *fiber.App {
	vd := validator.New()

	authService := services.NewAuthService(
		r.users,
		services.AuthValidators{
			Register:     validation.NewRegisterValidator(vd),
			Login:        validation.NewLoginValidator(),
			ResetRequest: validation.NewResetRequestValidator(vd),
			ResetConfirm: validation.NewResetConfirmValidator(),
		},
		kv,
		mail,
		cfg.ResetTokenSecret,
		cfg.ResetTokenTTL,
		cfg.MailFrom,
	)
	userService := services.NewUserService(
		r.users, r.follows, r.reviews,
		validation.NewUpdateUserValidator(vd),
		validation.NewDeleteUserValidator(),
		validation.NewListValidator(),
	)
	followService := services.NewFollowService(r.users, r.follows)
	restaurantService := services.NewRestaurantService(
		r.restaurants, r.foods, blobs,
		validation.NewCreateRestaurantValidator(),
		validation.NewUpdateRestaurantValidator(),
		validation.NewListValidator(),
	)
	foodService := services.NewFoodService(
		r.foods, r.restaurants, blobs,
		validation.NewCreateFoodValidator(),
		validation.NewUpdateFoodValidator(),
	)
	reviewService := services.NewReviewService(
		r.reviews, r.foods, r.users, r.restaurants,
		validation.NewCreateReviewValidator(),
		validation.NewUpdateReviewValidator(),
		validation.NewListValidator(),
	)
	likeService := services.NewLikeService(r.likes, r.reviews, validation.NewListValidator())

	app := fiber.New()
	app.Use(logger.New())

	apiV1 := app.Group("/api/v1")
	handlers.NewUserHandler(authService, userService, followService).RegisterRoutes(apiV1)
	handlers.NewRestaurantHandler(authService, restaurantService).RegisterRoutes(apiV1)
	handlers.NewFoodHandler(authService, foodService, reviewService, likeService).RegisterRoutes(apiV1)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	return app
}

// openDatabase picks the driver from the DSN shape: postgres for URL or
// key=value DSNs, sqlite for everything else.
func openDatabase(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.Contains(dsn, "host=") {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()

	db, err := openDatabase(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Restaurant{},
		&models.Food{},
		&models.FoodReview{},
		&models.ReviewLike{},
	); err != nil {
		slog.Error("failed to migrate schema", "error", err)
		os.Exit(1)
	}

	mqClient, err := mailqueue.NewClient(mailqueue.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		slog.Error("failed to connect to message broker", "error", err)
		os.Exit(1)
	}
	defer mqClient.Close()

	kv := keyval.NewRedisStore(cfg.RedisAddr)

	var blobs blobstore.Store
	if cfg.BlobUploadURL != "" {
		blobs = blobstore.NewHTTPStore(blobstore.Config{
			UploadURL:  cfg.BlobUploadURL,
			DestroyURL: cfg.BlobDestroyURL,
			APIKey:     cfg.BlobAPIKey,
			APISecret:  cfg.BlobAPISecret,
		})
	} else {
		slog.Warn("no blob host configured, storing photos in memory")
		blobs = blobstore.NewMemoryStore()
	}

	r := repos{
		users:       repositories.NewGORMUserRepository(db),
		follows:     repositories.NewGORMFollowRepository(db),
		restaurants: repositories.NewGORMRestaurantRepository(db),
		foods:       repositories.NewGORMFoodRepository(db),
		reviews:     repositories.NewGORMReviewRepository(db),
		likes:       repositories.NewGORMLikeRepository(db),
	}

	app := newApp(r, kv, mqClient, blobs, cfg)

	// Drain the mail queue in-process. Delivery is a log line until an SMTP
	// relay is wired up; failed deliveries requeue.
	go func() {
		err := mqClient.ConsumeMailJobs(func(msg mailqueue.Message) error {
			slog.Info("delivering mail", "to", msg.To, "subject", msg.Subject, "from", cfg.MailFrom)
			return nil
		})
		if err != nil {
			slog.Error("mail consumer stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", cfg.AppPort)
		if err := app.Listen(cfg.AppPort); err != nil {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		slog.Error("error during shutdown", "error", err)
	}
	slog.Info("server stopped")
}
