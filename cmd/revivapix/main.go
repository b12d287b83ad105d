package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/revivapix/RevivaPix/app/controllers"
	"github.com/revivapix/RevivaPix/app/repository"
	"github.com/revivapix/RevivaPix/internal/pkg/billing"
	"github.com/revivapix/RevivaPix/internal/pkg/cache"
	"github.com/revivapix/RevivaPix/internal/pkg/database"
	"github.com/revivapix/RevivaPix/internal/pkg/env"
	"github.com/revivapix/RevivaPix/internal/pkg/imageprocessor"
	"github.com/revivapix/RevivaPix/internal/pkg/restore"
	"github.com/revivapix/RevivaPix/internal/pkg/router"
	"github.com/revivapix/RevivaPix/internal/pkg/storage"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	db := database.GetDB()
	repos := repository.NewFactory(db).GetRepositories()

	billingSvc := billing.NewServiceFromDB(db,
		billing.NewStripeGateway(env.GetEnv("STRIPE_SECRET_KEY", "")),
		billing.Config{
			WebhookSecret:  env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
			PublicDomain:   env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000"),
			AllowedOrigins: env.GetEnvList("ALLOWED_ORIGINS"),
		})

	storageCfg, err := storage.LoadConfig()
	if err != nil {
		log.Fatalf("storage configuration error: %v", err)
	}
	storageClient, err := storage.NewClient(storageCfg)
	if err != nil {
		log.Fatalf("storage initialization error: %v", err)
	}

	restoreSvc := restore.NewService(
		billingSvc,
		imageprocessor.NewRestoreClient(),
		storageClient,
		storageCfg,
		repos.Image,
	)

	app := fiber.New(fiber.Config{
		BodyLimit: controllers.MaxUploadBytes + (1 << 20),
	})
	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())

	router.InstallRouter(app, router.Controllers{
		Auth:    controllers.NewAuthController(repos.User),
		OAuth:   controllers.NewOAuthController(repos.User),
		Payment: controllers.NewPaymentController(billingSvc),
		Credits: controllers.NewCreditsController(billingSvc),
		Image:   controllers.NewImageController(restoreSvc),
	})

	return app
}
