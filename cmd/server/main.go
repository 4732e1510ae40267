package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5"
	"github.com/minjae-dev/WellCareBack/internal/config"
	"github.com/minjae-dev/WellCareBack/internal/database"
	"github.com/minjae-dev/WellCareBack/internal/metrics"
	"github.com/minjae-dev/WellCareBack/internal/models"
	"github.com/minjae-dev/WellCareBack/internal/repository"
	"github.com/minjae-dev/WellCareBack/internal/routes"
	"github.com/minjae-dev/WellCareBack/pkg/utils"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is required")
	}
	if err := database.ConnectDB(cfg.DBUrl, cfg.DBMaxConns); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB()

	if err := seedAdminUser(cfg); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	startExpirySweep(cfg)

	app := fiber.New()

	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	routes.RegisterRoutes(app, cfg, database.DB)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// seedAdminUser creates the bootstrap administrator account when the
// configured email does not exist yet.
func seedAdminUser(cfg *config.Config) error {
	if cfg.DefaultAdminEmail == "" || cfg.DefaultAdminPassword == "" {
		return nil
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository(database.DB)

	_, err := userRepo.GetByEmail(ctx, cfg.DefaultAdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hashed, err := utils.HashPassword(cfg.DefaultAdminPassword)
	if err != nil {
		return err
	}
	user := &models.User{
		Email:        cfg.DefaultAdminEmail,
		PasswordHash: hashed,
		Name:         cfg.DefaultAdminName,
		Role:         "admin",
	}
	if err := userRepo.Create(ctx, user); err != nil {
		return err
	}
	log.Printf("Seeded admin user %s (id %d)", user.Email, user.ID)
	return nil
}

// startExpirySweep stamps the stored expired status nightly. Reads always
// recompute effective status from the expiry date, so the sweep only keeps
// the column consistent for reporting.
func startExpirySweep(cfg *config.Config) {
	purchaseRepo := repository.NewPurchaseRepository(database.DB)

	c := cron.New()
	_, err := c.AddFunc(cfg.ExpirySweepSpec, func() {
		marked, err := purchaseRepo.MarkExpired(context.Background(), time.Now().UTC())
		if err != nil {
			log.Printf("expiry sweep failed: %v", err)
			return
		}
		if marked > 0 {
			metrics.ExpirySweepMarked.Add(float64(marked))
			log.Printf("expiry sweep marked %d purchases expired", marked)
		}
	})
	if err != nil {
		log.Fatalf("Invalid EXPIRY_SWEEP_CRON %q: %v", cfg.ExpirySweepSpec, err)
	}
	c.Start()
}
