package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minjae-dev/WellCareBack/internal/config"
	"github.com/minjae-dev/WellCareBack/internal/handlers"
	"github.com/minjae-dev/WellCareBack/internal/middleware"
	"github.com/minjae-dev/WellCareBack/internal/repository"
	"github.com/minjae-dev/WellCareBack/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	serviceTypeRepo := repository.NewServiceTypeRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	allocRepo := repository.NewAllocationRepository(db)
	usageRepo := repository.NewUsageRepository(db)
	leadRepo := repository.NewLeadRepository(db)

	catalogService := services.NewCatalogService(db, serviceTypeRepo, packageRepo)
	purchaseService := services.NewPurchaseService(db, purchaseRepo, allocRepo, customerRepo, packageRepo)
	usageService := services.NewUsageService(db, usageRepo, purchaseRepo, allocRepo, customerRepo, serviceTypeRepo)
	statsService := services.NewStatsService(usageRepo, purchaseRepo, leadRepo)
	leadService := services.NewLeadService(db, leadRepo, customerRepo)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	customerHandler := handlers.NewCustomerHandler(customerRepo)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService)
	usageHandler := handlers.NewUsageHandler(usageService)
	statsHandler := handlers.NewStatsHandler(statsService)
	leadHandler := handlers.NewLeadHandler(leadService)

	if cfg.MetricsEnabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	v1 := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	users := v1.Group("/users", middleware.AdminOnly())
	users.Post("", authHandler.CreateUser)
	users.Get("", authHandler.ListUsers)

	customers := v1.Group("/customers")
	customers.Post("", customerHandler.Create)
	customers.Get("", customerHandler.List)
	customers.Get("/:id", customerHandler.Get)
	customers.Put("/:id", customerHandler.Update)
	customers.Delete("/:id", middleware.AdminOnly(), customerHandler.Delete)

	customers.Get("/:id/packages", purchaseHandler.ListByCustomer)
	customers.Get("/:id/packages/:purchaseId", purchaseHandler.Get)
	customers.Put("/:id/packages/:purchaseId/status", purchaseHandler.UpdateStatus)
	customers.Post("/:id/packages/:purchaseId/use", usageHandler.Consume)
	customers.Put("/:id/packages/:purchaseId/services", middleware.AdminOnly(), usageHandler.AdjustServices)

	catalog := v1.Group("/catalog")
	catalog.Get("/service-types", catalogHandler.ListServiceTypes)
	catalog.Post("/service-types", middleware.AdminOnly(), catalogHandler.CreateServiceType)
	catalog.Put("/service-types/:id", middleware.AdminOnly(), catalogHandler.UpdateServiceType)
	catalog.Get("/packages", catalogHandler.ListPackages)
	catalog.Get("/packages/:id", catalogHandler.GetPackage)
	catalog.Post("/packages", middleware.AdminOnly(), catalogHandler.CreatePackage)

	packages := v1.Group("/packages")
	packages.Post("/purchase", purchaseHandler.Create)

	serviceGroup := v1.Group("/services")
	serviceGroup.Get("/usage", usageHandler.List)
	serviceGroup.Post("/usage", usageHandler.Record)
	serviceGroup.Put("/usage/:eventId", usageHandler.UpdateEvent)
	serviceGroup.Get("/calendar", statsHandler.Calendar)
	serviceGroup.Get("/stats", statsHandler.Monthly)

	leads := v1.Group("/leads")
	leads.Post("", leadHandler.Create)
	leads.Get("", leadHandler.List)
	leads.Get("/stats", statsHandler.LeadStats)
	leads.Put("/:id/status", leadHandler.UpdateStatus)
	leads.Post("/:id/convert", leadHandler.Convert)
}
