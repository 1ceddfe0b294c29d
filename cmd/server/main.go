package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"interiors-erp/internal/audit"
	"interiors-erp/internal/auth"
	"interiors-erp/internal/billing"
	"interiors-erp/internal/clients"
	"interiors-erp/internal/company"
	"interiors-erp/internal/config"
	"interiors-erp/internal/dashboard"
	"interiors-erp/internal/database"
	"interiors-erp/internal/httpx"
	"interiors-erp/internal/labour"
	"interiors-erp/internal/logger"
	"interiors-erp/internal/materials"
	"interiors-erp/internal/metrics"
	"interiors-erp/internal/models"
	"interiors-erp/internal/notify"
	"interiors-erp/internal/projects"
	"interiors-erp/internal/storage"
	"interiors-erp/internal/superadmin"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// the logger depends on APP_ENV, which lives in the config
		logger.New("development").Error("failed to load config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)
	cfg.Warn(log)

	db, err := database.Open(cfg)
	if err != nil {
		log.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	if err := database.Migrate(db, log); err != nil {
		log.Error("failed to migrate database", "err", err)
		os.Exit(1)
	}

	files, err := storage.NewLocal(cfg.UploadDir, cfg.MaxUploadMB)
	if err != nil {
		log.Error("failed to prepare upload directory", "dir", cfg.UploadDir, "err", err)
		os.Exit(1)
	}
	sessions := auth.NewSessionStore(db)

	usage := materials.NewUsageService(db, cfg.UsageWarningRatio)
	requests := materials.NewRequestService(db)
	catalog := materials.NewCatalog(db)
	bills := billing.NewService(db)

	app := fiber.New(fiber.Config{
		AppName:      "interiors-erp",
		BodyLimit:    (cfg.MaxUploadMB + 1) * 1024 * 1024,
		ErrorHandler: httpx.ErrorHandler(log, !cfg.IsProduction()),
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))
	if cfg.MetricsEnabled {
		app.Use(metrics.Middleware())
		app.Get("/metrics", metrics.Handler())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	api := app.Group("/api")

	// Public
	api.Post("/auth/signup", auth.SignupHandler(db, cfg))
	api.Post("/auth/login", auth.LoginHandler(db, cfg))
	api.Post("/superadmin/login", auth.SuperAdminLoginHandler(cfg, sessions))

	protected := api.Group("", auth.Middleware(cfg, sessions, auth.NewUserStatus(db)))

	// Super admin console
	console := protected.Group("/superadmin", auth.RequireSuperAdmin())
	console.Post("/logout", auth.SuperAdminLogoutHandler(sessions))
	console.Get("/companies", superadmin.ListCompaniesHandler(db))
	console.Get("/users", superadmin.ListUsersHandler(db))
	console.Post("/create-user", superadmin.CreateUserHandler(db))
	console.Put("/update-user/:id", superadmin.UpdateUserHandler(db))
	console.Delete("/delete-user/:id", superadmin.DeleteUserHandler(db))
	console.Get("/users/:userId/export", superadmin.ExportUserHandler(db, bills))

	anyUser := auth.RequireRole(models.RoleAdmin, models.RoleSiteEngineer)
	adminOnly := auth.RequireRole(models.RoleAdmin)

	protected.Get("/auth/me", anyUser, auth.MeHandler(db))

	// Company
	protected.Get("/company", anyUser, company.GetCompanyHandler(db))
	protected.Put("/company", adminOnly, company.UpdateCompanyHandler(db))
	protected.Post("/company/logo", adminOnly, company.UploadLogoHandler(db, files))

	// Projects
	protected.Get("/projects", anyUser, projects.ListProjectsHandler(db))
	protected.Get("/projects/:id", anyUser, projects.GetProjectHandler(db))
	protected.Post("/projects", adminOnly, projects.CreateProjectHandler(db))
	protected.Put("/projects/:id", adminOnly, projects.UpdateProjectHandler(db))
	protected.Delete("/projects/:id", adminOnly, projects.DeleteProjectHandler(db))
	protected.Put("/projects/:id/engineers", adminOnly, projects.SetEngineersHandler(db))

	// Project documents
	protected.Get("/projects/:id/documents", anyUser, projects.ListDocumentsHandler(db))
	protected.Post("/projects/:id/documents", anyUser, projects.UploadDocumentHandler(db, files))
	protected.Get("/project-documents/:id/download", anyUser, projects.DownloadDocumentHandler(db, files))
	protected.Delete("/project-documents/:id", adminOnly, projects.DeleteDocumentHandler(db, files))

	// Engineers
	engineers := protected.Group("/engineers", adminOnly)
	engineers.Get("/", projects.ListEngineersHandler(db))
	engineers.Post("/", projects.CreateEngineerHandler(db))
	engineers.Put("/:id", projects.UpdateEngineerHandler(db))
	engineers.Delete("/:id", projects.DeleteEngineerHandler(db, files))
	engineers.Post("/:id/photo", projects.UploadEngineerPhotoHandler(db, files))

	// Material catalog
	protected.Get("/materials", anyUser, materials.ListMaterialsHandler(catalog))
	protected.Post("/materials", adminOnly, materials.CreateMaterialHandler(catalog))
	protected.Put("/materials/:id", adminOnly, materials.UpdateMaterialHandler(catalog))
	protected.Delete("/materials/:id", adminOnly, materials.DeleteMaterialHandler(catalog))

	// Allocations and usage
	protected.Get("/project-materials", anyUser, materials.ListProjectMaterialsHandler(usage))
	protected.Post("/project-materials", adminOnly, materials.AllocateHandler(usage))
	protected.Get("/usage-logs", anyUser, materials.ListUsageLogsHandler(usage))
	protected.Post("/usage-logs", anyUser, materials.CreateUsageLogHandler(usage))
	protected.Put("/usage-logs/:id", anyUser, materials.EditUsageLogHandler(usage))
	protected.Delete("/usage-logs/:id", adminOnly, materials.DeleteUsageLogHandler(usage))

	// Material requests
	protected.Get("/material-requests", anyUser, materials.ListRequestsHandler(requests))
	protected.Post("/material-requests", anyUser, materials.CreateRequestHandler(requests))
	protected.Put("/material-requests/:id/approve", adminOnly, materials.ApproveRequestHandler(requests))
	protected.Put("/material-requests/:id/reject", adminOnly, materials.RejectRequestHandler(requests))

	// Labour
	protected.Get("/labours", anyUser, labour.ListLaboursHandler(db))
	protected.Post("/labours", anyUser, labour.CreateLabourHandler(db))
	protected.Put("/labours/:id", anyUser, labour.UpdateLabourHandler(db))
	protected.Delete("/labours/:id", adminOnly, labour.DeleteLabourHandler(db))
	protected.Get("/labours/:id/payments", anyUser, labour.ListPaymentsHandler(db))
	protected.Post("/labours/:id/payments", anyUser, labour.CreatePaymentHandler(db))
	protected.Delete("/labour-payments/:id", adminOnly, labour.DeletePaymentHandler(db))

	// Billing; /export must be registered before /:id
	billRoutes := protected.Group("/bills", adminOnly)
	billRoutes.Get("/", billing.ListBillsHandler(bills))
	billRoutes.Get("/export", billing.ExportBillsHandler(bills))
	billRoutes.Get("/:id", billing.GetBillHandler(bills))
	billRoutes.Get("/:id/pdf", billing.BillPDFHandler(db, bills))
	billRoutes.Post("/", billing.CreateBillHandler(bills))
	billRoutes.Put("/:id", billing.UpdateBillHandler(bills))
	billRoutes.Patch("/:id", billing.UpdateBillStatusHandler(bills))
	billRoutes.Delete("/:id", billing.DeleteBillHandler(bills))

	// Clients and contracts
	clientRoutes := protected.Group("/clients", adminOnly)
	clientRoutes.Get("/", clients.ListClientsHandler(db))
	clientRoutes.Get("/:id", clients.GetClientHandler(db))
	clientRoutes.Post("/", clients.CreateClientHandler(db))
	clientRoutes.Put("/:id", clients.UpdateClientHandler(db))
	clientRoutes.Delete("/:id", clients.DeleteClientHandler(db))

	contractRoutes := protected.Group("/contracts", adminOnly)
	contractRoutes.Get("/", clients.ListContractsHandler(db))
	contractRoutes.Get("/:id", clients.GetContractHandler(db))
	contractRoutes.Post("/", clients.CreateContractHandler(db))
	contractRoutes.Put("/:id", clients.UpdateContractHandler(db))
	contractRoutes.Delete("/:id", clients.DeleteContractHandler(db))

	// Notifications, audit trail, dashboard
	protected.Get("/notifications", anyUser, notify.ListNotificationsHandler(db))
	protected.Put("/notifications/read-all", anyUser, notify.MarkAllReadHandler(db))
	protected.Put("/notifications/:id/read", anyUser, notify.MarkReadHandler(db))
	protected.Get("/audit-logs", adminOnly, audit.ListAuditLogsHandler(db))
	protected.Get("/dashboard/summary", adminOnly, dashboard.SummaryHandler(db, cfg.UsageWarningRatio))
	protected.Get("/dashboard/chart", adminOnly, dashboard.ChartHandler(db))

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("shutdown failed", "err", err)
		}
	}()

	log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
