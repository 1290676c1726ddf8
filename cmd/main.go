package main

import (
	"net/http"

	"crm-service/internal/audit"
	"crm-service/internal/handler"
	"crm-service/internal/messaging"
	"crm-service/internal/middleware"
	"crm-service/internal/model"
	"crm-service/internal/stats"
	"crm-service/internal/tenancy"
	"crm-service/pkg/config"
	"crm-service/pkg/database"
	"crm-service/pkg/jwtutil"
	"crm-service/pkg/logger"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load("crm-service")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting CRM service...", zap.String("environment", cfg.Server.Env))

	// Connect to the database; the handle is passed to everything that
	// needs it and closed on exit
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	if err := database.Migrate(db,
		&model.Tenant{},
		&model.TenantSettings{},
		&model.User{},
		&model.Membership{},
		&model.LeadStatus{},
		&model.ProductType{},
		&model.CustomField{},
		&model.Lead{},
		&model.Appointment{},
		&model.Message{},
		&model.Template{},
		&model.AuditLog{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Construct the shared components
	jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      cfg.JWT.SigningKey,
		ExpirationHours: cfg.JWT.ExpirationHours,
	})
	gate := tenancy.NewGate(db)
	recorder := audit.NewRecorder(log)
	statsService := stats.NewService(db)
	dispatcher := messaging.NewDispatcher(
		messaging.NewSMSSender(&cfg.SMS),
		messaging.NewWhatsAppSender(&cfg.SMS),
		messaging.NewEmailSender(&cfg.SMTP),
		log,
	)

	leadHandler := handler.NewLeadHandler(db, gate, recorder)
	statsHandler := handler.NewStatsHandler(statsService, gate)
	messageHandler := handler.NewMessageHandler(db, gate, recorder, dispatcher)
	appointmentHandler := handler.NewAppointmentHandler(db, gate, recorder)
	templateHandler := handler.NewTemplateHandler(db, gate)
	publicHandler := handler.NewPublicHandler(db, recorder, cfg.Public.AllowedOrigins, cfg.Public.SystemUserEmail)
	healthHandler := handler.NewHealthHandler(db)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/", handler.Hello)
	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Embed form endpoints with the CORS allow-list
	corsConfig := echomiddleware.CORSConfig{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}
	if len(cfg.Public.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Public.AllowedOrigins
	} else {
		corsConfig.AllowOrigins = []string{"*"}
	}
	public := e.Group("/api/public", echomiddleware.CORSWithConfig(corsConfig))
	public.POST("/:tenant/leads", publicHandler.CreateLead)
	public.GET("/:tenant/leads", publicHandler.FormConfig)

	// Tenant-scoped routes require a valid token
	api := e.Group("/api", middleware.Auth(jwtUtil))
	api.GET("/:tenant/leads", leadHandler.List)
	api.POST("/:tenant/leads", leadHandler.Create)
	api.GET("/:tenant/leads/:id", leadHandler.Get)
	api.PATCH("/:tenant/leads/:id", leadHandler.Update)
	api.DELETE("/:tenant/leads/:id", leadHandler.Delete)
	api.GET("/:tenant/leads/:id/appointments", appointmentHandler.List)
	api.POST("/:tenant/leads/:id/appointments", appointmentHandler.Create)
	api.GET("/:tenant/leads/:id/messages", messageHandler.List)
	api.POST("/:tenant/leads/:id/messages", messageHandler.Send)
	api.GET("/:tenant/templates", templateHandler.List)
	api.GET("/:tenant/stats", statsHandler.Overview)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
