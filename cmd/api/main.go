package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"multiplicadores/internal/config"
	"multiplicadores/internal/database"
	"multiplicadores/internal/database/migration"
	handlers "multiplicadores/internal/http/handler"
	"multiplicadores/internal/http/middleware"
	"multiplicadores/internal/otel"
	"multiplicadores/internal/repository/postgres"
	"multiplicadores/internal/service"
	"multiplicadores/internal/storage"
	"multiplicadores/internal/whatsapp"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		loc = time.UTC
	}

	ctx := context.Background()

	// OpenTelemetry tracing (no-op unless OTEL_ENABLED=true)
	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	// PostgreSQL connection (pooled via database/sql, instrumented with otelsql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Object storage for sales-feed audit dumps. Optional: an empty
	// MINIO_ENDPOINT disables archiving without disabling the report.
	var objStore storage.ObjectStore
	if cfg.MinIO.Endpoint != "" {
		objStore, err = storage.NewMinIO(cfg.MinIO)
		if err != nil {
			log.Fatalf("failed to initialize object storage: %v", err)
		}
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	wa := whatsapp.NewClient(cfg.WhatsApp)

	// Repositories and services
	matriculaRepo := postgres.NewMatriculaPostgres(db)
	presencaRepo := postgres.NewPresencaPostgres(db)
	checkinRepo := postgres.NewCheckinPostgres(db)
	userRepo := postgres.NewUserPostgres(db)

	matriculaSvc := service.NewMatriculaService(cfg.Matricula, matriculaRepo)
	presencaSvc := service.NewPresencaService(matriculaSvc, presencaRepo)
	checkinSvc := service.NewCheckinService(checkinRepo, matriculaRepo)
	authSvc := service.NewAuthService(cfg.Auth, userRepo)
	workatoSvc := service.NewWorkatoService(cfg.Workato, objStore, logger)
	felicitacoesSvc := service.NewFelicitacoesService(wa)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Global middleware: request IDs first so the logger and error
	// envelope can pick them up.
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-API-Key",
	}))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, handlers.Services{
		Auth:          authSvc,
		Matricula:     matriculaSvc,
		Presenca:      presencaSvc,
		Checkin:       checkinSvc,
		Workato:       workatoSvc,
		Felicitacoes:  felicitacoesSvc,
		WorkatoAPIKey: cfg.Workato.APIKey,
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
