package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/control-stock/internal/bootstrap"
	"github.com/jhoicas/control-stock/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/control-stock/internal/interfaces/http"
	"github.com/jhoicas/control-stock/pkg/config"
	"github.com/jhoicas/control-stock/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.DB.Driver).
		Bool("redis", cfg.Redis.Enabled).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DB.Driver == config.DriverPostgres && cfg.DB.MigrateOnStart {
		res, err := postgres.MigrateUp(cfg.DB.ConnectionString())
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Uint("version", res.Version).Bool("aplicadas", res.Changed).Msg("esquema al día")
	}

	container, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar dependencias")
	}
	defer container.Close()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    16 * 1024 * 1024, // planillas de carga masiva
	})
	app.Use(recover.New())

	// Swagger UI en /docs cuando existe el swagger.json generado con swag.
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Control de Stock API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AdjustStock: container.AdjustStock,
		Auditor:     container.Auditor,
		Scheduler:   container.Scheduler,
		Thresholds:  container.Thresholds,
		Alerts:      container.Alerts,
		BulkLoads:   container.BulkLoads,
		Dashboard:   container.Dashboard,
		Invalidator: container.Invalidator,
		JWTSecret:   cfg.JWT.Secret,
		Log:         log.Component("http"),
	})

	go container.Scheduler.Start(ctx)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
