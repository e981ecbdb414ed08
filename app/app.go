package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/labstack/echo"
	"github.com/sirupsen/logrus"

	"sales-request-api/internal/cache"
	"sales-request-api/internal/config"
	"sales-request-api/internal/controller"
	"sales-request-api/internal/crm"
	"sales-request-api/internal/repo"
	"sales-request-api/internal/service"
	"sales-request-api/pkg/http_server"
	"sales-request-api/pkg/postgres"
)

func runMigrations(postgresDB *postgres.Postgres, sourceUrl string) error {
	driver, err := pgmigrate.WithInstance(postgresDB.Database, &pgmigrate.Config{})
	if err != nil {
		return err
	}

	migrations, err := migrate.NewWithDatabaseInstance(sourceUrl, "postgres", driver)
	if err != nil {
		return err
	}

	if err := migrations.Up(); err != nil {
		if err == migrate.ErrNoChange {
			logrus.Info("No change made by migration scripts")
			return nil
		}

		return err
	}

	return nil
}

func newCache(cfg *config.Config) cache.Cache {
	if cfg.RedisAddr == "" {
		logrus.Info("Redis not configured, catalog cache degraded to noop")
		return cache.NewNoop()
	}

	redisCache := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := redisCache.Ping(ctx); err != nil {
		logrus.WithError(err).Warn("Redis unreachable, catalog cache degraded to noop")
		return cache.NewNoop()
	}

	return redisCache
}

func Run() {
	cfg, err := config.New()
	if err != nil {
		logrus.Fatalf("Error loading configuration: %v", err)
	}

	logrus.Info("Connecting database...")
	postgresDB, err := postgres.NewDB(cfg.PostgresConn)
	if err != nil {
		logrus.Fatalf("Error occurred while connecting to db: %v", err)
	}
	defer postgresDB.Close()

	logrus.Info("Running migrations...")
	if err := runMigrations(postgresDB, cfg.MigrationsURL); err != nil {
		logrus.Fatalf("Error running migrations: %v", err)
	}

	pipedrive := crm.NewPipedriveClient(cfg.PipedriveAPIToken, cfg.PipedriveBaseURL, cfg.PipedriveTimeout)

	repositories := repo.NewRepositories(postgresDB)
	services := service.NewServices(repositories, service.Deps{
		CRM:        pipedrive,
		Fetcher:    pipedrive,
		Cache:      newCache(cfg),
		CatalogTTL: cfg.CatalogTTL,
	})
	handler := echo.New()

	logrus.Info("Setup routes...")
	controller.SetupRoutesHandlers(handler, services)

	logrus.Infof("Starting server on %s...", cfg.ServerAddress)
	httpServer := http_server.New(handler, cfg.ServerAddress)

	logrus.Info("Ready to process requests...")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		logrus.Info("Got signal: " + s.String())
	case err = <-httpServer.Notify():
		logrus.Errorf("Server stopped: %v", err)
	}

	logrus.Info("Shutting down...")
	if err := httpServer.Shutdown(); err != nil {
		logrus.Errorf("Shutdown error: %v", err)
	} else {
		logrus.Info("Successful shutdown")
	}
}
