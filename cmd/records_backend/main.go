package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/finstream/records_backend/internal/adapters/database/pgsql"
	portssvc "github.com/finstream/records_backend/internal/core/ports/services"
	"github.com/finstream/records_backend/internal/core/services"
	"github.com/finstream/records_backend/internal/events"
	kafkaevents "github.com/finstream/records_backend/internal/events/kafka"
	"github.com/finstream/records_backend/internal/handlers"
	"github.com/finstream/records_backend/internal/middleware"
	"github.com/finstream/records_backend/internal/platform/config"
	"github.com/finstream/records_backend/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), cors.Default())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	recordRepo := pgsql.NewPgxRecordRepository(dbPool)

	// Event consumers run off the request path; the dispatcher drains its
	// buffer on shutdown.
	consumers := []portssvc.RecordEventConsumer{
		services.NewAlertConsumer(cfg.AlertThreshold),
		services.NewNotificationConsumer(recordRepo),
	}
	if len(cfg.KafkaBrokers) > 0 {
		relay := kafkaevents.NewRelayConsumer(cfg.KafkaBrokers, cfg.RecordStoredTopic)
		defer func() {
			if cerr := relay.Close(); cerr != nil {
				logger.Error("Error closing kafka relay", slog.String("error", cerr.Error()))
			}
		}()
		consumers = append(consumers, relay)
		logger.Info("Kafka event relay enabled", slog.String("topic", cfg.RecordStoredTopic))
	}
	dispatcher := events.NewDispatcher(logger, cfg.EventBufferSize, consumers...)
	defer dispatcher.Close()

	serviceContainer := &portssvc.ServiceContainer{
		Record:      services.NewRecordService(recordRepo, dispatcher),
		Aggregation: services.NewAggregationService(recordRepo),
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending "up" migrations from the migrations
// directory using a temporary database/sql connection compatible with the
// main pgx pool.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to open database connection for migrations", slog.String("error", err.Error()))
		return err
	}
	if err := migrationDB.Ping(); err != nil {
		logger.Error("Failed to ping database for migrations", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		logger.Error("Could not create postgres driver instance for migrations", slog.String("error", err.Error()))
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		logger.Error("Could not create migrate instance", slog.String("error", err.Error()))
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		logger.Error("Migration source error", slog.String("error", sourceErr.Error()))
		return sourceErr
	}
	if dbErr != nil {
		logger.Error("Migration database error", slog.String("error", dbErr.Error()))
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
