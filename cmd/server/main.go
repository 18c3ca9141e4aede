package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/rpattn/catalogql/internal/config"
	"github.com/rpattn/catalogql/internal/db"
	"github.com/rpattn/catalogql/internal/engine"
	"github.com/rpattn/catalogql/internal/export"
	"github.com/rpattn/catalogql/internal/httpapi"
	"github.com/rpattn/catalogql/internal/middleware"
	"github.com/rpattn/catalogql/internal/repository"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	var store repository.EntityStore
	switch cfg.Storage.Driver {
	case "postgres":
		if err := db.RunMigrations(cfg.Storage.Database, "./migrations"); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
		conn, err := db.NewConnection(ctx, cfg.Storage.Database)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer conn.Close()
		store = repository.NewPostgresStore(conn.Pool)
	case "memory", "":
		store = repository.NewMemoryStore()
	default:
		logger.Fatal("unknown storage driver", zap.String("driver", cfg.Storage.Driver))
	}

	codec := engine.NewCursorCodec(cfg.Cursor.Secret)
	planner := engine.NewPlanner(store, codec,
		engine.WithDefaultLimit(cfg.Pagination.DefaultLimit),
		engine.WithMaxLimit(cfg.Pagination.MaxLimit),
	)
	exporter := export.NewService(planner)

	mux := http.NewServeMux()
	httpapi.New(planner, exporter, logger).Register(mux)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	handler := corsHandler.Handler(
		middleware.Logging(logger)(
			middleware.Authorization(mux),
		),
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting catalog query server", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
