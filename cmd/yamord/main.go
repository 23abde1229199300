package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"yamor-backend/config"
	"yamor-backend/internal/api"
	"yamor-backend/internal/db"
	"yamor-backend/internal/notify"
	"yamor-backend/internal/store"
	"yamor-backend/internal/vision"
)

func main() {
	logger := log.New(os.Stdout, "yamor-backend ", log.LstdFlags)

	// Best-effort .env load so GEMINI_API_KEY can come from a local file.
	if err := godotenv.Load(); err == nil {
		logger.Println(".env file loaded")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Vision.APIKey == "" {
		logger.Println("Warning: no vision API key configured; scan endpoints will be unavailable")
	}

	loc, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		logger.Fatalf("failed to load timezone %q: %v", cfg.Server.Timezone, err)
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	visionClient := vision.NewClient(&cfg.Vision)

	pool := notify.NewWorkerPool(cfg.WorkerPool.Size, appStore, notify.NewLineSender(&cfg.Push))
	pool.Start(ctx)

	handler := api.NewHandler(appStore, visionClient, pool, loc)
	router := api.NewRouter(handler, &cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
