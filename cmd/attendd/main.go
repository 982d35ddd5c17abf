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

	"github.com/SherClockHolmes/webpush-go"

	"attendance-ingest-backend/config"
	"attendance-ingest-backend/internal/api"
	"attendance-ingest-backend/internal/db"
	"attendance-ingest-backend/internal/notification"
	"attendance-ingest-backend/internal/store"
	"attendance-ingest-backend/internal/timefmt"
)

func main() {
	logger := log.New(os.Stdout, "attendd ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	formatter, err := timefmt.New(cfg.Attendance.Timezone)
	if err != nil {
		logger.Fatalf("failed to initialize time formatter: %v", err)
	}
	logger.Printf("attendance timezone: %s", cfg.Attendance.Timezone)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var appStore store.Store
	var webpushOptions *webpush.Options
	var notifier *notification.WorkerPool

	if cfg.Database.DSN == "" {
		logger.Printf("no database DSN configured; using in-memory event buffer (capacity %d, events are lost on restart)", cfg.Attendance.BufferCapacity)
		appStore = store.NewMemStore(cfg.Attendance.BufferCapacity)
	} else {
		gormDB, err := db.Init(&cfg.Database)
		if err != nil {
			logger.Fatalf("failed to initialize database: %v", err)
		}
		appStore = store.NewGormStore(gormDB)
		logger.Println("database initialized successfully")

		if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
			webpushOptions = &webpush.Options{
				VAPIDPublicKey:  cfg.Push.PublicKey,
				VAPIDPrivateKey: cfg.Push.PrivateKey,
				Subscriber:      cfg.Push.Subject,
				TTL:             cfg.Push.TTL,
			}
			notifier = notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
			notifier.Start(ctx)
			logger.Printf("arrival notifications enabled with %d worker(s)", cfg.WorkerPool.Size)
		} else {
			logger.Println("VAPID keys not configured; arrival notifications disabled")
		}
	}

	router := api.NewRouter(api.RouterConfig{
		Store:           appStore,
		Formatter:       formatter,
		WebPush:         webpushOptions,
		Notifier:        notifier,
		RecentLimit:     cfg.Attendance.RecentEventsLimit,
		RateLimitPerSec: cfg.Server.RateLimitPerSec,
		RateBurst:       cfg.Server.RateBurst,
		CacheTTL:        time.Duration(cfg.Server.CacheTTLSeconds) * time.Second,
	})

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
