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

	"bitefeed-notify/config"
	"bitefeed-notify/internal/api"
	"bitefeed-notify/internal/db"
	"bitefeed-notify/internal/notification"
	"bitefeed-notify/internal/push"
	"bitefeed-notify/internal/realtime"
	"bitefeed-notify/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "bitefeed-notify ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	appStore := store.NewGormStore(gormDB)
	registry := realtime.NewRegistry(cfg.Realtime.WriteTimeout)

	// Mobile push providers. Either may be absent in a deployment; the
	// notifier treats a nil dispatcher as a disabled channel.
	var expoDispatcher, fcmDispatcher push.Dispatcher
	expoDispatcher = push.NewExpoDispatcher(cfg.Push.ExpoAccessToken, cfg.Push.Timeout)
	if cfg.Push.FCMCredentialsFile != "" {
		fcmDispatcher = push.NewFCMDispatcher(cfg.Push.FCMCredentialsFile, cfg.Push.Timeout)
	} else {
		logger.Println("fcm credentials not configured; android push disabled")
	}

	var webPusher notification.SubscriptionDispatcher
	if cfg.Push.VAPIDPublicKey != "" && cfg.Push.VAPIDPrivateKey != "" {
		webPusher = push.NewWebPushDispatcher(&webpush.Options{
			VAPIDPublicKey:  cfg.Push.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.Push.VAPIDPrivateKey,
			Subscriber:      cfg.Push.VAPIDSubject,
			TTL:             cfg.Push.WebPushTTL,
		})
	} else {
		logger.Println("vapid keys not configured; web push disabled")
	}

	classifier := push.DefaultClassifier
	if cfg.Push.FallbackToExpo {
		classifier = push.NewClassifier(push.PlatformIOS)
	}

	notifier := notification.New(
		appStore,
		registry,
		classifier,
		expoDispatcher,
		fcmDispatcher,
		webPusher,
		cfg.Push.Timeout,
	)

	handler := api.NewHandler(appStore, notifier, registry, cfg.Realtime.ReadLimitBytes)
	router := api.NewRouter(&cfg.Server, handler)
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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP server Shutdown: %v", err)
	}

	// Let in-flight push deliveries finish, then drop live sessions.
	notifier.Drain()
	registry.Close()

	logger.Println("Server gracefully stopped")
}
