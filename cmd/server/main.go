package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"driverDispatch/internal/config"
	"driverDispatch/internal/db"
	"driverDispatch/internal/dispatch"
	"driverDispatch/internal/httpapi"
	"driverDispatch/internal/notify"
	"driverDispatch/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Open DB
	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Printf("close db: %v", err)
		}
	}()

	repos := repository.New(d)

	// Connect the Telegram bot
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		log.Fatalf("connect telegram bot: %v", err)
	}
	gateway := notify.NewTelegramGateway(botAPI, logger)
	if err := gateway.TestConnection(); err != nil {
		log.Fatalf("telegram connection check: %v", err)
	}
	logger.Info("telegram bot connected", "username", botAPI.Self.UserName)

	svc := dispatch.NewService(d, repos, gateway, cfg.Restaurant, logger)
	srv := httpapi.NewServer(cfg, svc, repos, gateway, logger)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	// Wait for signal
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
