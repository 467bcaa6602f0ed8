package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"order-card-bot/internal/bootstrap"
	"order-card-bot/internal/config"
	"order-card-bot/internal/server"
	"order-card-bot/internal/tracer"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer("order-card-bot", version)
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		log.Fatalf("Unable to bootstrap: %v", err)
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Start Background Services
	go container.WebSocketHub.Run(ctx)
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}
	if container.NotificationService != nil {
		if err := container.NotificationService.Start(ctx); err != nil {
			log.Printf("Notification Service Error: %v", err)
		}
	}

	if container.TelegramBot == nil && !cfg.App.HTTPEnabled {
		log.Fatal("Nothing to run: set TELEGRAM_TOKEN or HTTP_ENABLED=true")
	}

	var wg sync.WaitGroup

	// 4. Telegram long polling
	if container.TelegramBot != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			container.TelegramBot.Run(ctx)
		}()
	}

	// 5. HTTP API
	if cfg.App.HTTPEnabled {
		srv := server.New(cfg, container)
		go func() {
			if err := srv.Run(); err != nil {
				log.Printf("Server stopped: %v", err)
				stop()
			}
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Server shutdown: %v", err)
			}
		}()
	}

	<-ctx.Done()
	log.Println("Shutting down...")
	wg.Wait()
}
