package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/geocoin/internal/adapters/http"
	"github.com/samirrijal/geocoin/internal/adapters/kvstore"
	natsadapter "github.com/samirrijal/geocoin/internal/adapters/nats"
	"github.com/samirrijal/geocoin/internal/core/domain"
	"github.com/samirrijal/geocoin/internal/core/ports"
	"github.com/samirrijal/geocoin/internal/core/usecases"
	"github.com/samirrijal/geocoin/internal/pkg/config"
	"github.com/samirrijal/geocoin/internal/pkg/logging"
	"github.com/samirrijal/geocoin/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("geocoin-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	rules := usecases.RulesFromConfig(cfg.Game)
	if err := rules.Validate(); err != nil {
		log.Fatalf("game rules: %v", err)
	}

	// Trail store
	store, err := kvstore.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer store.Close()
	slog.Info("trail store ready", "driver", cfg.Storage.Driver)

	// NATS (optional)
	var (
		publisher ports.EventPublisher
		pub       *natsadapter.Publisher
		sub       *natsadapter.Subscriber
	)
	if cfg.NATS.URL != "" {
		pub, err = natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, events disabled", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
		}
	}

	game := usecases.NewGameService(rules, store, publisher)

	if pub != nil {
		sub, err = natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats position stream unavailable", "error", err)
		} else {
			defer sub.Close()
			err = sub.SubscribePositions(ctx, func(ctx context.Context, id string, pos domain.Coordinate) error {
				if _, err := game.Open(ctx, id); err != nil {
					return err
				}
				_, err := game.UpdatePosition(ctx, id, pos, "nats")
				return err
			})
			if err != nil {
				slog.Warn("subscribe positions failed", "error", err)
			}
		}
	}

	deps := &http.Dependencies{
		Game:        game,
		Store:       store,
		StoreDriver: cfg.Storage.Driver,
		RateLimit:   cfg.Server.RateLimit,
	}
	if pub != nil {
		deps.NATS = pub.Conn()
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024,
		AppName:      "Geocoin API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, If-None-Match",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped", "sessions", game.SessionCount())
}
