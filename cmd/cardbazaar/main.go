package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"

	"cardbazaar/internal/cache"
	"cardbazaar/internal/config"
	"cardbazaar/internal/http/handlers"
	applog "cardbazaar/internal/log"
	"cardbazaar/internal/repos"
	"cardbazaar/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Redis idempotency store when configured, in-process fallback otherwise.
	var idem services.IdempotencyStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			cancel()
			log.Fatalf("failed to connect redis: %v", err)
		}
		cancel()
		defer rdb.Close()
		idem = cache.NewRedisStore(rdb)
		log.Println("connected to redis")
	} else {
		idem = cache.NewMemoryStore()
		log.Println("[warn] REDIS_ADDR not set; idempotency keys are process-local")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "something went wrong, please try again",
			})
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	deps := handlers.NewDeps(db, cfg, idem)

	api := app.Group("/api/v1")
	api.Get("/cards/:id", deps.CardHandler.Detail)

	api.Get("/listings", deps.ListingHandler.Browse)
	api.Post("/listings", deps.ListingHandler.Create)
	api.Get("/listings/:id", deps.ListingHandler.Detail)
	api.Post("/listings/:id/cancel", deps.ListingHandler.Cancel)
	api.Post("/listings/:id/orders", deps.OrderHandler.Place)

	api.Get("/orders", deps.OrderHandler.History)
	api.Post("/orders/:id/cancel", deps.OrderHandler.Cancel)
	api.Post("/orders/:id/complete", deps.OrderHandler.Complete)
	api.Post("/orders/:id/refund", deps.OrderHandler.Refund)

	api.Post("/collections/:id/items", deps.CollectionHandler.Adjust)
	api.Get("/collections/:id/items", deps.CollectionHandler.Items)

	api.Post("/decks/:id/slots", deps.DeckHandler.AddSlot)
	api.Get("/decks/:id/slots", deps.DeckHandler.Slots)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if err := db.Close(); err != nil {
		log.Printf("close db: %v", err)
	}
	log.Println("bye")
}
