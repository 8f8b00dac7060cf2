// soakd serves registered entities over HTTP. Request bodies are decoded
// into payload maps, hydrated into fresh entity instances and persisted;
// reads run the other direction, extracting stored instances back into
// maps for the response.
//
// Configuration comes from soakd.yaml in the working directory and from
// SOAKD_* environment variables. A compiled-in bookshop model is always
// registered; a mappings directory adds definition-only entities served
// through the definition cache.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/soaklib/soak/cache"
	"github.com/soaklib/soak/mapfile"
	"github.com/soaklib/soak/metadata"
	"github.com/soaklib/soak/store"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fatal("load config", err)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	reg := metadata.NewRegistry()
	registerModels(reg)

	// Mapping files extend the compiled-in model with definition-only
	// entities, read through the cache.
	var defs metadata.DefSource
	if cfg.Mappings != "" {
		backend, err := openCache(cfg)
		if err != nil {
			fatal("open cache", err)
		}
		defs = cache.NewDefProvider(mapfile.NewProvider(cfg.Mappings), backend, cache.WithLogger(log))
		if err := reg.LoadFrom(defs); err != nil {
			fatal("load mappings", err)
		}
		log.Info("mapping definitions loaded", "dir", cfg.Mappings)
	}

	st, err := store.Open(store.Config{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN}, reg, store.WithLogger(log))
	if err != nil {
		fatal("open store", err)
	}
	defer st.Close()

	if err := st.EnsureSchema(context.Background()); err != nil {
		fatal("ensure schema", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	registerRoutes(app, NewHandler(st, reg, defs))

	log.Info("listening", "addr", cfg.Listen, "driver", cfg.Database.Driver)
	if err := app.Listen(cfg.Listen); err != nil {
		fatal("listen", err)
	}
}

// openCache picks the definition cache backend: Redis when an address is
// configured, in-process memory otherwise.
func openCache(cfg *Config) (cache.Cache, error) {
	if cfg.Redis.Addr != "" {
		rc := cache.DefaultRedisConfig()
		rc.Addr = cfg.Redis.Addr
		return cache.NewRedisWithConfig(rc)
	}
	return cache.NewMemory(), nil
}

func errorHandler(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(ErrorResponse{Error: appErr})
	}

	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	slog.Error("request failed", "error", err)
	return c.Status(code).JSON(ErrorResponse{
		Error: &AppError{Code: "INTERNAL_ERROR", Message: "Internal server error"},
	})
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
