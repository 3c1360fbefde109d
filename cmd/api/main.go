package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/pulseboard/api/internal/cache"
	"github.com/pulseboard/api/internal/config"
	"github.com/pulseboard/api/internal/database"
	"github.com/pulseboard/api/internal/modules/user"
	"github.com/pulseboard/api/internal/notification"
	"github.com/pulseboard/api/internal/server"
	"github.com/pulseboard/api/internal/session"
)

// Options for the CLI.
type Options struct {
	Port int `help:"Port to listen on" short:"p" default:"8080"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

		cfg := config.Load()
		if cfg.AuthSecret == "" {
			logger.Error("AUTH_SECRET is not set")
			os.Exit(1)
		}
		logger.Info("configuration loaded", "env", cfg.Server.Env)

		// --- Database & Cache ---
		dbPool := database.NewPostgresPool(cfg.Database.URL)
		hooks.OnStop(dbPool.Close)
		logger.Info("connected to postgres")

		redisClient := cache.NewRedisClient(cfg.Redis.URL)
		hooks.OnStop(func() { redisClient.Close() })
		logger.Info("connected to redis")

		// --- Collaborators ---
		emailSender := notification.NewSMTPEmailSender(
			cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From, logger,
		)
		notifier := notification.NewService(logger, emailSender)
		limiter := cache.NewRedisLimiter(redisClient, "auth")
		sessions := session.NewPostgresProvider(dbPool, session.Config{TTL: cfg.Session.TTL})

		// --- User module ---
		userRepo := user.NewRepository(dbPool)
		userService := user.NewService(&user.Config{
			Repo:     userRepo,
			Sessions: sessions,
			Notifier: notifier,
			Limiter:  limiter,
			Logger:   logger,
			Config:   cfg,
		})

		router := server.New(cfg, logger, userService, sessions)

		hooks.OnStart(func() {
			logger.Info(fmt.Sprintf("starting server on port %d", options.Port))
			if err := http.ListenAndServe(fmt.Sprintf(":%d", options.Port), router); err != nil {
				logger.Error("server failed to start", "error", err)
				os.Exit(1)
			}
		})
	})
	cli.Run()
}
