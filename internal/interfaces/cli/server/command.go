// Package server implements the `server` subcommand: the bot's full run loop.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"tessera/internal/application/relay"
	"tessera/internal/infrastructure/cache"
	"tessera/internal/infrastructure/config"
	"tessera/internal/infrastructure/crypto"
	"tessera/internal/infrastructure/database"
	"tessera/internal/infrastructure/migration"
	"tessera/internal/infrastructure/ratelimit"
	"tessera/internal/infrastructure/repository"
	"tessera/internal/infrastructure/telegram"
	httpRouter "tessera/internal/interfaces/http"
	"tessera/internal/shared/logger"
	"tessera/internal/shared/version"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the support relay bot",
		Long:  `Start Telegram polling and the operational HTTP endpoints.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ginMode := mapEnvToGinMode(env)
	cfg.Server.Mode = ginMode

	if err := logger.Init(&cfg.Logger, env == "development"); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	log.Infow("starting tessera",
		"environment", env,
		"version", version.Current,
	)

	gin.DefaultWriter = io.Discard

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	// Schema is created on startup; a fresh deployment needs no manual step.
	if err := migration.NewGooseStrategy(log).Migrate(database.Get()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	cipher, err := crypto.NewUserIDCipher(cfg.Crypto.SecretKey)
	if err != nil {
		return fmt.Errorf("failed to initialize identity cipher: %w", err)
	}

	ticketRepo := repository.NewTicketRepository(database.Get())

	limiter := ratelimit.NewCooldownLimiter(
		time.Duration(cfg.RateLimit.CooldownSeconds)*time.Second,
		ratelimit.WithMaxTrackedUsers(cfg.RateLimit.MaxTrackedUsers),
	)

	bot := telegram.NewBotService(cfg.Telegram)

	relayService := relay.NewService(
		bot,
		ticketRepo,
		cipher,
		limiter,
		log.Named("relay"),
		cfg.Telegram.GroupID,
	)

	var offsetStore telegram.OffsetStore
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(cmd.Context()).Err(); err != nil {
			log.Warnw("redis unavailable, polling offset will not survive restarts", "error", err)
		} else {
			offsetStore = cache.NewPollingOffsetStore(redisClient)
			defer redisClient.Close()
		}
	}

	polling := telegram.NewPollingService(bot, relayService, log.Named("polling"), offsetStore, cfg.Telegram.PollTimeout)
	if err := polling.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	router := httpRouter.NewRouter(log.Named("http"), cfg.Server.Mode)

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("http server starting",
			"address", cfg.Server.GetAddr(),
			"mode", cfg.Server.Mode,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorw("http server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down")

	// Stop ingesting updates before tearing down the HTTP surface, so
	// in-flight relays finish against a live stack.
	polling.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("http server forced to shutdown", "error", err)
		return err
	}

	log.Infow("stopped gracefully")
	return nil
}

func mapEnvToGinMode(env string) string {
	switch env {
	case "production":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
