package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Aashish23092/ghost-shift-audit/client"
	"github.com/Aashish23092/ghost-shift-audit/config"
	"github.com/Aashish23092/ghost-shift-audit/handler"
	"github.com/Aashish23092/ghost-shift-audit/middleware"
	"github.com/Aashish23092/ghost-shift-audit/service"
	"github.com/Aashish23092/ghost-shift-audit/store"
)

const shutdownTimeout = 15 * time.Second

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the audit HTTP API",
	Example: `  ghost-audit serve
  ghost-audit serve --port 9000 --config ./ghost-audit.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (overrides server.port)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.ServerPort = servePort
	}
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := store.Open(ctx, cfg.HistoryDBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	seed, err := store.LoadRosterFile(cfg.RosterFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		logger.Warn().Str("file", cfg.RosterFile).Msg("Roster file not found, starting with an empty roster")
	}
	roster := store.NewRosterStore(seed)
	history := store.NewHistoryStore(db, cfg.HistoryRetention)
	analytics := store.NewAnalyticsStore(db)

	limiter, closeLimiter := newLimiter(ctx, cfg, logger)
	defer closeLimiter()

	deps := service.AuditDeps{
		PDF:      service.NewPDFProcessor(),
		Primary:  client.NewPaddleClient(cfg.PaddleOCRURL, logger),
		Fallback: client.NewTesseractClient(cfg.TesseractDataPath, logger),
		QR:       client.NewQRReader(),
		Roster:   roster,
		History:  history,
		Tracker:  analytics,
	}
	if cfg.GeminiEnabled() {
		verifier, err := client.NewGeminiVerifier(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Gemini verification disabled")
		} else {
			deps.Verifier = verifier
		}
	}

	auditService := service.NewAuditService(service.NewReconciler(cfg.RuleConfig()), deps, logger)

	router := handler.NewRouter(handler.RouterConfig{
		Audit:          handler.NewAuditHandler(auditService, cfg.MaxFileSize),
		Roster:         handler.NewRosterHandler(roster),
		History:        handler.NewHistoryHandler(history),
		Analytics:      handler.NewAnalyticsHandler(analytics, cfg.AnalyticsSecret),
		Health:         handler.NewHealthHandler(limiter, deps.Verifier != nil),
		Limiter:        limiter,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	logger.Info().
		Str("port", cfg.ServerPort).
		Int("workers", len(roster.List())).
		Bool("gemini", deps.Verifier != nil).
		Msg("Ghost Shift Audit service started")

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped unexpectedly: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info().Msg("Server stopped")
	return nil
}

// newLimiter uses Redis when configured and reachable, otherwise an
// in-process limiter.
func newLimiter(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (middleware.Limiter, func()) {
	if cfg.RedisAddr == "" {
		return middleware.NewMemoryLimiter(cfg.RateLimit, cfg.RateWindow), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, using in-memory rate limiter")
		_ = rdb.Close()
		return middleware.NewMemoryLimiter(cfg.RateLimit, cfg.RateWindow), func() {}
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("Using Redis rate limiter")
	return middleware.NewRedisLimiter(rdb, cfg.RateLimit, cfg.RateWindow), func() { _ = rdb.Close() }
}
