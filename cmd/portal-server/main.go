package main

import (
	"context"
	crypto_rand "crypto/rand"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rheumacare/portal/internal/config"
	"github.com/rheumacare/portal/internal/domain/auth"
	"github.com/rheumacare/portal/internal/domain/doctor"
	"github.com/rheumacare/portal/internal/domain/prescription"
	"github.com/rheumacare/portal/internal/platform/debounce"
	"github.com/rheumacare/portal/internal/platform/gateway"
	"github.com/rheumacare/portal/internal/platform/middleware"
	"github.com/rheumacare/portal/internal/platform/session"
	"github.com/rheumacare/portal/internal/platform/web"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "portal-server",
		Short: "RheumaCare e-prescription portal",
	}

	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the portal server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	secret, generated, err := resolveSessionSecret(cfg.SessionSecret)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve session secret")
	}
	if generated {
		// Sessions won't survive a restart with a generated secret; that is
		// acceptable in development only, and Validate enforces it.
		logger.Warn().Msg("SESSION_SECRET not set, using a random one-off key")
	}

	store := session.NewCookieStore(secret, cfg.SessionTTL(), cfg.TLSEnabled)
	gw := gateway.New(cfg.BackendURL, cfg.BackendTimeout())

	// Domain services
	authSvc := auth.NewService(gw)
	doctorSvc := doctor.NewService(gw)
	rxSvc := prescription.NewService(gw)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	renderer, err := web.NewRenderer()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse templates")
	}
	e.Renderer = renderer

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.AuthFailure(store))

	e.StaticFS("/static", web.StaticFS())
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public auth routes
	authHandler := auth.NewHandler(authSvc, store)
	authHandler.RegisterRoutes(e)

	// Signed-in pages and their JSON endpoints
	pages := e.Group("", middleware.RequireSession(store))
	api := e.Group("/api", middleware.RequireSession(store))

	rxHandler := prescription.NewHandler(rxSvc, doctorSvc, debounce.New(cfg.OpLookupDebounce()), cfg.FallbackDoctorID)
	rxHandler.RegisterRoutes(pages, api)

	// Admin panel
	admin := e.Group("/admin", middleware.RequireSession(store), middleware.RequireAdmin())
	doctorHandler := doctor.NewHandler(doctorSvc)
	doctorHandler.RegisterRoutes(admin)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("backend", cfg.BackendURL).Msg("starting server")

		var srvErr error
		if cfg.TLSEnabled {
			srvErr = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			srvErr = e.Start(addr)
		}
		if srvErr != nil && srvErr != http.ErrServerClosed {
			logger.Fatal().Err(srvErr).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// resolveSessionSecret returns the configured secret, or generates a random
// one-off key when none is set.
func resolveSessionSecret(configured string) ([]byte, bool, error) {
	if configured != "" {
		return []byte(configured), false, nil
	}
	key := make([]byte, 32)
	if _, err := crypto_rand.Read(key); err != nil {
		return nil, false, fmt.Errorf("failed to generate session secret: %w", err)
	}
	return key, true, nil
}
