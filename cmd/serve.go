package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"catalog-service/internal/handler"
	"catalog-service/internal/helper"
	mid "catalog-service/internal/middleware"
	"catalog-service/internal/repository"
	"catalog-service/internal/storage"
	"catalog-service/internal/view"
	"catalog-service/pkg/config"
	"catalog-service/pkg/database"
	"catalog-service/pkg/jwtutil"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newServeCommand(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg())
		},
	}
}

func serve(ctx context.Context, appConfig *config.Config) error {
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting "+appConfig.ServiceName,
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	db, err := database.InitDB(&appConfig.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close(db)
	log.Info("Database connection established")

	e, err := newServer(ctx, appConfig, db, prom.DefaultRegisterer, prom.DefaultGatherer)
	if err != nil {
		return err
	}
	e.Server.ReadTimeout = appConfig.Server.ReadTimeout
	e.Server.WriteTimeout = appConfig.Server.WriteTimeout

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", appConfig.Server.Port))
		errCh <- e.Start(":" + appConfig.Server.Port)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// newServer wires storage, helpers, metrics and every route onto a new echo instance
func newServer(ctx context.Context, appConfig *config.Config, db *gorm.DB, reg prom.Registerer, gatherer prom.Gatherer) (*echo.Echo, error) {
	log := logger.GetLogger()

	imageStore, err := storage.New(ctx, appConfig.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize image storage: %w", err)
	}
	log.Info("Image storage initialized", zap.String("driver", appConfig.Storage.Driver))

	renderer, err := view.NewRenderer(appConfig.Storage.ImageBaseURL)
	if err != nil {
		return nil, err
	}

	metrics := prometheus.NewMetrics(appConfig.Metrics.Prefix, reg)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	store := repository.New(db)
	combos := helper.NewCombosHelper(store)
	deps := handler.Deps{
		Store:     store,
		Images:    helper.NewImageHelper(imageStore, appConfig.Upload.MaxBytes),
		Combos:    combos,
		Converter: helper.NewConverterHelper(store, combos),
		Metrics:   metrics,
		Folder:    appConfig.Upload.Folder,
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(mid.MetricsMiddleware(metrics))
	// room for the multipart envelope around the largest accepted image
	limitKB := appConfig.Upload.MaxBytes/1024 + 1024
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", limitKB)))
	if appConfig.Server.CSRF {
		e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
			TokenLookup:    "form:_csrf",
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSecure:   appConfig.IsProduction(),
			CookieSameSite: http.SameSiteLaxMode,
			Skipper: func(c echo.Context) bool {
				p := c.Request().URL.Path
				return strings.HasPrefix(p, "/api/") || p == "/metrics" || p == "/health"
			},
		}))
	}

	if appConfig.Storage.Driver == "local" {
		e.Static(appConfig.Storage.LocalURLPath, appConfig.Storage.LocalDir)
	}

	// Routes
	e.GET("/metrics", echo.WrapHandler(prometheus.Handler(gatherer)))
	e.GET("/health", handler.HealthCheck(db))
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/Products")
	})

	products := handler.NewProductsController(deps)
	products.Register(e.Group("/Products"))
	products.Register(e.Group("/products"))

	// JSON API routes - bearer token required
	jwtUtil := jwtutil.NewJWTUtil(&appConfig.JWT)
	handler.NewAPI(deps).Register(e.Group("/api", mid.AuthMiddleware(jwtUtil, metrics)))

	return e, nil
}
