package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bitbucket.org/sxnics/sxnics_backend/config"
	"bitbucket.org/sxnics/sxnics_backend/models"
	"bitbucket.org/sxnics/sxnics_backend/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Shutdown coordination.
	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so Cloud Run considers the revision healthy.
	// Until DB/Redis are ready, we return 503 for app endpoints.
	r := gin.New()
	// Correlation IDs: generate once per request and attach to context.
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})
	r.Use(func(c *gin.Context) {
		// Always allow Cloud Run startup probe.
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		// Gate app endpoints on dependency readiness. Redis is optional.
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// Production-safe CORS:
	// - In production, require explicit allowlist via CORS_ALLOWED_ORIGINS (comma-separated).
	// - In non-production, allow all (developer convenience).
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			// Safer default: deny all if not configured in production.
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true

	r.Use(cors.New(corsConfig))
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	storage := utils.NewGCSStorage()
	registerRoutes(r, storage)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "route not found"})
	})

	// Start listening immediately (Cloud Run startup probe is TCP based).
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// IMPORTANT: AutoMigrate can run DDL that blocks tables and causes 504/502 timeouts.
	// Allow disabling migrations on startup (run them as a separate job instead).
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port, "/")

	// Block until shutdown or server error.
	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Drain HTTP requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	// Close Redis (best-effort).
	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

func registerRoutes(r *gin.Engine, storage utils.ObjectStorage) {
	// Catalog lookups (read-only, redis cached).
	r.GET("/shop/colors", listColorsHandler())
	r.GET("/shop/sizes", listSizesHandler())
	r.GET("/shop/item-types", listShopItemTypesHandler())

	// Shop items with per-color / per-size inventory.
	r.GET("/shop/items", listShopItemsHandler())
	r.GET("/shop/items/:id", getShopItemHandler())
	r.POST("/shop/items", createShopItemHandler(storage))
	r.PUT("/shop/items/:id", editShopItemHandler(storage))
	// Legacy admin form posts the id in the body (shop_item_id).
	r.POST("/shop/items/edit", editShopItemHandler(storage))
	r.DELETE("/shop/items/:id", deleteShopItemHandler(storage))

	// Orders.
	r.GET("/shop/orders", listOrdersHandler())
	r.GET("/shop/orders/export", exportOrdersHandler())
	r.GET("/shop/orders/:id", getOrderHandler())
	r.PUT("/shop/orders/:id/status", updateOrderStatusHandler())

	// Content entities.
	r.GET("/artists", listArtistsHandler())
	r.GET("/artists/:id", getArtistHandler())
	r.POST("/artists", createArtistHandler(storage))
	r.PUT("/artists/:id", editArtistHandler(storage))
	r.DELETE("/artists/:id", deleteArtistHandler(storage))

	r.GET("/episodes", listEpisodesHandler())
	r.GET("/episodes/merged", listMergedEpisodesHandler())
	r.GET("/episodes/:id", getEpisodeHandler())
	r.POST("/episodes", createEpisodeHandler(storage))
	r.PUT("/episodes/:id", editEpisodeHandler(storage))
	r.DELETE("/episodes/:id", deleteEpisodeHandler(storage))

	r.GET("/video-episodes", listVideoEpisodesHandler())
	r.GET("/video-episodes/:id", getVideoEpisodeHandler())
	r.POST("/video-episodes", createVideoEpisodeHandler(storage))
	r.PUT("/video-episodes/:id", editVideoEpisodeHandler(storage))
	r.DELETE("/video-episodes/:id", deleteVideoEpisodeHandler(storage))

	r.GET("/top-picks", listTopPicksHandler())
	r.GET("/top-picks/:id", getTopPickHandler())
	r.POST("/top-picks", createTopPickHandler(storage))
	r.PUT("/top-picks/:id", editTopPickHandler(storage))
	r.DELETE("/top-picks/:id", deleteTopPickHandler(storage))

	r.GET("/releases", listReleasesHandler())
	r.GET("/releases/:id", getReleaseHandler())
	r.POST("/releases", createReleaseHandler(storage))
	r.PUT("/releases/:id", editReleaseHandler(storage))
	r.DELETE("/releases/:id", deleteReleaseHandler(storage))

	r.GET("/events", listEventsHandler())
	r.GET("/events/:id", getEventHandler())
	r.POST("/events", createEventHandler(storage))
	r.PUT("/events/:id", editEventHandler(storage))
	r.DELETE("/events/:id", deleteEventHandler(storage))
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// customErrorLogger is a custom Gin middleware that logs only errors
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only log when there are errors
		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}
