package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/balanoilmart/ledger_backend/config"
	"github.com/balanoilmart/ledger_backend/middlewares"
	"github.com/balanoilmart/ledger_backend/models"
	"github.com/balanoilmart/ledger_backend/sqlstore"
	"github.com/balanoilmart/ledger_backend/storeclient"
	"github.com/balanoilmart/ledger_backend/utils"
	"github.com/bsm/redislock"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func newCorsConfig(s *config.Settings) cors.Config {
	corsConfig := cors.DefaultConfig()
	if s.IsProduction() {
		if origins := utils.SplitAndTrim(s.CorsAllowedOrigins); len(origins) > 0 {
			corsConfig.AllowOrigins = origins
		} else {
			corsConfig.AllowOrigins = []string{}
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PATCH", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", middlewares.CorrelationIdHeader, "x-session-id", "x-user-name")
	corsConfig.AddExposeHeaders("Content-Length", middlewares.CorrelationIdHeader)
	corsConfig.AllowCredentials = true
	return corsConfig
}

func newRouter(app *App, s *config.Settings, rdb *redis.Client, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.CorrelationIdMiddleware())
	r.Use(middlewares.ReadinessMiddleware(app.Ready))
	r.Use(cors.New(newCorsConfig(s)))
	if s.RateLimitEnabled {
		r.Use(middlewares.NewRateLimiter(rdb, s.RateLimitMax, s.RateLimitWindow).RateLimitMiddleware)
	}
	r.Use(middlewares.SessionMiddleware())
	r.Use(middlewares.ErrorLogger(logger))
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	api := r.Group("/api")
	registerLedgerRoutes(api, app, models.AccountKindManufacturer)
	registerLedgerRoutes(api, app, models.AccountKindCustomer)
	registerSalesRoutes(api, app)
	registerInventoryRoutes(api, app)
	registerDashboardRoutes(api, app)
	r.NoRoute(customNotFoundHandler)
	return r
}

// openStore builds the Store adapter selected by STORE_MODE.
// The returned closer releases the database connection, if any.
func openStore(ctx context.Context, s *config.Settings, rdb *redis.Client, locker *redislock.Client, logger *logrus.Logger) (models.Store, func(), error) {
	if s.StoreMode == config.StoreModeRest {
		client, err := storeclient.New(s.StoreURL, s.StoreTimeout)
		if err != nil {
			return nil, nil, err
		}
		logger.WithFields(logrus.Fields{"store": s.StoreURL}).Info("using REST store")
		return client, func() {}, nil
	}

	db, err := config.ConnectDatabaseWithRetry(ctx, s)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { closeDatabase(db) }
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		if err := models.MigrateTable(db); err != nil {
			closeDB()
			return nil, nil, err
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}
	logger.WithFields(logrus.Fields{"database": s.DBName}).Info("using embedded MySQL store")
	return sqlstore.New(db, rdb, locker, s.CacheTTL), closeDB, nil
}

func closeDatabase(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil && sqlDB != nil {
		_ = sqlDB.Close()
	}
}

func main() {
	settings := config.LoadSettings()
	config.SetLogLevel(settings.LogLevel)
	logger := config.GetLogger()
	if settings.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	rdb, locker, err := config.ConnectRedisWithRetry(sigCtx, settings.RedisAddress)
	if err != nil {
		log.Fatal(err)
	}
	store, closeStore, err := openStore(sigCtx, settings, rdb, locker, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	app := NewApp(store, settings)
	srv := &http.Server{
		Addr:    ":" + settings.Port,
		Handler: newRouter(app, settings, rdb, logger),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// until the first snapshot is taken, app endpoints answer 503
	go func() {
		if err := app.Load(sigCtx); err != nil {
			config.LogError(logger, "server.go", "main", "initial load", nil, err)
		}
		app.MarkReady()
		logger.WithFields(logrus.Fields{"port": settings.Port}).Info("ledger gateway ready")
	}()

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
