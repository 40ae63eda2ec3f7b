package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// tables that only ever receive INSERTs
var appendOnlyTables = []string{"ledger_entries", "sales", "stock_movements", "manufacturer_products"}

func DatabaseDSN(s *Settings) string {
	network := "tcp"
	address := fmt.Sprintf("%s:%s", s.DBHost, s.DBPort)
	// unix socket when DB_HOST is a path (e.g. /cloudsql/<CONNECTION_NAME>)
	if strings.HasPrefix(s.DBHost, "/") {
		network = "unix"
		address = s.DBHost
	}
	return fmt.Sprintf("%s:%s@%s(%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		s.DBUser,
		s.DBPassword,
		network,
		address,
		s.DBName,
	)
}

// ConnectDatabaseWithRetry connects with exponential backoff until ctx is done.
func ConnectDatabaseWithRetry(ctx context.Context, s *Settings) (*gorm.DB, error) {
	return OpenDatabaseWithRetry(ctx, DatabaseDSN(s))
}

func OpenDatabaseWithRetry(ctx context.Context, dsn string) (*gorm.DB, error) {
	var attempt int
	for {
		attempt++
		db, err := gorm.Open(mysql.Open(dsn), initConfig())
		if err == nil {
			if sqlDB, derr := db.DB(); derr == nil && sqlDB != nil {
				sqlDB.SetMaxOpenConns(intFromEnv("DB_MAX_OPEN_CONNS", 10))
				sqlDB.SetMaxIdleConns(intFromEnv("DB_MAX_IDLE_CONNS", 5))
				sqlDB.SetConnMaxLifetime(time.Duration(intFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second)
			}
			if pluginErr := db.Use(otelgorm.NewPlugin()); pluginErr != nil {
				log.Printf("db connected but failed to install otelgorm plugin: %v", pluginErr)
			}
			if pluginErr := db.Use(NewAppendOnlyGuardPlugin(appendOnlyTables...)); pluginErr != nil {
				return nil, pluginErr
			}
			log.Printf("connected to database (attempt=%d)", attempt)
			return db, nil
		}

		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		log.Printf("failed to connect database (attempt=%d): %v; retrying in %s", attempt, err, sleep)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect database: %w", ctx.Err())
		case <-time.After(sleep):
		}
	}
}

func initConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         initLog(),
		NamingStrategy: initNamingStrategy(),
	}
}

func initLog() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			Colorful:      false,
			LogLevel:      logger.Error,
			SlowThreshold: time.Second,
		},
	)
}

func initNamingStrategy() *schema.NamingStrategy {
	return &schema.NamingStrategy{
		SingularTable: false,
		TablePrefix:   "",
	}
}
