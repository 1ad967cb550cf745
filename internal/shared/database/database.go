package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"seatly/internal/shared/config"
	"seatly/pkg/logger"
)

// DB bundles the persistent stores the application depends on.
type DB struct {
	PostgreSQL *gorm.DB
	Redis      *redis.Client
}

func InitDB(cfg *config.Config, log *logger.Logger) (*DB, error) {
	pg, err := initPostgreSQL(cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres init: %w", err)
	}
	log.Info("connected to PostgreSQL", "host", cfg.Database.Host, "db", cfg.Database.Name)

	rdb, err := initRedis(cfg)
	if err != nil {
		return nil, fmt.Errorf("redis init: %w", err)
	}
	log.Info("connected to Redis", "addr", cfg.Redis.Addr)

	return &DB{PostgreSQL: pg, Redis: rdb}, nil
}

func initPostgreSQL(cfg *config.Config) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.IsDevelopment() {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

func initRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

func (d *DB) Close() error {
	var firstErr error
	if d.PostgreSQL != nil {
		if sqlDB, err := d.PostgreSQL.DB(); err == nil {
			if err := sqlDB.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// HealthCheck pings both stores.
func (d *DB) HealthCheck(ctx context.Context) map[string]string {
	status := map[string]string{
		"postgresql": "ok",
		"redis":      "ok",
	}
	if sqlDB, err := d.PostgreSQL.DB(); err != nil {
		status["postgresql"] = err.Error()
	} else if err := sqlDB.PingContext(ctx); err != nil {
		status["postgresql"] = err.Error()
	}
	if err := d.Redis.Ping(ctx).Err(); err != nil {
		status["redis"] = err.Error()
	}
	return status
}

func (d *DB) GetPostgreSQL() *gorm.DB {
	return d.PostgreSQL
}

func (d *DB) GetRedisClient() *redis.Client {
	return d.Redis
}
