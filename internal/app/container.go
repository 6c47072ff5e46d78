package app

import (
	"context"
	"log"
	"time"

	"field-match/internal/config"
	"field-match/internal/database"
	dbpostgres "field-match/internal/database/postgres"
	"field-match/internal/infrastructure/cache"
	"field-match/internal/repository"
)

// Container holds the optional infrastructure tiers. Both degrade cleanly:
// without postgres the archive tier is skipped, without redis the cache and
// sweep lock bypass.
type Container struct {
	Config config.Config
	DB     database.DB
	Cache  *cache.Redis
}

func NewContainer(cfg config.Config, logger *log.Logger) (*Container, error) {
	c := &Container{Config: cfg}

	if cfg.Database.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		db, err := dbpostgres.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := repository.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		c.DB = db
	} else if logger != nil {
		logger.Printf("App | archive tier disabled | reason=no_db_host")
	}

	c.Cache = cache.NewRedis(cfg.Redis, logger)
	return c, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
