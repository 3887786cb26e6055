// Package bootstrap wires together database, cache and seeding at startup.
package bootstrap

import (
	"fmt"

	"glimpse/internal/cache"
	"glimpse/internal/config"
	"glimpse/internal/database"
	"glimpse/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	Migrate  bool
	SeedDemo bool
}

// InitRuntime connects to DB and Redis, applies migrations and optionally
// seeds demo data. The Redis client may be nil when the cache is unreachable;
// the application then runs without caching.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.Migrate {
		if err := database.Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("database migration failed: %w", err)
		}
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemo {
		seeder := seed.NewSeeder(db)
		if err := seeder.Seed(seed.Options{NumUsers: 20, NumPosts: 60}); err != nil {
			return nil, nil, fmt.Errorf("demo seeding failed: %w", err)
		}
	}

	return db, r, nil
}
