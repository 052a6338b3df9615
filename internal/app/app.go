// Package app wires configuration into the catalog, engine and conversation store.
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"shopbot-backend/internal/assistant"
	"shopbot-backend/internal/catalog"
	"shopbot-backend/internal/config"
	"shopbot-backend/internal/db"
	"shopbot-backend/internal/store"
)

// LoadCatalog reads products from the configured source. Postgres is opened,
// migrated and closed again since the catalog is only read once.
func LoadCatalog(ctx context.Context, cfg config.Config, log zerolog.Logger) ([]catalog.Product, error) {
	opts := catalog.SourceOptions{FilePath: cfg.CatalogFile, Logger: log}

	kind := catalog.SourceKind(cfg.CatalogSource)
	if kind == catalog.SourcePostgres {
		database, err := db.New(cfg.DatabaseURL, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		defer database.Close()
		if cfg.DatabaseMigrate {
			if err := database.RunMigrations(ctx); err != nil {
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}
		opts.DB = database.DB
	}

	src, err := catalog.NewSource(kind, opts)
	if err != nil {
		return nil, err
	}
	products, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	log.Info().Str("source", string(kind)).Int("products", len(products)).Msg("catalog loaded")
	return products, nil
}

// NewEngine loads the catalog and the optional intent rules file.
func NewEngine(ctx context.Context, cfg config.Config, log zerolog.Logger) (*assistant.Engine, error) {
	products, err := LoadCatalog(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	opts := []assistant.EngineOption{assistant.WithLogger(log)}
	if cfg.IntentRulesFile != "" {
		rules, err := assistant.LoadRules(cfg.IntentRulesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load intent rules: %w", err)
		}
		opts = append(opts, assistant.WithClassifier(assistant.NewClassifier(rules)))
	}
	return assistant.NewEngine(products, opts...), nil
}

// NewStore opens the configured conversation store.
func NewStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	typ := store.StoreType(cfg.SessionStore)
	opts := []store.Option{store.WithTTL(cfg.SessionTTL)}
	if typ == store.StoreTypeRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}
		opts = append(opts, store.WithRedisClient(client))
	}
	return store.NewStore(typ, opts...)
}
