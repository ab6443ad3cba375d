// Package cmdutil wires the pieces shared by the CLI commands.
package cmdutil

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/config"
	"github.com/terraconstructs/sandaran/internal/db/bunx"
	"github.com/terraconstructs/sandaran/internal/repository"
	"github.com/terraconstructs/sandaran/internal/services/iam"
)

// IAMServiceOptions controls how the CLI constructs the IAM service.
type IAMServiceOptions struct {
	// RequireSecret fails when SESSION_SECRET is unset. Commands that never
	// issue tokens use an ephemeral secret instead.
	RequireSecret bool
	Logger        logrus.FieldLogger
}

// IAMServiceBundle bundles the service with the connections it owns so
// callers can reuse them for other repositories.
type IAMServiceBundle struct {
	Service  iam.Service
	DB       *bun.DB
	Users    repository.UserRepository
	Sessions iam.SessionStore
	Redis    *redis.Client
}

// Close releases the underlying connections.
func (b *IAMServiceBundle) Close() {
	if b == nil {
		return
	}
	if b.Redis != nil {
		_ = b.Redis.Close()
	}
	if b.DB != nil {
		_ = bunx.Close(b.DB)
	}
}

// UsesDatabaseSessions reports whether sessions live in the SQL database.
func (b *IAMServiceBundle) UsesDatabaseSessions() bool {
	return b.Redis == nil
}

// NewIAMServiceBundle connects to the database, picks the session store
// configured by SESSION_STORE and returns a ready IAM service.
func NewIAMServiceBundle(ctx context.Context, cfg *config.Config, opts IAMServiceOptions) (*IAMServiceBundle, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	dbOpts := bunx.Options{MaxConnections: cfg.MaxDBConnections}
	if cfg.Debug {
		dbOpts.Logger = logger
	}
	db, err := bunx.NewDB(cfg.DatabaseURL, dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	bundle := &IAMServiceBundle{
		DB:    db,
		Users: repository.NewBunUserRepository(db),
	}

	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			bundle.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		bundle.Redis = client
		bundle.Sessions = iam.NewRedisSessionStore(client)
	default:
		bundle.Sessions = repository.NewBunSessionRepository(db)
	}

	secret := cfg.Session.Secret
	if secret == "" {
		if opts.RequireSecret {
			bundle.Close()
			return nil, fmt.Errorf("SESSION_SECRET is required")
		}
		secret, _, err = auth.GenerateSessionToken()
		if err != nil {
			bundle.Close()
			return nil, err
		}
	}
	signer, err := auth.NewTokenSigner(secret)
	if err != nil {
		bundle.Close()
		return nil, err
	}

	svc, err := iam.NewService(iam.Dependencies{
		Users:    bundle.Users,
		Sessions: bundle.Sessions,
		Signer:   signer,
		Logger:   logger,
	}, iam.Options{SessionTTL: cfg.Session.TTL})
	if err != nil {
		bundle.Close()
		return nil, fmt.Errorf("failed to create IAM service: %w", err)
	}
	bundle.Service = svc
	return bundle, nil
}
