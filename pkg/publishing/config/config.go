package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/wepublish/wepublish-api/pkg/publishing"
	"github.com/wepublish/wepublish-api/pkg/publishing/archive"
	"github.com/wepublish/wepublish-api/pkg/publishing/cache"
	"github.com/wepublish/wepublish-api/pkg/publishing/events"
	"github.com/wepublish/wepublish-api/pkg/publishing/repo/memory"
	repopg "github.com/wepublish/wepublish-api/pkg/publishing/repo/postgres"
	fsstorage "github.com/wepublish/wepublish-api/pkg/publishing/storage/fs"
	memorystorage "github.com/wepublish/wepublish-api/pkg/publishing/storage/memory"
	s3storage "github.com/wepublish/wepublish-api/pkg/publishing/storage/s3"
)

const (
	DatabaseMemory   = "memory"
	DatabasePostgres = "postgres"

	ArchiveNone   = ""
	ArchiveMemory = "memory"
	ArchiveFS     = "fs"
	ArchiveS3     = "s3"

	developmentSecret = "development-secret"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:               "8080",
		Environment:        "development",
		LogLevel:           "info",
		DatabaseType:       DatabaseMemory,
		JWTSecret:          developmentSecret,
		PreviewBaseURL:     "http://localhost:3000",
		CacheTTL:           cache.DefaultTTL,
		AMQP:               events.Config{Exchange: "wepublish", RoutingKey: "items"},
		SchedulerInterval:  time.Minute,
		EnableEventLogging: true,
	}
}

// ServerConfig represents configuration for the publishing server
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing
	LogLevel    string // debug, info, warn, error

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"
	DBSchema     string // Postgres schema to use (default: search_path of the role)

	// Auth and preview links
	JWTSecret      string
	PreviewSecret  string // falls back to JWTSecret
	PreviewBaseURL string

	// Optional integrations, disabled when empty
	RedisURL string
	CacheTTL time.Duration
	AMQP     events.Config
	Archive  ArchiveConfig

	SchedulerInterval  time.Duration // 0 disables scheduled publishing
	EnableEventLogging bool
}

// ArchiveConfig selects where item snapshots are written
type ArchiveConfig struct {
	Type    string // "", "memory", "fs", "s3"
	BaseDir string
	S3      s3storage.Config
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != DatabaseMemory && c.DatabaseType != DatabasePostgres {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == DatabasePostgres && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.Environment == "production" && c.JWTSecret == developmentSecret {
		return errors.New("jwt_secret must be set in production")
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive, got %s", c.CacheTTL)
	}
	if c.SchedulerInterval < 0 {
		return fmt.Errorf("scheduler_interval must not be negative, got %s", c.SchedulerInterval)
	}

	switch c.Archive.Type {
	case ArchiveNone, ArchiveMemory:
	case ArchiveFS:
		if c.Archive.BaseDir == "" {
			return errors.New("archive base directory is required for fs archive")
		}
	case ArchiveS3:
		if c.Archive.S3.Bucket == "" {
			return errors.New("archive bucket is required for s3 archive")
		}
	default:
		return fmt.Errorf("unsupported archive type: %s", c.Archive.Type)
	}

	if c.AMQP.URL != "" && c.AMQP.Exchange == "" {
		return errors.New("amqp exchange is required when amqp_url is set")
	}

	return nil
}

// SlogLevel parses LogLevel
func (c *ServerConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Roles returns the roles bearer tokens may reference
func (c *ServerConfig) Roles() map[string]publishing.Role {
	return publishing.DefaultRoles()
}

func (c *ServerConfig) previewSecret() []byte {
	if c.PreviewSecret != "" {
		return []byte(c.PreviewSecret)
	}
	return []byte(c.JWTSecret)
}

// Services holds the per-kind services and the resources they share.
type Services struct {
	Articles   publishing.Service
	Pages      publishing.Service
	Repository publishing.Repository
	Archive    *archive.Sink

	closers []func() error
}

// Close releases connections opened by BuildServices
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildServices creates the article and page services from the server configuration
func (c *ServerConfig) BuildServices(ctx context.Context, logger *slog.Logger) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}
	services := &Services{}

	repo, closeRepo, err := c.buildRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}
	services.Repository = repo
	if closeRepo != nil {
		services.closers = append(services.closers, closeRepo)
	}

	signer, err := publishing.NewPreviewSigner(c.previewSecret(), nil)
	if err != nil {
		services.Close()
		return nil, fmt.Errorf("failed to build preview signer: %w", err)
	}

	options := []publishing.Option{
		publishing.WithRepository(repo),
		publishing.WithPreviewSigner(signer),
		publishing.WithPreviewBaseURL(c.PreviewBaseURL),
		publishing.WithLogger(logger),
	}

	if c.EnableEventLogging {
		options = append(options, publishing.WithEventSink(publishing.NewLoggingEventSink(logger)))
	}

	if c.AMQP.URL != "" {
		publisher, err := events.NewRabbitMQ(c.AMQP, logger)
		if err != nil {
			services.Close()
			return nil, fmt.Errorf("failed to build event publisher: %w", err)
		}
		services.closers = append(services.closers, publisher.Close)
		options = append(options, publishing.WithEventSink(publisher))
	}

	if c.Archive.Type != ArchiveNone {
		store, err := c.buildArchiveStore()
		if err != nil {
			services.Close()
			return nil, fmt.Errorf("failed to build archive store: %w", err)
		}
		services.Archive = archive.NewSink(store, nil)
		options = append(options, publishing.WithEventSink(services.Archive))
	}

	var client *redis.Client
	if c.RedisURL != "" {
		opts, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			services.Close()
			return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
		}
		client = redis.NewClient(opts)
		services.closers = append(services.closers, client.Close)
	}

	build := func(kind publishing.Kind) (publishing.Service, error) {
		kindOptions := append([]publishing.Option{publishing.WithKind(kind)}, options...)
		if client == nil {
			return publishing.New(kindOptions...)
		}

		lookups := cache.New(client, kind, cache.WithTTL(c.CacheTTL), cache.WithLogger(logger))
		svc, err := publishing.New(append(kindOptions, publishing.WithEventSink(lookups))...)
		if err != nil {
			return nil, err
		}
		return lookups.Wrap(svc), nil
	}

	if services.Articles, err = build(publishing.KindArticle); err != nil {
		services.Close()
		return nil, fmt.Errorf("failed to build article service: %w", err)
	}
	if services.Pages, err = build(publishing.KindPage); err != nil {
		services.Close()
		return nil, fmt.Errorf("failed to build page service: %w", err)
	}

	return services, nil
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository(ctx context.Context) (publishing.Repository, func() error, error) {
	switch c.DatabaseType {
	case DatabaseMemory:
		return memory.New(), nil, nil
	case DatabasePostgres:
		pool, err := c.newPool(ctx)
		if err != nil {
			return nil, nil, err
		}
		return repopg.NewWithPool(pool), func() error { pool.Close(); return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

func (c *ServerConfig) newPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema := c.DBSchema; schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	return pool, nil
}

// PingPostgres verifies connectivity to Postgres with the configured schema.
func (c *ServerConfig) PingPostgres(ctx context.Context) error {
	if c.DatabaseURL == "" {
		return errors.New("database_url is required")
	}
	pool, err := c.newPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// buildArchiveStore creates a BlobStore based on the archive configuration
func (c *ServerConfig) buildArchiveStore() (archive.BlobStore, error) {
	switch c.Archive.Type {
	case ArchiveMemory:
		return memorystorage.New(), nil
	case ArchiveFS:
		return fsstorage.New(fsstorage.Config{BaseDir: c.Archive.BaseDir})
	case ArchiveS3:
		return s3storage.New(c.Archive.S3)
	default:
		return nil, fmt.Errorf("unsupported archive type: %s", c.Archive.Type)
	}
}
