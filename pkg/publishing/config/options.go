package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wepublish/wepublish-api/pkg/publishing/events"
)

// WithPort sets the HTTP listen port.
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return errors.New("empty port")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the deployment environment. "production" rejects the
// development JWT secret.
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return errors.New("empty environment")
		}
		c.Environment = env
		return nil
	}
}

// WithLogLevel takes a slog level name such as "debug" or "warn".
func WithLogLevel(level string) Option {
	return func(c *ServerConfig) error {
		c.LogLevel = level
		return nil
	}
}

// WithDatabase selects the item repository. url is ignored for memory.
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		switch dbType {
		case DatabaseMemory:
			url = ""
		case DatabasePostgres:
			if url == "" {
				return errors.New("postgres needs a connection URL")
			}
		default:
			return fmt.Errorf("unknown database type %q", dbType)
		}
		c.DatabaseType, c.DatabaseURL = dbType, url
		return nil
	}
}

// WithDatabaseSchema sets the postgres search_path.
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = strings.TrimSpace(schema)
		return nil
	}
}

// WithJWTSecret sets the HS256 key bearer tokens are verified with.
func WithJWTSecret(secret string) Option {
	return func(c *ServerConfig) error {
		if secret == "" {
			return errors.New("empty jwt secret")
		}
		c.JWTSecret = secret
		return nil
	}
}

// WithPreview sets the preview token key and the website preview links
// point at. An empty secret falls back to the JWT secret.
func WithPreview(secret, baseURL string) Option {
	return func(c *ServerConfig) error {
		c.PreviewSecret = secret
		c.PreviewBaseURL = baseURL
		return nil
	}
}

// WithRedis caches public lookups. A zero ttl keeps the default.
func WithRedis(url string, ttl time.Duration) Option {
	return func(c *ServerConfig) error {
		if url == "" {
			return errors.New("empty redis URL")
		}
		c.RedisURL = url
		if ttl > 0 {
			c.CacheTTL = ttl
		}
		return nil
	}
}

// WithAMQP sends lifecycle events to RabbitMQ. Exchange and routing key
// default to the configured ones.
func WithAMQP(cfg events.Config) Option {
	return func(c *ServerConfig) error {
		if cfg.URL == "" {
			return errors.New("empty amqp URL")
		}
		if cfg.Exchange == "" {
			cfg.Exchange = c.AMQP.Exchange
		}
		if cfg.RoutingKey == "" {
			cfg.RoutingKey = c.AMQP.RoutingKey
		}
		c.AMQP = cfg
		return nil
	}
}

// WithArchiveURL enables the snapshot archive. See ParseArchiveURL for the
// accepted forms.
func WithArchiveURL(raw string) Option {
	return func(c *ServerConfig) error {
		archive, err := ParseArchiveURL(raw)
		if err != nil {
			return err
		}
		c.Archive = archive
		return nil
	}
}

// WithSchedulerInterval sets how often due pending revisions are promoted.
// Zero disables the scheduler.
func WithSchedulerInterval(interval time.Duration) Option {
	return func(c *ServerConfig) error {
		if interval < 0 {
			return fmt.Errorf("negative scheduler interval %s", interval)
		}
		c.SchedulerInterval = interval
		return nil
	}
}

// WithEventLogging toggles the sink logging every lifecycle event.
func WithEventLogging(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableEventLogging = enabled
		return nil
	}
}
