package cliparse

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Store types
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Output formats
const (
	OutputText = "text"
	OutputJSON = "json"
)

type Config struct {
	StoreType   string
	DatabaseURL string
	RedisURL    string
	RedisPrefix string
	AMQPURL     string
	AMQPQueue   string
	LogLevel    string
	Output      string
	EnvFile     string
}

// ParseFlags parses global flags and returns the config plus the remaining
// arguments (the command and its own flags).
func ParseFlags(args []string) (Config, []string, error) {
	var cfg Config

	flags := pflag.NewFlagSet("pollvote", pflag.ContinueOnError)
	flags.SetInterspersed(false) // stop at the command name
	flags.SetOutput(io.Discard)

	// Storage (can be CLI args or env)
	flags.StringVarP(&cfg.StoreType, "store", "t", "", "Store type (memory, sqlite, postgres, redis)")
	flags.StringVarP(&cfg.DatabaseURL, "database-url", "d", "", "Database URL or sqlite file path")
	flags.StringVar(&cfg.RedisURL, "redis-url", "", "Redis URL or host:port")
	flags.StringVar(&cfg.RedisPrefix, "redis-prefix", "", "Key prefix for the redis store")

	// Events
	flags.StringVar(&cfg.AMQPURL, "amqp-url", "", "AMQP broker URL for poll events (optional)")
	flags.StringVar(&cfg.AMQPQueue, "amqp-queue", "", "AMQP queue for poll events")

	flags.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVarP(&cfg.Output, "output", "o", "", "Output format (text, json)")
	flags.StringVar(&cfg.EnvFile, "env-file", ".env", "Environment file to load if present")

	if err := flags.Parse(args); err != nil {
		return Config{}, nil, err
	}

	// Variables already set in the environment win over the file
	if cfg.EnvFile != "" {
		if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil, fmt.Errorf("failed to load %s: %w", cfg.EnvFile, err)
		}
	}

	// Fall back to environment variables
	fallback(&cfg.StoreType, "STORE_TYPE", StoreSQLite)
	fallback(&cfg.RedisPrefix, "REDIS_PREFIX", "pollvote")
	fallback(&cfg.AMQPQueue, "AMQP_QUEUE", "poll-events")
	fallback(&cfg.LogLevel, "LOG_LEVEL", "info")
	fallback(&cfg.Output, "OUTPUT", OutputText)
	fallback(&cfg.AMQPURL, "AMQP_URL", "")
	fallback(&cfg.AMQPURL, "RABBITMQ_URL", "")

	switch cfg.StoreType {
	case StoreMemory:
	case StoreSQLite:
		fallback(&cfg.DatabaseURL, "DATABASE_URL", "polls.db")
	case StorePostgres:
		fallback(&cfg.DatabaseURL, "DATABASE_URL", "")
		if cfg.DatabaseURL == "" {
			return Config{}, nil, errors.New("database URL required for postgres (use -d or DATABASE_URL env)")
		}
	case StoreRedis:
		fallback(&cfg.RedisURL, "REDIS_URL", "localhost:6379")
	default:
		return Config{}, nil, fmt.Errorf("unknown store type %q", cfg.StoreType)
	}

	if cfg.Output != OutputText && cfg.Output != OutputJSON {
		return Config{}, nil, fmt.Errorf("unknown output format %q", cfg.Output)
	}

	return cfg, flags.Args(), nil
}

// fallback fills an unset value from env, then from def.
func fallback(v *string, env, def string) {
	if *v != "" {
		return
	}
	if s := os.Getenv(env); s != "" {
		*v = s
		return
	}
	*v = def
}
