package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/stockroom/pkg/logger"
)

// Backend names accepted in STOCKROOM_STORE.
const (
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

// Config is read from the environment (and .env) with pkg/config.
type Config struct {
	Store     string `env:"STOCKROOM_STORE" envDefault:"sqlite"`
	CacheSize int    `env:"STOCKROOM_CACHE_SIZE" envDefault:"0"`
	PlansFile string `env:"STOCKROOM_PLANS_FILE"`
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"warn"`
}

func (c Config) backend() (string, error) {
	name := strings.ToLower(strings.TrimSpace(c.Store))
	switch name {
	case BackendSQLite, BackendMemory, BackendRedis, BackendMongo, BackendPostgres, BackendS3:
		return name, nil
	case "pg", "postgresql":
		return BackendPostgres, nil
	case "mongodb":
		return BackendMongo, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, c.Store)
}

func (c Config) logger(out io.Writer) (*slog.Logger, error) {
	level, err := logger.ParseLevel(c.LogLevel, slog.LevelWarn)
	if err != nil {
		return nil, err
	}
	return logger.New(
		logger.WithEnvironment(c.AppEnv, "stockroom"),
		logger.WithLevel(level),
		logger.WithOutput(out),
	), nil
}
