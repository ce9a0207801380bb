package config

import (
	"fmt"
	"path"
	"time"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/env"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	PortEnv        = "PORT"
	DatabaseUrlEnv = "DATABASE_URL"
	RootPathEnv    = "ROOT_PATH"
	LogLevelEnv    = "LOG_LEVEL"
	LogFormatEnv   = "LOG_FORMAT"
	RedisUrlEnv    = "REDIS_URL"

	CatalogCacheSizeEnv = "CATALOG_CACHE_SIZE"
	CatalogCacheTTLEnv  = "CATALOG_CACHE_TTL"
	RequestTimeoutEnv   = "REQUEST_TIMEOUT"
	AuthSessionTTLEnv   = "AUTH_SESSION_TTL"
	CookieSecureEnv     = "COOKIE_SECURE"
	BcryptCostEnv       = "AUTH_BCRYPT_COST"
)

type CatalogConfiguration struct {
	CacheSize int
	CacheTTL  time.Duration
}

type AuthConfiguration struct {
	SessionTTL   time.Duration
	CookieSecure bool
	BcryptCost   int
}

type Config struct {
	Logger *zap.Logger

	Port           int
	DatabaseURL    string
	MigrationsPath string
	RequestTimeout time.Duration

	// RedisURL is optional. When empty, player name frequencies live in Postgres.
	RedisURL string

	Catalog CatalogConfiguration
	Auth    AuthConfiguration
}

func Load() (Config, error) {
	logger, err := NewLogger(
		env.GetStringOrDefault(LogLevelEnv, "info"),
		env.GetStringOrDefault(LogFormatEnv, "json"),
	)
	if err != nil {
		return Config{}, err
	}

	port := env.MustGetInt(PortEnv)
	dbURL := env.MustGetString(DatabaseUrlEnv)

	rootPath := env.MustGetString(RootPathEnv)
	migrationsPath := path.Join(rootPath, "db", "migrations")

	return Config{
		Logger:         logger,
		Port:           port,
		DatabaseURL:    dbURL,
		MigrationsPath: migrationsPath,
		RequestTimeout: env.GetDurationOrDefault(RequestTimeoutEnv, 10*time.Second),
		RedisURL:       env.GetStringOrDefault(RedisUrlEnv, ""),
		Catalog: CatalogConfiguration{
			CacheSize: env.GetIntOrDefault(CatalogCacheSizeEnv, 64),
			CacheTTL:  env.GetDurationOrDefault(CatalogCacheTTLEnv, 10*time.Minute),
		},
		Auth: AuthConfiguration{
			SessionTTL:   env.GetDurationOrDefault(AuthSessionTTLEnv, 30*24*time.Hour),
			CookieSecure: env.GetBoolOrDefault(CookieSecureEnv, false),
			BcryptCost:   env.GetIntOrDefault(BcryptCostEnv, 10),
		},
	}, nil
}

// NewLogger builds a json (production) or console (development) logger.
// Entries at error level and above carry the caller and a stack trace.
func NewLogger(level string, format string) (*zap.Logger, error) {
	var base zap.Config
	switch format {
	case "json":
		base = zap.NewProductionConfig()
	case "console":
		base = zap.NewDevelopmentConfig()
		base.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	default:
		return nil, fmt.Errorf("unknown log format '%s'", format)
	}

	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	base.Level = atomicLevel
	base.EncoderConfig.TimeKey = "timestamp"
	base.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	base.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	return base.Build(zap.AddStacktrace(zapcore.ErrorLevel))
}
