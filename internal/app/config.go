package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/careerladder-backend/internal/data/db"
	"github.com/yungbote/careerladder-backend/internal/platform/envutil"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
)

type Config struct {
	Env  string
	Addr string

	DBDriver string
	DBDSN    string
	// DBSlowQuery is the gorm slow-query log threshold.
	DBSlowQuery    time.Duration
	DBMaxOpenConns int

	JWTSecretKey string
	JWTIssuer    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSOrigins []string
	RateLimit   int
	RateWindow  time.Duration

	ThreadIdleTimeout time.Duration
	SweeperSpec       string
	SweeperBatch      int

	AggregateSlowWrite time.Duration

	MetricsAddr string

	OtelEnabled     bool
	OtelServiceName string
	OtelEndpoint    string
	OtelHeaders     string
	OtelInsecure    bool
	OtelSampleRatio float64
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig(log *logger.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil && log != nil {
		log.Debug("no .env file loaded", "error", err)
	}
	cfg := Config{
		Env:  envutil.String("APP_ENV", "development"),
		Addr: envutil.String("HTTP_ADDR", ":8080"),

		DBDriver:       strings.ToLower(envutil.String("DB_DRIVER", db.DriverPostgres)),
		DBDSN:          envutil.String("DB_DSN", ""),
		DBSlowQuery:    envutil.Duration("DB_SLOW_QUERY", time.Second),
		DBMaxOpenConns: envutil.Int("DB_MAX_OPEN_CONNS", 20),

		JWTSecretKey: envutil.String("JWT_SECRET_KEY", ""),
		JWTIssuer:    envutil.String("JWT_ISSUER", ""),

		RedisAddr:     envutil.String("REDIS_ADDR", ""),
		RedisPassword: envutil.String("REDIS_PASSWORD", ""),
		RedisDB:       envutil.Int("REDIS_DB", 0),

		CORSOrigins: envutil.List("CORS_ORIGINS", nil),
		RateLimit:   envutil.Int("RATE_LIMIT_WRITES", 60),
		RateWindow:  envutil.Duration("RATE_LIMIT_WINDOW", time.Minute),

		ThreadIdleTimeout: envutil.Duration("THREAD_IDLE_TIMEOUT", 14*24*time.Hour),
		SweeperSpec:       envutil.String("THREAD_SWEEPER_SPEC", "*/15 * * * *"),
		SweeperBatch:      envutil.Int("THREAD_SWEEPER_BATCH", 200),

		AggregateSlowWrite: envutil.Duration("AGGREGATE_SLOW_WRITE", 500*time.Millisecond),

		MetricsAddr: envutil.String("METRICS_ADDR", ":9090"),

		OtelEnabled:     envutil.Bool("OTEL_ENABLED", false),
		OtelServiceName: envutil.String("OTEL_SERVICE_NAME", "careerladder-api"),
		OtelEndpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OtelHeaders:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
		OtelInsecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		OtelSampleRatio: float64(envutil.Int("OTEL_SAMPLE_PERCENT", 100)) / 100,
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if c.DBDriver != db.DriverPostgres && c.DBDriver != db.DriverSQLite {
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", db.DriverPostgres, db.DriverSQLite, c.DBDriver)
	}
	if c.JWTSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	return nil
}
