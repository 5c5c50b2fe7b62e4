package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Env  string
	Port int

	// Store selects the repository backend: "postgres" or "memory".
	Store string
	DBURL string
	// MigrateOnStart applies embedded migrations before serving.
	MigrateOnStart bool

	// RedisAddr empty means the in-process cache is used.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	BcryptCost   int
	MaxBodyBytes int64
	CORSOrigins  []string

	TracingEnabled   bool
	OTLPEndpoint     string
	ServiceName      string
	TraceSampleRatio float64

	SeedEmail     string
	SeedPassword  string
	SeedFirstName string
	SeedLastName  string
}

// LoadDotEnv reads .env into the process environment when present.
// Variables already set win over the file.
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

func Load() Config {
	return Config{
		Env:            getEnv("APP_ENV", "dev"),
		Port:           getEnvInt("PORT", 5000),
		Store:          strings.ToLower(getEnv("STORE", StorePostgres)),
		DBURL:          getEnv("DATABASE_URL", buildDBURL()),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 5*time.Second),

		BcryptCost:   getEnvInt("BCRYPT_COST", 10),
		MaxBodyBytes: int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "*")),

		TracingEnabled:   getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		ServiceName:      getEnv("OTEL_SERVICE_NAME", "courseapi"),
		TraceSampleRatio: getEnvFloat("TRACE_SAMPLE_RATIO", 1),

		SeedEmail:     getEnv("SEED_EMAIL", ""),
		SeedPassword:  getEnv("SEED_PASSWORD", ""),
		SeedFirstName: getEnv("SEED_FIRST_NAME", "Seed"),
		SeedLastName:  getEnv("SEED_LAST_NAME", "User"),
	}
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "courseapi")
	pass := getEnv("DB_PASSWORD", "courseapi")
	name := getEnv("DB_NAME", "courseapi")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)
		if err != nil {
			return fallback
		}
		return num
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fallback
		}
		return f
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return b
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fallback
		}
		return d
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
