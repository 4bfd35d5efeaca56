package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env    string
	Port   string
	DBURL  string
	Origin string // CORS

	UploadDir  string
	UploadBase string // public prefix for stored attachments
	PageSize   int
	RateLimit  int // requests per minute per IP

	// client side (issuectl)
	APIBaseURL    string
	HTTPTimeout   time.Duration
	QueryCacheTTL time.Duration
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil && n > 0 {
		return n
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(k)); err == nil && d > 0 {
		return d
	}
	return def
}

// Load reads the environment, after merging a .env file from the working
// directory if one exists. Variables already set win over the file.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Env:    env("APP_ENV", "dev"),
		Port:   env("API_PORT", "8080"),
		DBURL:  env("DB_DSN", "file:issues.db"),
		Origin: env("CORS_ORIGIN", "http://localhost:3000"),

		UploadDir:  env("UPLOAD_DIR", "uploads"),
		UploadBase: env("UPLOAD_BASE_URL", "/uploads"),
		PageSize:   envInt("PAGE_SIZE", 10),
		RateLimit:  envInt("RATE_LIMIT", 200),

		APIBaseURL:    env("API_BASE_URL", "http://localhost:8080"),
		HTTPTimeout:   envDuration("HTTP_TIMEOUT", 15*time.Second),
		QueryCacheTTL: envDuration("QUERY_CACHE_TTL", 30*time.Second),
	}
}

// UsesPostgres reports whether DBURL names a Postgres server rather than a
// SQLite file.
func (c Config) UsesPostgres() bool {
	return strings.HasPrefix(c.DBURL, "postgres")
}
