package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Redis     RedisConfig
	Cache     CacheConfig
	CORS      CORSConfig
	Log       LogConfig
	Catalog   CatalogConfig
	Scheduler SchedulerConfig
	RateLimit RateLimitConfig
	Export    ExportConfig
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig toggles Redis-backed caching of generated timetables.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CatalogConfig locates the enrollment file and governs uploads.
type CatalogConfig struct {
	Path            string
	UploadDir       string
	MaxUploadSize   int64
	UploadRetention time.Duration
	Watch           bool
}

// SchedulerConfig bounds the timetable search.
type SchedulerConfig struct {
	MaxCourses int
	Memoize    bool
	ResultTTL  time.Duration
}

// RateLimitConfig throttles the generate endpoint per client.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// ExportConfig controls calendar exports.
type ExportConfig struct {
	Timezone string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 10*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxUpload := v.GetInt64("CATALOG_MAX_UPLOAD_SIZE")
	if maxUpload <= 0 {
		maxUpload = 5 * 1024 * 1024
	}
	cfg.Catalog = CatalogConfig{
		Path:            v.GetString("CATALOG_PATH"),
		UploadDir:       v.GetString("CATALOG_UPLOAD_DIR"),
		MaxUploadSize:   maxUpload,
		UploadRetention: parseDuration(v.GetString("CATALOG_UPLOAD_RETENTION"), 7*24*time.Hour),
		Watch:           v.GetBool("CATALOG_WATCH"),
	}

	maxCourses := v.GetInt("SCHEDULER_MAX_COURSES")
	if maxCourses <= 0 {
		maxCourses = 8
	}
	cfg.Scheduler = SchedulerConfig{
		MaxCourses: maxCourses,
		Memoize:    v.GetBool("SCHEDULER_MEMOIZE"),
		ResultTTL:  parseDuration(v.GetString("SCHEDULER_RESULT_TTL"), 30*time.Minute),
	}

	cfg.RateLimit = RateLimitConfig{
		RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		Burst: v.GetInt("RATE_LIMIT_BURST"),
	}

	cfg.Export = ExportConfig{
		Timezone: v.GetString("EXPORT_TIMEZONE"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "10m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CATALOG_PATH", "./data/ENROLLMENT.csv")
	v.SetDefault("CATALOG_UPLOAD_DIR", "./uploads")
	v.SetDefault("CATALOG_MAX_UPLOAD_SIZE", 5*1024*1024)
	v.SetDefault("CATALOG_UPLOAD_RETENTION", "168h")
	v.SetDefault("CATALOG_WATCH", false)

	v.SetDefault("SCHEDULER_MAX_COURSES", 8)
	v.SetDefault("SCHEDULER_MEMOIZE", true)
	v.SetDefault("SCHEDULER_RESULT_TTL", "30m")

	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)

	v.SetDefault("EXPORT_TIMEZONE", "UTC")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
