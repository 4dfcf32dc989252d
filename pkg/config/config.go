package config

import (
	"errors"
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

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig

	Planner   PlannerConfig
	Calendar  CalendarConfig
	Analytics AnalyticsConfig
	Exports   ExportsConfig
	Tutor     TutorConfig
	Presence  PresenceConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PlannerConfig tunes study plan generation and the preview proposal store.
type PlannerConfig struct {
	ProposalTTL         time.Duration
	DefaultSlotCount    int
	DefaultSlotMinutes  int
	DefaultStartHour    int
	DefaultTimezone     string
	MaxSubjects         int
	MaxSessionsPerBatch int
}

// CalendarConfig governs the merge view, suggestion lifetime and ICS feed.
type CalendarConfig struct {
	SuggestionTTL time.Duration
	LocalCacheTTL time.Duration
	FeedWindow    time.Duration
}

// AnalyticsConfig governs feature flagging and cache behaviour for analytics endpoints.
type AnalyticsConfig struct {
	Enabled  bool
	CacheTTL time.Duration
}

// ExportsConfig configures asynchronous timetable export generation.
type ExportsConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupSchedule   string
	RetentionTTL      time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

// TutorConfig holds upstream AI endpoints for the tutor proxy.
type TutorConfig struct {
	Enabled     bool
	ChatBaseURL string
	ChatAPIKey  string
	ChatModel   string
	OCRBaseURL  string
	OCRAppID    string
	OCRAppKey   string
	Timeout     time.Duration
}

// PresenceConfig tunes the multi-tab heartbeat flag.
type PresenceConfig struct {
	HeartbeatTTL time.Duration
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Planner = PlannerConfig{
		ProposalTTL:         parseDuration(v.GetString("PLANNER_PROPOSAL_TTL"), 30*time.Minute),
		DefaultSlotCount:    v.GetInt("PLANNER_DEFAULT_SLOT_COUNT"),
		DefaultSlotMinutes:  v.GetInt("PLANNER_DEFAULT_SLOT_MINUTES"),
		DefaultStartHour:    v.GetInt("PLANNER_DEFAULT_START_HOUR"),
		DefaultTimezone:     v.GetString("PLANNER_DEFAULT_TIMEZONE"),
		MaxSubjects:         v.GetInt("PLANNER_MAX_SUBJECTS"),
		MaxSessionsPerBatch: v.GetInt("PLANNER_MAX_SESSIONS"),
	}

	cfg.Calendar = CalendarConfig{
		SuggestionTTL: parseDuration(v.GetString("CALENDAR_SUGGESTION_TTL"), 24*time.Hour),
		LocalCacheTTL: parseDuration(v.GetString("CALENDAR_LOCAL_CACHE_TTL"), 7*24*time.Hour),
		FeedWindow:    parseDuration(v.GetString("CALENDAR_FEED_WINDOW"), 30*24*time.Hour),
	}

	cfg.Analytics = AnalyticsConfig{
		Enabled:  v.GetBool("ENABLE_ANALYTICS"),
		CacheTTL: parseDuration(v.GetString("ANALYTICS_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		Enabled:           v.GetBool("ENABLE_EXPORTS"),
		StorageDir:        v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupSchedule:   v.GetString("EXPORTS_CLEANUP_SCHEDULE"),
		RetentionTTL:      parseDuration(v.GetString("EXPORTS_RETENTION_TTL"), 48*time.Hour),
		WorkerConcurrency: v.GetInt("EXPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("EXPORTS_WORKER_RETRIES"),
	}

	cfg.Tutor = TutorConfig{
		Enabled:     v.GetBool("ENABLE_TUTOR"),
		ChatBaseURL: v.GetString("TUTOR_CHAT_BASE_URL"),
		ChatAPIKey:  v.GetString("TUTOR_CHAT_API_KEY"),
		ChatModel:   v.GetString("TUTOR_CHAT_MODEL"),
		OCRBaseURL:  v.GetString("TUTOR_OCR_BASE_URL"),
		OCRAppID:    v.GetString("TUTOR_OCR_APP_ID"),
		OCRAppKey:   v.GetString("TUTOR_OCR_APP_KEY"),
		Timeout:     parseDuration(v.GetString("TUTOR_TIMEOUT"), 30*time.Second),
	}

	cfg.Presence = PresenceConfig{
		HeartbeatTTL: parseDuration(v.GetString("PRESENCE_HEARTBEAT_TTL"), 30*time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "athro_study")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("PLANNER_PROPOSAL_TTL", "30m")
	v.SetDefault("PLANNER_DEFAULT_SLOT_COUNT", 2)
	v.SetDefault("PLANNER_DEFAULT_SLOT_MINUTES", 45)
	v.SetDefault("PLANNER_DEFAULT_START_HOUR", 16)
	v.SetDefault("PLANNER_DEFAULT_TIMEZONE", "Europe/London")
	v.SetDefault("PLANNER_MAX_SUBJECTS", 32)
	v.SetDefault("PLANNER_MAX_SESSIONS", 64)

	v.SetDefault("CALENDAR_SUGGESTION_TTL", "24h")
	v.SetDefault("CALENDAR_LOCAL_CACHE_TTL", "168h")
	v.SetDefault("CALENDAR_FEED_WINDOW", "720h")

	v.SetDefault("ENABLE_ANALYTICS", false)
	v.SetDefault("ANALYTICS_CACHE_TTL", "10m")

	v.SetDefault("ENABLE_EXPORTS", false)
	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_CLEANUP_SCHEDULE", "@hourly")
	v.SetDefault("EXPORTS_RETENTION_TTL", "48h")
	v.SetDefault("EXPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("EXPORTS_WORKER_RETRIES", 3)

	v.SetDefault("ENABLE_TUTOR", false)
	v.SetDefault("TUTOR_CHAT_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("TUTOR_CHAT_API_KEY", "")
	v.SetDefault("TUTOR_CHAT_MODEL", "gpt-4o-mini")
	v.SetDefault("TUTOR_OCR_BASE_URL", "https://api.mathpix.com/v3")
	v.SetDefault("TUTOR_OCR_APP_ID", "")
	v.SetDefault("TUTOR_OCR_APP_KEY", "")
	v.SetDefault("TUTOR_TIMEOUT", "30s")

	v.SetDefault("PRESENCE_HEARTBEAT_TTL", "30s")
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
