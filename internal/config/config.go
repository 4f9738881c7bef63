package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Sheets      SheetsConfig      `mapstructure:"sheets"`
	Script      ScriptConfig      `mapstructure:"script"`
	Transcripts TranscriptsConfig `mapstructure:"transcripts"`
	Resources   ResourcesConfig   `mapstructure:"resources"`
	AI          AIConfig
	Sync        SyncConfig      `mapstructure:"sync"`
	CORS        CORSConfig      `mapstructure:"cors"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Tracing     TracingConfig   `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

// SheetsConfig points at the spreadsheet that acts as the remote roster store.
// The four ranges are tab names, each read as a raw value grid.
type SheetsConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	SpreadsheetID string `mapstructure:"spreadsheet_id"`
	APIKey        string `mapstructure:"api_key"`
	UsersRange    string `mapstructure:"users_range"`
	SkillsRange   string `mapstructure:"skills_range"`
	ProgressRange string `mapstructure:"progress_range"`
	VideosRange   string `mapstructure:"videos_range"`
}

// ScriptConfig is the Apps Script write-behind endpoint for progress saves.
type ScriptConfig struct {
	URL       string `mapstructure:"url"`
	PortalTag string `mapstructure:"portal_tag"`
}

type TranscriptsConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	CacheTTL time.Duration `mapstructure:"cache_ttl_minutes"`
}

// ResourcesConfig is the static host for the per-class material and quiz
// documents (clase01.html, quiz01.html, ...).
type ResourcesConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type AIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

type SyncConfig struct {
	PollInterval time.Duration `mapstructure:"poll_seconds"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("PORTAL")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Remote store
	viper.BindEnv("sheets.spreadsheet_id", "SHEETS_SPREADSHEET_ID")
	viper.BindEnv("sheets.api_key", "SHEETS_API_KEY")
	viper.BindEnv("script.url", "SCRIPT_URL")

	// AI
	viper.BindEnv("ai.base_url", "AI_BASE_URL")
	viper.BindEnv("ai.api_key", "AI_API_KEY")
	viper.BindEnv("ai.model", "AI_MODEL")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour
	cfg.Transcripts.CacheTTL = cfg.Transcripts.CacheTTL * time.Minute
	cfg.Sync.PollInterval = cfg.Sync.PollInterval * time.Second
	if cfg.Sync.PollInterval <= 0 {
		cfg.Sync.PollInterval = 10 * time.Second
	}

	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	return &cfg, nil
}
