package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Sources   SourcesConfig   `mapstructure:"sources"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Region      string `mapstructure:"region"`
	Debug       bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// Sensitivity shifts the verdict breakpoints without touching signal weights
type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityNormal Sensitivity = "normal"
	SensitivityHigh   Sensitivity = "high"
)

// AnalysisConfig tunes the pipeline itself
type AnalysisConfig struct {
	Sensitivity        Sensitivity   `mapstructure:"sensitivity"`
	CautionThreshold   int           `mapstructure:"caution_threshold"`
	DangerThreshold    int           `mapstructure:"danger_threshold"`
	TopReasons         int           `mapstructure:"top_reasons"`
	MaxRedirects       int           `mapstructure:"max_redirects"`
	ResolveTimeout     time.Duration `mapstructure:"resolve_timeout"`
	MaxConcurrentLinks int           `mapstructure:"max_concurrent_links"`
	ResolveCacheTTL    time.Duration `mapstructure:"resolve_cache_ttl"`
	ReputationCacheTTL time.Duration `mapstructure:"reputation_cache_ttl"`
}

// Thresholds returns the effective (caution, danger) breakpoints after
// applying the sensitivity setting.
func (c AnalysisConfig) Thresholds() (int, int) {
	caution, danger := c.CautionThreshold, c.DangerThreshold
	if caution <= 0 {
		caution = 30
	}
	if danger <= 0 {
		danger = 70
	}
	switch c.Sensitivity {
	case SensitivityLow:
		return caution * 3 / 2, danger * 10 / 7
	case SensitivityHigh:
		return caution * 2 / 3, danger * 5 / 7
	default:
		return caution, danger
	}
}

type SourcesConfig struct {
	GoogleSafeBrowsing SourceConfig `mapstructure:"google_safebrowsing"`
	URLhaus            SourceConfig `mapstructure:"urlhaus"`
	OpenPhish          SourceConfig `mapstructure:"openphish"`
}

type SourceConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	APIURL  string        `mapstructure:"api_url"`
	FeedURL string        `mapstructure:"feed_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/smishguard")
	}

	v.SetEnvPrefix("SMISHGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("redis.enabled", "SMISHGUARD_REDIS_ENABLED")
	v.BindEnv("redis.host", "SMISHGUARD_REDIS_HOST")
	v.BindEnv("redis.port", "SMISHGUARD_REDIS_PORT")
	v.BindEnv("redis.password", "SMISHGUARD_REDIS_PASSWORD")
	v.BindEnv("app.environment", "SMISHGUARD_APP_ENVIRONMENT")
	v.BindEnv("app.region", "SMISHGUARD_APP_REGION")
	v.BindEnv("sources.google_safebrowsing.api_key", "SMISHGUARD_SOURCES_GOOGLE_SAFEBROWSING_API_KEY")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; defaults plus env vars are enough to run.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "smishguard")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.region", "IN")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.key_prefix", "smishguard:")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.requests_per_minute", 120)

	v.SetDefault("analysis.sensitivity", string(SensitivityNormal))
	v.SetDefault("analysis.caution_threshold", 30)
	v.SetDefault("analysis.danger_threshold", 70)
	v.SetDefault("analysis.top_reasons", 3)
	v.SetDefault("analysis.max_redirects", 4)
	v.SetDefault("analysis.resolve_timeout", 1500*time.Millisecond)
	v.SetDefault("analysis.max_concurrent_links", 4)
	v.SetDefault("analysis.resolve_cache_ttl", 15*time.Minute)
	v.SetDefault("analysis.reputation_cache_ttl", 6*time.Hour)

	v.SetDefault("sources.google_safebrowsing.enabled", false)
	v.SetDefault("sources.google_safebrowsing.timeout", 2*time.Second)
	v.SetDefault("sources.urlhaus.enabled", true)
	v.SetDefault("sources.urlhaus.api_url", "https://urlhaus-api.abuse.ch/v1")
	v.SetDefault("sources.urlhaus.timeout", 2*time.Second)
	v.SetDefault("sources.openphish.enabled", true)
	v.SetDefault("sources.openphish.feed_url", "https://openphish.com/feed.txt")
	v.SetDefault("sources.openphish.timeout", 2*time.Second)
}
