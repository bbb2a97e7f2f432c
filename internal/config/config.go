// backend-go/internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Dashboard DashboardConfig
	Cache     CacheConfig
	LogLevel  string
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

// BackendConfig locates and authenticates against the RetailSense REST API
type BackendConfig struct {
	BaseURL        string
	TimeoutSeconds int
	Email          string
	Password       string
	// Token is used as is when no credentials are configured.
	Token string
}

// DashboardConfig holds the query parameters and aggregation policy of the views
type DashboardConfig struct {
	TrendDays         int
	TopLimit          int
	SummaryPeriod     string
	InsightPriority   string
	InsightKeep       int
	FailurePolicy     string
	ResortTopProducts bool
	CategoryTolerance float64
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	DashboardTTLSeconds int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.GetViper()
		SetDefaults(v)

		// Read from environment variables
		v.AutomaticEnv()

		instance = FromViper(v)
	})

	return instance
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8090")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

	v.SetDefault("BACKEND_BASE_URL", "http://localhost:8080/api")
	v.SetDefault("BACKEND_TIMEOUT_SECONDS", 30)
	v.SetDefault("BACKEND_EMAIL", "")
	v.SetDefault("BACKEND_PASSWORD", "")
	v.SetDefault("BACKEND_TOKEN", "")

	v.SetDefault("DASHBOARD_TREND_DAYS", 7)
	v.SetDefault("DASHBOARD_TOP_LIMIT", 5)
	v.SetDefault("DASHBOARD_SUMMARY_PERIOD", "week")
	v.SetDefault("DASHBOARD_INSIGHT_PRIORITY", "HIGH")
	v.SetDefault("DASHBOARD_INSIGHT_KEEP", 3)
	v.SetDefault("DASHBOARD_FAILURE_POLICY", "lenient")
	v.SetDefault("DASHBOARD_RESORT_TOP_PRODUCTS", false)
	v.SetDefault("DASHBOARD_CATEGORY_TOLERANCE", 0.5)

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_DASHBOARD_TTL_SECONDS", 60)

	v.SetDefault("LOG_LEVEL", "info")
}

// FromViper builds a Config from v without touching the process singleton.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Backend: BackendConfig{
			BaseURL:        v.GetString("BACKEND_BASE_URL"),
			TimeoutSeconds: v.GetInt("BACKEND_TIMEOUT_SECONDS"),
			Email:          v.GetString("BACKEND_EMAIL"),
			Password:       v.GetString("BACKEND_PASSWORD"),
			Token:          v.GetString("BACKEND_TOKEN"),
		},
		Dashboard: DashboardConfig{
			TrendDays:         v.GetInt("DASHBOARD_TREND_DAYS"),
			TopLimit:          v.GetInt("DASHBOARD_TOP_LIMIT"),
			SummaryPeriod:     v.GetString("DASHBOARD_SUMMARY_PERIOD"),
			InsightPriority:   v.GetString("DASHBOARD_INSIGHT_PRIORITY"),
			InsightKeep:       v.GetInt("DASHBOARD_INSIGHT_KEEP"),
			FailurePolicy:     v.GetString("DASHBOARD_FAILURE_POLICY"),
			ResortTopProducts: v.GetBool("DASHBOARD_RESORT_TOP_PRODUCTS"),
			CategoryTolerance: v.GetFloat64("DASHBOARD_CATEGORY_TOLERANCE"),
		},
		Cache: CacheConfig{
			Enabled:             v.GetBool("CACHE_ENABLED"),
			RedisURL:            v.GetString("REDIS_URL"),
			RedisHost:           v.GetString("REDIS_HOST"),
			RedisPort:           v.GetString("REDIS_PORT"),
			RedisPassword:       v.GetString("REDIS_PASSWORD"),
			RedisDB:             v.GetInt("REDIS_DB"),
			DashboardTTLSeconds: v.GetInt("CACHE_DASHBOARD_TTL_SECONDS"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}
}
