package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Ads      AdsConfig      `mapstructure:"ads"`
	Revenue  RevenueConfig  `mapstructure:"revenue"`
	Tracking TrackingConfig `mapstructure:"tracking"`
}

type ServerConfig struct {
	Addr               string `mapstructure:"addr"`
	BaseURL            string `mapstructure:"base_url"`
	RateLimitPerMinute int64  `mapstructure:"rate_limit_per_minute"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	FreshTTL time.Duration `mapstructure:"fresh_ttl"`
	StaleTTL time.Duration `mapstructure:"stale_ttl"`
	Beta     float64       `mapstructure:"beta"`
}

type AdsConfig struct {
	MobileProbability  float64 `mapstructure:"mobile_probability"`
	DesktopProbability float64 `mapstructure:"desktop_probability"`
	CountdownSeconds   int     `mapstructure:"countdown_seconds"`
}

// RevenueConfig holds the per-click rate tables. OSRates is keyed by
// normalized OS family then ISO country code, DeviceRates by coarse
// device type then country. FloorRate applies when neither table has
// an entry; MobileBonus multiplies the resolved rate for any mobile
// device.
type RevenueConfig struct {
	OSRates     map[string]map[string]float64 `mapstructure:"os_rates"`
	DeviceRates map[string]map[string]float64 `mapstructure:"device_rates"`
	FloorRate   float64                       `mapstructure:"floor_rate"`
	MobileBonus float64                       `mapstructure:"mobile_bonus"`
}

type TrackingConfig struct {
	UTMSource      string `mapstructure:"utm_source"`
	DefaultCountry string `mapstructure:"default_country"`
}

// Load reads config.yaml if present and overlays environment variables
// (LINKFLY_SERVER_ADDR, LINKFLY_DATABASE_HOST, ...) on top of the
// built-in defaults.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.SetEnvPrefix("linkfly")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.base_url", "http://localhost:8080/")
	v.SetDefault("server.rate_limit_per_minute", 60)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "linkfly")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.fresh_ttl", time.Minute)
	v.SetDefault("cache.stale_ttl", 5*time.Minute)
	v.SetDefault("cache.beta", 0.2)

	v.SetDefault("ads.mobile_probability", 0.40)
	v.SetDefault("ads.desktop_probability", 0.25)
	v.SetDefault("ads.countdown_seconds", 5)

	v.SetDefault("revenue.os_rates", map[string]map[string]float64{
		"android": {
			"US": 0.08, "UK": 0.07, "CA": 0.06,
			"AU": 0.06, "DE": 0.05, "FR": 0.05,
		},
		"ios": {
			"US": 0.10, "UK": 0.09, "CA": 0.08,
			"AU": 0.08, "DE": 0.07, "FR": 0.07,
		},
		"mobile": {
			"US": 0.06, "UK": 0.05, "CA": 0.04,
		},
	})
	v.SetDefault("revenue.device_rates", map[string]map[string]float64{
		"mobile": {
			"US": 0.06, "UK": 0.05, "CA": 0.04,
		},
		"tablet": {
			"US": 0.05, "UK": 0.04, "CA": 0.03,
		},
	})
	v.SetDefault("revenue.floor_rate", 0.02)
	v.SetDefault("revenue.mobile_bonus", 1.2)

	v.SetDefault("tracking.utm_source", "adlinkfly")
	v.SetDefault("tracking.default_country", "US")
}
