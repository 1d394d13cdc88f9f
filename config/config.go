package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Push     PushConfig     `yaml:"push"`
	Realtime RealtimeConfig `yaml:"realtime"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// PushConfig holds the provider credentials for mobile and web push.
type PushConfig struct {
	// Expo (iOS-oriented device tokens).
	ExpoAccessToken string `yaml:"expo_access_token"`

	// FCM (Android-oriented device tokens).
	FCMCredentialsFile string `yaml:"fcm_credentials_file"`

	// VAPID keys for browser web push.
	VAPIDPublicKey  string `yaml:"vapid_public_key"`
	VAPIDPrivateKey string `yaml:"vapid_private_key"`
	VAPIDSubject    string `yaml:"vapid_subject"`
	WebPushTTL      int    `yaml:"webpush_ttl"`

	// Upper bound for one provider call. A slow provider must never
	// hold up the domain action that triggered the notification.
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-"` // Ignored by YAML parser

	// When true, device tokens that match no known shape route to Expo
	// instead of FCM. Deployments with legacy tokens that predate
	// platform tagging need this.
	FallbackToExpo bool `yaml:"fallback_to_expo"`
}

// RealtimeConfig holds tunables for the live WebSocket session registry.
type RealtimeConfig struct {
	WriteTimeoutSeconds int           `yaml:"write_timeout_seconds"`
	WriteTimeout        time.Duration `yaml:"-"` // Ignored by YAML parser
	ReadLimitBytes      int64         `yaml:"read_limit_bytes"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}

	if cfg.Push.TimeoutSeconds <= 0 {
		log.Printf("push.timeout_seconds is not set or invalid; defaulting to 15")
		cfg.Push.TimeoutSeconds = 15
	}
	cfg.Push.Timeout = time.Duration(cfg.Push.TimeoutSeconds) * time.Second
	if cfg.Push.WebPushTTL <= 0 {
		cfg.Push.WebPushTTL = 3600
	}

	if cfg.Realtime.WriteTimeoutSeconds <= 0 {
		cfg.Realtime.WriteTimeoutSeconds = 10
	}
	cfg.Realtime.WriteTimeout = time.Duration(cfg.Realtime.WriteTimeoutSeconds) * time.Second
	if cfg.Realtime.ReadLimitBytes <= 0 {
		cfg.Realtime.ReadLimitBytes = 4096
	}

	return &cfg, nil
}
