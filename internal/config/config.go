package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds all configuration for the signer sidecar
type Config struct {
	// Server configuration
	Listen   string `mapstructure:"listen"`
	LogLevel string `mapstructure:"log_level"`

	// Upstream store configuration
	Store StoreConfig `mapstructure:"store"`

	// Auth configuration for the sidecar API
	Auth AuthConfig `mapstructure:"auth"`

	// Metrics configuration
	Metrics MetricsConfig `mapstructure:"metrics"`

	// Audit configuration
	Audit AuditConfig `mapstructure:"audit"`
}

// StoreConfig identifies the S3-compatible store requests are signed for.
// It is immutable once loaded; signing code never mutates it.
type StoreConfig struct {
	Endpoint  string `mapstructure:"endpoint"` // e.g. https://s3.us-east-1.amazonaws.com
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// AuthConfig defines authentication for the sidecar HTTP API
type AuthConfig struct {
	// JWTSecret enables bearer-token auth on the API when non-empty
	JWTSecret string `mapstructure:"jwt_secret"`
}

// MetricsConfig defines metrics exposure
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Path   string `mapstructure:"path"`
}

// AuditConfig defines the issued-grant audit trail
type AuditConfig struct {
	// Path to the SQLite database; empty disables auditing
	Path string `mapstructure:"path"`
}

// Load loads configuration from flags, config file and environment
func Load(cmd *cobra.Command) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if err := bindFlags(cmd, v); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("SIGNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", ":8090")
	v.SetDefault("log_level", "info")
	v.SetDefault("store.region", "us-east-1")
	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	flags := map[string]string{
		"listen":     "listen",
		"log-level":  "log_level",
		"endpoint":   "store.endpoint",
		"region":     "store.region",
		"bucket":     "store.bucket",
		"access-key": "store.access_key",
		"secret-key": "store.secret_key",
		"audit-db":   "audit.path",
	}

	for flag, key := range flags {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind flag %s: %w", flag, err)
			}
		}
	}
	return nil
}

func validate(cfg *Config) error {
	if cfg.Store.Bucket == "" {
		return fmt.Errorf("store.bucket is required")
	}
	if cfg.Store.Region == "" {
		return fmt.Errorf("store.region is required")
	}
	if cfg.Store.Endpoint == "" {
		cfg.Store.Endpoint = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Store.Bucket, cfg.Store.Region)
	}
	u, err := url.Parse(cfg.Store.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("store.endpoint %q is not a valid URL", cfg.Store.Endpoint)
	}
	// A missing secret key is not a configuration error: browser-direct
	// uploads and signing are then disabled features.
	if cfg.Store.SecretKey != "" && cfg.Store.AccessKey == "" {
		return fmt.Errorf("store.access_key is required when store.secret_key is set")
	}
	return nil
}

// Host returns the store host with an explicit port for https endpoints so
// the signed Host header matches what the transport sends on the wire.
func (s StoreConfig) Host() string {
	u, err := url.Parse(s.Endpoint)
	if err != nil {
		return ""
	}
	host := u.Host
	if u.Port() == "" && u.Scheme == "https" {
		host += ":443"
	}
	return host
}

// HasCredentials reports whether signing is possible at all.
func (s StoreConfig) HasCredentials() bool {
	return s.AccessKey != "" && s.SecretKey != ""
}
