package config

import (
	"reflect"
	"strings"

	"zone-mirror/core/cloudflare"
	"zone-mirror/core/logger"
	"zone-mirror/core/server"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server (serve mode).
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Cloudflare holds tunables for the provider API client.
	Cloudflare cloudflare.Config `mapstructure:"cloudflare"`
	// Sync holds configuration for the reconciliation runs.
	Sync SyncConfig `mapstructure:"sync"`
}

// SyncConfig holds configuration for reconciliation runs.
type SyncConfig struct {
	// EncryptionKey is the hex-encoded 256-bit key used to decrypt per-user
	// credential secrets. It is threaded explicitly into the credential
	// aggregator; nothing reads it from the environment at decrypt time.
	EncryptionKey string `mapstructure:"encryption_key" default:""`
	// IntervalSeconds is the periodic sync interval in serve mode.
	// Zero disables the scheduler (manual triggers only).
	IntervalSeconds int `mapstructure:"interval_seconds" default:"0"`
	// CloudflareConfig is the path to the legacy provider credentials file.
	CloudflareConfig string `mapstructure:"cloudflare_config" default:"/etc/mydns/cloudflare.ini"`
	// MyDNSConfig is the path to the legacy database configuration file.
	MyDNSConfig string `mapstructure:"mydns_config" default:"/etc/mydns/mydns.conf"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
