// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Storage backends for the analytics snapshot and preferences
const (
	StorageSQLite = "sqlite"
	StorageBadger = "badger"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	AppPort     string   `mapstructure:"appport"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`
	PrivateKey  string   `mapstructure:"privatekey"`

	// File paths
	StoragePath           string `mapstructure:"storagepath"`
	DatabaseName          string `mapstructure:"-"` // Derived from other settings
	PublicDirectory       string `mapstructure:"publicdir"`
	PublicAssetsUrlPrefix string `mapstructure:"publicassetsurlprefix"`

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Database settings
	DatabaseMaxOpenConns int `mapstructure:"dbmaxopenconns"`
	DatabaseMaxIdleConns int `mapstructure:"dbmaxidleconns"`

	// Key/value storage settings
	StorageBackend string `mapstructure:"storagebackend"`
	BadgerPath     string `mapstructure:"badgerpath"`
	RedisAddr      string `mapstructure:"redisaddr"`
	RedisPassword  string `mapstructure:"redispassword"`
	RedisDB        int    `mapstructure:"redisdb"`
	RedisKeyPrefix string `mapstructure:"rediskeyprefix"`

	// Analytics settings
	Timezone        string `mapstructure:"timezone"`
	Locale          string `mapstructure:"locale"`
	SerializeWrites bool   `mapstructure:"serializewrites"`
	RetentionDays   int    `mapstructure:"retentiondays"`

	location *time.Location
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()

		v.SetDefault("appname", "thoughtburn")
		v.SetDefault("appport", "3000")
		v.SetDefault("environment", Development)
		v.SetDefault("loglevel", string(LogLevelDebug))
		v.SetDefault("privatekey", "88888888888888888888888888888888")
		v.SetDefault("storagepath", "storage")
		v.SetDefault("publicdir", "public")
		v.SetDefault("publicassetsurlprefix", "/")
		v.SetDefault("logsdir", "logs")
		v.SetDefault("logsmaxsizeinmb", 20)
		v.SetDefault("logsmaxbackups", 10)
		v.SetDefault("logsmaxageindays", 30)
		v.SetDefault("dbmaxopenconns", 0)
		v.SetDefault("dbmaxidleconns", 0)
		v.SetDefault("storagebackend", StorageSQLite)
		v.SetDefault("badgerpath", "storage/badger")
		v.SetDefault("redisaddr", "localhost:6379")
		v.SetDefault("redisdb", 0)
		v.SetDefault("rediskeyprefix", "thoughtburn:")
		v.SetDefault("timezone", "Local")
		v.SetDefault("locale", "en-US")
		v.SetDefault("serializewrites", true)
		v.SetDefault("retentiondays", 0)

		v.BindEnv("appname", "THOUGHTBURN_APP_NAME")
		v.BindEnv("appport", "THOUGHTBURN_APP_PORT")
		v.BindEnv("environment", "THOUGHTBURN_ENV")
		v.BindEnv("loglevel", "THOUGHTBURN_LOG_LEVEL")
		v.BindEnv("privatekey", "THOUGHTBURN_PRIVATE_KEY")
		v.BindEnv("storagepath", "THOUGHTBURN_STORAGE_PATH")
		v.BindEnv("publicdir", "THOUGHTBURN_PUBLIC_DIR")
		v.BindEnv("publicassetsurlprefix", "THOUGHTBURN_PUBLIC_ASSETS_URL_PREFIX")
		v.BindEnv("logsdir", "THOUGHTBURN_LOGS_DIR")
		v.BindEnv("logsmaxsizeinmb", "THOUGHTBURN_LOGS_MAX_SIZE_IN_MB")
		v.BindEnv("logsmaxbackups", "THOUGHTBURN_LOGS_MAX_BACKUPS")
		v.BindEnv("logsmaxageindays", "THOUGHTBURN_LOGS_MAX_AGE_IN_DAYS")
		v.BindEnv("dbmaxopenconns", "THOUGHTBURN_DB_MAX_OPEN_CONNS")
		v.BindEnv("dbmaxidleconns", "THOUGHTBURN_DB_MAX_IDLE_CONNS")
		v.BindEnv("storagebackend", "THOUGHTBURN_STORAGE_BACKEND")
		v.BindEnv("badgerpath", "THOUGHTBURN_BADGER_PATH")
		v.BindEnv("redisaddr", "THOUGHTBURN_REDIS_ADDR")
		v.BindEnv("redispassword", "THOUGHTBURN_REDIS_PASSWORD")
		v.BindEnv("redisdb", "THOUGHTBURN_REDIS_DB")
		v.BindEnv("rediskeyprefix", "THOUGHTBURN_REDIS_KEY_PREFIX")
		v.BindEnv("timezone", "THOUGHTBURN_TIMEZONE")
		v.BindEnv("locale", "THOUGHTBURN_LOCALE")
		v.BindEnv("serializewrites", "THOUGHTBURN_SERIALIZE_WRITES")
		v.BindEnv("retentiondays", "THOUGHTBURN_RETENTION_DAYS")

		cfg = &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			log.Fatalf("config: failed to unmarshal configuration: %v", err)
		}

		if err := cfg.validate(); err != nil {
			log.Fatalf("config: invalid configuration: %v", err)
		}

		// Set derived values
		cfg.DatabaseName = cfg.GetDatabasePath()

		defaultKey := "88888888888888888888888888888888"
		if cfg.PrivateKey == "" {
			log.Fatal("Private key is required")
		}
		if cfg.IsProduction() && cfg.PrivateKey == defaultKey {
			log.Fatal("Production requires a unique THOUGHTBURN_PRIVATE_KEY (cannot use default)")
		}
	})
	return cfg
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	validBackends := map[string]bool{
		StorageSQLite: true,
		StorageBadger: true,
		StorageRedis:  true,
		StorageMemory: true,
	}
	if !validBackends[c.StorageBackend] {
		return fmt.Errorf("invalid storage backend: %s", c.StorageBackend)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.location = loc

	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("invalid locale %q: %w", c.Locale, err)
	}

	if c.RetentionDays < 0 {
		return fmt.Errorf("retention days must not be negative: %d", c.RetentionDays)
	}

	return nil
}

// GetDatabasePath returns the appropriate database path based on environment
func (c *Config) GetDatabasePath() string {
	if c.DatabaseName == "" {
		c.DatabaseName = filepath.Join(c.StoragePath,
			fmt.Sprintf("%s-%s.db", c.AppName, c.Environment))
	}
	return c.DatabaseName
}

// GetLocation returns the time zone used for week keys and labels.
func (c *Config) GetLocation() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// GetLanguage returns the configured locale as a language tag, falling back to American English.
func (c *Config) GetLanguage() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.AmericanEnglish
	}
	return tag
}

// RetentionEnabled reports whether old analytics buckets should be pruned.
func (c *Config) RetentionEnabled() bool {
	return c.RetentionDays > 0
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// GetPort returns the HTTP server port (implements cartridge.Config interface).
func (c *Config) GetPort() string {
	return c.AppPort
}

// GetPublicDirectory returns the path to public/static assets (implements cartridge.Config interface).
func (c *Config) GetPublicDirectory() string {
	return c.PublicDirectory
}

// GetAssetsPrefix returns the URL prefix for static assets (implements cartridge.Config interface).
func (c *Config) GetAssetsPrefix() string {
	return c.PublicAssetsUrlPrefix
}

// GetAppName returns the application name (implements cartridge.FactoryConfig interface).
func (c *Config) GetAppName() string {
	return c.AppName
}

// DatabaseDSN returns the database connection string (implements cartridge.FactoryConfig interface).
func (c *Config) DatabaseDSN() string {
	return c.GetDatabasePath()
}

// GetSessionSecret returns the session encryption key (implements cartridge.FactoryConfig interface).
func (c *Config) GetSessionSecret() string {
	return c.PrivateKey
}

// GetMaxOpenConns returns the appropriate MaxOpenConns value based on environment
// If explicitly set via env var, uses that value. Otherwise:
// - Test: 1
// - Development/Production: 4 (a single user app rarely needs more)
func (c *Config) GetMaxOpenConns() int {
	if c.DatabaseMaxOpenConns > 0 {
		return c.DatabaseMaxOpenConns
	}

	if c.Environment == Test {
		return 1
	}

	return 4
}

// GetMaxIdleConns returns the appropriate MaxIdleConns value based on environment
func (c *Config) GetMaxIdleConns() int {
	if c.DatabaseMaxIdleConns > 0 {
		return c.DatabaseMaxIdleConns
	}

	if c.Environment == Test {
		return 1
	}

	return 2
}

// GetLogLevel returns the log level as a string (implements cartridge.LogConfigProvider).
func (c *Config) GetLogLevel() string {
	return string(c.LogLevel)
}

// GetLogDirectory returns the logs directory (implements cartridge.LogConfigProvider).
func (c *Config) GetLogDirectory() string {
	return c.LogsDirectory
}

// GetLogMaxSizeMB returns the max log file size in MB (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxSizeMB() int {
	return c.LogsMaxSizeInMb
}

// GetLogMaxBackups returns the max number of log backups (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxBackups() int {
	return c.LogsMaxBackups
}

// GetLogMaxAgeDays returns the max age in days for log files (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxAgeDays() int {
	return c.LogsMaxAgeInDays
}

// Reset clears the cached configuration; intended for tests.
func Reset() {
	once = sync.Once{}
	cfg = nil
}
