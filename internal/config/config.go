package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ytget/anime-downloader/internal/platform"
	"github.com/ytget/anime-downloader/internal/provider"
)

// AppDirName is the directory holding config.yaml and the log file
const AppDirName = "anime-downloader"

// EnvPrefix prefixes every environment override, e.g. ANIDL_LOG_LEVEL
const EnvPrefix = "ANIDL"

// Config keys. Flags share these names.
const (
	KeyConfigDir   = "config-dir"
	KeyLogLevel    = "log-level"
	KeyLogFile     = "log-file"
	KeyAPIURL      = "api-url"
	KeyReferer     = "referer"
	KeyHTTPTimeout = "http-timeout"
	KeyCacheTTL    = "cache-ttl"
	KeyYTDLPPath   = "ytdlp-path"
)

// DefaultLogFileName is created inside the config directory
const DefaultLogFileName = "anime_downloader.log"

// Config is the bootstrap configuration read before the window opens
type Config struct {
	ConfigDir string

	// Logging
	LogLevel string
	LogFile  string

	// Provider
	APIURL      string
	Referer     string
	HTTPTimeout time.Duration
	CacheTTL    time.Duration

	// Download
	YTDLPPath string
}

// RegisterFlags adds the config flags to fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(KeyConfigDir, "", "directory holding config.yaml and logs")
	fs.String(KeyLogLevel, "info", "log level (debug, info, warn, error)")
	fs.String(KeyLogFile, "", "log file path; \"-\" disables file logging")
	fs.String(KeyAPIURL, provider.DefaultAPIURL, "catalog API endpoint")
	fs.String(KeyReferer, provider.DefaultReferer, "Referer sent to the catalog")
	fs.Duration(KeyHTTPTimeout, provider.DefaultHTTPTimeout, "catalog request timeout")
	fs.Duration(KeyCacheTTL, provider.DefaultCacheTTL, "catalog response cache lifetime")
	fs.String(KeyYTDLPPath, "", "yt-dlp executable; empty uses PATH")
}

// Load reads configuration from flags, ANIDL_* environment variables and
// an optional config.yaml, in that order of precedence.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyAPIURL, provider.DefaultAPIURL)
	v.SetDefault(KeyReferer, provider.DefaultReferer)
	v.SetDefault(KeyHTTPTimeout, provider.DefaultHTTPTimeout)
	v.SetDefault(KeyCacheTTL, provider.DefaultCacheTTL)

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	configDir := v.GetString(KeyConfigDir)
	if configDir == "" {
		dir, err := platform.GetConfigDir(AppDirName)
		if err != nil {
			return nil, err
		}
		configDir = dir
	} else {
		// Convert relative path to absolute path
		abs, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for config dir: %w", err)
		}
		configDir = abs
	}

	if err := os.MkdirAll(configDir, platform.DefaultDirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		ConfigDir:   configDir,
		LogLevel:    v.GetString(KeyLogLevel),
		LogFile:     v.GetString(KeyLogFile),
		APIURL:      v.GetString(KeyAPIURL),
		Referer:     v.GetString(KeyReferer),
		HTTPTimeout: v.GetDuration(KeyHTTPTimeout),
		CacheTTL:    v.GetDuration(KeyCacheTTL),
		YTDLPPath:   v.GetString(KeyYTDLPPath),
	}

	switch cfg.LogFile {
	case "":
		cfg.LogFile = filepath.Join(configDir, DefaultLogFileName)
	case "-":
		cfg.LogFile = ""
	}

	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("%s must be positive, got %s", KeyHTTPTimeout, cfg.HTTPTimeout)
	}
	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("%s must be positive, got %s", KeyCacheTTL, cfg.CacheTTL)
	}
	return cfg, nil
}

// ProviderOptions maps the config onto catalog client options
func (c *Config) ProviderOptions() provider.Options {
	opts := provider.DefaultOptions()
	opts.APIURL = c.APIURL
	opts.Referer = c.Referer
	opts.Timeout = c.HTTPTimeout
	opts.CacheTTL = c.CacheTTL
	return opts
}
