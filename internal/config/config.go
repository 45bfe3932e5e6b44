// Package config loads the mofu configuration: data directory, reference
// feed endpoints, the Google OAuth client for Drive sync, and serve/log
// options. Sources, in increasing precedence: built-in defaults, the YAML
// config file, MOFU_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/keirinjingle/mofu/internal/refdata"
)

// Config is the resolved configuration tree.
type Config struct {
	DataDir          string   `mapstructure:"data_dir"`
	RidersURL        string   `mapstructure:"riders_url"`
	RacesURLTemplate string   `mapstructure:"races_url_template"`
	Tactics          []string `mapstructure:"tactics"`

	Google struct {
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
	} `mapstructure:"google"`

	Serve struct {
		Port           int      `mapstructure:"port"`
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"serve"`

	Log struct {
		File       string `mapstructure:"file"`
		MaxSizeMB  int    `mapstructure:"max_size_mb"`
		MaxBackups int    `mapstructure:"max_backups"`
		MaxAgeDays int    `mapstructure:"max_age_days"`
	} `mapstructure:"log"`
}

// Load reads the configuration. A missing config file is fine; everything
// has a default. An unreadable or malformed file is an error.
func Load(explicitFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if explicitFile != "" {
		v.SetConfigFile(explicitFile)
	} else {
		v.SetConfigName("config")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "mofu"))
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("MOFU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicitFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	v.SetDefault("data_dir", filepath.Join(home, ".mofu"))
	v.SetDefault("riders_url", refdata.DefaultRidersURL)
	v.SetDefault("races_url_template", refdata.DefaultRacesURLTemplate)
	v.SetDefault("tactics", []string{})
	v.SetDefault("serve.port", 8791)
	v.SetDefault("serve.allowed_origins", []string{})
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 30)
}

// Logger builds a prefixed logger per the log configuration: a rotating
// file when log.file is set, stderr otherwise.
func (c *Config) Logger(prefix string) *log.Logger {
	var w io.Writer = os.Stderr
	if c.Log.File != "" {
		w = &lumberjack.Logger{
			Filename:   c.Log.File,
			MaxSize:    c.Log.MaxSizeMB,
			MaxBackups: c.Log.MaxBackups,
			MaxAge:     c.Log.MaxAgeDays,
		}
	}
	return log.New(w, prefix, log.LstdFlags)
}

// SyncConfigured reports whether the Drive OAuth client is set. When it is
// not, every sync surface is disabled outright.
func (c *Config) SyncConfigured() bool {
	return c.Google.ClientID != "" && c.Google.ClientSecret != ""
}

// OriginAllowed reports whether a browser origin may talk to the serve
// API. An empty allow-list means no restriction (the local-only default);
// a non-empty list is an exact-match allow-list.
func (c *Config) OriginAllowed(origin string) bool {
	if len(c.Serve.AllowedOrigins) == 0 {
		return true
	}
	for _, o := range c.Serve.AllowedOrigins {
		if o == origin {
			return true
		}
	}
	return false
}
