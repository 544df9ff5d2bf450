// Package settings loads process settings from an optional YAML file and
// RICHMAN_* environment variables.
package settings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. RICHMAN_SERVER_PORT
const EnvPrefix = "RICHMAN"

// Settings represents the complete process configuration
type Settings struct {
	Server     ServerSettings     `mapstructure:"server"`
	Configs    ConfigSettings     `mapstructure:"configs"`
	Logging    LoggingSettings    `mapstructure:"logging"`
	Scheduler  SchedulerSettings  `mapstructure:"scheduler"`
	Sessions   SessionSettings    `mapstructure:"sessions"`
	Results    ResultsSettings    `mapstructure:"results"`
	Journal    JournalSettings    `mapstructure:"journal"`
	Commentary CommentarySettings `mapstructure:"commentary"`
	Ngrok      NgrokSettings      `mapstructure:"ngrok"`
}

// ServerSettings holds the HTTP listener configuration
type ServerSettings struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// ConfigSettings locates board configuration files
type ConfigSettings struct {
	Dir     string `mapstructure:"dir"`
	Default string `mapstructure:"default"`
}

// LoggingSettings holds logging configuration
type LoggingSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SchedulerSettings scales every presentation delay. 0 fires transitions immediately.
type SchedulerSettings struct {
	DelayScale float64 `mapstructure:"delay_scale"`
}

// SessionSettings controls idle session cleanup
type SessionSettings struct {
	MaxIdle         time.Duration `mapstructure:"max_idle"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// ResultsSettings locates the finished-game database. An empty path disables it.
type ResultsSettings struct {
	Path string `mapstructure:"path"`
}

// JournalSettings locates the event journal. An empty dir disables it.
type JournalSettings struct {
	Dir string `mapstructure:"dir"`
}

// CommentarySettings points at an optional remote commentary service
type CommentarySettings struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// NgrokSettings configures the optional public tunnel
type NgrokSettings struct {
	Enabled   bool   `mapstructure:"enabled"`
	AuthToken string `mapstructure:"authtoken"`
	Domain    string `mapstructure:"domain"`
}

// Load reads settings from path (optional) and the environment
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Default returns the settings used when nothing is configured
func Default() *Settings {
	s, err := Load("")
	if err != nil {
		panic(err)
	}
	return s
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)

	v.SetDefault("configs.dir", "./configs")
	v.SetDefault("configs.default", "classic")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("scheduler.delay_scale", 1.0)

	v.SetDefault("sessions.max_idle", "24h")
	v.SetDefault("sessions.cleanup_interval", "10m")

	v.SetDefault("results.path", "./data/results.db")
	v.SetDefault("journal.dir", "./data/journal")

	v.SetDefault("commentary.url", "")
	v.SetDefault("commentary.timeout", "2s")

	v.SetDefault("ngrok.enabled", false)
	v.SetDefault("ngrok.authtoken", "")
	v.SetDefault("ngrok.domain", "")
}

// Validate checks that all settings are usable
func (s *Settings) Validate() error {
	if s.Server.Port < 0 || s.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535")
	}
	if s.Configs.Dir == "" {
		return fmt.Errorf("configs.dir is required")
	}
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[s.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[s.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}
	if s.Scheduler.DelayScale < 0 {
		return fmt.Errorf("scheduler.delay_scale must not be negative")
	}
	if s.Sessions.MaxIdle < time.Minute {
		return fmt.Errorf("sessions.max_idle must be at least 1 minute")
	}
	if s.Sessions.CleanupInterval <= 0 {
		return errors.New("sessions.cleanup_interval must be positive")
	}
	if s.Ngrok.Enabled && s.Ngrok.AuthToken == "" {
		return fmt.Errorf("ngrok.authtoken is required when ngrok is enabled")
	}
	return nil
}

// Addr returns host:port for the HTTP listener
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Server.Host, s.Server.Port)
}
