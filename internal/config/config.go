// Package config loads and exposes application configuration (TOML).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath     = "config.toml"
	DefaultHTTPAddr       = ":3000"
	DefaultTypingInterval = 4 * time.Second
	DefaultMessageTTL     = 30 * time.Minute
	DefaultRetention      = 24 * time.Hour
	DefaultSweepSchedule  = "@every 1h"
)

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Telegram TelegramConfig `toml:"telegram"`
	Links    LinksConfig    `toml:"links"`
	Relay    RelayConfig    `toml:"relay"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServerConfig holds the HTTP server listen address.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// TelegramConfig holds the bot credential and the reviewer chat.
// Both fields are required for the process to start.
type TelegramConfig struct {
	BotToken    string `toml:"bot_token"`
	AdminChatID int64  `toml:"admin_chat_id"`
}

// LinksConfig holds redirect targets for the /webapp and /website routes.
// Either may be empty; the matching route then responds with an error.
type LinksConfig struct {
	WebAppURL  string `toml:"webapp_url"`
	WebsiteURL string `toml:"website_url"`
}

// RelayConfig holds the relay timing knobs as Go duration strings (e.g. "4s", "30m").
type RelayConfig struct {
	TypingInterval string `toml:"typing_interval"`
	MessageTTL     string `toml:"message_ttl"`
	Retention      string `toml:"retention"`
	SweepSchedule  string `toml:"sweep_schedule"`
}

// TypingPeriod returns the presence-loop tick interval.
func (c RelayConfig) TypingPeriod() time.Duration {
	return parseDuration(c.TypingInterval, DefaultTypingInterval)
}

// MessageLifetime returns the delay before a sent ephemeral message is deleted.
func (c RelayConfig) MessageLifetime() time.Duration {
	return parseDuration(c.MessageTTL, DefaultMessageTTL)
}

// RetentionPeriod returns how long undecided submissions are kept before eviction.
func (c RelayConfig) RetentionPeriod() time.Duration {
	return parseDuration(c.Retention, DefaultRetention)
}

// Sweep returns the cron pattern for the submission eviction sweep.
func (c RelayConfig) Sweep() string {
	if strings.TrimSpace(c.SweepSchedule) == "" {
		return DefaultSweepSchedule
	}
	return c.SweepSchedule
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// Validate reports the required fields that are missing; the caller treats any
// returned error as fatal at startup.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Telegram.BotToken) == "" {
		missing = append(missing, "telegram.bot_token")
	}
	if c.Telegram.AdminChatID == 0 {
		missing = append(missing, "telegram.admin_chat_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Load reads and parses the TOML config file at path and applies default values for missing fields.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
