package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error for missing file: %v", err)
	}
	if cfg.Server.Addr != DefaultHTTPAddr {
		t.Errorf("expected default addr %s, got %s", DefaultHTTPAddr, cfg.Server.Addr)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Log.Level)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[log]
level = "debug"

[server]
addr = ":8090"

[telegram]
bot_token = "123:abc"
admin_chat_id = 4242

[links]
webapp_url = "https://example.com/app"

[relay]
typing_interval = "2s"
message_ttl = "10m"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Addr != ":8090" {
		t.Errorf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Telegram.BotToken != "123:abc" {
		t.Errorf("unexpected bot token: %s", cfg.Telegram.BotToken)
	}
	if cfg.Telegram.AdminChatID != 4242 {
		t.Errorf("unexpected admin chat id: %d", cfg.Telegram.AdminChatID)
	}
	if cfg.Relay.TypingPeriod() != 2*time.Second {
		t.Errorf("unexpected typing period: %v", cfg.Relay.TypingPeriod())
	}
	if cfg.Relay.MessageLifetime() != 10*time.Minute {
		t.Errorf("unexpected message lifetime: %v", cfg.Relay.MessageLifetime())
	}
}

func TestRelayDurationFallbacks(t *testing.T) {
	relay := RelayConfig{TypingInterval: "not-a-duration", MessageTTL: "-5m"}
	if relay.TypingPeriod() != DefaultTypingInterval {
		t.Errorf("expected fallback typing interval, got %v", relay.TypingPeriod())
	}
	if relay.MessageLifetime() != DefaultMessageTTL {
		t.Errorf("expected fallback message ttl, got %v", relay.MessageLifetime())
	}
	if relay.RetentionPeriod() != DefaultRetention {
		t.Errorf("expected fallback retention, got %v", relay.RetentionPeriod())
	}
	if relay.Sweep() != DefaultSweepSchedule {
		t.Errorf("expected fallback sweep schedule, got %s", relay.Sweep())
	}
}

func TestValidate(t *testing.T) {
	var cfg Config
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty config")
	}

	cfg.Telegram.BotToken = "123:abc"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing admin chat id")
	}

	cfg.Telegram.AdminChatID = 1
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
