package config

import (
	"log/slog"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/examflow")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("default port wrong: %q", cfg.Port)
	}
	if cfg.Environment != "development" {
		t.Errorf("default environment wrong: %q", cfg.Environment)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("default token ttl wrong: %v", cfg.TokenTTL)
	}
	if cfg.AutosaveDelay != 1500*time.Millisecond {
		t.Errorf("default autosave delay wrong: %v", cfg.AutosaveDelay)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Errorf("brokers should be empty by default: %v", cfg.KafkaBrokers)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("AUTOSAVE_DELAY", "500ms")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port override lost: %q", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("log level override lost: %v", cfg.LogLevel)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Errorf("brokers not parsed: %v", cfg.KafkaBrokers)
	}
	if cfg.TokenTTL != time.Hour || cfg.AutosaveDelay != 500*time.Millisecond {
		t.Errorf("durations not parsed: %v %v", cfg.TokenTTL, cfg.AutosaveDelay)
	}
}

func TestLoadConfig_Validation(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "x")
	if _, err := LoadConfig(); err == nil {
		t.Error("missing DATABASE_URL must fail")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/examflow")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ENVIRONMENT", "production")
	if _, err := LoadConfig(); err == nil {
		t.Error("production without JWT_SECRET must fail")
	}

	t.Setenv("ENVIRONMENT", "development")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.JWTSecret == "" {
		t.Error("development should fall back to a dev secret")
	}

	t.Setenv("TOKEN_TTL", "not-a-duration")
	if _, err := LoadConfig(); err == nil {
		t.Error("invalid TOKEN_TTL must fail")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
