package common

import (
	"strings"
	"testing"
	"time"

	"github.com/dododb/dodo/lib/store"
)

func validConfig() ServerConfig {
	return ServerConfig{
		Endpoint:                ":8080",
		ServerVersion:           "test",
		SnapshotPath:            "snapshot.json",
		SnapshotIntervalSeconds: 15,
		RetentionSeconds:        -1,
		WebhookTimeoutSecond:    5,
		ShutdownTimeoutSecond:   10,
		LogLevel:                "info",
	}
}

func TestServerConfigRetention(t *testing.T) {
	config := validConfig()
	if config.Retention() != nil {
		t.Errorf("Expected no retention for RetentionSeconds=-1")
	}
	if config.CleanupEnabled() {
		t.Errorf("Cleanup must be disabled without retention")
	}

	config.RetentionSeconds = 0
	if r := config.Retention(); r == nil || *r != 0 {
		t.Errorf("Expected a zero retention, got %v", r)
	}
	if config.CleanupEnabled() {
		t.Errorf("Cleanup must be disabled without an interval")
	}

	config.RetentionSeconds = 60
	config.CleanupIntervalSeconds = 10
	if r := config.Retention(); r == nil || *r != time.Minute {
		t.Errorf("Expected a retention of one minute, got %v", r)
	}
	if !config.CleanupEnabled() {
		t.Errorf("Cleanup must be enabled with retention and interval")
	}
	if !strings.Contains(config.String(), "60 sec") {
		t.Errorf("Expected the retention in the config string:\n%s", config.String())
	}
}

func TestServerConfigValidate(t *testing.T) {
	config := validConfig()
	if err := config.Validate(); err != nil {
		t.Fatalf("Expected a valid config, got %v", err)
	}

	tests := []struct {
		name   string
		modify func(c *ServerConfig)
	}{
		{"empty endpoint", func(c *ServerConfig) { c.Endpoint = "" }},
		{"empty snapshot path", func(c *ServerConfig) { c.SnapshotPath = "" }},
		{"zero snapshot interval", func(c *ServerConfig) { c.SnapshotIntervalSeconds = 0 }},
		{"negative webhook timeout", func(c *ServerConfig) { c.WebhookTimeoutSecond = -1 }},
		{"zero shutdown timeout", func(c *ServerConfig) { c.ShutdownTimeoutSecond = 0 }},
		{"unknown log level", func(c *ServerConfig) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.modify(&c)
			if err := c.Validate(); err == nil {
				t.Errorf("Expected a validation error")
			}
		})
	}
}

func TestStatusCodeMapping(t *testing.T) {
	codes := []store.RetCode{
		store.RetCSuccess,
		store.RetCNotFound,
		store.RetCDecodeError,
		store.RetCInvalidValue,
		store.RetCInternalError,
	}
	for _, code := range codes {
		if got := CodeFromStatus(StatusFromCode(code)); got != code {
			t.Errorf("Round trip of %s returned %s", code, got)
		}
	}
}
