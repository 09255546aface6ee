package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters of a dodo server.
type ServerConfig struct {
	// HTTP api settings
	Endpoint      string
	ServerVersion string

	// Persistence
	SnapshotPath            string
	SnapshotIntervalSeconds int64
	// RetentionSeconds < 0 means no retention window is configured
	RetentionSeconds int64
	// CleanupIntervalSeconds <= 0 disables the cleanup loop
	CleanupIntervalSeconds int64

	// Webhooks
	WebhookTimeoutSecond int64

	// Lifecycle
	ShutdownTimeoutSecond int64

	// Logging configuration
	LogLevel string
}

// Retention returns the retention window or nil if none is configured.
func (c *ServerConfig) Retention() *time.Duration {
	if c.RetentionSeconds < 0 {
		return nil
	}
	d := time.Duration(c.RetentionSeconds) * time.Second
	return &d
}

// CleanupEnabled reports whether the cleanup loop should run.
// This requires both a retention window and a cleanup interval.
func (c *ServerConfig) CleanupEnabled() bool {
	return c.RetentionSeconds >= 0 && c.CleanupIntervalSeconds > 0
}

// Validate checks the configuration for values the server can not work with.
func (c *ServerConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint must not be empty")
	}
	if c.SnapshotPath == "" {
		return fmt.Errorf("snapshot path must not be empty")
	}
	if c.SnapshotIntervalSeconds <= 0 {
		return fmt.Errorf("snapshot interval must be positive, got %d", c.SnapshotIntervalSeconds)
	}
	if c.WebhookTimeoutSecond < 0 {
		return fmt.Errorf("webhook timeout must not be negative, got %d", c.WebhookTimeoutSecond)
	}
	if c.ShutdownTimeoutSecond <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %d", c.ShutdownTimeoutSecond)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// HTTP settings
	addSection("HTTP Server")
	addField("Endpoint", c.Endpoint)
	addField("Version", c.ServerVersion)
	addField("Shutdown Timeout", fmt.Sprintf("%d sec", c.ShutdownTimeoutSecond))

	// Persistence
	addSection("Persistence")
	addField("Snapshot Path", c.SnapshotPath)
	addField("Snapshot Interval", fmt.Sprintf("%d sec", c.SnapshotIntervalSeconds))
	if c.RetentionSeconds < 0 {
		addField("Retention", "unlimited")
	} else {
		addField("Retention", fmt.Sprintf("%d sec", c.RetentionSeconds))
	}
	if c.CleanupEnabled() {
		addField("Cleanup Interval", fmt.Sprintf("%d sec", c.CleanupIntervalSeconds))
	} else {
		addField("Cleanup Interval", "disabled")
	}

	// Webhooks
	addSection("Webhooks")
	addField("Timeout", fmt.Sprintf("%d sec", c.WebhookTimeoutSecond))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	Endpoints     []string
	TimeoutSecond int
	RetryCount    int
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.RetryCount))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
