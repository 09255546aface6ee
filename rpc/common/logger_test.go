package common

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lni/dragonboat/v4/logger"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]logger.LogLevel{
		"debug":   logger.DEBUG,
		"INFO":    logger.INFO,
		"warn":    logger.WARNING,
		"warning": logger.WARNING,
		"error":   logger.ERROR,
	}
	for input, want := range tests {
		got, err := ParseLogLevel(input)
		if err != nil || got != want {
			t.Errorf("ParseLogLevel(%q) = %v, %v; want %v", input, got, err, want)
		}
	}
	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Errorf("Expected an error for an unknown level")
	}
}

func TestDodoLogger(t *testing.T) {
	var out bytes.Buffer
	prev := LogOutput
	LogOutput = &out
	defer func() { LogOutput = prev }()

	l := CreateLogger("persistence")
	l.Debugf("hidden %d", 1)
	l.Infof("loaded %d entries", 3)

	if strings.Contains(out.String(), "hidden") {
		t.Errorf("Debug message written at INFO level:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "INFO  | persistence     | loaded 3 entries") {
		t.Errorf("Unexpected log line:\n%s", out.String())
	}

	out.Reset()
	l.SetLevel(logger.ERROR)
	l.Warningf("dropped")
	if out.Len() != 0 {
		t.Errorf("Warning written at ERROR level:\n%s", out.String())
	}
	l.Errorf("failed")
	if !strings.Contains(out.String(), "ERROR | persistence     | failed") {
		t.Errorf("Unexpected log line:\n%s", out.String())
	}
}
