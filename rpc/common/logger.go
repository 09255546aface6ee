package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/lni/dragonboat/v4/logger"
)

// LoggerNames lists the loggers used by the dodo packages.
var LoggerNames = []string{
	"store",
	"persistence",
	"pubsub",
	"rpc",
	"transport/rpc",
}

// --------------------------------------------------------------------------
// Custom Logger (implements dragonboats logger.ILogger)
// --------------------------------------------------------------------------

// dodoLogger implements the ILogger interface with custom formatting.
// The level can be changed while other goroutines are logging (config reload).
type dodoLogger struct {
	name  string
	level atomic.Int32
	out   *log.Logger
}

func (l *dodoLogger) SetLevel(level logger.LogLevel) {
	l.level.Store(int32(level))
}

func (l *dodoLogger) enabled(level logger.LogLevel) bool {
	return logger.LogLevel(l.level.Load()) >= level
}

func (l *dodoLogger) Debugf(format string, args ...interface{}) {
	if l.enabled(logger.DEBUG) {
		l.log("DEBUG", format, args...)
	}
}

func (l *dodoLogger) Infof(format string, args ...interface{}) {
	if l.enabled(logger.INFO) {
		l.log("INFO", format, args...)
	}
}

func (l *dodoLogger) Warningf(format string, args ...interface{}) {
	if l.enabled(logger.WARNING) {
		l.log("WARN", format, args...)
	}
}

func (l *dodoLogger) Errorf(format string, args ...interface{}) {
	if l.enabled(logger.ERROR) {
		l.log("ERROR", format, args...)
	}
}

func (l *dodoLogger) Panicf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	l.log("PANIC", "%s", message)
	panic(message)
}

func (l *dodoLogger) log(levelStr string, format string, args ...interface{}) {
	l.out.Printf("%-5s | %-15s | %s", levelStr, l.name, fmt.Sprintf(format, args...))
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

// LogOutput is the destination of all loggers created by CreateLogger.
var LogOutput io.Writer = os.Stdout

// CreateLogger implements dragonboats logger.Factory
func CreateLogger(pkgName string) logger.ILogger {
	l := &dodoLogger{
		name: pkgName,
		out:  log.New(LogOutput, "", log.Ldate|log.Ltime),
	}
	l.SetLevel(logger.INFO)
	return l
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ParseLogLevel converts a string level to logger.LogLevel
func ParseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG, nil
	case "info":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return logger.INFO, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// InitLoggers installs the custom logger factory and applies the configured level
// to all loggers. It must be called before the first log line is written, loggers
// created before the factory is installed keep the default format.
func InitLoggers(config ServerConfig) error {
	logger.SetLoggerFactory(CreateLogger)
	return SetLogLevel(config.LogLevel)
}

// SetLogLevel applies level to all dodo loggers. It can be called at runtime.
func SetLogLevel(level string) error {
	parsed, err := ParseLogLevel(level)
	if err != nil {
		return err
	}
	for _, name := range LoggerNames {
		logger.GetLogger(name).SetLevel(parsed)
	}
	return nil
}
