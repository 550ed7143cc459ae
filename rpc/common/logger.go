package common

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/rs/zerolog"
)

// loggerNames lists the package loggers of the ledger client
var loggerNames = []string{
	"client",
	"executor",
	"gateway",
	"transport/rpc",
	"packet",
}

// --------------------------------------------------------------------------
// Custom Logger (implements dragonboats logger.ILogger)
// --------------------------------------------------------------------------

// ledgerLogger implements the ILogger interface on top of zerolog
type ledgerLogger struct {
	mu     sync.RWMutex
	level  logger.LogLevel
	logger zerolog.Logger
}

func (l *ledgerLogger) SetLevel(level logger.LogLevel) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

func (l *ledgerLogger) enabled(level logger.LogLevel) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level >= level
}

func (l *ledgerLogger) Debugf(format string, args ...interface{}) {
	if l.enabled(logger.DEBUG) {
		l.logger.Debug().Msgf(format, args...)
	}
}

func (l *ledgerLogger) Infof(format string, args ...interface{}) {
	if l.enabled(logger.INFO) {
		l.logger.Info().Msgf(format, args...)
	}
}

func (l *ledgerLogger) Warningf(format string, args ...interface{}) {
	if l.enabled(logger.WARNING) {
		l.logger.Warn().Msgf(format, args...)
	}
}

func (l *ledgerLogger) Errorf(format string, args ...interface{}) {
	if l.enabled(logger.ERROR) {
		l.logger.Error().Msgf(format, args...)
	}
}

func (l *ledgerLogger) Panicf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.logger.Error().Msg(msg)
	panic(msg)
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

var (
	logOutput   io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	logOutputMu sync.Mutex
	initOnce    sync.Once
)

// SetLogOutput replaces the writer used by loggers created afterwards
func SetLogOutput(w io.Writer) {
	logOutputMu.Lock()
	logOutput = w
	logOutputMu.Unlock()
}

// CreateLogger implements dragonboats logger.Factory
func CreateLogger(pkgName string) logger.ILogger {
	logOutputMu.Lock()
	out := logOutput
	logOutputMu.Unlock()

	return &ledgerLogger{
		level:  logger.INFO,
		logger: zerolog.New(out).With().Timestamp().Str("pkg", pkgName).Logger(),
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ParseLogLevel converts a string level to logger.LogLevel
func ParseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logger.DEBUG, nil
	case "", "info":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// InitLoggers installs the zerolog backed logger factory (once per process)
// and sets the level of all ledger loggers
func InitLoggers(level string) error {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return err
	}

	initOnce.Do(func() {
		logger.SetLoggerFactory(CreateLogger)
	})

	for _, name := range loggerNames {
		logger.GetLogger(name).SetLevel(lvl)
	}
	return nil
}
