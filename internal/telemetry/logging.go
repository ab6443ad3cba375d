package telemetry

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/terraconstructs/sandaran/internal/config"
)

// NewLogger builds the process logger. debug forces the debug level.
func NewLogger(cfg config.LogConfig, debug bool) (*logrus.Logger, error) {
	return newLogger(os.Stderr, cfg, debug)
}

func newLogger(out io.Writer, cfg config.LogConfig, debug bool) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}
	if debug && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}
