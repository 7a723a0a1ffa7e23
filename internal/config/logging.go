package config

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger configures the standard logrus logger from cfg and returns it.
// An unknown level falls back to info.
func NewLogger(cfg LogConfig) *logrus.Logger {
	return configureLogger(logrus.StandardLogger(), cfg, os.Stdout)
}

func configureLogger(logger *logrus.Logger, cfg LogConfig, out io.Writer) *logrus.Logger {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetOutput(out)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
