package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"promotion-console/internal/config"

	"github.com/sirupsen/logrus"
)

// Logger оборачивает logrus, чтобы зависимости получали единый тип.
type Logger struct {
	*logrus.Logger
}

// New создает логгер по конфигурации. Вывод идёт в stderr (stdout занят выводом CLI)
// либо в файл, если он задан и открывается.
func New(cfg *config.LoggerConfig) *Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}

	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.WithError(err).WithField("file", cfg.File).Warn("Failed to open log file, using stderr")
		} else {
			log.SetOutput(file)
		}
	}

	return &Logger{Logger: log}
}

// Discard возвращает логгер без вывода.
func Discard() *Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &Logger{Logger: log}
}
