// Package logging собирает logrus логгер из конфигурации.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig вывод в файл с ротацией
type FileConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Path       string `mapstructure:"path" yaml:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// Config настройки логирования
type Config struct {
	Level  string     `mapstructure:"level" yaml:"level"`
	Format string     `mapstructure:"format" yaml:"format"`
	File   FileConfig `mapstructure:"file" yaml:"file"`
}

// Logger логгер и его файловый вывод. Close закрывает файл, если он открыт.
type Logger struct {
	*logrus.Logger
	file *lumberjack.Logger
}

// New создает логгер, пишущий в stdout и, если включено, в файл
func New(cfg Config) (*Logger, error) {
	return NewWithOutput(cfg, os.Stdout)
}

// NewWithOutput как New, но консольный вывод идет в out
func NewWithOutput(cfg Config, out io.Writer) (*Logger, error) {
	l := logrus.New()

	level := logrus.InfoLevel
	if cfg.Level != "" {
		var err error
		level, err = logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}
	l.SetLevel(level)

	switch cfg.Format {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	res := &Logger{Logger: l}
	if !cfg.File.Enabled {
		l.SetOutput(out)
		return res, nil
	}

	if cfg.File.Path == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	res.file = &lumberjack.Logger{
		Filename:   cfg.File.Path,
		MaxSize:    cfg.File.MaxSizeMB, // мегабайты
		MaxBackups: cfg.File.MaxBackups,
		MaxAge:     cfg.File.MaxAgeDays, // дни
		Compress:   cfg.File.Compress,
	}
	l.SetOutput(io.MultiWriter(out, res.file))
	return res, nil
}

// Close закрывает файловый вывод
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
