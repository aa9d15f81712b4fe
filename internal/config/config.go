// Package config загрузка конфигурации через viper.
//
// Порядок приоритетов: флаги, переменные окружения SCCP_TESTER_*,
// файл конфигурации, значения по умолчанию. Ключ server.host
// соответствует переменной SCCP_TESTER_SERVER_HOST.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/arzzra/sccp_tester/internal/logging"
)

// EnvPrefix префикс переменных окружения
const EnvPrefix = "SCCP_TESTER"

// Config конфигурация тестера
type Config struct {
	Server  ServerConfig   `mapstructure:"server" yaml:"server"`
	Devices DevicesConfig  `mapstructure:"devices" yaml:"devices"`
	Wait    WaitConfig     `mapstructure:"wait" yaml:"wait"`
	Events  EventsConfig   `mapstructure:"events" yaml:"events"`
	Log     logging.Config `mapstructure:"log" yaml:"log"`
	Metrics MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
}

// ServerConfig адрес сервера управления вызовами
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// DevicesConfig эмулируемые устройства
type DevicesConfig struct {
	Names        []string `mapstructure:"names" yaml:"names"`
	Type         uint32   `mapstructure:"type" yaml:"type"`
	ProtoVersion uint8    `mapstructure:"proto_version" yaml:"proto_version"`
}

// WaitConfig ожидание событий
type WaitConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// EventsConfig буфер событий группы
type EventsConfig struct {
	BufferSize int `mapstructure:"buffer_size" yaml:"buffer_size"`
}

// MetricsConfig HTTP endpoint метрик
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Listen  string `mapstructure:"listen" yaml:"listen"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// New создает viper с умолчаниями и чтением окружения.
// Флаги командной строки привязываются к нему через BindPFlag.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 2000)

	v.SetDefault("devices.names", []string{"SEP001122334401", "SEP001122334402"})
	v.SetDefault("devices.type", 8) // 7940
	v.SetDefault("devices.proto_version", 11)

	v.SetDefault("wait.timeout", "10s")
	v.SetDefault("events.buffer_size", 4096)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file.enabled", false)
	v.SetDefault("log.file.path", "")
	v.SetDefault("log.file.max_size_mb", 100)
	v.SetDefault("log.file.max_backups", 5)
	v.SetDefault("log.file.max_age_days", 30)
	v.SetDefault("log.file.compress", false)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", ":9400")
	v.SetDefault("metrics.path", "/metrics")
}

// Load читает файл path (если задан) и собирает конфигурацию
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate проверяет конфигурацию перед запуском сценария
func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if len(c.Devices.Names) == 0 {
		return fmt.Errorf("devices.names is empty")
	}
	for _, name := range c.Devices.Names {
		if name == "" {
			return fmt.Errorf("devices.names contains an empty name")
		}
	}
	if c.Wait.Timeout <= 0 {
		return fmt.Errorf("wait.timeout must be positive")
	}
	if c.Events.BufferSize <= 0 {
		return fmt.Errorf("events.buffer_size must be positive")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path %q must start with /", c.Metrics.Path)
	}
	return nil
}

// Dump итоговая конфигурация в YAML
func Dump(c *Config) ([]byte, error) {
	return yaml.Marshal(c)
}
