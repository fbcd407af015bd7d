package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all service settings, populated from environment variables
// and, when CONFIG_FILE is set, a YAML file.
type Config struct {
	DataFile        string        `yaml:"data_file" env:"DATA_FILE" env-default:"datapolice.xlsx" validate:"required"`
	HTTPAddr        string        `yaml:"http_addr" env:"HTTP_ADDR" env-default:":8080" validate:"required"`
	LogLevel        string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	LogFormat       string        `yaml:"log_format" env:"LOG_FORMAT" env-default:"json" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s" validate:"gt=0"`

	PreviewRows      int    `yaml:"preview_rows" env:"PREVIEW_ROWS" env-default:"0" validate:"gte=0"`
	SummaryCacheSize int    `yaml:"summary_cache_size" env:"SUMMARY_CACHE_SIZE" env-default:"256" validate:"gte=1"`
	ReloadSchedule   string `yaml:"reload_schedule" env:"RELOAD_SCHEDULE"`

	// Map configuration. The access token is never compiled in.
	MapboxToken   string        `yaml:"mapbox_token" env:"MAPBOX_TOKEN"`
	MapboxEnabled bool          `yaml:"-"`
	MapboxStyle   string        `yaml:"mapbox_style" env:"MAPBOX_STYLE" env-default:"mapbox://styles/mapbox/streets-v12" validate:"required"`
	MapboxTimeout time.Duration `yaml:"mapbox_timeout" env:"MAPBOX_TIMEOUT" env-default:"5s" validate:"gt=0"`
	MapZoom       float64       `yaml:"map_zoom" env:"MAP_ZOOM" env-default:"12" validate:"gte=0,lte=22"`

	// Optional incident export.
	KafkaBrokers []string `yaml:"kafka_brokers" env:"KAFKA_BROKERS" env-separator:","`
	KafkaTopic   string   `yaml:"kafka_topic" env:"KAFKA_TOPIC" env-default:"danger-zones-incidents"`

	// Live update limits per websocket connection.
	WSMessageRate  float64 `yaml:"ws_message_rate" env:"WS_MESSAGE_RATE" env-default:"5" validate:"gt=0"`
	WSMessageBurst int     `yaml:"ws_message_burst" env:"WS_MESSAGE_BURST" env-default:"10" validate:"gte=1"`
}

// ExportEnabled reports whether incident export to Kafka is configured.
func (c *Config) ExportEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from CONFIG_FILE (if set) and the environment,
// applying defaults where unset.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	cfg.KafkaBrokers = trimEmpty(cfg.KafkaBrokers)

	cfg.MapboxEnabled = cfg.MapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		cfg.MapboxEnabled = v == "true"
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if cfg.ExportEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report env var names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})

	err := v.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("invalid %s: failed %q", fe.Field(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func trimEmpty(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
