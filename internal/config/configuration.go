package config

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	// WebServer Configuration
	WebServerPort int `mapstructure:"WEBSERVER_PORT" validate:"min=1,max=65535"`

	// Database Configuration; an empty DSN keeps sessions in memory
	DatabaseDSN     string `mapstructure:"DATABASE_DSN"`
	DatabaseRetries int    `mapstructure:"DATABASE_RETRIES" validate:"min=1"`

	// Effect server
	EffectsBaseURL string        `mapstructure:"EFFECTS_BASE_URL" validate:"required,url"`
	EffectsTimeout time.Duration `mapstructure:"EFFECTS_TIMEOUT" validate:"min=1s"`

	// Editor
	UploadMaxBytes     int64         `mapstructure:"UPLOAD_MAX_BYTES" validate:"min=1"`
	ExportQuality      int           `mapstructure:"EXPORT_QUALITY" validate:"min=1,max=100"`
	SessionSecret      string        `mapstructure:"SESSION_SECRET"`
	SessionIdleTimeout time.Duration `mapstructure:"SESSION_IDLE_TIMEOUT" validate:"min=1m"`
}

// LogValue keeps the session secret and database credentials out of logs.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("webserver_port", c.WebServerPort),
		slog.Bool("database", c.DatabaseDSN != ""),
		slog.Int("database_retries", c.DatabaseRetries),
		slog.String("effects_base_url", c.EffectsBaseURL),
		slog.Duration("effects_timeout", c.EffectsTimeout),
		slog.Int64("upload_max_bytes", c.UploadMaxBytes),
		slog.Int("export_quality", c.ExportQuality),
		slog.Bool("session_secret", c.SessionSecret != ""),
		slog.Duration("session_idle_timeout", c.SessionIdleTimeout),
	)
}

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(c Config) {
	val := reflect.ValueOf(c)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		fieldVal := val.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag != "" {
			viper.BindEnv(tag)
		}

		// Handle nested structs
		if field.Type.Kind() == reflect.Struct && tag == "" {
			nestedTyp := fieldVal.Type()
			for j := 0; j < fieldVal.NumField(); j++ {
				nestedField := nestedTyp.Field(j)
				nestedTag := nestedField.Tag.Get("mapstructure")
				if nestedTag != "" {
					viper.BindEnv(nestedTag)
				}
			}
		}
	}
	slog.Debug("Environment variables bound", "fields", typ.NumField())
}

func LoadConfig(ctx context.Context) (*Config, error) {
	bindEnv(Config{})
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("WEBSERVER_PORT", 8080)
	viper.SetDefault("DATABASE_RETRIES", 10)
	viper.SetDefault("EFFECTS_TIMEOUT", "60s")
	viper.SetDefault("UPLOAD_MAX_BYTES", 10<<20)
	viper.SetDefault("EXPORT_QUALITY", 90)
	viper.SetDefault("SESSION_IDLE_TIMEOUT", "2h")

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	slog.Info("Loaded configuration", "config", cfg)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
