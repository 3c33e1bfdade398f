package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const envPrefix = "BODEGA"

type AppConfig struct {
	API       *APIConfig       `mapstructure:"api"`
	Gin       *GinConfig       `mapstructure:"gin"`
	Postgres  *PostgresConfig  `mapstructure:"postgres"`
	Logger    *LoggerConfig    `mapstructure:"logger"`
	WhatsApp  *WhatsAppConfig  `mapstructure:"whatsapp"`
	Email     *EmailConfig     `mapstructure:"email"`
	Sales     *SalesConfig     `mapstructure:"sales"`
	Reminders *RemindersConfig `mapstructure:"reminders"`
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment"`
	Port               string        `mapstructure:"port"`
	BaseURL            string        `mapstructure:"base_url"`
	PublicURL          string        `mapstructure:"public_url"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	JWTTTL             time.Duration `mapstructure:"jwt_ttl"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"ssl_mode"`
	TimeZone string `mapstructure:"time_zone"`
}

// LoggerConfig enables an additional rotated log file when Filename is set.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type WhatsAppConfig struct {
	// Provider is "log" or "cloudapi".
	Provider      string        `mapstructure:"provider"`
	BaseURL       string        `mapstructure:"base_url"`
	PhoneNumberID string        `mapstructure:"phone_number_id"`
	AccessToken   string        `mapstructure:"access_token"`
	Language      string        `mapstructure:"language"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Workers       int           `mapstructure:"workers"`
}

type EmailConfig struct {
	// Provider is "log" or "smtp".
	Provider     string        `mapstructure:"provider"`
	From         string        `mapstructure:"from"`
	SMTPHost     string        `mapstructure:"smtp_host"`
	SMTPPort     int           `mapstructure:"smtp_port"`
	SMTPUser     string        `mapstructure:"smtp_user"`
	SMTPPassword string        `mapstructure:"smtp_password"`
	LogDelay     time.Duration `mapstructure:"log_delay"`
}

type SalesConfig struct {
	NodeID         int64  `mapstructure:"node_id"`
	CreditTermDays int    `mapstructure:"credit_term_days"`
	Location       string `mapstructure:"location"`
	LowStockLimit  int    `mapstructure:"low_stock_limit"`
}

type RemindersConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.public_url", "http://localhost:3000")
	v.SetDefault("api.jwt_signing_key", "")
	v.SetDefault("api.jwt_ttl", 24*time.Hour)
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:3000"})
	v.SetDefault("api.shutdown_timeout", 10*time.Second)

	v.SetDefault("gin.mode", "debug")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db", "")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.time_zone", "America/Lima")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.max_size_mb", 64)
	v.SetDefault("logger.max_backups", 7)
	v.SetDefault("logger.max_age_days", 7)

	v.SetDefault("whatsapp.provider", "log")
	v.SetDefault("whatsapp.base_url", "https://graph.facebook.com/v19.0")
	v.SetDefault("whatsapp.language", "es")
	v.SetDefault("whatsapp.timeout", 10*time.Second)
	v.SetDefault("whatsapp.workers", 4)

	v.SetDefault("email.provider", "log")
	v.SetDefault("email.from", "BodegaApp <no-reply@bodegaapp.pe>")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.log_delay", 500*time.Millisecond)

	v.SetDefault("sales.node_id", 1)
	v.SetDefault("sales.credit_term_days", 7)
	v.SetDefault("sales.location", "America/Lima")
	v.SetDefault("sales.low_stock_limit", 5)

	v.SetDefault("reminders.enabled", true)
	v.SetDefault("reminders.schedule", "0 0 9 * * *")
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return v
}

// Load reads the YAML file at path. Every key can be overridden with an
// environment variable, e.g. BODEGA_API_PORT for api.port.
func Load(path string) (*AppConfig, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if conf.API.JWTSigningKey == "" {
		return nil, fmt.Errorf("api.jwt_signing_key is required")
	}

	return conf, nil
}

// Watch reloads the file on every write and hands the new config to onChange.
// Invalid intermediate states are skipped.
func Watch(path string, onChange func(*AppConfig)) error {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		conf, err := unmarshal(v)
		if err != nil {
			return
		}
		onChange(conf)
	})
	v.WatchConfig()

	return nil
}
