package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Database drivers understood by the database package.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName        string
	AppEnv         string
	AppPort        string
	DatabaseDriver string
	DatabaseURL    string
	RedisURL       string
	NATSURL        string
	EventsSubject  string
	Mail           MailConfig
	Log            LogConfig
	DedupeTTL      time.Duration
	RateLimit      int
	SeedEnabled    bool
	SeedToken      string
	AdminToken     string
}

// MailConfig configures the result mail delivery.
type MailConfig struct {
	From         string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MaxRetries   int
	PollInterval time.Duration
	QueueKey     string
}

// LogConfig controls log level and the optional rotated log file.
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// SMTPEnabled reports whether mails go out over SMTP instead of the log.
func (m MailConfig) SMTPEnabled() bool {
	return m.SMTPHost != ""
}

// SMTPAddress returns host:port of the SMTP relay.
func (m MailConfig) SMTPAddress() string {
	return fmt.Sprintf("%s:%d", m.SMTPHost, m.SMTPPort)
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("COLORINGBOOK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "ColoringBook API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("events.subject", "coloringbook.submission.stored")
	v.SetDefault("mail.from", "coloringbook@localhost")
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.max_retries", 3)
	v.SetDefault("mail.poll_interval", "2s")
	v.SetDefault("mail.queue_key", "coloringbook:mail")
	v.SetDefault("submission.dedupe_ttl", "10m")
	v.SetDefault("submission.rate_limit", 30)
	v.SetDefault("seed.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)

	pollInterval, err := parseDuration(v.GetString("mail.poll_interval"), 2*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid mail poll interval: %w", err)
	}

	dedupeTTL, err := parseDuration(v.GetString("submission.dedupe_ttl"), 10*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid submission dedupe ttl: %w", err)
	}

	cfg := Config{
		AppName:        v.GetString("app.name"),
		AppEnv:         v.GetString("app.env"),
		AppPort:        v.GetString("app.port"),
		DatabaseDriver: strings.ToLower(strings.TrimSpace(v.GetString("database.driver"))),
		DatabaseURL:    v.GetString("database.url"),
		RedisURL:       v.GetString("redis.url"),
		NATSURL:        v.GetString("nats.url"),
		EventsSubject:  v.GetString("events.subject"),
		Mail: MailConfig{
			From:         v.GetString("mail.from"),
			SMTPHost:     v.GetString("mail.smtp_host"),
			SMTPPort:     v.GetInt("mail.smtp_port"),
			SMTPUsername: v.GetString("mail.smtp_username"),
			SMTPPassword: v.GetString("mail.smtp_password"),
			MaxRetries:   v.GetInt("mail.max_retries"),
			PollInterval: pollInterval,
			QueueKey:     v.GetString("mail.queue_key"),
		},
		Log: LogConfig{
			Level:      strings.ToLower(strings.TrimSpace(v.GetString("log.level"))),
			File:       strings.TrimSpace(v.GetString("log.file")),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAgeDays: v.GetInt("log.max_age_days"),
			Compress:   v.GetBool("log.compress"),
		},
		DedupeTTL:   dedupeTTL,
		RateLimit:   v.GetInt("submission.rate_limit"),
		SeedEnabled: v.GetBool("seed.enabled"),
		SeedToken:   v.GetString("seed.token"),
	}

	switch cfg.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.Mail.MaxRetries < 0 {
		cfg.Mail.MaxRetries = 3
	}

	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 30
	}

	cfg.AdminToken = strings.TrimSpace(v.GetString("admin.token"))
	if cfg.AdminToken == "" {
		cfg.AdminToken = strings.TrimSpace(cfg.SeedToken)
	}

	if cfg.SeedEnabled && cfg.SeedToken == "" {
		return Config{}, fmt.Errorf("seed token must be provided when seeding is enabled")
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}
