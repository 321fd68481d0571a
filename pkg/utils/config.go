package utils

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Email    EmailConfig
	Tokens   TokenConfig
	Plugin   PluginConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
	BaseURL string

	// ExposeDevSecrets returns verification codes in API responses.
	// Never enable in production.
	ExposeDevSecrets bool
	CatalogPath      string
	JanitorInterval  time.Duration
}

type HTTPConfig struct {
	AllowedOrigins  []string
	AuthRateLimit   int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
}

type JWTConfig struct {
	Secret      string
	Issuer      string
	ExpiryHours int
}

type EmailConfig struct {
	Transport  string
	Host       string
	Port       int
	User       string
	Password   string
	Encryption string
	From       string
	FromName   string

	// Strict surfaces hard delivery failures to the caller instead of
	// logging and carrying on.
	Strict bool

	AMQPURL string
	Queue   string
}

type TokenConfig struct {
	VerificationCodeTTL time.Duration
	PasswordResetTTL    time.Duration
	LinkCodeTTL         time.Duration
}

type PluginConfig struct {
	Secret string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "arc-web")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("APP_BASE_URL", "http://localhost:3000")
	viper.SetDefault("EXPOSE_DEV_SECRETS", false)
	viper.SetDefault("CATALOG_PATH", "config/catalog.yaml")
	viper.SetDefault("JANITOR_INTERVAL", "1h")

	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("AUTH_RATE_LIMIT", 20)
	viper.SetDefault("HTTP_READ_TIMEOUT", "10s")
	viper.SetDefault("HTTP_WRITE_TIMEOUT", "15s")
	viper.SetDefault("HTTP_IDLE_TIMEOUT", "60s")
	viper.SetDefault("HTTP_SHUTDOWN_TIMEOUT", "10s")

	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_CONNS", 10)

	viper.SetDefault("JWT_ISSUER", "arc-web")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)

	viper.SetDefault("MAIL_TRANSPORT", "smtp")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_ENCRYPTION", "starttls")
	viper.SetDefault("MAIL_STRICT", true)
	viper.SetDefault("MAIL_QUEUE", "arc-mail")

	viper.SetDefault("VERIFICATION_CODE_TTL", "15m")
	viper.SetDefault("PASSWORD_RESET_TTL", "1h")
	viper.SetDefault("LINK_CODE_TTL", "10m")

	// The .env file is optional; plain environment variables are enough in containers.
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:             viper.GetString("APP_NAME"),
			Port:             viper.GetString("PORT"),
			Debug:            viper.GetBool("DEBUG"),
			LogPath:          viper.GetString("LOG_PATH"),
			BaseURL:          strings.TrimRight(viper.GetString("APP_BASE_URL"), "/"),
			ExposeDevSecrets: viper.GetBool("EXPOSE_DEV_SECRETS"),
			CatalogPath:      viper.GetString("CATALOG_PATH"),
			JanitorInterval:  viper.GetDuration("JANITOR_INTERVAL"),
		},
		HTTP: HTTPConfig{
			AllowedOrigins:  splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
			AuthRateLimit:   viper.GetInt("AUTH_RATE_LIMIT"),
			ReadTimeout:     viper.GetDuration("HTTP_READ_TIMEOUT"),
			WriteTimeout:    viper.GetDuration("HTTP_WRITE_TIMEOUT"),
			IdleTimeout:     viper.GetDuration("HTTP_IDLE_TIMEOUT"),
			ShutdownTimeout: viper.GetDuration("HTTP_SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Driver:   viper.GetString("DB_DRIVER"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			Issuer:      viper.GetString("JWT_ISSUER"),
			ExpiryHours: viper.GetInt("JWT_EXPIRY_HOURS"),
		},
		Email: EmailConfig{
			Transport:  viper.GetString("MAIL_TRANSPORT"),
			Host:       viper.GetString("SMTP_HOST"),
			Port:       viper.GetInt("SMTP_PORT"),
			User:       viper.GetString("SMTP_USER"),
			Password:   viper.GetString("SMTP_PASS"),
			Encryption: viper.GetString("SMTP_ENCRYPTION"),
			From:       viper.GetString("EMAIL_FROM"),
			FromName:   viper.GetString("EMAIL_FROM_NAME"),
			Strict:     viper.GetBool("MAIL_STRICT"),
			AMQPURL:    viper.GetString("AMQP_URL"),
			Queue:      viper.GetString("MAIL_QUEUE"),
		},
		Tokens: TokenConfig{
			VerificationCodeTTL: viper.GetDuration("VERIFICATION_CODE_TTL"),
			PasswordResetTTL:    viper.GetDuration("PASSWORD_RESET_TTL"),
			LinkCodeTTL:         viper.GetDuration("LINK_CODE_TTL"),
		},
		Plugin: PluginConfig{
			Secret: viper.GetString("PLUGIN_SECRET"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return config, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
