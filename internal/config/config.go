package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all the configuration for the application.
type Config struct {
	Server     ServerConfig
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Google     GoogleConfig
	SMTP       SMTPConfig
	Session    SessionConfig
	AuthSecret string `mapstructure:"authsecret"`
}

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

// IsProduction reports whether the server runs with production hardening
// (secure cookies in particular).
func (s ServerConfig) IsProduction() bool {
	return s.Env == "production"
}

// AppConfig holds application-level settings used when building outbound links
// and post-login redirects.
type AppConfig struct {
	// BaseURL is the public origin of the web app, e.g. "https://app.example.com".
	BaseURL string `mapstructure:"baseurl"`
	// SigninPath is where unauthenticated requests are redirected.
	SigninPath string `mapstructure:"signinpath"`
	// ProtectedPaths is a comma-separated list of path prefixes gated by the
	// access guard, e.g. "/dashboard,/settings".
	ProtectedPaths string `mapstructure:"protectedpaths"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig holds the Redis configuration.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// GoogleConfig holds the Google OAuth client settings. AuthURL, TokenURL and
// UserInfoURL are overridable for tests and default to Google's endpoints.
type GoogleConfig struct {
	ClientID     string `mapstructure:"clientid"`
	ClientSecret string `mapstructure:"clientsecret"`
	RedirectURL  string `mapstructure:"redirecturl"`
	AuthURL      string `mapstructure:"authurl"`
	TokenURL     string `mapstructure:"tokenurl"`
	UserInfoURL  string `mapstructure:"userinfourl"`
}

// SMTPConfig holds the transactional email settings.
type SMTPConfig struct {
	From     string `mapstructure:"from"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
}

// SessionConfig controls session lifetime policy.
type SessionConfig struct {
	// TTL is the session lifetime. Zero means sessions never expire and live
	// until explicitly revoked; this is the default and a deliberate policy
	// choice, not an oversight.
	TTL time.Duration `mapstructure:"ttl"`
}

// Load creates a new Config object from the .env file and environment variables.
func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Load .env into the process environment so BindEnv sees file-based values.
	if err := godotenv.Load(); err != nil {
		log.Printf("godotenv could not load .env: %v", err)
	}

	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("app.baseurl", "APP_BASE_URL")
	_ = viper.BindEnv("app.signinpath", "APP_SIGNIN_PATH")
	_ = viper.BindEnv("app.protectedpaths", "APP_PROTECTED_PATHS")
	_ = viper.BindEnv("database.url", "DATABASE_URL")
	_ = viper.BindEnv("redis.url", "REDIS_URL")
	_ = viper.BindEnv("authsecret", "AUTH_SECRET")
	_ = viper.BindEnv("google.clientid", "GOOGLE_CLIENT_ID")
	_ = viper.BindEnv("google.clientsecret", "GOOGLE_CLIENT_SECRET")
	_ = viper.BindEnv("google.redirecturl", "GOOGLE_REDIRECT_URL")
	_ = viper.BindEnv("smtp.from", "SMTP_FROM")
	_ = viper.BindEnv("smtp.username", "SMTP_USERNAME")
	_ = viper.BindEnv("smtp.password", "SMTP_PASSWORD")
	_ = viper.BindEnv("smtp.host", "SMTP_HOST")
	_ = viper.BindEnv("smtp.port", "SMTP_PORT")
	_ = viper.BindEnv("session.ttl", "SESSION_TTL")

	if err := viper.ReadInConfig(); err != nil {
		// Missing .env is fine; all config may come from the environment.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("error reading config file: %s", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("unable to decode config into struct: %v", err)
	}

	// Defaults.
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.App.BaseURL == "" {
		cfg.App.BaseURL = "http://localhost:" + cfg.Server.Port
	}
	if cfg.App.SigninPath == "" {
		cfg.App.SigninPath = "/signin"
	}
	if cfg.App.ProtectedPaths == "" {
		cfg.App.ProtectedPaths = "/dashboard"
	}

	return &cfg
}
