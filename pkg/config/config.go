package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Site    SiteConfig    `mapstructure:"site"`
	CMS     CMSConfig     `mapstructure:"cms"`
	OAuth   OAuthConfig   `mapstructure:"oauth"`
	Session SessionConfig `mapstructure:"session"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Redis   RedisConfig   `mapstructure:"redis"`
	OTel    OTelConfig    `mapstructure:"otel"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // development, staging, production
	Version     string `mapstructure:"version"`
	LogLevel    string `mapstructure:"log_level"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// Addr returns the listen address
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SiteConfig holds site-level URLs used for redirect resolution
type SiteConfig struct {
	// BaseURL is the public origin of the site, e.g. https://kitestudios.io
	BaseURL string `mapstructure:"base_url"`
	// HubPath is the authenticated landing page
	HubPath string `mapstructure:"hub_path"`
	// AccessDeniedPath is where the auth gate sends unauthenticated page requests
	AccessDeniedPath string `mapstructure:"access_denied_path"`
	// AuthHelpPath is where OAuth provider errors land
	AuthHelpPath string `mapstructure:"auth_help_path"`
}

// CMSConfig holds headless CMS connection settings.
// An empty BaseURL is valid: content falls back to the built-in set.
type CMSConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	APIToken string        `mapstructure:"api_token"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// OAuthConfig holds the authorization-code flow settings
type OAuthConfig struct {
	Provider     string `mapstructure:"provider"`
	AuthorizeURL string `mapstructure:"authorize_url"`
	TokenURL     string `mapstructure:"token_url"`
	UserInfoURL  string `mapstructure:"userinfo_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Scopes       string `mapstructure:"scopes"`
}

// SessionConfig holds session token settings
type SessionConfig struct {
	Secret     string        `mapstructure:"secret"`
	TTL        time.Duration `mapstructure:"ttl"`
	CookieName string        `mapstructure:"cookie_name"`
}

// ChatConfig holds completion API settings for the chat proxy
type ChatConfig struct {
	APIURL       string        `mapstructure:"api_url"`
	APIKey       string        `mapstructure:"api_key"`
	Model        string        `mapstructure:"model"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	SystemPrompt string        `mapstructure:"system_prompt"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// RedisConfig holds Redis connection settings.
/// Redis is optional: when Host is empty the service uses an in-process session store.
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the Redis address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Enabled reports whether a Redis host is configured
func (r *RedisConfig) Enabled() bool {
	return r.Host != ""
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ServiceName   string `mapstructure:"service_name"`
	CollectorAddr string `mapstructure:"collector_addr"`
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")

	// .env is optional, env vars may carry everything
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// file exists but is unreadable: keep going on env vars alone
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{}
	bindConfig(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("APP_NAME", "kitestudios-gateway")
	v.SetDefault("APP_ENVIRONMENT", "development")
	v.SetDefault("APP_VERSION", "1.0.0")
	v.SetDefault("APP_LOG_LEVEL", "info")

	// Server defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "30s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "120s")

	// Site defaults
	v.SetDefault("SITE_BASE_URL", "http://localhost:8080")
	v.SetDefault("SITE_HUB_PATH", "/hub")
	v.SetDefault("SITE_ACCESS_DENIED_PATH", "/access-denied")
	v.SetDefault("SITE_AUTH_HELP_PATH", "/auth-help")

	// CMS defaults (no production base URL baked in)
	v.SetDefault("CMS_BASE_URL", "")
	v.SetDefault("CMS_API_TOKEN", "")
	v.SetDefault("CMS_TIMEOUT", "10s")

	// OAuth defaults
	v.SetDefault("OAUTH_PROVIDER", "google")
	v.SetDefault("OAUTH_AUTHORIZE_URL", "https://accounts.google.com/o/oauth2/v2/auth")
	v.SetDefault("OAUTH_TOKEN_URL", "https://oauth2.googleapis.com/token")
	v.SetDefault("OAUTH_USERINFO_URL", "https://openidconnect.googleapis.com/v1/userinfo")
	v.SetDefault("OAUTH_CLIENT_ID", "")
	v.SetDefault("OAUTH_CLIENT_SECRET", "")
	v.SetDefault("OAUTH_SCOPES", "openid email profile")

	// Session defaults
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_TTL", "720h") // 30 days
	v.SetDefault("SESSION_COOKIE_NAME", "kite_session")

	// Chat defaults
	v.SetDefault("CHAT_API_URL", "https://api.anthropic.com")
	v.SetDefault("CHAT_API_KEY", "")
	v.SetDefault("CHAT_MODEL", "claude-3-5-sonnet-20241022")
	v.SetDefault("CHAT_MAX_TOKENS", 1024)
	v.SetDefault("CHAT_SYSTEM_PROMPT", "You are the KITESTUDIOS assistant. Answer questions about the studio, its articles and resources. Be concise and friendly.")
	v.SetDefault("CHAT_TIMEOUT", "60s")

	// Redis defaults (disabled unless a host is set)
	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_READ_TIMEOUT", "3s")
	v.SetDefault("REDIS_WRITE_TIMEOUT", "3s")

	// OTel defaults
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "kitestudios-gateway")
	v.SetDefault("OTEL_COLLECTOR_ADDR", "localhost:4317")
}

func bindConfig(v *viper.Viper, cfg *Config) {
	// App
	cfg.App.Name = v.GetString("APP_NAME")
	cfg.App.Environment = v.GetString("APP_ENVIRONMENT")
	cfg.App.Version = v.GetString("APP_VERSION")
	cfg.App.LogLevel = v.GetString("APP_LOG_LEVEL")

	// Server
	cfg.Server.Host = v.GetString("SERVER_HOST")
	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.Server.ReadTimeout = v.GetDuration("SERVER_READ_TIMEOUT")
	cfg.Server.WriteTimeout = v.GetDuration("SERVER_WRITE_TIMEOUT")
	cfg.Server.IdleTimeout = v.GetDuration("SERVER_IDLE_TIMEOUT")

	// Site
	cfg.Site.BaseURL = v.GetString("SITE_BASE_URL")
	cfg.Site.HubPath = v.GetString("SITE_HUB_PATH")
	cfg.Site.AccessDeniedPath = v.GetString("SITE_ACCESS_DENIED_PATH")
	cfg.Site.AuthHelpPath = v.GetString("SITE_AUTH_HELP_PATH")

	// CMS
	cfg.CMS.BaseURL = v.GetString("CMS_BASE_URL")
	cfg.CMS.APIToken = v.GetString("CMS_API_TOKEN")
	cfg.CMS.Timeout = v.GetDuration("CMS_TIMEOUT")

	// OAuth
	cfg.OAuth.Provider = v.GetString("OAUTH_PROVIDER")
	cfg.OAuth.AuthorizeURL = v.GetString("OAUTH_AUTHORIZE_URL")
	cfg.OAuth.TokenURL = v.GetString("OAUTH_TOKEN_URL")
	cfg.OAuth.UserInfoURL = v.GetString("OAUTH_USERINFO_URL")
	cfg.OAuth.ClientID = v.GetString("OAUTH_CLIENT_ID")
	cfg.OAuth.ClientSecret = v.GetString("OAUTH_CLIENT_SECRET")
	cfg.OAuth.Scopes = v.GetString("OAUTH_SCOPES")

	// Session
	cfg.Session.Secret = v.GetString("SESSION_SECRET")
	cfg.Session.TTL = v.GetDuration("SESSION_TTL")
	cfg.Session.CookieName = v.GetString("SESSION_COOKIE_NAME")

	// Chat
	cfg.Chat.APIURL = v.GetString("CHAT_API_URL")
	cfg.Chat.APIKey = v.GetString("CHAT_API_KEY")
	cfg.Chat.Model = v.GetString("CHAT_MODEL")
	cfg.Chat.MaxTokens = v.GetInt("CHAT_MAX_TOKENS")
	cfg.Chat.SystemPrompt = v.GetString("CHAT_SYSTEM_PROMPT")
	cfg.Chat.Timeout = v.GetDuration("CHAT_TIMEOUT")

	// Redis
	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetInt("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.DialTimeout = v.GetDuration("REDIS_DIAL_TIMEOUT")
	cfg.Redis.ReadTimeout = v.GetDuration("REDIS_READ_TIMEOUT")
	cfg.Redis.WriteTimeout = v.GetDuration("REDIS_WRITE_TIMEOUT")

	// OTel
	cfg.OTel.Enabled = v.GetBool("OTEL_ENABLED")
	cfg.OTel.ServiceName = v.GetString("OTEL_SERVICE_NAME")
	cfg.OTel.CollectorAddr = v.GetString("OTEL_COLLECTOR_ADDR")
}

// Validate validates the configuration.
// Auth cannot degrade, so OAuth and session secrets are hard requirements.
// CMS and chat credentials are not: content falls back to the built-in set and
// the chat endpoint reports its own configuration error per request.
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Site.BaseURL == "" {
		return fmt.Errorf("SITE_BASE_URL is required")
	}

	if c.OAuth.ClientID == "" {
		return fmt.Errorf("OAUTH_CLIENT_ID is required")
	}
	if c.OAuth.ClientSecret == "" {
		return fmt.Errorf("OAUTH_CLIENT_SECRET is required")
	}

	if c.Session.Secret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.IsProduction() && len(c.Session.Secret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 bytes in production")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
