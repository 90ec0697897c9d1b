package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Mail   MailConfig   `mapstructure:"mail"`
	SMTP   SMTPConfig   `mapstructure:"smtp"`
	Gmail  GmailConfig  `mapstructure:"gmail"`
	Upload UploadConfig `mapstructure:"upload"`
	CORS   CORSConfig   `mapstructure:"cors"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns the listen address for the HTTP server
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MailConfig holds delivery policy and branding configuration shared by all
// transport providers.
type MailConfig struct {
	// Provider selects the delivery backend: "smtp", "gmail" or "simulated".
	// Simulated mode synthesizes successful deliveries without any network
	// traffic; it is an explicit configuration decision, never a fallback
	// the live providers downgrade into.
	Provider string `mapstructure:"provider"`
	// FromAddress is the sender address for both notification and
	// confirmation emails.
	FromAddress string `mapstructure:"from_address"`
	// FromName is the display name shown as the sender.
	FromName string `mapstructure:"from_name"`
	// Recipient is the business inbox that receives consultation
	// notifications.
	Recipient string `mapstructure:"recipient"`
	// AppName, Tagline and Partner appear in the email footers.
	AppName string `mapstructure:"app_name"`
	Tagline string `mapstructure:"tagline"`
	Partner string `mapstructure:"partner"`
	// Timezone is the IANA zone used to format the consultation date in
	// notification emails.
	Timezone string `mapstructure:"timezone"`
	// DeliverTimeout bounds a single delivery attempt, connection setup
	// included. A delivery that exceeds it fails with a timeout result
	// instead of hanging the request.
	DeliverTimeout time.Duration `mapstructure:"deliver_timeout"`
}

// SMTPConfig holds SMTP transport configuration
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	// SSL enables implicit TLS (port 465); when false STARTTLS is
	// negotiated opportunistically.
	SSL bool `mapstructure:"ssl"`
}

// GmailConfig holds Gmail API transport configuration
type GmailConfig struct {
	// CredentialsJSON is the service account credentials JSON content
	CredentialsJSON string `mapstructure:"credentials_json"`
	// ClientID for OAuth2 token-based auth (alternative to service account)
	ClientID string `mapstructure:"client_id"`
	// ClientSecret for OAuth2 token-based auth
	ClientSecret string `mapstructure:"client_secret"`
	// RefreshToken for OAuth2 token-based auth
	RefreshToken string `mapstructure:"refresh_token"`
}

// UploadConfig holds the attachment acceptance policy
type UploadConfig struct {
	// MaxSizeBytes is the attachment size ceiling.
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
	// AllowedTypes is the MIME type allow-list for attachments.
	AllowedTypes []string `mapstructure:"allowed_types"`
}

// CORSConfig holds cross-origin settings for the public form endpoint
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set config file name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/portalnegocios")

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Bind environment variables
	v.SetEnvPrefix("PORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Mail defaults
	v.SetDefault("mail.provider", "smtp")
	v.SetDefault("mail.from_address", "")
	v.SetDefault("mail.from_name", "Portal de Negocios")
	v.SetDefault("mail.recipient", "")
	v.SetDefault("mail.app_name", "Portal de Negocios")
	v.SetDefault("mail.tagline", "Te buscamos la mejor opción para tu inversión o compra")
	v.SetDefault("mail.partner", "Grupo Alpes")
	v.SetDefault("mail.timezone", "America/Argentina/Buenos_Aires")
	v.SetDefault("mail.deliver_timeout", "8s")

	// SMTP defaults
	v.SetDefault("smtp.host", "localhost")
	v.SetDefault("smtp.port", 465)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.ssl", true)

	// Upload defaults: 5MB ceiling, PDF and common images only
	v.SetDefault("upload.max_size_bytes", int64(5*1024*1024))
	v.SetDefault("upload.allowed_types", []string{
		"application/pdf",
		"image/jpeg",
		"image/jpg",
		"image/png",
		"image/gif",
	})

	// CORS defaults
	v.SetDefault("cors.allowed_origins", []string{"*"})
}
