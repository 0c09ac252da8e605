package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Default identity values used when the environment leaves them unset.
const (
	DefaultAdminEmail   = "admin@ikrr.co.in"
	DefaultNoReplyEmail = "onboarding@resend.dev"
	DefaultCompanyName  = "IKRR Events"
)

// ErrMissingJWTSecret is returned by RequireServe when JWT_SECRET is unset.
var ErrMissingJWTSecret = errors.New("missing required env var: JWT_SECRET")

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Only the HTTP server needs JWT_SECRET (see
// RequireServe); everything else has a development-friendly default so the
// service boots against a local MySQL with no mail, broker or OAuth
// credentials.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBDriver    string // mysql, postgres or sqlite3
	DatabaseURL string // full DSN; built from the DB_* parts when empty
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string

	JWTSecret      string // secret used to sign session tokens
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	CookieSecure   bool   // Secure flag on session cookies

	AdminEmail    string // the single admin identity
	OperatorEmail string // recipient of operator summaries
	ResendAPIKey  string // mail provider key; empty disables mail
	MailFrom      string // sender address
	CompanyName   string
	CompanyPhone  string

	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string
	PublicURL          string // post-login redirect and CORS origin

	RabbitMQURL string // empty disables submission events

	LogLevel  string
	LogFormat string
	LogDir    string
}

// Load reads configuration values from environment variables and returns a
// Config.  It never fails; mode-specific requirements are checked by the
// caller.
func Load() Config {
	env := getenv("APP_ENV", "dev")
	admin := strings.ToLower(strings.TrimSpace(getenv("ADMIN_EMAIL", DefaultAdminEmail)))
	cfg := Config{
		Env:  env,
		Port: getenv("APP_PORT", "8080"),

		DBDriver:    strings.ToLower(getenv("DB_DRIVER", "mysql")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBUser:      getenv("DB_USER", "root"),
		DBPass:      os.Getenv("DB_PASS"), // empty allowed
		DBHost:      getenv("DB_HOST", "127.0.0.1"),
		DBPort:      getenv("DB_PORT", "3306"),
		DBName:      getenv("DB_NAME", "eventsite"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 60),
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 30),
		CookieSecure:   envBool("COOKIE_SECURE", env == "prod"),

		AdminEmail:    admin,
		OperatorEmail: getenv("OPERATOR_EMAIL", admin),
		ResendAPIKey:  os.Getenv("RESEND_API_KEY"),
		MailFrom:      getenv("NOREPLY_EMAIL", DefaultNoReplyEmail),
		CompanyName:   getenv("COMPANY_NAME", DefaultCompanyName),
		CompanyPhone:  os.Getenv("COMPANY_PHONE"),

		GoogleClientID:     os.Getenv("AUTH_GOOGLE_ID"),
		GoogleClientSecret: os.Getenv("AUTH_GOOGLE_SECRET"),
		OAuthRedirectURL:   getenv("OAUTH_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),
		PublicURL:          getenv("PUBLIC_URL", "http://localhost:3000"),

		RabbitMQURL: getenv("RABBITMQ_URL", os.Getenv("AMQP_URL")),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "text"),
		LogDir:    getenv("LOG_DIR", "logs"),
	}
	if cfg.AccessTTLMin < 1 {
		cfg.AccessTTLMin = 60
	}
	if cfg.RefreshTTLDays < 1 {
		cfg.RefreshTTLDays = 30
	}
	return cfg
}

// DSN returns the data source name for the configured driver.  An explicit
// DATABASE_URL always wins; otherwise a MySQL DSN is assembled from the
// DB_* parts.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return MySQLDSN(c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

// MySQLDSN builds a go-sql-driver DSN.  parseTime=true maps DATETIME to
// time.Time and loc=UTC keeps times consistent.
func MySQLDSN(user, pass, host, port, name string) string {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)
}

// RequireServe reports the variables the HTTP server cannot run without.
// migrate and worker never sign tokens and skip this check.
func (c Config) RequireServe() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}
	return nil
}
