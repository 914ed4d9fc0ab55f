package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/utils"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"

	defaultPort           = "8080"
	defaultDriver         = DriverSQLite
	defaultDSN            = "restaurant.db"
	defaultAuthRateLimit  = 10
	defaultPaymentTimeout = 30 * time.Minute
	defaultCORSOrigin     = "http://localhost:3000"
	devJWTSecret          = "dev-only-restaurant-booking-secret"
)

type Config struct {
	Port                string
	GinMode             string
	LogLevel            string
	JWTSecret           string
	DBDriver            string
	DBDSN               string
	RedisURL            string
	MenuSeedFile        string
	AdminEmail          string
	AdminPassword       string
	AdminName           string
	CookieSecure        bool
	CORSOrigin          string
	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For is
	// believed. Empty means the peer address is the client address.
	TrustedProxies      []string
	AuthRateLimit       int
	OrderPaymentTimeout time.Duration
	WebRoot             string
}

// Load reads the configuration from the environment. Call godotenv.Load
// first if a .env file should be honoured.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", defaultPort),
		GinMode:       getEnv("GIN_MODE", gin.DebugMode),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", defaultDriver)),
		DBDSN:         getEnv("DB_DSN", defaultDSN),
		RedisURL:      os.Getenv("REDIS_URL"),
		MenuSeedFile:  os.Getenv("MENU_SEED_FILE"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getEnv("ADMIN_NAME", "Administrator"),
		CORSOrigin:    getEnv("CORS_ORIGIN", defaultCORSOrigin),
		WebRoot:       os.Getenv("WEB_ROOT"),
	}
	cfg.TrustedProxies = getEnvList("TRUSTED_PROXIES")

	var err error
	if cfg.CookieSecure, err = getEnvBool("COOKIE_SECURE", false); err != nil {
		return nil, err
	}
	if cfg.AuthRateLimit, err = getEnvInt("AUTH_RATE_LIMIT", defaultAuthRateLimit); err != nil {
		return nil, err
	}
	if cfg.OrderPaymentTimeout, err = getEnvDuration("ORDER_PAYMENT_TIMEOUT", defaultPaymentTimeout); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" && cfg.GinMode != gin.ReleaseMode {
		utils.InfoLogger.Warn("JWT_SECRET not set, using development secret")
		cfg.JWTSecret = devJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverMySQL:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want %s or %s)", c.DBDriver, DriverSQLite, DriverMySQL)
	}
	if c.DBDSN == "" {
		return errors.New("DB_DSN must not be empty")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in release mode")
	}
	if c.GinMode == gin.ReleaseMode && !utils.SecretLongEnough(c.JWTSecret) {
		return errors.New("JWT_SECRET is too short for release mode")
	}
	if c.AuthRateLimit < 1 {
		return errors.New("AUTH_RATE_LIMIT must be at least 1")
	}
	if c.OrderPaymentTimeout <= 0 {
		return errors.New("ORDER_PAYMENT_TIMEOUT must be positive")
	}
	for _, p := range c.TrustedProxies {
		if net.ParseIP(p) == nil {
			if _, _, err := net.ParseCIDR(p); err != nil {
				return fmt.Errorf("invalid TRUSTED_PROXIES entry %q", p)
			}
		}
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvList splits a comma separated variable, dropping blank entries.
func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
