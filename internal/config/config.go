package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envPort                  = "PORT"
	envServerReadTimeout     = "SERVER_READ_TIMEOUT"
	envServerWriteTimeout    = "SERVER_WRITE_TIMEOUT"
	envServerShutdownTimeout = "SERVER_SHUTDOWN_TIMEOUT"
	envEnableProfiling       = "ENABLE_PROFILING"
	envLogLevel              = "LOG_LEVEL"
	envLogFormat             = "LOG_FORMAT"
	envSessionCookieName     = "SESSION_COOKIE_NAME"
	envSessionTTL            = "SESSION_TTL"
	envSessionCookieSecure   = "SESSION_COOKIE_SECURE"
	envSessionStore          = "SESSION_STORE"
	envSessionSweepInterval  = "SESSION_SWEEP_INTERVAL"
	envRedisAddr             = "REDIS_ADDR"
	envRedisPassword         = "REDIS_PASSWORD"
	envRedisDB               = "REDIS_DB"
	envRBACTableSource       = "RBAC_TABLE_SOURCE"
	envAWSRegion             = "AWS_REGION"
	envAWSAccessKeyID        = "AWS_ACCESS_KEY_ID"
	envAWSSecretAccessKey    = "AWS_SECRET_ACCESS_KEY"
	envUserDirectoryFile     = "USER_DIRECTORY_FILE"
	envExchangeSecret        = "AUTH_EXCHANGE_SECRET"
	envExchangeIssuer        = "AUTH_EXCHANGE_ISSUER"
	envExchangeAudience      = "AUTH_EXCHANGE_AUDIENCE"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

const (
	defaultServerPort          = "8080"
	defaultServerReadTimeout   = 10 * time.Second
	defaultServerWriteTimeout  = 10 * time.Second
	defaultServerShutdown      = 10 * time.Second
	defaultLogLevel            = "info"
	defaultLogFormat           = "json"
	defaultSessionCookieName   = "ats_session"
	defaultSessionTTL          = 8 * time.Hour
	defaultSessionSweep        = 5 * time.Minute
	defaultRedisAddr           = "localhost:6379"
	defaultAWSRegion           = "us-east-1"
	minExchangeSecretLength    = 32
	minUniqueCharsInSecret     = 16
	minRepeatedCharThreshold   = 4
	maxRepeatedChars           = 2
	errPortRequiredFmt         = "PORT must be set"
	errLogFormatFmt            = "LOG_FORMAT must be json or console, got %q"
	errSessionStoreFmt         = "SESSION_STORE must be memory or redis, got %q"
	errSessionTTLFmt           = "SESSION_TTL must be positive"
	errSweepIntervalFmt        = "SESSION_SWEEP_INTERVAL must be positive when SESSION_STORE=memory"
	errShutdownTimeoutFmt      = "SERVER_SHUTDOWN_TIMEOUT must be positive"
	errCookieNameRequiredFmt   = "SESSION_COOKIE_NAME must be set"
	errRedisAddrRequiredFmt    = "REDIS_ADDR must be set when SESSION_STORE=redis"
	errExchangeSecretLengthFmt = "AUTH_EXCHANGE_SECRET must be at least %d characters"
	errExchangeLowEntropyFmt   = "AUTH_EXCHANGE_SECRET has insufficient entropy (appears non-random). Use a cryptographically secure random string."
	errExchangeIssuerFmt       = "AUTH_EXCHANGE_ISSUER and AUTH_EXCHANGE_AUDIENCE must be set with AUTH_EXCHANGE_SECRET"
	errNoSignInMethodFmt       = "either USER_DIRECTORY_FILE or AUTH_EXCHANGE_SECRET must be set"
	errInvalidConfigurationFmt = "invalid configuration: %w"
)

type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Session SessionConfig
	Redis   RedisConfig
	RBAC    RBACConfig
	AWS     AWSConfig
	Auth    AuthConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Profiling       bool
}

type LogConfig struct {
	Level  string
	Format string
}

type SessionConfig struct {
	CookieName    string
	CookieSecure  bool
	TTL           time.Duration
	Store         string
	SweepInterval time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RBACConfig selects the permission table. An empty source uses the
// built-in preset.
type RBACConfig struct {
	TableSource string
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

type AuthConfig struct {
	DirectoryFile    string
	ExchangeSecret   string
	ExchangeIssuer   string
	ExchangeAudience string
}

// ExchangeEnabled reports whether assertion exchange is configured.
func (a AuthConfig) ExchangeEnabled() bool {
	return a.ExchangeSecret != ""
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv(envPort, defaultServerPort),
			ReadTimeout:     getDurationEnv(envServerReadTimeout, defaultServerReadTimeout),
			WriteTimeout:    getDurationEnv(envServerWriteTimeout, defaultServerWriteTimeout),
			ShutdownTimeout: getDurationEnv(envServerShutdownTimeout, defaultServerShutdown),
			Profiling:       getBoolEnv(envEnableProfiling, false),
		},
		Log: LogConfig{
			Level:  getEnv(envLogLevel, defaultLogLevel),
			Format: getEnv(envLogFormat, defaultLogFormat),
		},
		Session: SessionConfig{
			CookieName:    getEnv(envSessionCookieName, defaultSessionCookieName),
			CookieSecure:  getBoolEnv(envSessionCookieSecure, true),
			TTL:           getDurationEnv(envSessionTTL, defaultSessionTTL),
			Store:         strings.ToLower(getEnv(envSessionStore, StoreMemory)),
			SweepInterval: getDurationEnv(envSessionSweepInterval, defaultSessionSweep),
		},
		Redis: RedisConfig{
			Addr:     getEnv(envRedisAddr, defaultRedisAddr),
			Password: os.Getenv(envRedisPassword),
			DB:       getIntEnv(envRedisDB, 0),
		},
		RBAC: RBACConfig{
			TableSource: os.Getenv(envRBACTableSource),
		},
		AWS: AWSConfig{
			Region:          getEnv(envAWSRegion, defaultAWSRegion),
			AccessKeyID:     os.Getenv(envAWSAccessKeyID),
			SecretAccessKey: os.Getenv(envAWSSecretAccessKey),
		},
		Auth: AuthConfig{
			DirectoryFile:    os.Getenv(envUserDirectoryFile),
			ExchangeSecret:   os.Getenv(envExchangeSecret),
			ExchangeIssuer:   os.Getenv(envExchangeIssuer),
			ExchangeAudience: os.Getenv(envExchangeAudience),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf(errPortRequiredFmt)
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf(errShutdownTimeoutFmt)
	}

	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf(errLogFormatFmt, c.Log.Format)
	}

	if c.Session.CookieName == "" {
		return fmt.Errorf(errCookieNameRequiredFmt)
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf(errSessionTTLFmt)
	}

	switch c.Session.Store {
	case StoreMemory:
		if c.Session.SweepInterval <= 0 {
			return fmt.Errorf(errSweepIntervalFmt)
		}
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf(errRedisAddrRequiredFmt)
		}
	default:
		return fmt.Errorf(errSessionStoreFmt, c.Session.Store)
	}

	if c.Auth.DirectoryFile == "" && !c.Auth.ExchangeEnabled() {
		return fmt.Errorf(errNoSignInMethodFmt)
	}

	if c.Auth.ExchangeEnabled() {
		if len(c.Auth.ExchangeSecret) < minExchangeSecretLength {
			return fmt.Errorf(errExchangeSecretLengthFmt, minExchangeSecretLength)
		}
		if !hasMinimumEntropy(c.Auth.ExchangeSecret) {
			return fmt.Errorf(errExchangeLowEntropyFmt)
		}
		if c.Auth.ExchangeIssuer == "" || c.Auth.ExchangeAudience == "" {
			return fmt.Errorf(errExchangeIssuerFmt)
		}
	}

	return nil
}

func hasMinimumEntropy(secret string) bool {
	if len(secret) < minExchangeSecretLength {
		return false
	}

	charCounts := make(map[rune]int)
	for _, char := range secret {
		charCounts[char]++
	}

	uniqueChars := len(charCounts)
	if uniqueChars < minUniqueCharsInSecret {
		return false
	}

	repeatedChars := 0
	for _, count := range charCounts {
		if count > len(secret)/minRepeatedCharThreshold {
			repeatedChars++
		}
	}

	return repeatedChars <= maxRepeatedChars
}

// Addr returns the listen address for the server.
func (c *ServerConfig) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}
