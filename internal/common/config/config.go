package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AlibekovAA/fadechat/internal/common/constants"
)

var (
	ErrMissingRequiredEnv = errors.New("missing required environment variable")
	ErrInvalidValue       = errors.New("invalid configuration value")
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type StorageConfig struct {
	Driver      string
	DatabaseURL string
	AutoMigrate bool
}

type SessionConfig struct {
	CookieName   string
	CookieTTL    time.Duration
	CookieSecure bool
}

type CircuitBreakerConfig struct {
	Threshold int32
	Timeout   time.Duration
	Reset     time.Duration
}

type AuthConfig struct {
	HTTPPort         string
	TrustedProxies   []*net.IPNet
	Storage          StorageConfig
	Session          SessionConfig
	CircuitBreaker   CircuitBreakerConfig
	RequestTimeout   time.Duration
	TokenTTL         time.Duration
	LoginHourLimit   int
	LoginTenMinLimit int
}

type NotifyConfig struct {
	Driver       string
	SMTPAddr     string
	SMTPUsername string
	SMTPPassword string
	From         string
}

type ChatConfig struct {
	HTTPPort         string
	TrustedProxies   []*net.IPNet
	Storage          StorageConfig
	Session          SessionConfig
	CircuitBreaker   CircuitBreakerConfig
	Notify           NotifyConfig
	RequestTimeout   time.Duration
	TokenTTL         time.Duration
	MessageMaxLength int
	ViewFade         time.Duration
}

// source resolves keys from the environment first and then from an
// optional YAML file of KEY: value pairs.
type source struct {
	file map[string]string
}

func newSource(path string) (source, error) {
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path == "" {
		return source{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return source{}, fmt.Errorf("read config file: %w", err)
	}

	values := map[string]string{}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return source{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return source{file: values}, nil
}

func (s source) lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	v, ok := s.file[key]
	return v, ok
}

func LoadAuthConfig(path string) (AuthConfig, error) {
	src, err := newSource(path)
	if err != nil {
		return AuthConfig{}, err
	}

	storage, err := src.storage()
	if err != nil {
		return AuthConfig{}, err
	}

	trusted, err := parseTrustedProxies(src.getEnv("TRUSTED_PROXIES", ""))
	if err != nil {
		return AuthConfig{}, err
	}

	cfg := AuthConfig{
		HTTPPort:         src.getEnv("AUTH_HTTP_PORT", constants.DefaultAuthHTTPPort),
		TrustedProxies:   trusted,
		Storage:          storage,
		Session:          src.session(),
		CircuitBreaker:   src.circuitBreaker(),
		RequestTimeout:   src.getDurationEnv("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		TokenTTL:         src.getDurationEnv("TOKEN_TTL", constants.DefaultTokenTTL),
		LoginHourLimit:   src.getIntEnv("LOGIN_HOUR_LIMIT", constants.DefaultLoginHourLimit),
		LoginTenMinLimit: src.getIntEnv("LOGIN_TEN_MIN_LIMIT", constants.DefaultLoginTenMinLimit),
	}

	if err := cfg.validate(); err != nil {
		return AuthConfig{}, err
	}
	return cfg, nil
}

func LoadChatConfig(path string) (ChatConfig, error) {
	src, err := newSource(path)
	if err != nil {
		return ChatConfig{}, err
	}

	storage, err := src.storage()
	if err != nil {
		return ChatConfig{}, err
	}

	trusted, err := parseTrustedProxies(src.getEnv("TRUSTED_PROXIES", ""))
	if err != nil {
		return ChatConfig{}, err
	}

	cfg := ChatConfig{
		HTTPPort:       src.getEnv("CHAT_HTTP_PORT", constants.DefaultChatHTTPPort),
		TrustedProxies: trusted,
		Storage:        storage,
		Session:        src.session(),
		CircuitBreaker: src.circuitBreaker(),
		Notify: NotifyConfig{
			Driver:       strings.ToLower(src.getEnv("NOTIFY_DRIVER", "log")),
			SMTPAddr:     src.getEnv("SMTP_ADDR", ""),
			SMTPUsername: src.getEnv("SMTP_USERNAME", ""),
			SMTPPassword: src.getEnv("SMTP_PASSWORD", ""),
			From:         src.getEnv("SMTP_FROM", "noreply@fadechat.local"),
		},
		RequestTimeout:   src.getDurationEnv("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		TokenTTL:         src.getDurationEnv("TOKEN_TTL", constants.DefaultTokenTTL),
		MessageMaxLength: src.getIntEnv("MESSAGE_MAX_LENGTH", constants.DefaultMessageMaxLength),
		ViewFade:         src.getDurationEnv("VIEW_FADE", constants.DefaultViewFade),
	}

	if err := cfg.validate(); err != nil {
		return ChatConfig{}, err
	}
	return cfg, nil
}

// LoadStorageConfig resolves only the storage settings.
func LoadStorageConfig(path string) (StorageConfig, error) {
	src, err := newSource(path)
	if err != nil {
		return StorageConfig{}, err
	}
	return src.storage()
}

func (c AuthConfig) validate() error {
	if c.TokenTTL <= 0 {
		return fmt.Errorf("%w: TOKEN_TTL must be positive", ErrInvalidValue)
	}
	if c.LoginHourLimit <= 0 || c.LoginTenMinLimit <= 0 {
		return fmt.Errorf("%w: login limits must be positive", ErrInvalidValue)
	}
	return nil
}

func (c ChatConfig) validate() error {
	if c.TokenTTL <= 0 {
		return fmt.Errorf("%w: TOKEN_TTL must be positive", ErrInvalidValue)
	}
	if c.MessageMaxLength <= 0 {
		return fmt.Errorf("%w: MESSAGE_MAX_LENGTH must be positive", ErrInvalidValue)
	}
	switch c.Notify.Driver {
	case "log", "none":
	case "smtp":
		if c.Notify.SMTPAddr == "" {
			return fmt.Errorf("%w: SMTP_ADDR", ErrMissingRequiredEnv)
		}
	default:
		return fmt.Errorf("%w: unknown NOTIFY_DRIVER %q", ErrInvalidValue, c.Notify.Driver)
	}
	return nil
}

func (s source) storage() (StorageConfig, error) {
	cfg := StorageConfig{
		Driver:      strings.ToLower(s.getEnv("STORAGE_DRIVER", DriverPostgres)),
		AutoMigrate: s.getBoolEnv("AUTO_MIGRATE", false),
	}

	switch cfg.Driver {
	case DriverMemory:
		return cfg, nil
	case DriverPostgres:
		databaseURL, err := s.mustEnv("DATABASE_URL")
		if err != nil {
			return StorageConfig{}, err
		}
		cfg.DatabaseURL = databaseURL
		return cfg, nil
	default:
		return StorageConfig{}, fmt.Errorf("%w: unknown STORAGE_DRIVER %q", ErrInvalidValue, cfg.Driver)
	}
}

// parseTrustedProxies reads a comma separated list of CIDRs or single
// addresses.
func parseTrustedProxies(value string) ([]*net.IPNet, error) {
	var nets []*net.IPNet
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("%w: TRUSTED_PROXIES entry %q", ErrInvalidValue, entry)
			}
			bits := 128
			if ip.To4() != nil {
				bits = 32
			}
			entry = fmt.Sprintf("%s/%d", entry, bits)
		}
		_, n, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("%w: TRUSTED_PROXIES entry %q", ErrInvalidValue, entry)
		}
		nets = append(nets, n)
	}
	return nets, nil
}

func (s source) session() SessionConfig {
	return SessionConfig{
		CookieName:   s.getEnv("SESSION_COOKIE_NAME", constants.DefaultSessionCookieName),
		CookieTTL:    s.getDurationEnv("SESSION_COOKIE_TTL", constants.DefaultSessionCookieTTL),
		CookieSecure: s.getBoolEnv("COOKIE_SECURE", false),
	}
}

func (s source) circuitBreaker() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Threshold: int32(s.getIntEnv("CIRCUIT_BREAKER_THRESHOLD", constants.DefaultCircuitBreakerThreshold)),
		Timeout:   s.getDurationEnv("CIRCUIT_BREAKER_TIMEOUT", constants.DefaultCircuitBreakerTimeout),
		Reset:     s.getDurationEnv("CIRCUIT_BREAKER_RESET", constants.DefaultCircuitBreakerReset),
	}
}

func (s source) getEnv(key, fallback string) string {
	if v, ok := s.lookup(key); ok {
		return v
	}
	return fallback
}

func (s source) mustEnv(key string) (string, error) {
	v, ok := s.lookup(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func (s source) getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := s.lookup(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func (s source) getIntEnv(key string, fallback int) int {
	v, ok := s.lookup(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func (s source) getBoolEnv(key string, fallback bool) bool {
	v, ok := s.lookup(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
