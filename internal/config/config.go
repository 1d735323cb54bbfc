package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix = "REACHRIGHT_WEB_"

	defaultEnvFile         = ".env"
	defaultPort            = "8080"
	defaultEnvironment     = "dev"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultBaseURL         = "https://reachrightmarketing.com"
	defaultSiteName        = "ReachRight Marketing"
	defaultLocale          = "en_ZA"
	defaultImageURL        = "https://reachrightmarketing.com/assets/img/branding/og-image.png"
	defaultImageBasePath   = "/assets/img/branding"
	defaultImageFilename   = "og-image.png"
	defaultImageWidth      = 1200
	defaultImageHeight     = 630
	defaultImageType       = "image/png"
	defaultContactTimeout  = 8 * time.Second
	defaultRatePerSecond   = 0.2
	defaultRateBurst       = 3
	defaultRateWindow      = time.Minute
	defaultRateWindowLimit = 5
	defaultLogLevel        = "info"
	disabledValue          = "none"
	defaultContentCacheTTL = 5 * time.Minute
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Paths     PathsConfig
	Site      SiteConfig
	Contact   ContactConfig
	RateLimit RateLimitConfig
	Session   SessionConfig
	Log       LogConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port         string
	Environment  string
	Dev          bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Addr returns the listen address for Port.
func (s ServerConfig) Addr() string { return ":" + s.Port }

// Production reports whether the server runs with production settings.
func (s ServerConfig) Production() bool {
	return s.Environment == "prod" || s.Environment == "production"
}

// PathsConfig points at the on-disk templates, static assets and markdown copy.
type PathsConfig struct {
	Templates       string
	Public          string
	Content         string
	ContentCacheTTL time.Duration
}

// SiteConfig holds the deployment-wide values that feed page metadata.
type SiteConfig struct {
	BaseURL          string
	Name             string
	Locale           string
	TwitterSite      string
	DefaultImageURL  string
	DefaultImageBase string
	DefaultImageFile string
	DefaultImageW    int
	DefaultImageH    int
	DefaultImageType string
	GA4MeasurementID string
}

// ContactConfig configures the hosted form endpoint.
type ContactConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// RateLimitConfig throttles contact form submissions. When RedisAddr is set
// a fixed window shared across instances is used instead of the in-memory
// token bucket.
type RateLimitConfig struct {
	PerSecond   float64
	Burst       int
	RedisAddr   string
	Window      time.Duration
	WindowLimit int
}

// SessionConfig configures the signed session cookie.
type SessionConfig struct {
	SigningKey string
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string
	// TraceSampleRatio is the share of requests traced; 0 disables tracing.
	TraceSampleRatio float64
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
// An empty path disables the file.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values
// in the map take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment, relying
// only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration from defaults, the .env file, the process
// environment and an optional explicit map, in increasing precedence.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if value, ok := dotEnvValues[key]; ok {
			return value, true
		}
		return "", false
	}
	key := func(name string) string { return envPrefix + name }

	environment := strings.ToLower(stringWithDefault(lookup, key("ENV"), defaultEnvironment))
	cfg := Config{
		Server: ServerConfig{
			// Cloud Run and most PaaS hosts inject PORT.
			Port:         stringWithDefault(lookup, key("PORT"), stringWithDefault(lookup, "PORT", defaultPort)),
			Environment:  environment,
			Dev:          boolWithDefault(lookup, key("DEV"), false),
			ReadTimeout:  durationWithDefault(lookup, key("READ_TIMEOUT"), defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, key("WRITE_TIMEOUT"), defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, key("IDLE_TIMEOUT"), defaultIdleTimeout),
		},
		Paths: PathsConfig{
			Templates:       stringWithDefault(lookup, key("TEMPLATES_DIR"), "templates"),
			Public:          stringWithDefault(lookup, key("PUBLIC_DIR"), "public"),
			Content:         stringWithDefault(lookup, key("CONTENT_DIR"), "content"),
			ContentCacheTTL: durationWithDefault(lookup, key("CONTENT_CACHE_TTL"), defaultContentCacheTTL),
		},
		Site: SiteConfig{
			BaseURL:          strings.TrimRight(stringWithDefault(lookup, key("BASE_URL"), defaultBaseURL), "/"),
			Name:             stringWithDefault(lookup, key("SITE_NAME"), defaultSiteName),
			Locale:           stringWithDefault(lookup, key("LOCALE"), defaultLocale),
			TwitterSite:      stringWithDefault(lookup, key("TWITTER_SITE"), ""),
			DefaultImageURL:  disableableString(lookup, key("OG_IMAGE_URL"), defaultImageURL),
			DefaultImageBase: stringWithDefault(lookup, key("OG_IMAGE_BASE_PATH"), defaultImageBasePath),
			DefaultImageFile: disableableString(lookup, key("OG_IMAGE_FILENAME"), defaultImageFilename),
			DefaultImageW:    intWithDefault(lookup, key("OG_IMAGE_WIDTH"), defaultImageWidth),
			DefaultImageH:    intWithDefault(lookup, key("OG_IMAGE_HEIGHT"), defaultImageHeight),
			DefaultImageType: stringWithDefault(lookup, key("OG_IMAGE_TYPE"), defaultImageType),
			GA4MeasurementID: stringWithDefault(lookup, key("GA_MEASUREMENT_ID"), ""),
		},
		Contact: ContactConfig{
			Endpoint: stringWithDefault(lookup, key("CONTACT_ENDPOINT"), ""),
			Timeout:  durationWithDefault(lookup, key("CONTACT_TIMEOUT"), defaultContactTimeout),
		},
		RateLimit: RateLimitConfig{
			PerSecond:   floatWithDefault(lookup, key("CONTACT_RATE_PER_SECOND"), defaultRatePerSecond),
			Burst:       intWithDefault(lookup, key("CONTACT_RATE_BURST"), defaultRateBurst),
			RedisAddr:   stringWithDefault(lookup, key("REDIS_ADDR"), ""),
			Window:      durationWithDefault(lookup, key("CONTACT_RATE_WINDOW"), defaultRateWindow),
			WindowLimit: intWithDefault(lookup, key("CONTACT_RATE_WINDOW_LIMIT"), defaultRateWindowLimit),
		},
		Session: SessionConfig{
			SigningKey: stringWithDefault(lookup, key("SESSION_SIGNING_KEY"), ""),
		},
		Log: LogConfig{
			Level:            stringWithDefault(lookup, key("LOG_LEVEL"), defaultLogLevel),
			TraceSampleRatio: floatWithDefault(lookup, key("TRACE_SAMPLE_RATIO"), 0),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var invalid []string

	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		invalid = append(invalid, "Server.Port")
	}
	if u, err := url.Parse(cfg.Site.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		invalid = append(invalid, "Site.BaseURL")
	}
	if strings.TrimSpace(cfg.Site.Name) == "" {
		invalid = append(invalid, "Site.Name")
	}
	if cfg.Contact.Endpoint != "" {
		if u, err := url.Parse(cfg.Contact.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
			invalid = append(invalid, "Contact.Endpoint")
		}
	}
	if cfg.Contact.Timeout <= 0 {
		invalid = append(invalid, "Contact.Timeout")
	}
	if cfg.RateLimit.PerSecond < 0 || (cfg.RateLimit.PerSecond > 0 && cfg.RateLimit.Burst <= 0) {
		invalid = append(invalid, "RateLimit.Burst")
	}
	if cfg.RateLimit.RedisAddr != "" && (cfg.RateLimit.Window <= 0 || cfg.RateLimit.WindowLimit <= 0) {
		invalid = append(invalid, "RateLimit.Window")
	}
	if cfg.Log.TraceSampleRatio < 0 || cfg.Log.TraceSampleRatio > 1 {
		invalid = append(invalid, "Log.TraceSampleRatio")
	}
	if cfg.Server.Production() && cfg.Session.SigningKey == "" {
		invalid = append(invalid, "Session.SigningKey")
	}

	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

// loadDotEnv reads KEY=value pairs from path. A missing file is not an error.
func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	if _, err := os.Stat(absPath); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	v := viper.New()
	v.SetConfigFile(absPath)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}

	// viper lower-cases keys; environment lookups use upper case.
	values := make(map[string]string, len(v.AllKeys()))
	for _, k := range v.AllKeys() {
		values[strings.ToUpper(k)] = v.GetString(k)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

// disableableString behaves like stringWithDefault but maps the literal "none"
// to an empty value, so a default can be switched off.
func disableableString(lookup func(string) (string, bool), key, fallback string) string {
	value := stringWithDefault(lookup, key, fallback)
	if strings.EqualFold(value, disabledValue) {
		return ""
	}
	return value
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func floatWithDefault(lookup func(string) (string, bool), key string, fallback float64) float64 {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
