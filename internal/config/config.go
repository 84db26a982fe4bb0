package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/ttacon/libphonenumber"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"

	GeocoderLocationIQ = "locationiq"
	GeocoderGoogle     = "google"
)

// Config holds every deployment setting. It is built once at startup and
// handed to the components that need it.
type Config struct {
	Server     ServerConfig
	Store      StoreConfig
	Geocoder   GeocoderConfig
	Dispatch   DispatchConfig
	Enrichment EnrichmentConfig
	Redis      RedisConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port           string `validate:"required,numeric"`
	GinMode        string `validate:"oneof=debug release test"`
	AllowedOrigins []string
}

type StoreConfig struct {
	Driver   string `validate:"oneof=postgres mongo"`
	URL      string `validate:"required"`
	Database string `validate:"required_if=Driver mongo"`
}

type GeocoderConfig struct {
	Provider string        `validate:"oneof=locationiq google"`
	APIKey   string
	BaseURL  string        `validate:"omitempty,url"`
	Country  string        `validate:"required,len=2"`
	Pause    time.Duration `validate:"min=0"`
	Timeout  time.Duration `validate:"gt=0"`
}

type DispatchConfig struct {
	URL      string `validate:"omitempty,url"`
	Token    string
	AgentID  int64 `validate:"min=0"`
	ToNumber string
	Region   string        `validate:"required,len=2"`
	Timeout  time.Duration `validate:"gt=0"`
}

// Enabled reports whether every routing setting needed for a dispatch call is present.
func (d DispatchConfig) Enabled() bool {
	return d.URL != "" && d.Token != "" && d.AgentID > 0 && d.ToNumber != ""
}

type EnrichmentConfig struct {
	// UnresolvedOnly restricts /get-reports to incidents with resolved=false.
	UnresolvedOnly bool
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string `validate:"oneof=text json"`
}

// Load reads .env (when present) and the environment, then validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           getenv("PORT", "3000"),
			GinMode:        getenv("GIN_MODE", "debug"),
			AllowedOrigins: splitAndTrim(os.Getenv("CORS_ALLOWED_ORIGINS")),
		},
		Store: StoreConfig{
			Driver:   strings.ToLower(getenv("STORE_DRIVER", StoreDriverPostgres)),
			URL:      os.Getenv("DATABASE_URL"),
			Database: getenv("MONGO_DATABASE", "webhookdb"),
		},
		Geocoder: GeocoderConfig{
			Provider: strings.ToLower(getenv("GEOCODER_PROVIDER", GeocoderLocationIQ)),
			APIKey:   getenv("GEOCODER_API_KEY", os.Getenv("LOCATION")),
			BaseURL:  os.Getenv("GEOCODER_BASE_URL"),
			Country:  strings.ToLower(getenv("GEOCODER_COUNTRY", "in")),
		},
		Dispatch: DispatchConfig{
			URL:      getenv("DISPATCH_URL", "https://backend.omnidim.io/api/v1/calls/dispatch"),
			Token:    os.Getenv("DISPATCH_TOKEN"),
			ToNumber: strings.TrimSpace(os.Getenv("DISPATCH_TO_NUMBER")),
			Region:   strings.ToUpper(getenv("DISPATCH_REGION", "IN")),
		},
		Redis: RedisConfig{
			Address:  os.Getenv("REDIS_ADDRESS"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Log: LogConfig{
			Level:  getenv("LOG_LEVEL", "INFO"),
			Format: strings.ToLower(getenv("LOG_FORMAT", "text")),
		},
	}

	var err error
	if cfg.Geocoder.Pause, err = getenvDuration("GEOCODER_PAUSE", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.Geocoder.Timeout, err = getenvDuration("GEOCODER_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Dispatch.Timeout, err = getenvDuration("DISPATCH_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.Dispatch.AgentID, err = getenvInt("DISPATCH_AGENT_ID", 0); err != nil {
		return nil, err
	}
	if cfg.Enrichment.UnresolvedOnly, err = getenvBool("ENRICH_UNRESOLVED_ONLY", true); err != nil {
		return nil, err
	}
	redisDB, err := getenvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.Redis.DB = int(redisDB)

	if cfg.Geocoder.BaseURL == "" && cfg.Geocoder.Provider == GeocoderLocationIQ {
		cfg.Geocoder.BaseURL = "https://us1.locationiq.com"
	}

	if cfg.Dispatch.ToNumber != "" {
		normalized, err := NormalizePhoneNumber(cfg.Dispatch.ToNumber, cfg.Dispatch.Region)
		if err != nil {
			return nil, fmt.Errorf("invalid DISPATCH_TO_NUMBER: %w", err)
		}
		cfg.Dispatch.ToNumber = normalized
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags and reports every failing field at once.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	problems := make([]string, 0, len(validationErrors))
	for _, ve := range validationErrors {
		problems = append(problems, fmt.Sprintf("%s (%s)", ve.Namespace(), ve.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, ", "))
}

// NormalizePhoneNumber parses a number for the given region and returns it in E.164.
func NormalizePhoneNumber(number, region string) (string, error) {
	p, err := libphonenumber.Parse(number, region)
	if err != nil {
		return "", err
	}
	if !libphonenumber.IsValidNumber(p) {
		return "", fmt.Errorf("phone number is not valid")
	}
	return libphonenumber.Format(p, libphonenumber.E164), nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvInt(key string, fallback int64) (int64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
