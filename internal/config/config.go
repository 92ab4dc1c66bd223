package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SessionStoreFile   = "file"
	SessionStoreBadger = "badger"

	MediaBackendLocal = "local"
	MediaBackendGCS   = "gcs"

	minSecretKeyLength = 32
)

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

type Google struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func (google Google) Enabled() bool {
	return google.ClientID != "" && google.ClientSecret != "" && google.RedirectURL != ""
}

type Config struct {
	Port            string
	DBPath          string
	Location        *time.Location
	SecretKey       string
	CookieSecure    bool
	DefaultLanguage string

	LogLevel string
	LogFile  string

	SessionStore string
	SessionDir   string

	MediaBackend       string
	MediaDir           string
	GCSBucket          string
	GCSCredentialsFile string

	Google Google
}

// LoadDotEnv preloads variables from the given files. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	existing := make([]string, 0, len(paths))
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			existing = append(existing, path)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

func Load() (Config, error) {
	secretKey, err := ResolveSecretKey()
	if err != nil {
		return Config{}, err
	}
	port, err := ResolvePort()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:               port,
		DBPath:             Getenv("DB_PATH", filepath.Join("data", "daybook.db")),
		Location:           LoadLocation(Getenv("TZ", "UTC")),
		SecretKey:          secretKey,
		CookieSecure:       parseBool(os.Getenv("COOKIE_SECURE")),
		DefaultLanguage:    Getenv("DEFAULT_LANGUAGE", "en"),
		LogLevel:           Getenv("LOG_LEVEL", "info"),
		LogFile:            os.Getenv("LOG_FILE"),
		SessionStore:       strings.ToLower(Getenv("SESSION_STORE", SessionStoreFile)),
		SessionDir:         Getenv("SESSION_DIR", filepath.Join("data", "sessions")),
		MediaBackend:       strings.ToLower(Getenv("MEDIA_BACKEND", MediaBackendLocal)),
		MediaDir:           Getenv("MEDIA_DIR", filepath.Join("data", "media")),
		GCSBucket:          os.Getenv("GCS_BUCKET"),
		GCSCredentialsFile: os.Getenv("GCS_CREDENTIALS_FILE"),
		Google: Google{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	switch cfg.SessionStore {
	case SessionStoreFile, SessionStoreBadger:
	default:
		return fmt.Errorf("SESSION_STORE must be %q or %q, got %q", SessionStoreFile, SessionStoreBadger, cfg.SessionStore)
	}

	switch cfg.MediaBackend {
	case MediaBackendLocal:
	case MediaBackendGCS:
		if cfg.GCSBucket == "" {
			return errors.New("GCS_BUCKET is required when MEDIA_BACKEND=gcs")
		}
	default:
		return fmt.Errorf("MEDIA_BACKEND must be %q or %q, got %q", MediaBackendLocal, MediaBackendGCS, cfg.MediaBackend)
	}
	return nil
}

func ResolveSecretKey() (string, error) {
	secret := strings.TrimSpace(os.Getenv("SECRET_KEY"))
	if secret == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	if _, insecure := insecureSecretKeys[secret]; insecure {
		return "", errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secret) < minSecretKeyLength {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return secret, nil
}

func ResolvePort() (string, error) {
	raw := Getenv("PORT", "8080")
	port, err := strconv.Atoi(raw)
	if err != nil {
		return "", fmt.Errorf("PORT must be numeric, got %q", raw)
	}
	if port < 1 || port > 65535 {
		return "", fmt.Errorf("PORT must be between 1 and 65535, got %d", port)
	}
	return raw, nil
}

func LoadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return location
}

func Getenv(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func parseBool(raw string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && value
}
