// Package config reads server settings from the environment (a .env file is loaded
// automatically) and lets command-line flags override them.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/pflag"
)

type Config struct {
	Port    int
	BaseURL string
	GinMode string

	DatabaseType string
	DatabaseURL  string

	StorageBackend string
	StorageDir     string
	StorageBucket  string
	GCSCredentials string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionKey  string
	SessionTTL  time.Duration
	AllowSignUp bool

	CatalogPath string

	TrackVisits    bool
	VisitRetention time.Duration

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	ToEmail  string
}

// Load reads the environment, falling back to defaults for unset keys.
func Load() (Config, error) {
	cfg := Config{
		BaseURL:        os.Getenv("BASE_URL"),
		GinMode:        getenv("GIN_MODE", gin.DebugMode),
		DatabaseType:   getenv("DATABASE_TYPE", "sqlite"),
		DatabaseURL:    getenv("DATABASE_URL", "file:portfolio.db"),
		StorageBackend: getenv("STORAGE_BACKEND", "local"),
		StorageDir:     getenv("STORAGE_DIR", "./uploads"),
		StorageBucket:  getenv("STORAGE_BUCKET", "project-media"),
		GCSCredentials: os.Getenv("GCS_CREDENTIALS"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		SessionKey:     os.Getenv("SESSION_KEY"),
		CatalogPath:    os.Getenv("CATALOG_PATH"),
		SMTPHost:       getenv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:       getenv("SMTP_PORT", "587"),
		SMTPUser:       os.Getenv("SMTP_USER"),
		SMTPPass:       os.Getenv("SMTP_PASS"),
		ToEmail:        os.Getenv("TO_EMAIL"),
	}

	var err error
	if cfg.Port, err = getenvInt("PORT", 8080); err != nil {
		return Config{}, err
	}
	if cfg.RedisDB, err = getenvInt("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = getenvDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.AllowSignUp, err = getenvBool("ALLOW_SIGNUP", false); err != nil {
		return Config{}, err
	}
	if cfg.TrackVisits, err = getenvBool("TRACK_VISITS", true); err != nil {
		return Config{}, err
	}
	// Twelve months, after which visitor records are purged.
	if cfg.VisitRetention, err = getenvDuration("VISIT_RETENTION", 365*24*time.Hour); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %q", key, v)
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
		return false, fmt.Errorf("invalid %s env variable: %q", key, v)
	}
	return b, nil
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %q", key, v)
	}
	return d, nil
}

// RegisterFlags adds the flags that may override the environment.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.IntP("port", "p", 0, "Server port (PORT)")
	fs.String("base-url", "", "Public base URL of the site (BASE_URL)")
	fs.StringP("database-type", "t", "", "Database type, sqlite or postgres (DATABASE_TYPE)")
	fs.StringP("database-url", "d", "", "Database URL (DATABASE_URL)")
	fs.String("storage", "", "Storage backend, local or gcs (STORAGE_BACKEND)")
	fs.String("storage-dir", "", "Directory for the local storage backend (STORAGE_DIR)")
	fs.String("bucket", "", "Bucket name (STORAGE_BUCKET)")
	fs.String("redis-addr", "", "Redis address for session tokens (REDIS_ADDR)")
	fs.String("catalog", "", "YAML project catalog (CATALOG_PATH)")
	fs.Bool("allow-signup", false, "Allow creating admin accounts from the login page (ALLOW_SIGNUP)")
	fs.Bool("track-visits", true, "Record privacy-preserving visitor statistics (TRACK_VISITS)")
}

// ApplyFlags overrides cfg with every flag set explicitly on the command line.
func (cfg *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var errs []error
	str := func(name string, dst *string) {
		if fs.Changed(name) {
			v, err := fs.GetString(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	if fs.Changed("port") {
		v, err := fs.GetInt("port")
		errs = append(errs, err)
		cfg.Port = v
	}
	str("base-url", &cfg.BaseURL)
	str("database-type", &cfg.DatabaseType)
	str("database-url", &cfg.DatabaseURL)
	str("storage", &cfg.StorageBackend)
	str("storage-dir", &cfg.StorageDir)
	str("bucket", &cfg.StorageBucket)
	str("redis-addr", &cfg.RedisAddr)
	str("catalog", &cfg.CatalogPath)
	if fs.Changed("allow-signup") {
		v, err := fs.GetBool("allow-signup")
		errs = append(errs, err)
		cfg.AllowSignUp = v
	}
	if fs.Changed("track-visits") {
		v, err := fs.GetBool("track-visits")
		errs = append(errs, err)
		cfg.TrackVisits = v
	}
	return errors.Join(errs...)
}

// Validate checks the combination of settings and fills derived defaults.
func (cfg *Config) Validate() error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port %d out of range", cfg.Port)
	}
	switch cfg.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("unknown GIN_MODE %q", cfg.GinMode)
	}
	switch cfg.DatabaseType {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown database type %q (use sqlite or postgres)", cfg.DatabaseType)
	}
	if cfg.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	switch cfg.StorageBackend {
	case "local":
		if cfg.StorageDir == "" {
			return errors.New("STORAGE_DIR required for the local storage backend")
		}
	case "gcs":
	default:
		return fmt.Errorf("unknown storage backend %q (use local or gcs)", cfg.StorageBackend)
	}
	if cfg.StorageBucket == "" {
		return errors.New("STORAGE_BUCKET required")
	}
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	if cfg.TrackVisits && cfg.VisitRetention <= 0 {
		return fmt.Errorf("VISIT_RETENTION must be positive, got %s", cfg.VisitRetention)
	}
	if cfg.GinMode == gin.ReleaseMode && len(cfg.SessionKey) < 32 {
		return errors.New("SESSION_KEY of at least 32 bytes required in release mode")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.ToEmail == "" {
		cfg.ToEmail = cfg.SMTPUser
	}
	return nil
}

func (cfg *Config) Addr() string {
	return ":" + strconv.Itoa(cfg.Port)
}

func (cfg *Config) Release() bool {
	return cfg.GinMode == gin.ReleaseMode
}
