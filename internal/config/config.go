// Package config loads bot settings from the environment (and an optional .env file).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
}

// Enabled reports whether the optional archive bucket is configured.
func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

type Config struct {
	Env         string
	BotToken    string
	DatabaseURL string

	// text backend (OpenAI-compatible proxy)
	ProxyAPIKey     string
	ProxyAPIBaseURL string
	TextModel       string

	// image backend (FusionBrain)
	FusionBrainURL       string
	FusionBrainAPIKey    string
	FusionBrainSecretKey string

	ReportsDir string

	FloodTTL      time.Duration
	FloodCapacity int
	StaleAfter    time.Duration
	GraceDelay    time.Duration
	ActionDelay   time.Duration
	UploadDelay   time.Duration
	SessionTTL    time.Duration

	AdminChatID   int64
	AdminAPIToken string
	HTTPPort      string

	S3 S3Config
}

// Load reads .env (if any) and the process environment.
// Missing credentials or endpoints are returned as an error; the caller aborts startup.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:         strings.ToLower(getenv("ENV", "prod")),
		BotToken:    botToken(),
		DatabaseURL: getenv("DATABASE_URL", ""),

		ProxyAPIKey:     getenv("PROXY_API_KEY", ""),
		ProxyAPIBaseURL: getenv("PROXY_API_BASE_URL", ""),
		TextModel:       getenv("TEXT_MODEL", "gpt-3.5-turbo"),

		FusionBrainURL:       getenv("FUSIONBRAIN_URL", ""),
		FusionBrainAPIKey:    getenv("FUSIONBRAIN_API_KEY", ""),
		FusionBrainSecretKey: getenv("FUSIONBRAIN_SECRET_KEY", ""),

		ReportsDir: getenv("REPORTS_DIR", "reports"),

		FloodTTL:      getdur("FLOOD_TTL", 3*time.Second),
		FloodCapacity: getint("FLOOD_CAPACITY", 100),
		StaleAfter:    getdur("STALE_AFTER", 30*time.Second),
		GraceDelay:    getdur("GRACE_DELAY", 3*time.Second),
		ActionDelay:   getdur("ACTION_DELAY", time.Second),
		UploadDelay:   getdur("UPLOAD_DELAY", 3*time.Second),
		SessionTTL:    getdur("SESSION_TTL", 30*time.Minute),

		AdminChatID:   getint64("ADMIN_CHAT_ID", 0),
		AdminAPIToken: getenv("ADMIN_API_TOKEN", ""),
		HTTPPort:      getenv("HTTP_PORT", "8080"),

		S3: S3Config{
			Endpoint:  getenv("S3_ENDPOINT", ""),
			AccessKey: getenv("S3_ACCESS_KEY", ""),
			SecretKey: getenv("S3_SECRET_KEY", ""),
			Bucket:    getenv("S3_BUCKET", ""),
			Region:    getenv("S3_REGION", ""),
		},
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"BOT_TOKEN", c.BotToken},
		{"DATABASE_URL", c.DatabaseURL},
		{"PROXY_API_KEY", c.ProxyAPIKey},
		{"FUSIONBRAIN_URL", c.FusionBrainURL},
		{"FUSIONBRAIN_API_KEY", c.FusionBrainAPIKey},
		{"FUSIONBRAIN_SECRET_KEY", c.FusionBrainSecretKey},
	}
	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env: %s", strings.Join(missing, ", "))
	}

	if c.FloodTTL <= 0 || c.StaleAfter <= 0 {
		return errors.New("FLOOD_TTL and STALE_AFTER must be positive durations")
	}
	if c.FloodCapacity < 1 {
		return errors.New("FLOOD_CAPACITY must be >= 1")
	}
	if c.GraceDelay < 0 || c.ActionDelay < 0 || c.UploadDelay < 0 {
		return errors.New("delays must not be negative")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be > 0")
	}
	return nil
}

// botToken picks the token for the current ENV; BOT_TOKEN wins when set.
func botToken() string {
	if t := getenv("BOT_TOKEN", ""); t != "" {
		return t
	}
	switch strings.ToLower(getenv("ENV", "")) {
	case "dev":
		return getenv("BOT_TOKEN_DEV", "")
	case "feat":
		return getenv("BOT_TOKEN_FEATURE", "")
	}
	return ""
}

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getint64(k string, def int64) int64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
