// Package config reads service settings from RR_* environment variables,
// optionally loaded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dukerupert/reciperescue/internal/gallery"
	"github.com/dukerupert/reciperescue/internal/gemini"
	"github.com/dukerupert/reciperescue/internal/push"
)

type Config struct {
	Port      string
	BaseURL   string
	DBPath    string
	LogLevel  string
	LogFormat string

	Gemini gemini.Config
	// AIRequestsPerMinute limits AI endpoints per client IP.
	AIRequestsPerMinute int
	MaxUploadBytes      int64
	MaxImageDim         int

	UpgradeDelay  time.Duration
	SessionTTL    time.Duration
	SecureCookies bool
	CORSOrigins   []string

	Gallery gallery.Config
	Push    push.Config

	ReminderInterval time.Duration
	// ReminderHour is the local hour before which no reminders go out.
	ReminderHour      int
	ActivityRetention time.Duration
}

// Load reads a .env file if one exists and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults for unset values.
func FromEnv(getenv func(string) string) (Config, error) {
	p := parser{getenv: getenv}

	cfg := Config{
		Port:      p.str("RR_PORT", "8080"),
		DBPath:    p.str("RR_DB_PATH", "reciperescue.db"),
		LogLevel:  p.str("RR_LOG_LEVEL", "info"),
		LogFormat: p.str("RR_LOG_FORMAT", "text"),
		Gemini: gemini.Config{
			APIKey:      p.str("RR_GEMINI_API_KEY", ""),
			VisionModel: p.str("RR_GEMINI_VISION_MODEL", gemini.DefaultVisionModel),
			RecipeModel: p.str("RR_GEMINI_RECIPE_MODEL", gemini.DefaultRecipeModel),
			MapsModel:   p.str("RR_GEMINI_MAPS_MODEL", gemini.DefaultMapsModel),
			ImageModel:  p.str("RR_GEMINI_IMAGE_MODEL", gemini.DefaultImageModel),
			QPS:         p.float("RR_GEMINI_QPS", 2),
			Burst:       p.int("RR_GEMINI_BURST", 4),
			Timeout:     p.duration("RR_GEMINI_TIMEOUT", 90*time.Second),
		},
		AIRequestsPerMinute: p.int("RR_AI_REQUESTS_PER_MINUTE", 20),
		MaxUploadBytes:      int64(p.int("RR_MAX_UPLOAD_MB", 10)) << 20,
		MaxImageDim:         p.int("RR_MAX_IMAGE_DIM", 1536),
		UpgradeDelay:        p.duration("RR_UPGRADE_DELAY", time.Second),
		SessionTTL:          p.duration("RR_SESSION_TTL", 12*time.Hour),
		SecureCookies:       p.bool("RR_SECURE_COOKIES", false),
		CORSOrigins:         p.list("RR_CORS_ORIGINS"),
		Gallery: gallery.Config{
			Endpoint:      p.str("RR_S3_ENDPOINT", ""),
			Bucket:        p.str("RR_S3_BUCKET", ""),
			Region:        p.str("RR_S3_REGION", "auto"),
			AccessKey:     p.str("RR_S3_ACCESS_KEY", ""),
			SecretKey:     p.str("RR_S3_SECRET_KEY", ""),
			PublicBaseURL: p.str("RR_S3_PUBLIC_URL", ""),
			LinkTTL:       p.duration("RR_S3_LINK_TTL", 24*time.Hour),
		},
		Push: push.Config{
			VAPIDPublicKey:  p.str("RR_VAPID_PUBLIC_KEY", ""),
			VAPIDPrivateKey: p.str("RR_VAPID_PRIVATE_KEY", ""),
			Subscriber:      p.str("RR_VAPID_SUBSCRIBER", ""),
		},
		ReminderInterval:  p.duration("RR_REMINDER_INTERVAL", 15*time.Minute),
		ReminderHour:      p.int("RR_REMINDER_HOUR", 8),
		ActivityRetention: p.duration("RR_ACTIVITY_RETENTION", 90*24*time.Hour),
	}
	cfg.BaseURL = p.str("RR_BASE_URL", "http://localhost:"+cfg.Port)

	if len(p.errs) > 0 {
		return Config{}, errors.Join(p.errs...)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.ReminderHour < 0 || c.ReminderHour > 23 {
		errs = append(errs, fmt.Errorf("RR_REMINDER_HOUR: %d is not an hour of the day", c.ReminderHour))
	}
	if c.AIRequestsPerMinute <= 0 {
		errs = append(errs, errors.New("RR_AI_REQUESTS_PER_MINUTE: must be positive"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("RR_MAX_UPLOAD_MB: must be positive"))
	}
	if (c.Push.VAPIDPublicKey == "") != (c.Push.VAPIDPrivateKey == "") {
		errs = append(errs, errors.New("RR_VAPID_PUBLIC_KEY and RR_VAPID_PRIVATE_KEY must be set together"))
	}
	return errors.Join(errs...)
}

// parser collects every malformed value so they can be reported at once.
type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) int(key string, def int) int {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a number", key, v))
		return def
	}
	return f
}

func (p *parser) bool(key string, def bool) bool {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a boolean", key, v))
		return def
	}
	return b
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a duration", key, v))
		return def
	}
	return d
}

func (p *parser) list(key string) []string {
	var out []string
	for _, s := range strings.Split(p.getenv(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
