package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/execudex-backend/internal/platform/envutil"
)

// DefaultPlaceholderPatterns are the narrative values treated as absent content.
var DefaultPlaceholderPatterns = []string{
	"no data",
	"no information",
	"not available",
	"n/a",
	"tbd",
	"to be determined",
	"pending",
	"coming soon",
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	s := strings.TrimSpace(node.Value)
	if s == "" || s == "null" || s == "~" {
		d.Duration = 0
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		d.Duration = time.Duration(n) * time.Millisecond
		return nil
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration must be a string like \"5s\" or integer milliseconds: %w", err)
	}
	d.Duration = dd
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

func Default() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
		},
		Postgres: PostgresConfig{
			Host:        "localhost",
			Port:        5432,
			User:        "postgres",
			Name:        "execudex",
			SSLMode:     "disable",
			AutoMigrate: true,
		},
		Redis: RedisConfig{KeyPrefix: "execudex"},
		Edge: EdgeFunctionsConfig{
			BaseURL:      "http://localhost:54321/functions/v1",
			IndexingPath: "/profile_index",
			SynopsisPath: "/ppl_synopsis",
			OverviewPath: "/bill_overview",
			MetricsPath:  "/ppl_metrics",
			Timeout:      Duration{Duration: 30 * time.Second},
			PreviewBytes: 400,
		},
		Storage: StorageConfig{Mode: "disabled"},
		Quota: QuotaConfig{
			WeeklyLimit:      10,
			WarningThreshold: 2,
			TimeZone:         "America/New_York",
			UpgradePath:      "/subscription",
		},
		Content: ContentConfig{
			PlaceholderPatterns: append([]string(nil), DefaultPlaceholderPatterns...),
			TabBarCardThreshold: 8,
			MetricsCooldown:     Duration{Duration: 21 * 24 * time.Hour},
		},
		Navigation: NavigationConfig{
			ErrorDisplay: Duration{Duration: 2 * time.Second},
			LoadingGrace: Duration{Duration: 100 * time.Millisecond},
		},
		Auth: AuthConfig{
			JWTSecret:      "defaultsecret",
			AccessTokenTTL: Duration{Duration: time.Hour},
		},
		Telemetry: TelemetryConfig{ServiceName: "execudex-backend"},
	}
}

// Load reads the YAML file named by EXECUDEX_CONFIG_PATH (or ./config/config.yaml when
// present) over the defaults, applies environment overrides and validates the result.
func Load() (*Config, error) {
	cfg := Default()

	cfgPath := strings.TrimSpace(os.Getenv("EXECUDEX_CONFIG_PATH"))
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "config.yaml")
			if _, err := os.Stat(p); err == nil {
				cfgPath = p
			}
		}
	}
	if cfgPath != "" {
		b, err := os.ReadFile(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgPath, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	applyEnv(cfg)
	normalize(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("LOG_MODE", cfg.Env)
	cfg.HTTP.Addr = envutil.String("HTTP_ADDR", cfg.HTTP.Addr)
	if origins := envutil.List("CORS_ALLOWED_ORIGINS"); len(origins) > 0 {
		cfg.HTTP.AllowedOrigins = origins
	}

	cfg.Postgres.Host = envutil.String("POSTGRES_HOST", cfg.Postgres.Host)
	cfg.Postgres.Port = envutil.Int("POSTGRES_PORT", cfg.Postgres.Port)
	cfg.Postgres.User = envutil.String("POSTGRES_USER", cfg.Postgres.User)
	cfg.Postgres.Password = envutil.String("POSTGRES_PASSWORD", cfg.Postgres.Password)
	cfg.Postgres.Name = envutil.String("POSTGRES_NAME", cfg.Postgres.Name)
	cfg.Postgres.SSLMode = envutil.String("POSTGRES_SSLMODE", cfg.Postgres.SSLMode)
	cfg.Postgres.AutoMigrate = envutil.Bool("POSTGRES_AUTO_MIGRATE", cfg.Postgres.AutoMigrate)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)

	cfg.Edge.BaseURL = envutil.String("EDGE_FUNCTIONS_URL", cfg.Edge.BaseURL)
	cfg.Edge.APIKey = envutil.String("EDGE_FUNCTIONS_KEY", cfg.Edge.APIKey)
	cfg.Edge.Timeout.Duration = envutil.Duration("EDGE_FUNCTIONS_TIMEOUT", cfg.Edge.Timeout.Duration)

	cfg.Storage.Mode = envutil.String("OBJECT_STORAGE_MODE", cfg.Storage.Mode)
	cfg.Storage.Bucket = envutil.String("ARTIFACT_GCS_BUCKET_NAME", cfg.Storage.Bucket)
	cfg.Storage.EmulatorHost = envutil.String("STORAGE_EMULATOR_HOST", cfg.Storage.EmulatorHost)

	cfg.Quota.WeeklyLimit = envutil.Int("QUOTA_WEEKLY_LIMIT", cfg.Quota.WeeklyLimit)
	cfg.Quota.TimeZone = envutil.String("QUOTA_TIME_ZONE", cfg.Quota.TimeZone)

	if patterns := envutil.List("PLACEHOLDER_PATTERNS"); len(patterns) > 0 {
		cfg.Content.PlaceholderPatterns = patterns
	}

	cfg.Auth.JWTSecret = envutil.String("JWT_SECRET_KEY", cfg.Auth.JWTSecret)
	cfg.Telemetry.Version = envutil.String("SERVICE_VERSION", cfg.Telemetry.Version)
}

func normalize(cfg *Config) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "development"
	}
	cfg.Edge.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Edge.BaseURL), "/")
	for _, p := range []*string{&cfg.Edge.IndexingPath, &cfg.Edge.SynopsisPath, &cfg.Edge.OverviewPath, &cfg.Edge.MetricsPath} {
		*p = strings.TrimSpace(*p)
		if *p != "" && !strings.HasPrefix(*p, "/") {
			*p = "/" + *p
		}
	}
	if cfg.Edge.Timeout.Duration <= 0 {
		cfg.Edge.Timeout = Duration{Duration: 30 * time.Second}
	}
	if cfg.Navigation.ErrorDisplay.Duration < 0 {
		cfg.Navigation.ErrorDisplay = Duration{}
	}
	cfg.Storage.Mode = strings.ToLower(strings.TrimSpace(cfg.Storage.Mode))
	if cfg.Storage.Mode == "" {
		cfg.Storage.Mode = "disabled"
	}
	patterns := cfg.Content.PlaceholderPatterns[:0]
	for _, p := range cfg.Content.PlaceholderPatterns {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			patterns = append(patterns, p)
		}
	}
	cfg.Content.PlaceholderPatterns = patterns
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags plus the cross-field rules tags cannot express.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Quota.TimeZone); err != nil {
		return fmt.Errorf("invalid quota.time_zone %q: %w", cfg.Quota.TimeZone, err)
	}
	if cfg.Quota.WarningThreshold >= cfg.Quota.WeeklyLimit {
		return fmt.Errorf("quota.warning_threshold (%d) must be below quota.weekly_limit (%d)", cfg.Quota.WarningThreshold, cfg.Quota.WeeklyLimit)
	}
	return nil
}
