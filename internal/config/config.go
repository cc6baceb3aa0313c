package config

import "time"

type Duration struct {
	Duration time.Duration
}

type HTTPConfig struct {
	Addr              string   `yaml:"addr" validate:"required"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
	// AllowedOrigins feeds the CORS middleware; empty means the local dev defaults.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type PostgresConfig struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"gt=0"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Name     string `yaml:"name" validate:"required"`
	SSLMode  string `yaml:"sslmode" validate:"oneof=disable require verify-ca verify-full"`
	// AutoMigrate creates/updates the pipeline tables at startup.
	AutoMigrate bool `yaml:"auto_migrate"`
}

type RedisConfig struct {
	// Addr is optional; without it recent history lives in process memory.
	Addr      string `yaml:"addr"`
	KeyPrefix string `yaml:"key_prefix"`
}

type EdgeFunctionsConfig struct {
	BaseURL string `yaml:"base_url" validate:"required,url"`
	// APIKey is sent as a bearer token and an apikey header.
	APIKey string `yaml:"api_key"`

	IndexingPath string `yaml:"indexing_path" validate:"required"`
	SynopsisPath string `yaml:"synopsis_path" validate:"required"`
	OverviewPath string `yaml:"overview_path" validate:"required"`
	MetricsPath  string `yaml:"metrics_path" validate:"required"`

	// Timeout bounds a single remote call, not the wait for the per-profile lock.
	Timeout Duration `yaml:"timeout"`
	// PreviewBytes caps the response preview written to the diagnostics log.
	PreviewBytes int `yaml:"preview_bytes" validate:"gte=0"`
}

type StorageConfig struct {
	// Mode is "gcs", "gcs_emulator" or "disabled".
	Mode         string `yaml:"mode" validate:"oneof=gcs gcs_emulator disabled"`
	Bucket       string `yaml:"bucket" validate:"required_unless=Mode disabled"`
	EmulatorHost string `yaml:"emulator_host" validate:"required_if=Mode gcs_emulator"`
}

type QuotaConfig struct {
	WeeklyLimit      int    `yaml:"weekly_limit" validate:"gt=0"`
	WarningThreshold int    `yaml:"warning_threshold" validate:"gte=0"`
	TimeZone         string `yaml:"time_zone" validate:"required"`
	UpgradePath      string `yaml:"upgrade_path"`
}

type ContentConfig struct {
	// PlaceholderPatterns are lower-case fragments that mark a narrative as "no data".
	PlaceholderPatterns []string `yaml:"placeholder_patterns" validate:"min=1,dive,required"`
	// TabBarCardThreshold hides secondary navigation at or below this many active cards.
	TabBarCardThreshold int64 `yaml:"tab_bar_card_threshold" validate:"gte=0"`
	// MetricsCooldown is the minimum age of existing metrics before a manual refresh.
	MetricsCooldown Duration `yaml:"metrics_cooldown"`
}

type NavigationConfig struct {
	ErrorDisplay Duration `yaml:"error_display"`
	LoadingGrace Duration `yaml:"loading_grace"`
}

type AuthConfig struct {
	JWTSecret      string   `yaml:"jwt_secret" validate:"required,min=8"`
	AccessTokenTTL Duration `yaml:"access_token_ttl"`
}

type TelemetryConfig struct {
	ServiceName string `yaml:"service_name"`
	Version     string `yaml:"version"`
}

type Config struct {
	Env        string              `yaml:"env"`
	HTTP       HTTPConfig          `yaml:"http"`
	Postgres   PostgresConfig      `yaml:"postgres"`
	Redis      RedisConfig         `yaml:"redis"`
	Edge       EdgeFunctionsConfig `yaml:"edge_functions"`
	Storage    StorageConfig       `yaml:"storage"`
	Quota      QuotaConfig         `yaml:"quota"`
	Content    ContentConfig       `yaml:"content"`
	Navigation NavigationConfig    `yaml:"navigation"`
	Auth       AuthConfig          `yaml:"auth"`
	Telemetry  TelemetryConfig     `yaml:"telemetry"`
}
