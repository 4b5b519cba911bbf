package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "JSONRESPONSE"

	EnvAppEnv              = "JSONRESPONSE_APP_ENV"
	EnvLogLevel            = "JSONRESPONSE_LOG_LEVEL"
	EnvLogWarnStack        = "JSONRESPONSE_LOG_WARN_STACK"
	EnvLogFormat           = "JSONRESPONSE_LOG_FORMAT"
	EnvPolicy              = "JSONRESPONSE_POLICY"
	EnvConformanceCases    = "JSONRESPONSE_CONFORMANCE_CASES"
	EnvConformanceParallel = "JSONRESPONSE_CONFORMANCE_PARALLELISM"
	EnvMetricsTextfile     = "JSONRESPONSE_METRICS_TEXTFILE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	PolicyPermissive = "permissive"
	PolicyStrict     = "strict"
)

type Config struct {
	App         AppConfig
	Builder     BuilderConfig
	Conformance ConformanceConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Builder.normalize(); err != nil {
		return nil, err
	}
	if cfg.Conformance.Parallelism < 1 {
		return nil, fmt.Errorf("%s must be at least 1, got %d", EnvConformanceParallel, cfg.Conformance.Parallelism)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"JSONRESPONSE_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"JSONRESPONSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"JSONRESPONSE_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"JSONRESPONSE_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type BuilderConfig struct {
	Policy string `envconfig:"JSONRESPONSE_POLICY" default:"permissive"`
}

// Strict reports whether non-mapping payloads are rejected.
func (b BuilderConfig) Strict() bool {
	return b.Policy == PolicyStrict
}

func (b *BuilderConfig) normalize() error {
	b.Policy = strings.ToLower(strings.TrimSpace(b.Policy))
	switch b.Policy {
	case "":
		b.Policy = PolicyPermissive
	case PolicyPermissive, PolicyStrict:
	default:
		return fmt.Errorf("%s must be %s or %s, got %q", EnvPolicy, PolicyPermissive, PolicyStrict, b.Policy)
	}
	return nil
}

type ConformanceConfig struct {
	CasesFile       string `envconfig:"JSONRESPONSE_CONFORMANCE_CASES"`
	Parallelism     int    `envconfig:"JSONRESPONSE_CONFORMANCE_PARALLELISM" default:"4"`
	MetricsTextfile string `envconfig:"JSONRESPONSE_METRICS_TEXTFILE"`
}
