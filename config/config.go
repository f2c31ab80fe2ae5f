// Package config resolves the settings for a test run. Precedence, lowest first: built-in
// defaults, an optional YAML file, ECHOTESTS_* environment variables, command-line flags.
package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const (
	DefaultServiceURL = "https://postman-echo.com"
	DefaultEnvPrefix  = "ECHOTESTS"
	DefaultLocalPort  = 8111

	defaultTimeoutMS        = 10000
	defaultStartupTimeoutMS = 10000
)

// Config is the effective configuration of a test run.
type Config struct {
	ServiceURL       string   `koanf:"url"`
	TimeoutMS        int      `koanf:"timeoutMs"`
	StartupTimeoutMS int      `koanf:"startupTimeoutMs"`
	Local            bool     `koanf:"local"`
	Port             int      `koanf:"port"`
	Run              []string `koanf:"run"`
	Skip             []string `koanf:"skip"`
	Debug            bool     `koanf:"debug"`
	DebugAll         bool     `koanf:"debugAll"`
}

// Overrides holds values given on the command line. Only fields that were actually set are
// applied on top of the loaded configuration.
type Overrides struct {
	ServiceURL string
	Timeout    ldvalue.OptionalInt
	Local      *bool
	Port       ldvalue.OptionalInt
	Debug      *bool
	DebugAll   *bool
}

func DefaultConfig() Config {
	return Config{
		ServiceURL:       DefaultServiceURL,
		TimeoutMS:        defaultTimeoutMS,
		StartupTimeoutMS: defaultStartupTimeoutMS,
		Port:             DefaultLocalPort,
	}
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// StartupTimeout is how long to wait for the local echo service to start listening. It does
// not apply to a remote service, which is never waited for.
func (c Config) StartupTimeout() time.Duration {
	return time.Duration(c.StartupTimeoutMS) * time.Millisecond
}

// Validate reports the first problem that would make the run meaningless.
func (c Config) Validate() error {
	if !c.Local {
		if c.ServiceURL == "" {
			return errors.New("config: url is required")
		}
		u, err := url.Parse(c.ServiceURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config: url %q must be an absolute http or https URL", c.ServiceURL)
		}
	}
	if c.TimeoutMS <= 0 {
		return fmt.Errorf("config: timeoutMs must be positive, got %d", c.TimeoutMS)
	}
	if c.StartupTimeoutMS < 0 {
		return fmt.Errorf("config: startupTimeoutMs must not be negative, got %d", c.StartupTimeoutMS)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d is out of range", c.Port)
	}
	return nil
}

// Loader builds a Config from its sources.
type Loader struct {
	envPrefix string
	files     []string
}

func NewLoader(envPrefix string, files ...string) *Loader {
	return &Loader{envPrefix: envPrefix, files: files}
}

// Load merges defaults, files, and environment variables, then applies the overrides.
func (l *Loader) Load(ctx context.Context, overrides Overrides) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultsMap(DefaultConfig()), "."), nil); err != nil {
		return Config{}, fmt.Errorf("config: load defaults: %w", err)
	}

	for _, path := range l.files {
		if path == "" {
			continue
		}
		select {
		case <-ctx.Done():
			return Config{}, ctx.Err()
		default:
		}
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("config: file %s not found", path)
			}
			return Config{}, fmt.Errorf("config: stat %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: load file %s: %w", path, err)
		}
	}

	if l.envPrefix != "" {
		canonical := map[string]string{
			"timeoutms":        "timeoutMs",
			"startuptimeoutms": "startupTimeoutMs",
			"debugall":         "debugAll",
		}
		transform := func(s string) string {
			key := strings.ToLower(strings.TrimPrefix(s, l.envPrefix+"_"))
			key = strings.ReplaceAll(key, "_", "")
			if mapped, ok := canonical[key]; ok {
				return mapped
			}
			return key
		}
		if err := k.Load(env.Provider(l.envPrefix+"_", ".", transform), nil); err != nil {
			return Config{}, fmt.Errorf("config: load env: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	overrides.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (o Overrides) apply(cfg *Config) {
	if o.ServiceURL != "" {
		cfg.ServiceURL = o.ServiceURL
	}
	if o.Timeout.IsDefined() {
		cfg.TimeoutMS = o.Timeout.IntValue()
	}
	if o.Local != nil {
		cfg.Local = *o.Local
	}
	if o.Port.IsDefined() {
		cfg.Port = o.Port.IntValue()
	}
	if o.Debug != nil {
		cfg.Debug = *o.Debug
	}
	if o.DebugAll != nil {
		cfg.DebugAll = *o.DebugAll
	}
}

func defaultsMap(cfg Config) map[string]interface{} {
	return map[string]interface{}{
		"url":              cfg.ServiceURL,
		"timeoutMs":        cfg.TimeoutMS,
		"startupTimeoutMs": cfg.StartupTimeoutMS,
		"local":            cfg.Local,
		"port":             cfg.Port,
		"debug":            cfg.Debug,
		"debugAll":         cfg.DebugAll,
	}
}
