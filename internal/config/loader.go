package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/koustreak/tablescope/internal/errs"
	"github.com/koustreak/tablescope/internal/logger"
)

// ConfigFileName is the config file looked up in the working directory.
const ConfigFileName = "tablescope.yaml"

// EnvPrefix prefixes environment overrides. Nested keys are separated by a
// double underscore: TABLESCOPE_BACKEND__BASE_URL sets backend.base_url.
const EnvPrefix = "TABLESCOPE_"

// flagKeys maps command-line flags to config keys. Other flags are ignored.
var flagKeys = map[string]string{
	"backend-url":     "backend.base_url",
	"request-timeout": "backend.request_timeout",
	"connect-timeout": "connect.timeout",
	"start-dir":       "intake.start_dir",
	"log-level":       "log.level",
	"log-format":      "log.format",
	"log-output":      "log.output",
	"log-file":        "log.file",
}

// listKeys are read from the environment as comma-separated lists.
var listKeys = map[string]bool{
	"intake.extensions": true,
	"tables":            true,
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// FindConfigFile returns the config file to use.
// Priority: explicit path > ./tablescope.yaml > $XDG_CONFIG_HOME/tablescope/config.yaml.
func FindConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(ConfigFileName); err == nil {
		return ConfigFileName
	}
	if p := UserConfigPath(); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// UserConfigPath returns the per-user config file path, or "" when the
// platform has no config directory.
func UserConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tablescope", "config.yaml")
}

// Load reads configuration.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// An explicit cfgFile that does not exist is an error; a missing default
// file is not.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaultValues(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := FindConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "error reading config file "+used, err)
		}
	}

	// 3. Environment: TABLESCOPE_CONNECT__MAX_RETRIES -> connect.max_retries
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(name, value string) (string, interface{}) {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "__", ".")
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only those explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "unable to decode config", err)
	}
	cfg.FileUsed = used
	cfg.raw = k.Raw()

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	k := koanf.New(".")
	_ = k.Load(confmap.Provider(defaultValues(), "."), nil)

	var cfg Config
	_ = k.Unmarshal("", &cfg)
	cfg.raw = k.Raw()
	cfg.normalize()
	return &cfg
}

func (c *Config) normalize() {
	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	for i, e := range c.Intake.Extensions {
		c.Intake.Extensions[i] = strings.ToLower(strings.TrimSpace(e))
	}
	tables := c.Tables[:0]
	for _, t := range c.Tables {
		if t = strings.TrimSpace(t); t != "" {
			tables = append(tables, t)
		}
	}
	c.Tables = tables
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []error
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	if u, err := url.Parse(c.Backend.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("backend.base_url must be an http(s) URL, got %q", c.Backend.BaseURL)
	}
	if c.Backend.RequestTimeout < 0 {
		add("backend.request_timeout must not be negative")
	}

	if c.Connect.Timeout <= 0 {
		add("connect.timeout must be positive")
	}
	if c.Connect.MaxRetries < 0 {
		add("connect.max_retries must not be negative")
	}
	if c.Connect.InitialBackoff < 0 || c.Connect.MaxBackoff < 0 || c.Connect.NavigateDelay < 0 {
		add("connect durations must not be negative")
	}
	if !strings.HasPrefix(c.Connect.SchemaPage, "/") {
		add("connect.schema_page must start with '/', got %q", c.Connect.SchemaPage)
	}

	if len(c.Intake.Extensions) == 0 {
		add("intake.extensions must not be empty")
	}
	for _, e := range c.Intake.Extensions {
		if len(e) < 2 || !strings.HasPrefix(e, ".") {
			add("intake.extensions entry %q must start with '.'", e)
		}
	}

	if !logger.ValidLevel(c.Log.Level) {
		add("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		add("log.format must be json or console, got %q", c.Log.Format)
	}
	switch c.Log.Output {
	case "stderr", "stdout":
	case "file":
		if c.Log.File == "" {
			add("log.file is required when log.output is file")
		}
	default:
		add("log.output must be stderr, stdout or file, got %q", c.Log.Output)
	}

	if c.Store.Endpoint != "" && c.Store.Bucket == "" {
		add("store.bucket is required when store.endpoint is set")
	}

	if len(problems) > 0 {
		return errs.Wrap(errs.ErrKindInvalidInput, "invalid configuration", errors.Join(problems...))
	}
	return nil
}
