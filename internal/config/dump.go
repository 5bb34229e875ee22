package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/koustreak/tablescope/internal/errs"
)

const redacted = "********"

// YAML renders the effective configuration. Secrets are masked.
func (c *Config) YAML() ([]byte, error) {
	raw := c.raw
	if raw == nil {
		raw = Default().raw
	}

	out := copyMap(raw)
	if store, ok := out["store"].(map[string]interface{}); ok {
		if s, _ := store["secret_key"].(string); s != "" {
			store["secret_key"] = redacted
		}
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}

// DefaultYAML renders the built-in defaults as a starter config file.
func DefaultYAML() ([]byte, error) {
	data, err := yaml.Marshal(Default().raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode defaults: %w", err)
	}
	header := []byte("# tablescope configuration\n# Environment overrides: TABLESCOPE_<SECTION>__<KEY>, e.g. TABLESCOPE_BACKEND__BASE_URL\n")
	return append(header, data...), nil
}

// WriteDefault writes DefaultYAML to path, creating parent directories.
// An existing file is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errs.Newf(errs.ErrKindInvalidInput, "%s already exists (use --force to overwrite)", path)
		}
	}

	data, err := DefaultYAML()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func copyMap(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		if m, ok := v.(map[string]interface{}); ok {
			out[k] = copyMap(m)
			continue
		}
		out[k] = v
	}
	return out
}
