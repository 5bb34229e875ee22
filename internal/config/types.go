// Package config loads tablescope settings from defaults, a YAML file,
// TABLESCOPE_ environment variables and command-line flags.
package config

import (
	"time"

	"github.com/koustreak/tablescope/internal/backend"
	"github.com/koustreak/tablescope/internal/bridge"
	"github.com/koustreak/tablescope/internal/filestore"
	"github.com/koustreak/tablescope/internal/session"
)

// Config is the complete tablescope configuration.
type Config struct {
	Backend BackendConfig `koanf:"backend"`
	Connect ConnectConfig `koanf:"connect"`
	Intake  IntakeConfig  `koanf:"intake"`
	Tables  []string      `koanf:"tables"` // entries of the tables page
	Log     LogConfig     `koanf:"log"`
	Store   StoreConfig   `koanf:"store"`

	// FileUsed is the config file that was read, if any.
	FileUsed string `koanf:"-"`

	raw map[string]interface{}
}

// BackendConfig locates the HTTP backend.
type BackendConfig struct {
	BaseURL        string        `koanf:"base_url"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// ConnectConfig tunes the connect page.
type ConnectConfig struct {
	Timeout        time.Duration `koanf:"timeout"`
	MaxRetries     int           `koanf:"max_retries"`
	InitialBackoff time.Duration `koanf:"initial_backoff"`
	MaxBackoff     time.Duration `koanf:"max_backoff"`
	NavigateDelay  time.Duration `koanf:"navigate_delay"`
	SchemaPage     string        `koanf:"schema_page"`
}

// IntakeConfig controls which local files may be loaded.
type IntakeConfig struct {
	Extensions []string `koanf:"extensions"`
	StartDir   string   `koanf:"start_dir"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Output string `koanf:"output"` // stderr, stdout, file
	File   string `koanf:"file"`
}

// StoreConfig points at an optional MinIO/S3 bucket of CSV files.
type StoreConfig struct {
	Endpoint   string `koanf:"endpoint"`
	AccessKey  string `koanf:"access_key"`
	SecretKey  string `koanf:"secret_key"`
	UseSSL     bool   `koanf:"use_ssl"`
	Region     string `koanf:"region"`
	Bucket     string `koanf:"bucket"`
	Prefix     string `koanf:"prefix"`
	StagingDir string `koanf:"staging_dir"`
}

// BackendClient returns the backend client settings.
func (c *Config) BackendClient() backend.Config {
	return backend.Config{
		BaseURL:        c.Backend.BaseURL,
		RequestTimeout: c.Backend.RequestTimeout,
	}
}

// ConnectSettings returns the connection controller settings.
func (c *Config) ConnectSettings() session.ConnectConfig {
	return session.ConnectConfig{
		Timeout:        c.Connect.Timeout,
		MaxRetries:     c.Connect.MaxRetries,
		InitialBackoff: c.Connect.InitialBackoff,
		MaxBackoff:     c.Connect.MaxBackoff,
		NavigateDelay:  c.Connect.NavigateDelay,
		SchemaPage:     c.Connect.SchemaPage,
	}
}

// FileFilter returns the picker filter for the accepted extensions.
func (c *Config) FileFilter() bridge.FileFilter {
	return bridge.FileFilter{Name: "csv", Extensions: append([]string(nil), c.Intake.Extensions...)}
}

// FileStore returns the object store settings.
func (c *Config) FileStore() *filestore.Config {
	return &filestore.Config{
		Provider:   filestore.ProviderMinIO,
		Endpoint:   c.Store.Endpoint,
		AccessKey:  c.Store.AccessKey,
		SecretKey:  c.Store.SecretKey,
		UseSSL:     c.Store.UseSSL,
		Region:     c.Store.Region,
		Bucket:     c.Store.Bucket,
		Prefix:     c.Store.Prefix,
		StagingDir: c.Store.StagingDir,
	}
}
