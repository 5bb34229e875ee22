package filestore

import "github.com/koustreak/tablescope/internal/errs"

// Provider identifies the object storage backend.
type Provider string

const (
	ProviderMinIO Provider = "minio"
)

// Config holds the settings for reading CSV files out of an object store.
type Config struct {
	Provider Provider

	// Endpoint is the host:port of the storage server, e.g. "localhost:9000".
	// An empty endpoint disables the object store.
	Endpoint string

	AccessKey string
	SecretKey string
	UseSSL    bool

	// Region is used by region-aware backends (AWS S3). Leave empty for MinIO.
	Region string

	// Bucket holds the CSV files; Prefix narrows the listing inside it.
	Bucket string
	Prefix string

	// StagingDir is where objects are downloaded so the backend can read
	// them by local path.
	StagingDir string
}

// DefaultConfig returns a local-dev MinIO config.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Provider:  ProviderMinIO,
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    false,
	}
}

// Enabled reports whether an object store is configured.
func (c *Config) Enabled() bool {
	return c != nil && c.Endpoint != ""
}

// Validate checks the fields needed to list and stage objects.
func (c *Config) Validate() error {
	if !c.Enabled() {
		return errs.New(errs.ErrKindInvalidInput, "object store endpoint is not configured")
	}
	if c.Provider != "" && c.Provider != ProviderMinIO {
		return errs.Newf(errs.ErrKindInvalidInput, "unsupported object store provider %q", c.Provider)
	}
	if c.Bucket == "" {
		return errs.New(errs.ErrKindInvalidInput, "object store bucket is required")
	}
	return nil
}
