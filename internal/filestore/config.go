package filestore

import "github.com/koustreak/schemadiff/internal/errs"

// Provider identifies the object storage backend.
type Provider string

const (
	ProviderMinIO Provider = "minio"
)

// Config holds the settings needed to reach the bucket snapshots live in.
type Config struct {
	Provider Provider `yaml:"provider"`

	// Endpoint is the host:port of the storage server, e.g. "localhost:9000".
	Endpoint string `yaml:"endpoint"`

	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`

	// Region is used by region-aware backends. Leave empty for MinIO.
	Region string `yaml:"region"`

	// Bucket holds snapshot documents.
	Bucket string `yaml:"bucket"`

	// Prefix is prepended to every snapshot key, e.g. "snapshots/".
	Prefix string `yaml:"prefix"`
}

// DefaultConfig returns a local-dev config for MinIO.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Provider:  ProviderMinIO,
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		Bucket:    "schemadiff",
		Prefix:    "snapshots/",
	}
}

// Enabled reports whether object storage was configured at all.
func (c *Config) Enabled() bool {
	return c != nil && c.Endpoint != ""
}

// Validate checks a configured store. An unconfigured store is valid.
func (c *Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Provider != ProviderMinIO {
		return errs.Newf(errs.ErrKindInvalidInput, "unsupported storage provider %q", c.Provider)
	}
	if c.Bucket == "" {
		return errs.New(errs.ErrKindInvalidInput, "storage: bucket is required")
	}
	return nil
}

// Key joins the configured prefix and name.
func (c *Config) Key(name string) string {
	return c.Prefix + name
}
