package filestore

import "time"

// Config holds all settings needed to publish to an object storage backend.
type Config struct {
	// Endpoint is the host:port of the storage server, e.g. "localhost:9000".
	// Publishing is disabled when it is empty.
	Endpoint string `yaml:"endpoint"`

	// AccessKey and SecretKey are the MinIO / S3 style credentials.
	AccessKey string `yaml:"access_key" validate:"required_with=Endpoint"`
	SecretKey string `yaml:"secret_key" validate:"required_with=Endpoint"`

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool `yaml:"use_ssl"`

	// Region is used by region-aware backends (e.g. AWS S3).
	// Leave empty for MinIO.
	Region string `yaml:"region"`

	// Bucket receives the generated files; it is created when missing.
	Bucket string `yaml:"bucket" validate:"required_with=Endpoint"`

	// Prefix is prepended to every object key, e.g. "types/".
	Prefix string `yaml:"prefix"`

	// PresignTTL, when positive, makes the uploader log a download URL valid
	// for that long.
	PresignTTL time.Duration `yaml:"presign_ttl"`
}

// Enabled reports whether an endpoint is configured.
func (c *Config) Enabled() bool {
	return c != nil && c.Endpoint != ""
}

// DefaultConfig returns a local-dev config for MinIO.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    false,
		Bucket:    "schemats",
	}
}
