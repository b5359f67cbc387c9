package storage

// Config holds configuration for the local stores and the optional mirror.
type Config struct {
	// RawDir is the raw store: downloaded catalog content, laid out by path.
	RawDir string `mapstructure:"raw_dir" default:"RawData"`
	// ExtractDir is the extracted store: output of the extraction stage.
	ExtractDir string `mapstructure:"extract_dir" default:"Extracted"`
	// TempDir is scratch space for staged downloads and intermediate files.
	TempDir string `mapstructure:"temp_dir" default:"Temp"`
	// Mirror configures the optional object-storage mirror.
	Mirror MirrorConfig `mapstructure:"mirror"`
}

// MirrorConfig holds configuration for the object-storage mirror.
type MirrorConfig struct {
	// Enabled turns mirroring of committed raw assets on.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Endpoint is the URL of the storage service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket is the name of the bucket to mirror assets into.
	Bucket string `mapstructure:"bucket" default:"assets"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
