// Package config provides configuration management for the asset downloader.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Command-line flags override loaded values in cmd, so
// every run sees one explicit, immutable configuration.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Storage: raw/extracted/temp store locations and the optional S3/MinIO mirror
//   - Database: state database connection (sqlite file or MySQL)
//   - Network: proxy and HTTP timeout policy
//   - Download: worker pool size and retry ceiling
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Storage.RawDir)
package config
