// Package config provides configuration management for the cohort indexer.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key, shutdown bound)
//   - Storage: S3/MinIO credentials and bucket for the s3 output backend
//   - Log: Logging level and format
//   - Database: Index database driver and connection (sqlite, mysql)
//   - Transport: Peer gateway URL, timeouts and retry policy
//   - Index: Attach and fetch timeouts, event buffer, resume on open
//   - Crawl: Master address, cohort prefix, settle window, schedule
//   - Output: Record backend, output directory, aggregate address
//   - Blacklist: Path of the YAML blacklist
//
// Every key maps to an environment variable by replacing dots with
// underscores, e.g. crawl.settle_seconds is CRAWL_SETTLE_SECONDS.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Crawl.MasterAddress)
package config
