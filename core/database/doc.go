// Package database handles the state database connection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) that
// configures the connection from the application's configuration. The default
// driver is a local sqlite file so the downloader works out of the box; MySQL
// is supported for deployments that share synchronization state.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
