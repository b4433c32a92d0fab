// Package database opens the relational database backing the source index.
//
// It wraps GORM and selects a dialect from configuration:
//   - sqlite (default): a local file, one connection, suitable for a single
//     crawler process.
//   - mysql: a shared server, for deployments where several processes read the
//     indexed documents.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return fmt.Errorf("failed to open index database: %w", err)
//	}
package database
