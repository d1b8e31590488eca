// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to configure MySQL (production) or SQLite
// (local runs and tests) connections from the application's configuration.
//
// # Connect
//
// Connect opens the configured driver, sets pool limits and pings the database.
// SQLite connections are limited to a single connection so that transactions
// and in-memory databases behave the same way as on a real server.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table for both dialects. The integrity
// feature uses it to confirm the reconciliation tables carry the columns the
// engine depends on (for example the optimistic lock version).
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "order_forecasts")
package database
