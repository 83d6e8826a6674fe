// Package db provides the SQL storage backend for the Raseed application.
// It implements storage.Store on a single key-value table so a receipt collection
// can live in an embedded SQLite file or on a PostgreSQL server.
//
// This package is responsible for:
// - Establishing and managing database connections (`db.go`), through modernc.org/sqlite
//   or the pgx driver.
// - Defining the database-specific row structure for the kv_store table.
// - Implementing storage.Store (`store_repo.go`) with dialect-neutral queries rebound per driver.
// - Managing database migrations (`migrations/`) with goose.
package db
