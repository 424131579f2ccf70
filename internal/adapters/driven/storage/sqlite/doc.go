// Package sqlite persists index stores as SQLite databases.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Each store lives in its own database file:
//
//	<root>/<name>/index.db
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files.
// store_meta holds one row describing the store; entries holds one row per
// vector/document pair in build order.
//
// # Atomic Replace
//
// Save builds the new database in a temporary file next to the live one and
// renames it into place once the transaction has committed. Readers opening
// the store see either the previous file or the new one.
package sqlite
