// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - JobStore: Processing run audit records
//   - CampaignStore: Campaign and recipient delivery state persistence
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Migration files are applied in version order and
// recorded in a schema_migrations table.
//
// # Data Location
//
// By default, the database is stored at ~/.slipdeck/data/slipdeck.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
