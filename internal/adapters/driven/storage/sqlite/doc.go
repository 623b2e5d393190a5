// Package sqlite provides a SQLite-backed message cache.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. Fetched wire
// messages are stored verbatim keyed by request URL, so a cache hit
// replays through the same reader path as a fresh fetch.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in
// the migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.sdmx/data/messages.db
package sqlite
