// Package database opens bun connections for PostgreSQL, MySQL and SQLite,
// creates registered model tables with their foreign keys, and carries the
// logging, query hooks and error classification shared by the rest of the
// module.
package database
