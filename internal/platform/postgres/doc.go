// Package postgres implements the store ports on PostgreSQL through the pgx
// database/sql driver, and owns the embedded goose migrations.
package postgres
