// Package postgres provides PostgreSQL implementations of the store
// interfaces, built on sqlx over the pgx stdlib driver, together with the
// embedded goose migrations that create the schema.
package postgres
