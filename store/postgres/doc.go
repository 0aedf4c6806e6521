// Package postgres implements domain.UserStore on PostgreSQL through a pgx
// connection pool. The schema lives in embedded golang-migrate files and is
// applied with [Migrator].
package postgres
