// Package sqlite implements domain.UserStore on a single SQLite file using
// the pure-Go modernc.org/sqlite driver. The schema is created on Open.
package sqlite
