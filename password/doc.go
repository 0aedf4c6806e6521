// Package password implements Argon2id password hashing and a worker pool
// that keeps hashing off request goroutines.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// # Architecture boundaries
//
// This package owns hashing and verification only. [Pool] satisfies
// domain.PasswordHasher without importing it; stores depend on the
// interface.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords.
//   - Log plaintext passwords or hash parameters at runtime.
package password
