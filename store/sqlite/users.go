package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
	_ "modernc.org/sqlite"

	"github.com/MrEthical07/authservice/domain"
	"github.com/MrEthical07/authservice/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    email         TEXT PRIMARY KEY,
    password_hash TEXT NOT NULL,
    requires_2fa  INTEGER NOT NULL DEFAULT 0,
    created_at    INTEGER NOT NULL DEFAULT (unixepoch())
);
`

// UserStore keeps user records in a SQLite database.
type UserStore struct {
	db     *sql.DB
	hasher domain.PasswordHasher
}

// Open opens (creating if needed) the database at path and applies the
// schema. Writes are serialized through a single connection.
func Open(path string, hasher domain.PasswordHasher) (*UserStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if hasher == nil {
		return nil, errors.New("sqlite user store requires a password hasher")
	}

	dsn := "file:" + filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, oops.Code("USER_STORE_CONNECT_FAILED").With("operation", "open sqlite db").Wrap(err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, oops.Code("USER_STORE_CONNECT_FAILED").With("operation", "ping sqlite db").Wrap(err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, oops.Code("USER_STORE_SCHEMA_FAILED").With("operation", "apply schema").Wrap(err)
	}

	return &UserStore{db: db, hasher: hasher}, nil
}

// Close releases the database handle.
func (s *UserStore) Close() error {
	return s.db.Close()
}

// AddUser hashes and inserts a new user. The insert ignores conflicts; zero
// affected rows means another signup for the same email committed first.
func (s *UserStore) AddUser(ctx context.Context, user domain.User) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = ?)`,
		user.Email.String()).Scan(&exists)
	if err != nil {
		return oops.Code("USER_STORE_QUERY_FAILED").With("operation", "check user exists").Wrap(err)
	}
	if exists {
		return domain.ErrUserAlreadyExists
	}

	hash, err := s.hasher.Hash(ctx, user.Password.Expose())
	if err != nil {
		return oops.Code("USER_STORE_HASH_FAILED").With("operation", "hash password").Wrap(err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, requires_2fa) VALUES (?, ?, ?) ON CONFLICT (email) DO NOTHING`,
		user.Email.String(), hash, user.Requires2FA)
	if err != nil {
		return oops.Code("USER_STORE_QUERY_FAILED").With("operation", "insert user").Wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return oops.Code("USER_STORE_QUERY_FAILED").With("operation", "insert user").Wrap(err)
	}
	if n == 0 {
		return domain.ErrUserAlreadyExists
	}
	return nil
}

func (s *UserStore) GetUser(ctx context.Context, email domain.Email) (domain.StoredUser, error) {
	var (
		stored string
		user   domain.StoredUser
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT email, password_hash, requires_2fa FROM users WHERE email = ?`,
		email.String()).Scan(&stored, &user.PasswordHash, &user.Requires2FA)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StoredUser{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.StoredUser{}, oops.Code("USER_STORE_QUERY_FAILED").With("operation", "get user").Wrap(err)
	}
	user.Email = domain.Email(stored)
	return user, nil
}

func (s *UserStore) ValidateUser(ctx context.Context, email domain.Email, password domain.Password) error {
	user, err := s.GetUser(ctx, email)
	return store.Validate(ctx, s.hasher, user, err, password)
}
