package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/MrEthical07/authservice/domain"
	"github.com/MrEthical07/authservice/store"
)

const uniqueViolation = "23505"

// poolIface is the subset of *pgxpool.Pool the store uses. pgxmock
// satisfies it in unit tests.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserStore keeps user records in the users table.
type UserStore struct {
	pool   poolIface
	hasher domain.PasswordHasher
}

// NewUserStore returns a store over pool that hashes with hasher.
func NewUserStore(pool poolIface, hasher domain.PasswordHasher) (*UserStore, error) {
	if pool == nil {
		return nil, errors.New("postgres user store requires a pool")
	}
	if hasher == nil {
		return nil, errors.New("postgres user store requires a password hasher")
	}
	return &UserStore{pool: pool, hasher: hasher}, nil
}

// AddUser hashes and inserts a new user. Existence is checked before
// hashing. A concurrent insert that wins the race surfaces as a unique
// violation and is reported as domain.ErrUserAlreadyExists.
func (s *UserStore) AddUser(ctx context.Context, user domain.User) error {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`,
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

	_, err = s.pool.Exec(ctx,
		`INSERT INTO users (email, password_hash, requires_2fa) VALUES ($1, $2, $3)`,
		user.Email.String(), hash, user.Requires2FA)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrUserAlreadyExists
		}
		return oops.Code("USER_STORE_QUERY_FAILED").With("operation", "insert user").Wrap(err)
	}
	return nil
}

// GetUser returns the stored record or domain.ErrUserNotFound.
func (s *UserStore) GetUser(ctx context.Context, email domain.Email) (domain.StoredUser, error) {
	var (
		stored string
		user   domain.StoredUser
	)
	err := s.pool.QueryRow(ctx,
		`SELECT email, password_hash, requires_2fa FROM users WHERE email = $1`,
		email.String()).Scan(&stored, &user.PasswordHash, &user.Requires2FA)
	if errors.Is(err, pgx.ErrNoRows) {
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
