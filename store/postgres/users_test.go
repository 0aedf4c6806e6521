package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/authservice/domain"
	"github.com/MrEthical07/authservice/store/storetest"
)

var (
	existsQuery = regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`)
	insertQuery = regexp.QuoteMeta(`INSERT INTO users (email, password_hash, requires_2fa) VALUES ($1, $2, $3)`)
	selectQuery = regexp.QuoteMeta(`SELECT email, password_hash, requires_2fa FROM users WHERE email = $1`)
)

func hashOf(t *testing.T, plaintext string) string {
	t.Helper()
	h, err := (&storetest.Hasher{}).Hash(context.Background(), plaintext)
	require.NoError(t, err)
	return h
}

func TestUserStore_AddUser(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
		anyErr    bool
	}{
		{
			name: "inserts new user",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(existsQuery).
					WithArgs("a@b.com").
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
				mock.ExpectExec(insertQuery).
					WithArgs("a@b.com", pgxmock.AnyArg(), true).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "existing user",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(existsQuery).
					WithArgs("a@b.com").
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
			},
			wantErr: domain.ErrUserAlreadyExists,
		},
		{
			name: "unique violation from concurrent insert",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(existsQuery).
					WithArgs("a@b.com").
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
				mock.ExpectExec(insertQuery).
					WithArgs("a@b.com", pgxmock.AnyArg(), true).
					WillReturnError(&pgconn.PgError{Code: "23505"})
			},
			wantErr: domain.ErrUserAlreadyExists,
		},
		{
			name: "lookup failure",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(existsQuery).
					WithArgs("a@b.com").
					WillReturnError(errors.New("connection refused"))
			},
			anyErr: true,
		},
		{
			name: "insert failure",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(existsQuery).
					WithArgs("a@b.com").
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
				mock.ExpectExec(insertQuery).
					WithArgs("a@b.com", pgxmock.AnyArg(), true).
					WillReturnError(errors.New("disk full"))
			},
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			store, err := NewUserStore(mock, &storetest.Hasher{})
			require.NoError(t, err)
			err = store.AddUser(context.Background(), domain.User{Email: "a@b.com", Password: "password1", Requires2FA: true})

			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				require.Error(t, err)
				assert.NotErrorIs(t, err, domain.ErrUserAlreadyExists)
			default:
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestUserStore_GetUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	hash := hashOf(t, "password1")
	mock.ExpectQuery(selectQuery).
		WithArgs("a@b.com").
		WillReturnRows(pgxmock.NewRows([]string{"email", "password_hash", "requires_2fa"}).AddRow("a@b.com", hash, true))
	mock.ExpectQuery(selectQuery).
		WithArgs("nobody@b.com").
		WillReturnRows(pgxmock.NewRows([]string{"email", "password_hash", "requires_2fa"}))

	store, err := NewUserStore(mock, &storetest.Hasher{})
	require.NoError(t, err)

	got, err := store.GetUser(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, domain.StoredUser{Email: "a@b.com", PasswordHash: hash, Requires2FA: true}, got)

	_, err = store.GetUser(context.Background(), "nobody@b.com")
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_ValidateUser(t *testing.T) {
	good := hashOf(t, "password1")

	tests := []struct {
		name        string
		email       domain.Email
		password    domain.Password
		storedHash  string
		found       bool
		wantErr     error
		wantMissing int64
		wantOther   bool
	}{
		{name: "valid", email: "a@b.com", password: "password1", storedHash: good, found: true},
		{name: "wrong password", email: "a@b.com", password: "password2", storedHash: good, found: true, wantErr: domain.ErrInvalidCredentials},
		{name: "unknown user", email: "nobody@b.com", password: "password1", wantErr: domain.ErrUserNotFound, wantMissing: 1},
		{name: "malformed stored hash", email: "a@b.com", password: "password1", storedHash: "$argon2id$broken", found: true, wantOther: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			rows := pgxmock.NewRows([]string{"email", "password_hash", "requires_2fa"})
			if tt.found {
				rows.AddRow(tt.email.String(), tt.storedHash, false)
			}
			mock.ExpectQuery(selectQuery).WithArgs(tt.email.String()).WillReturnRows(rows)

			hasher := &storetest.Hasher{}
			store, err := NewUserStore(mock, hasher)
			require.NoError(t, err)

			err = store.ValidateUser(context.Background(), tt.email, tt.password)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.wantOther:
				require.Error(t, err)
				assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
				assert.ErrorIs(t, err, storetest.ErrFakeMalformed)
			default:
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantMissing, hasher.MissingCalls())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNewUserStore_RequiresDeps(t *testing.T) {
	_, err := NewUserStore(nil, &storetest.Hasher{})
	require.Error(t, err)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	_, err = NewUserStore(mock, nil)
	require.Error(t, err)
}
