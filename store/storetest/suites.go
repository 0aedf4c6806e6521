package storetest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/MrEthical07/authservice/domain"
)

// UserStoreFactory builds an empty store backed by hasher.
type UserStoreFactory func(t *testing.T, hasher *Hasher) domain.UserStore

// RunUserStore exercises the UserStore contract against a backend.
func RunUserStore(t *testing.T, newStore UserStoreFactory) {
	t.Helper()
	ctx := context.Background()

	t.Run("add then get", func(t *testing.T) {
		s := newStore(t, &Hasher{})
		if err := s.AddUser(ctx, domain.User{Email: "a@b.com", Password: "password1", Requires2FA: true}); err != nil {
			t.Fatalf("AddUser: %v", err)
		}
		got, err := s.GetUser(ctx, "a@b.com")
		if err != nil {
			t.Fatalf("GetUser: %v", err)
		}
		if got.Email != "a@b.com" || !got.Requires2FA {
			t.Fatalf("unexpected stored user: %+v", got)
		}
		if got.PasswordHash == "" || strings.Contains(got.PasswordHash, "password1") {
			t.Fatalf("stored hash must not be empty or plaintext: %q", got.PasswordHash)
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		s := newStore(t, &Hasher{})
		if err := s.AddUser(ctx, domain.User{Email: "a@b.com", Password: "password1"}); err != nil {
			t.Fatalf("AddUser: %v", err)
		}
		err := s.AddUser(ctx, domain.User{Email: "a@b.com", Password: "password2", Requires2FA: true})
		if !errors.Is(err, domain.ErrUserAlreadyExists) {
			t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
		}
		got, err := s.GetUser(ctx, "a@b.com")
		if err != nil {
			t.Fatalf("GetUser: %v", err)
		}
		if got.Requires2FA {
			t.Fatal("duplicate signup must not overwrite the original record")
		}
	})

	t.Run("email is byte exact", func(t *testing.T) {
		s := newStore(t, &Hasher{})
		if err := s.AddUser(ctx, domain.User{Email: "a@b.com", Password: "password1"}); err != nil {
			t.Fatalf("AddUser: %v", err)
		}
		if err := s.AddUser(ctx, domain.User{Email: "A@b.com", Password: "password1"}); err != nil {
			t.Fatalf("expected differently cased email to be distinct: %v", err)
		}
		if _, err := s.GetUser(ctx, " a@b.com"); !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound for padded email, got %v", err)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t, &Hasher{})
		if _, err := s.GetUser(ctx, "nobody@b.com"); !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("validate", func(t *testing.T) {
		hasher := &Hasher{}
		s := newStore(t, hasher)
		if err := s.AddUser(ctx, domain.User{Email: "a@b.com", Password: "password1"}); err != nil {
			t.Fatalf("AddUser: %v", err)
		}
		if err := s.ValidateUser(ctx, "a@b.com", "password1"); err != nil {
			t.Fatalf("expected valid credentials, got %v", err)
		}
		if err := s.ValidateUser(ctx, "a@b.com", "password2"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
		if err := s.ValidateUser(ctx, "nobody@b.com", "password1"); !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
		if hasher.MissingCalls() != 1 {
			t.Fatalf("expected one dummy verification for the unknown user, got %d", hasher.MissingCalls())
		}
	})

	t.Run("concurrent duplicate signups", func(t *testing.T) {
		s := newStore(t, &Hasher{})
		const workers = 8
		var wg sync.WaitGroup
		results := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- s.AddUser(ctx, domain.User{Email: "race@b.com", Password: "password1"})
			}()
		}
		wg.Wait()
		close(results)

		created := 0
		for err := range results {
			switch {
			case err == nil:
				created++
			case errors.Is(err, domain.ErrUserAlreadyExists):
			default:
				t.Fatalf("unexpected AddUser error: %v", err)
			}
		}
		if created != 1 {
			t.Fatalf("expected exactly one successful signup, got %d", created)
		}
	})
}

// RunBannedTokenStore exercises the BannedTokenStore contract.
func RunBannedTokenStore(t *testing.T, newStore func(t *testing.T) domain.BannedTokenStore) {
	t.Helper()
	ctx := context.Background()

	s := newStore(t)
	if _, banned, err := s.VerifyToken(ctx, "tok-1"); err != nil || banned {
		t.Fatalf("expected unknown token to be absent, got banned=%v err=%v", banned, err)
	}
	if err := s.AddToken(ctx, "a@b.com", "tok-1"); err != nil {
		t.Fatalf("AddToken: %v", err)
	}
	email, banned, err := s.VerifyToken(ctx, "tok-1")
	if err != nil || !banned || email != "a@b.com" {
		t.Fatalf("expected tok-1 banned for a@b.com, got email=%q banned=%v err=%v", email, banned, err)
	}
	if _, banned, _ := s.VerifyToken(ctx, "tok-2"); banned {
		t.Fatal("expected tok-2 to remain absent")
	}
	if err := s.AddToken(ctx, "a@b.com", "tok-1"); err != nil {
		t.Fatalf("re-adding a banned token must succeed: %v", err)
	}
}

// RunTwoFACodeStore exercises the TwoFACodeStore contract.
func RunTwoFACodeStore(t *testing.T, newStore func(t *testing.T) domain.TwoFACodeStore) {
	t.Helper()
	ctx := context.Background()
	const email domain.Email = "a@b.com"

	s := newStore(t)
	if _, _, err := s.GetCode(ctx, email); !errors.Is(err, domain.ErrLoginAttemptIDNotFound) {
		t.Fatalf("expected ErrLoginAttemptIDNotFound, got %v", err)
	}

	first := domain.NewLoginAttemptID()
	if err := s.AddCode(ctx, email, first, "123456"); err != nil {
		t.Fatalf("AddCode: %v", err)
	}
	second := domain.NewLoginAttemptID()
	if err := s.AddCode(ctx, email, second, "654321"); err != nil {
		t.Fatalf("AddCode: %v", err)
	}

	id, code, err := s.GetCode(ctx, email)
	if err != nil {
		t.Fatalf("GetCode: %v", err)
	}
	if id != second || code != "654321" {
		t.Fatalf("expected the latest challenge, got id=%s code=%s", id, code)
	}

	if err := s.RemoveCode(ctx, email); err != nil {
		t.Fatalf("RemoveCode: %v", err)
	}
	if err := s.RemoveCode(ctx, email); !errors.Is(err, domain.ErrLoginAttemptIDNotFound) {
		t.Fatalf("expected ErrLoginAttemptIDNotFound on second remove, got %v", err)
	}
	if _, _, err := s.GetCode(ctx, email); !errors.Is(err, domain.ErrLoginAttemptIDNotFound) {
		t.Fatalf("expected ErrLoginAttemptIDNotFound after remove, got %v", err)
	}

	t.Run("consume", func(t *testing.T) {
		s := newStore(t)
		id := domain.NewLoginAttemptID()
		if err := s.ConsumeCode(ctx, email, id, "123456"); !errors.Is(err, domain.ErrLoginAttemptIDNotFound) {
			t.Fatalf("expected ErrLoginAttemptIDNotFound without a challenge, got %v", err)
		}
		if err := s.AddCode(ctx, email, id, "123456"); err != nil {
			t.Fatalf("AddCode: %v", err)
		}

		if err := s.ConsumeCode(ctx, email, id, "654321"); !errors.Is(err, domain.ErrChallengeMismatch) {
			t.Fatalf("expected ErrChallengeMismatch for a wrong code, got %v", err)
		}
		if err := s.ConsumeCode(ctx, email, domain.NewLoginAttemptID(), "123456"); !errors.Is(err, domain.ErrChallengeMismatch) {
			t.Fatalf("expected ErrChallengeMismatch for a wrong id, got %v", err)
		}
		if _, _, err := s.GetCode(ctx, email); err != nil {
			t.Fatalf("a mismatch must keep the challenge, got %v", err)
		}

		if err := s.ConsumeCode(ctx, email, id, "123456"); err != nil {
			t.Fatalf("ConsumeCode: %v", err)
		}
		if err := s.ConsumeCode(ctx, email, id, "123456"); !errors.Is(err, domain.ErrLoginAttemptIDNotFound) {
			t.Fatalf("expected second consume to fail with ErrLoginAttemptIDNotFound, got %v", err)
		}
	})

	t.Run("concurrent consume", func(t *testing.T) {
		s := newStore(t)
		id := domain.NewLoginAttemptID()
		if err := s.AddCode(ctx, email, id, "123456"); err != nil {
			t.Fatalf("AddCode: %v", err)
		}

		const workers = 8
		var wg sync.WaitGroup
		results := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- s.ConsumeCode(ctx, email, id, "123456")
			}()
		}
		wg.Wait()
		close(results)

		consumed := 0
		for err := range results {
			switch {
			case err == nil:
				consumed++
			case errors.Is(err, domain.ErrLoginAttemptIDNotFound):
			default:
				t.Fatalf("unexpected ConsumeCode error: %v", err)
			}
		}
		if consumed != 1 {
			t.Fatalf("expected exactly one consume, got %d", consumed)
		}
	})
}
