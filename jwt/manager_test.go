package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret-test-secret-test-secret")

func newHSManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		TTL:           10 * time.Minute,
		SigningMethod: MethodHS256,
		PrivateKey:    testSecret,
		Issuer:        "authservice",
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func signRaw(t *testing.T, method gjwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	token, err := gjwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestIssueAndParse(t *testing.T) {
	m := newHSManager(t)

	token, err := m.Issue("a@b.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "a@b.com" {
		t.Fatalf("expected subject a@b.com, got %q", claims.Subject)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Fatal("expected exp and iat claims")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 10*time.Minute {
		t.Fatalf("expected exp-iat of 10m, got %s", got)
	}
}

func TestIssueRejectsEmptySubject(t *testing.T) {
	m := newHSManager(t)
	if _, err := m.Issue(""); err == nil {
		t.Fatal("expected empty subject to fail")
	}
}

func TestParseExpired(t *testing.T) {
	m := newHSManager(t)

	expired := signRaw(t, gjwt.SigningMethodHS256, testSecret, Claims{RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "a@b.com",
		Issuer:    "authservice",
		IssuedAt:  gjwt.NewNumericDate(time.Now().Add(-20 * time.Minute)),
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(-10 * time.Minute)),
	}})

	if _, err := m.Parse(expired); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseRejectsTampering(t *testing.T) {
	m := newHSManager(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "empty", token: ""},
		{
			name: "wrong secret",
			token: signRaw(t, gjwt.SigningMethodHS256, []byte("other-secret-other-secret"), Claims{RegisteredClaims: gjwt.RegisteredClaims{
				Subject:   "a@b.com",
				Issuer:    "authservice",
				ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
			}}),
		},
		{
			name: "wrong issuer",
			token: signRaw(t, gjwt.SigningMethodHS256, testSecret, Claims{RegisteredClaims: gjwt.RegisteredClaims{
				Subject:   "a@b.com",
				Issuer:    "other",
				ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
			}}),
		},
		{
			name: "missing exp",
			token: signRaw(t, gjwt.SigningMethodHS256, testSecret, Claims{RegisteredClaims: gjwt.RegisteredClaims{
				Subject: "a@b.com",
				Issuer:  "authservice",
			}}),
		},
		{
			name: "missing subject",
			token: signRaw(t, gjwt.SigningMethodHS256, testSecret, Claims{RegisteredClaims: gjwt.RegisteredClaims{
				Issuer:    "authservice",
				ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
			}}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Parse(tt.token); !errors.Is(err, ErrTokenInvalid) {
				t.Fatalf("expected ErrTokenInvalid, got %v", err)
			}
		})
	}
}

func TestParseRejectsWrongAlgorithm(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate ed25519 key: %v", err)
	}
	m, err := NewManager(Config{TTL: time.Minute, SigningMethod: MethodEd25519, PrivateKey: priv, PublicKey: pub})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	token := signRaw(t, gjwt.SigningMethodHS256, []byte("secret-secret-secret-secret"), Claims{RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "a@b.com",
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
	}})
	if _, err := m.Parse(token); err == nil {
		t.Fatal("expected wrong algorithm to be rejected")
	}

	good, err := m.Issue("a@b.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Parse(good); err != nil {
		t.Fatalf("expected ed25519 token to parse: %v", err)
	}
}

func TestParseRequiresConfiguredKeyID(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(rand.Reader)

	current, err := NewManager(Config{TTL: time.Minute, SigningMethod: MethodEd25519, PrivateKey: priv, PublicKey: pub, KeyID: "k2"})
	if err != nil {
		t.Fatalf("current signer: %v", err)
	}
	previous, err := NewManager(Config{TTL: time.Minute, SigningMethod: MethodEd25519, PrivateKey: priv, PublicKey: pub, KeyID: "k1"})
	if err != nil {
		t.Fatalf("previous signer: %v", err)
	}

	token, err := current.Issue("a@b.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := current.Parse(token); err != nil {
		t.Fatalf("expected token with matching kid to parse: %v", err)
	}

	stale, err := previous.Issue("a@b.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := current.Parse(stale); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for foreign kid, got %v", err)
	}
}

func TestNewManagerValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "zero ttl", cfg: Config{SigningMethod: MethodHS256, PrivateKey: testSecret}},
		{name: "missing secret", cfg: Config{TTL: time.Minute, SigningMethod: MethodHS256}},
		{name: "bad leeway", cfg: Config{TTL: time.Minute, PrivateKey: testSecret, Leeway: time.Hour}},
		{name: "unknown method", cfg: Config{TTL: time.Minute, SigningMethod: "rs256", PrivateKey: testSecret}},
		{name: "ed25519 without public key", cfg: Config{TTL: time.Minute, SigningMethod: MethodEd25519}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewManager(tt.cfg); err == nil {
				t.Fatal("expected config error")
			}
		})
	}
}
