package password

import (
	"errors"
	"strings"
	"testing"
)

func fastConfig() Config {
	return Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func newTestArgon2(t *testing.T) *Argon2 {
	t.Helper()
	hasher, err := NewArgon2(fastConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}
	return hasher
}

func TestHashAndVerify(t *testing.T) {
	hasher := newTestArgon2(t)

	hash, err := hasher.Hash("password1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", hash)
	}
	if strings.Contains(hash, "password1") {
		t.Fatal("hash must not contain plaintext")
	}

	ok, err := hasher.Verify("password1", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatal("expected password verification to succeed")
	}
}

func TestHashUsesFreshSalt(t *testing.T) {
	hasher := newTestArgon2(t)

	a, err := hasher.Hash("password1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	b, err := hasher.Hash("password1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct hashes for the same password")
	}
}

func TestVerifyWrongPassword(t *testing.T) {
	hasher := newTestArgon2(t)

	hash, err := hasher.Hash("correct-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := hasher.Verify("wrong-password", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatal("expected wrong password verification to fail")
	}
}

func TestNewArgon2RejectsWeakConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "memory", mutate: func(c *Config) { c.Memory = 1024 }},
		{name: "time", mutate: func(c *Config) { c.Time = 0 }},
		{name: "parallelism", mutate: func(c *Config) { c.Parallelism = 0 }},
		{name: "salt", mutate: func(c *Config) { c.SaltLength = 8 }},
		{name: "key", mutate: func(c *Config) { c.KeyLength = 8 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fastConfig()
			tt.mutate(&cfg)
			if _, err := NewArgon2(cfg); err == nil {
				t.Fatal("expected config validation error")
			}
		})
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	hasher := newTestArgon2(t)

	hash, err := hasher.Hash("version-test")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	cases := map[string]string{
		"not phc":       "not-a-phc-hash",
		"wrong version": strings.Replace(hash, "$v=19$", "$v=18$", 1),
		"wrong algo":    strings.Replace(hash, "$argon2id$", "$argon2i$", 1),
		"bad salt":      strings.Replace(hash, "$m=8192,t=1,p=1$", "$m=8192,t=1,p=1$!!!", 1),
		"weak memory":   strings.Replace(hash, "m=8192", "m=64", 1),
		"missing param": strings.Replace(hash, "m=8192,t=1,p=1", "m=8192,t=1", 1),
		"empty":         "",
	}

	for name, encoded := range cases {
		t.Run(name, func(t *testing.T) {
			ok, err := hasher.Verify("version-test", encoded)
			if !errors.Is(err, ErrMalformedHash) {
				t.Fatalf("expected ErrMalformedHash, got ok=%v err=%v", ok, err)
			}
			if ok {
				t.Fatal("malformed hash must never verify")
			}
		})
	}
}

func TestHashTooShortPassword(t *testing.T) {
	hasher := newTestArgon2(t)

	for _, pwd := range []string{"", "short", "1234567"} {
		if _, err := hasher.Hash(pwd); !errors.Is(err, ErrPasswordTooShort) {
			t.Fatalf("expected ErrPasswordTooShort for %q, got %v", pwd, err)
		}
	}
}
