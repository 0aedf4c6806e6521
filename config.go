package authservice

import (
	"errors"
	"time"

	"github.com/MrEthical07/authservice/internal/audit"
)

// Config groups every engine setting. Start from DefaultConfig and
// override what differs; Build runs Validate.
type Config struct {
	Token    TokenConfig
	Password PasswordConfig
	TwoFA    TwoFAConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls session token signing. For "hs256" PrivateKey is
// the shared secret.
type TokenConfig struct {
	TTL           time.Duration
	SigningMethod string // "hs256" (default) or "ed25519"
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	KeyID         string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds the Argon2id parameters and hashing pool size used
// when the Builder creates its own hasher.
type PasswordConfig struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	// Workers is the hashing pool size. Zero means GOMAXPROCS.
	Workers int
}

/*
====================================
TWO-FACTOR CONFIG
====================================
*/

// TwoFAConfig controls the login challenge.
type TwoFAConfig struct {
	// ChallengeTTL bounds how long a challenge is kept by stores that
	// support expiry. Zero keeps challenges until answered or replaced.
	ChallengeTTL time.Duration
	// NotifyTimeout bounds one challenge email delivery. Zero means the
	// request context alone applies.
	NotifyTimeout time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig = audit.Config

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig toggles engine counters and the verify-token latency
// histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the service defaults. Token.PrivateKey is left
// empty and must be supplied.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			TTL:           10 * time.Minute,
			SigningMethod: "hs256",
			Issuer:        "authservice",
		},
		Password: PasswordConfig{
			Memory:      15000,
			Time:        2,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
		TwoFA: TwoFAConfig{
			ChallengeTTL:  10 * time.Minute,
			NotifyTimeout: 5 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate returns the first invalid setting it finds.
func (c *Config) Validate() error {
	// Token
	if c.Token.TTL <= 0 {
		return errors.New("Token TTL must be > 0")
	}
	if c.Token.SigningMethod != "hs256" && c.Token.SigningMethod != "ed25519" {
		return errors.New("unsupported token signing method")
	}
	if c.Token.SigningMethod == "hs256" && len(c.Token.PrivateKey) == 0 {
		return errors.New("hs256 requires PrivateKey")
	}
	if c.Token.SigningMethod == "ed25519" && len(c.Token.PrivateKey) == 0 {
		return errors.New("ed25519 requires PrivateKey")
	}
	if c.Token.SigningMethod == "ed25519" && len(c.Token.PublicKey) == 0 {
		return errors.New("ed25519 requires PublicKey")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("Token Leeway must be between 0 and 2m")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KiB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}
	if c.Password.Workers < 0 {
		return errors.New("Password Workers must be >= 0")
	}

	// Two-factor
	if c.TwoFA.ChallengeTTL < 0 {
		return errors.New("TwoFA ChallengeTTL must be >= 0")
	}
	if c.TwoFA.NotifyTimeout < 0 {
		return errors.New("TwoFA NotifyTimeout must be >= 0")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
