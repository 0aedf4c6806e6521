package authservice

import (
	"errors"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrEthical07/authservice/domain"
	"github.com/MrEthical07/authservice/email"
	"github.com/MrEthical07/authservice/internal/audit"
	"github.com/MrEthical07/authservice/internal/flows"
	"github.com/MrEthical07/authservice/jwt"
	"github.com/MrEthical07/authservice/password"
	"github.com/MrEthical07/authservice/store/memory"
	redisstore "github.com/MrEthical07/authservice/store/redis"
)

// Builder assembles an [Engine]. Every dependency is optional; Build fills
// gaps with in-memory stores, a private hashing pool and a logging email
// client. A Builder can be used once.
type Builder struct {
	config Config
	redis  goredis.UniversalClient

	users  domain.UserStore
	banned domain.BannedTokenStore
	codes  domain.TwoFACodeStore
	mailer domain.EmailClient
	hasher domain.PasswordHasher

	logger    *slog.Logger
	auditSink AuditSink

	built bool
}

// New returns a Builder that starts from DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration. Key material is copied.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis backs the revocation and challenge stores with client unless
// explicit stores are supplied.
func (b *Builder) WithRedis(client goredis.UniversalClient) *Builder {
	b.redis = client
	return b
}

func (b *Builder) WithUserStore(users domain.UserStore) *Builder {
	b.users = users
	return b
}

func (b *Builder) WithBannedTokenStore(banned domain.BannedTokenStore) *Builder {
	b.banned = banned
	return b
}

func (b *Builder) WithTwoFACodeStore(codes domain.TwoFACodeStore) *Builder {
	b.codes = codes
	return b
}

// WithEmailClient sets the challenge email transport.
func (b *Builder) WithEmailClient(client domain.EmailClient) *Builder {
	b.mailer = client
	return b
}

// WithPasswordHasher sets the hasher for the default in-memory user
// store. It is ignored when WithUserStore is used, since stores hash on
// their own.
func (b *Builder) WithPasswordHasher(hasher domain.PasswordHasher) *Builder {
	b.hasher = hasher
	return b
}

func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink routes audit events to sink. Events reach sink only when
// Config.Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, creates any missing dependency and
// starts the audit dispatcher. It fails on a second call.
func (b *Builder) Build() (engine *Engine, err error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	engine = &Engine{
		config:  cfg,
		logger:  logger,
		metrics: NewMetrics(cfg.Metrics),
	}
	defer func() {
		if err != nil && engine.ownedPool != nil {
			engine.ownedPool.Close()
		}
	}()

	// -------- CREDENTIAL STORE --------
	users := b.users
	if users == nil {
		hasher := b.hasher
		if hasher == nil {
			argon, err := password.NewArgon2(password.Config{
				Memory:      cfg.Password.Memory,
				Time:        cfg.Password.Time,
				Parallelism: cfg.Password.Parallelism,
				SaltLength:  cfg.Password.SaltLength,
				KeyLength:   cfg.Password.KeyLength,
			})
			if err != nil {
				return nil, err
			}
			pool, err := password.NewPool(argon, cfg.Password.Workers)
			if err != nil {
				return nil, err
			}
			engine.ownedPool = pool
			hasher = pool
		}
		mem, err := memory.NewUserStore(hasher)
		if err != nil {
			return nil, err
		}
		users = mem
	}

	// -------- REVOCATION + CHALLENGE STORES --------
	banned := b.banned
	if banned == nil {
		if b.redis != nil {
			banned = redisstore.NewBannedTokenStore(b.redis, redisstore.DefaultPrefix)
		} else {
			banned = memory.NewBannedTokenStore()
		}
	}

	codes := b.codes
	if codes == nil {
		if b.redis != nil {
			codes = redisstore.NewTwoFACodeStore(b.redis, redisstore.DefaultPrefix, cfg.TwoFA.ChallengeTTL)
		} else {
			codes = memory.NewTwoFACodeStore()
		}
	}

	mailer := b.mailer
	if mailer == nil {
		mailer = email.NewMockClient(logger)
	}
	if cfg.TwoFA.NotifyTimeout > 0 {
		mailer = &timeoutMailer{next: mailer, timeout: cfg.TwoFA.NotifyTimeout}
	}

	// -------- TOKEN CODEC --------
	manager, err := jwt.NewManager(jwt.Config{
		TTL:           cfg.Token.TTL,
		SigningMethod: jwt.SigningMethod(cfg.Token.SigningMethod),
		PrivateKey:    cloneBytes(cfg.Token.PrivateKey),
		PublicKey:     cloneBytes(cfg.Token.PublicKey),
		Issuer:        cfg.Token.Issuer,
		Audience:      cfg.Token.Audience,
		Leeway:        cfg.Token.Leeway,
		KeyID:         cfg.Token.KeyID,
	})
	if err != nil {
		return nil, err
	}
	codec, err := jwt.NewCodec(manager, banned)
	if err != nil {
		return nil, err
	}

	engine.codec = codec
	engine.flows = flows.Deps{
		Signup: flows.SignupDeps{Users: users},
		Login: flows.LoginDeps{
			Users:        users,
			Codes:        codes,
			Mailer:       mailer,
			IssueToken:   codec.Issue,
			NewAttemptID: domain.NewLoginAttemptID,
			NewCode:      domain.NewTwoFACode,
		},
		Verify2FA: flows.Verify2FADeps{
			Codes:      codes,
			IssueToken: codec.Issue,
		},
		Logout: flows.LogoutDeps{
			Banned:        banned,
			ValidateToken: codec.Validate,
		},
		VerifyToken: flows.VerifyTokenDeps{
			ValidateToken: codec.Validate,
		},
	}
	engine.audit = audit.NewDispatcher(cfg.Audit, b.auditSink)

	b.built = true

	return engine, nil
}
