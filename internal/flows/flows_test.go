package flows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/authservice/domain"
	"github.com/MrEthical07/authservice/jwt"
	"github.com/MrEthical07/authservice/store/memory"
	"github.com/MrEthical07/authservice/store/storetest"
)

type recordingMailer struct {
	err       error
	recipient domain.Email
	subject   string
	content   string
}

func (m *recordingMailer) SendEmail(_ context.Context, recipient domain.Email, subject, content string) error {
	m.recipient, m.subject, m.content = recipient, subject, content
	return m.err
}

type failingUsers struct{ err error }

func (f failingUsers) AddUser(context.Context, domain.User) error { return f.err }
func (f failingUsers) GetUser(context.Context, domain.Email) (domain.StoredUser, error) {
	return domain.StoredUser{}, f.err
}
func (f failingUsers) ValidateUser(context.Context, domain.Email, domain.Password) error {
	return f.err
}

type fixture struct {
	users  *memory.UserStore
	codes  *memory.TwoFACodeStore
	banned *memory.BannedTokenStore
	codec  *jwt.Codec
	mailer *recordingMailer
	deps   Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users, err := memory.NewUserStore(&storetest.Hasher{})
	if err != nil {
		t.Fatalf("NewUserStore: %v", err)
	}
	manager, err := jwt.NewManager(jwt.Config{TTL: time.Minute, PrivateKey: []byte("flows-test-secret-flows-test")})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	banned := memory.NewBannedTokenStore()
	codec, err := jwt.NewCodec(manager, banned)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	f := &fixture{
		users:  users,
		codes:  memory.NewTwoFACodeStore(),
		banned: banned,
		codec:  codec,
		mailer: &recordingMailer{},
	}
	f.deps = Deps{
		Signup: SignupDeps{Users: users},
		Login: LoginDeps{
			Users:        users,
			Codes:        f.codes,
			Mailer:       f.mailer,
			IssueToken:   codec.Issue,
			NewAttemptID: domain.NewLoginAttemptID,
			NewCode:      domain.NewTwoFACode,
		},
		Verify2FA:   Verify2FADeps{Codes: f.codes, IssueToken: codec.Issue},
		Logout:      LogoutDeps{Banned: banned, ValidateToken: codec.Validate},
		VerifyToken: VerifyTokenDeps{ValidateToken: codec.Validate},
	}
	return f
}

func (f *fixture) signup(t *testing.T, email string, requires2FA bool) {
	t.Helper()
	res := RunSignup(context.Background(), SignupRequest{Email: email, Password: "password123", Requires2FA: requires2FA}, f.deps.Signup)
	if res.Failed() {
		t.Fatalf("signup failed: %v %v", res.Kind, res.Err)
	}
}

func TestRunSignup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  SignupRequest
		want FailureKind
	}{
		{name: "ok", req: SignupRequest{Email: "a@b.com", Password: "password123"}, want: FailureNone},
		{name: "duplicate", req: SignupRequest{Email: "a@b.com", Password: "password456"}, want: FailureAlreadyExists},
		{name: "bad email", req: SignupRequest{Email: "ab.com", Password: "password123"}, want: FailureInvalidCredentials},
		{name: "empty email", req: SignupRequest{Email: "", Password: "password123"}, want: FailureInvalidCredentials},
		{name: "short password", req: SignupRequest{Email: "c@d.com", Password: "short"}, want: FailureInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := RunSignup(ctx, tt.req, f.deps.Signup)
			if res.Kind != tt.want {
				t.Fatalf("expected %v, got %v (%v)", tt.want, res.Kind, res.Err)
			}
			if tt.want == FailureInvalidCredentials && res.Detail == "" {
				t.Fatal("expected a detail for invalid input")
			}
		})
	}
}

func TestRunSignupUnexpected(t *testing.T) {
	res := RunSignup(context.Background(), SignupRequest{Email: "a@b.com", Password: "password123"},
		SignupDeps{Users: failingUsers{err: errors.New("db down")}})
	if res.Kind != FailureUnexpected {
		t.Fatalf("expected FailureUnexpected, got %v", res.Kind)
	}
}

func TestRunLoginWithoutTwoFA(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "a@b.com", false)
	ctx := context.Background()

	res := RunLogin(ctx, LoginRequest{Email: "a@b.com", Password: "password123"}, f.deps.Login)
	if res.Failed() {
		t.Fatalf("login failed: %v %v", res.Kind, res.Err)
	}
	if res.TwoFactorRequired || res.Token == "" {
		t.Fatalf("expected a token, got %+v", res)
	}

	verified := RunVerifyToken(ctx, res.Token, f.deps.VerifyToken)
	if verified.Failed() || verified.Email != "a@b.com" {
		t.Fatalf("expected token to verify for a@b.com, got %+v", verified)
	}
}

func TestRunLoginFailures(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "a@b.com", false)
	ctx := context.Background()

	tests := []struct {
		name string
		req  LoginRequest
		want FailureKind
	}{
		{name: "wrong password", req: LoginRequest{Email: "a@b.com", Password: "password999"}, want: FailureIncorrectCredentials},
		{name: "unknown user", req: LoginRequest{Email: "x@b.com", Password: "password123"}, want: FailureIncorrectCredentials},
		{name: "bad email", req: LoginRequest{Email: "nope", Password: "password123"}, want: FailureInvalidCredentials},
		{name: "short password", req: LoginRequest{Email: "a@b.com", Password: "pw"}, want: FailureInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := RunLogin(ctx, tt.req, f.deps.Login)
			if res.Kind != tt.want {
				t.Fatalf("expected %v, got %v (%v)", tt.want, res.Kind, res.Err)
			}
			if res.Token != "" {
				t.Fatal("failed login must not carry a token")
			}
		})
	}
}

func TestRunLoginBackendFailureIsUnexpected(t *testing.T) {
	f := newFixture(t)
	deps := f.deps.Login
	deps.Users = failingUsers{err: errors.New("db down")}

	res := RunLogin(context.Background(), LoginRequest{Email: "a@b.com", Password: "password123"}, deps)
	if res.Kind != FailureUnexpected {
		t.Fatalf("expected FailureUnexpected, got %v", res.Kind)
	}
}

func TestRunLoginTwoFAAndVerify(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "a@b.com", true)
	ctx := context.Background()

	res := RunLogin(ctx, LoginRequest{Email: "a@b.com", Password: "password123"}, f.deps.Login)
	if res.Failed() || !res.TwoFactorRequired || res.Token != "" {
		t.Fatalf("expected a 2FA challenge, got %+v", res)
	}
	if f.mailer.recipient != "a@b.com" || f.mailer.subject != TwoFASubject {
		t.Fatalf("unexpected email: %+v", f.mailer)
	}

	id, code, err := f.codes.GetCode(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("GetCode: %v", err)
	}
	if id != res.LoginAttemptID || code.String() != f.mailer.content {
		t.Fatal("stored challenge does not match the response and email")
	}

	wrong := "000000"
	if code == "000000" {
		wrong = "111111"
	}
	bad := RunVerify2FA(ctx, Verify2FARequest{Email: "a@b.com", LoginAttemptID: id.String(), Code: wrong}, f.deps.Verify2FA)
	if bad.Kind != FailureIncorrectCredentials {
		t.Fatalf("expected FailureIncorrectCredentials for wrong code, got %v", bad.Kind)
	}

	ok := RunVerify2FA(ctx, Verify2FARequest{Email: "a@b.com", LoginAttemptID: id.String(), Code: code.String()}, f.deps.Verify2FA)
	if ok.Failed() || ok.Token == "" {
		t.Fatalf("expected token, got %+v", ok)
	}

	again := RunVerify2FA(ctx, Verify2FARequest{Email: "a@b.com", LoginAttemptID: id.String(), Code: code.String()}, f.deps.Verify2FA)
	if again.Kind != FailureIncorrectCredentials {
		t.Fatalf("expected replayed challenge to fail, got %v", again.Kind)
	}
}

func TestRunLoginNotifyFailureStillChallenges(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "a@b.com", true)
	f.mailer.err = errors.New("smtp down")

	res := RunLogin(context.Background(), LoginRequest{Email: "a@b.com", Password: "password123"}, f.deps.Login)
	if res.Failed() || !res.TwoFactorRequired {
		t.Fatalf("expected 2FA challenge despite email failure, got %+v", res)
	}
	if res.NotifyErr == nil {
		t.Fatal("expected NotifyErr to be reported")
	}
}

func TestRunLoginReplacesChallenge(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "a@b.com", true)
	ctx := context.Background()

	first := RunLogin(ctx, LoginRequest{Email: "a@b.com", Password: "password123"}, f.deps.Login)
	firstCode := f.mailer.content
	second := RunLogin(ctx, LoginRequest{Email: "a@b.com", Password: "password123"}, f.deps.Login)
	if first.LoginAttemptID == second.LoginAttemptID {
		t.Fatal("expected a fresh login attempt id")
	}

	res := RunVerify2FA(ctx, Verify2FARequest{Email: "a@b.com", LoginAttemptID: first.LoginAttemptID.String(), Code: firstCode}, f.deps.Verify2FA)
	if res.Kind != FailureIncorrectCredentials {
		t.Fatalf("expected superseded challenge to fail, got %v", res.Kind)
	}
}

func TestRunVerify2FAInputErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := domain.NewLoginAttemptID().String()

	tests := []struct {
		name string
		req  Verify2FARequest
		want FailureKind
	}{
		{name: "bad email", req: Verify2FARequest{Email: "nope", LoginAttemptID: id, Code: "123456"}, want: FailureInvalidCredentials},
		{name: "bad id", req: Verify2FARequest{Email: "a@b.com", LoginAttemptID: "not-a-uuid", Code: "123456"}, want: FailureBadInput},
		{name: "bad code", req: Verify2FARequest{Email: "a@b.com", LoginAttemptID: id, Code: "12a456"}, want: FailureBadInput},
		{name: "no challenge", req: Verify2FARequest{Email: "a@b.com", LoginAttemptID: id, Code: "123456"}, want: FailureIncorrectCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := RunVerify2FA(ctx, tt.req, f.deps.Verify2FA)
			if res.Kind != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, res.Kind)
			}
		})
	}
}

func TestRunVerify2FAWrongAttemptID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.codes.AddCode(ctx, "a@b.com", domain.NewLoginAttemptID(), "123456"); err != nil {
		t.Fatalf("AddCode: %v", err)
	}

	res := RunVerify2FA(ctx, Verify2FARequest{Email: "a@b.com", LoginAttemptID: domain.NewLoginAttemptID().String(), Code: "123456"}, f.deps.Verify2FA)
	if res.Kind != FailureIncorrectCredentials {
		t.Fatalf("expected FailureIncorrectCredentials, got %v", res.Kind)
	}
	if _, _, err := f.codes.GetCode(ctx, "a@b.com"); err != nil {
		t.Fatal("failed attempt must not consume the challenge")
	}
}

func TestRunLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	token, err := f.codec.Issue("a@b.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if res := RunLogout(ctx, "", f.deps.Logout); res.Kind != FailureMissingToken {
		t.Fatalf("expected FailureMissingToken, got %v", res.Kind)
	}
	if res := RunLogout(ctx, "garbage", f.deps.Logout); res.Kind != FailureInvalidToken {
		t.Fatalf("expected FailureInvalidToken, got %v", res.Kind)
	}

	res := RunLogout(ctx, token, f.deps.Logout)
	if res.Failed() || res.Email != "a@b.com" {
		t.Fatalf("expected logout success, got %+v", res)
	}
	if email, banned, _ := f.banned.VerifyToken(ctx, token); !banned || email != "a@b.com" {
		t.Fatal("expected token to be revoked")
	}

	if res := RunLogout(ctx, token, f.deps.Logout); res.Kind != FailureInvalidToken {
		t.Fatalf("expected second logout to fail with FailureInvalidToken, got %v", res.Kind)
	}
	if res := RunVerifyToken(ctx, token, f.deps.VerifyToken); res.Kind != FailureInvalidToken {
		t.Fatalf("expected revoked token to be invalid, got %v", res.Kind)
	}
}

func TestRunVerifyTokenLookupFailure(t *testing.T) {
	deps := VerifyTokenDeps{ValidateToken: func(context.Context, string) (*jwt.Claims, error) {
		return nil, errors.New("redis down")
	}}
	if res := RunVerifyToken(context.Background(), "tok", deps); res.Kind != FailureUnexpected {
		t.Fatalf("expected FailureUnexpected, got %v", res.Kind)
	}
}

func TestFailureKindString(t *testing.T) {
	for kind := FailureNone; kind <= FailureUnexpected; kind++ {
		if kind.String() == "unknown" {
			t.Fatalf("missing name for kind %d", kind)
		}
	}
	if FailureKind(99).String() != "unknown" {
		t.Fatal("expected unknown for out-of-range kind")
	}
}
