package internaldefs

import (
	authservice "github.com/MrEthical07/authservice"
)

// CounterDef names one engine counter for exporters.
type CounterDef struct {
	ID   authservice.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram for exporters.
type HistogramDef struct {
	ID   authservice.MetricID
	Name string
	Help string
}

// CounterDefs lists every engine counter in exposition order.
var CounterDefs = []CounterDef{
	{ID: authservice.MetricSignupSuccess, Name: "authservice_signup_success_total", Help: "Accounts created."},
	{ID: authservice.MetricSignupDuplicate, Name: "authservice_signup_duplicate_total", Help: "Signups rejected because the email is registered."},
	{ID: authservice.MetricSignupFailure, Name: "authservice_signup_failure_total", Help: "Signups rejected for invalid input or backend errors."},
	{ID: authservice.MetricLoginSuccess, Name: "authservice_login_success_total", Help: "Logins that issued a session token."},
	{ID: authservice.MetricLoginFailure, Name: "authservice_login_failure_total", Help: "Failed login attempts."},
	{ID: authservice.MetricTwoFARequired, Name: "authservice_twofa_required_total", Help: "Logins answered with a two-factor challenge."},
	{ID: authservice.MetricTwoFASuccess, Name: "authservice_twofa_success_total", Help: "Two-factor challenges answered correctly."},
	{ID: authservice.MetricTwoFAFailure, Name: "authservice_twofa_failure_total", Help: "Failed two-factor verifications."},
	{ID: authservice.MetricLogoutSuccess, Name: "authservice_logout_success_total", Help: "Tokens revoked by logout."},
	{ID: authservice.MetricLogoutFailure, Name: "authservice_logout_failure_total", Help: "Rejected logout requests."},
	{ID: authservice.MetricTokenVerifySuccess, Name: "authservice_token_verify_success_total", Help: "Tokens that passed verification."},
	{ID: authservice.MetricTokenVerifyFailure, Name: "authservice_token_verify_failure_total", Help: "Tokens that failed verification."},
	{ID: authservice.MetricTokenRevoked, Name: "authservice_token_revoked_total", Help: "Verifications rejected by the revocation list."},
}

// HistogramDefs lists every engine histogram.
var HistogramDefs = []HistogramDef{
	{ID: authservice.MetricVerifyTokenLatency, Name: "authservice_verify_token_latency_seconds", Help: "Token verification latency."},
}

// AuditDroppedName is the counter for audit events lost to backpressure.
const AuditDroppedName = "authservice_audit_dropped_total"

// AuditDroppedHelp describes AuditDroppedName.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// HistogramBounds are the bucket upper bounds as exposition labels.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramUpperBounds are the finite bucket bounds in seconds. The final
// +Inf bucket is implied.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix is HistogramBounds made safe for instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling or
// truncating as needed.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
