// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each flow function (RunSignup, RunLogin, RunVerify2FA, RunLogout,
// RunVerifyToken) accepts a typed dependency struct and returns a result
// carrying a [FailureKind]. The root Engine maps failure kinds to API
// errors, metrics and audit events.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the user, challenge and revocation
// stores, the token codec and the email client. They do NOT own any of
// these resources; ownership stays with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import the root package (to avoid import cycles).
//   - Emit audit events or metrics; the Engine does that from the result.
package flows
