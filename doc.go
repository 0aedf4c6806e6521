// Package authservice provides the credential and session lifecycle engine:
// signup, login with an optional emailed second factor, logout by token
// revocation, and token verification.
//
// [Engine] methods are safe to call from multiple goroutines after
// [Builder.Build]. Storage is supplied through the domain store contracts;
// the engine never keeps plaintext passwords and never reveals whether an
// email is registered on login.
//
// # Architecture boundaries
//
// The root package is the public surface: [Engine], [Builder], [Config],
// the sentinel errors and the audit and metrics types. Flow orchestration
// lives in internal/flows and returns failure kinds that the engine maps
// to sentinels, metrics and audit events.
//
// Backend failures never reach callers. They are logged with their oops
// code and surface as [ErrUnexpected].
package authservice
