// Package middleware guards HTTP handlers with session tokens issued by
// authservice.Engine.
//
// # Guards
//
//   - [Guard] accepts the token from the session cookie or a bearer header.
//   - [RequireCookie] accepts the session cookie only.
//   - [RequireBearer] accepts the Authorization header only.
//
// Each guard calls Engine.VerifyToken and injects the verified claims into
// the request context.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to the Engine).
//   - Make authorization decisions beyond pass/reject.
package middleware
