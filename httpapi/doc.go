// Package httpapi exposes an authservice.Engine over JSON/HTTP.
//
// Routes:
//
//	POST /signup        {"email","password","requires2FA"}
//	POST /login         {"email","password"}
//	POST /verify-2fa    {"email","loginAttemptId","2FACode"}
//	POST /logout        session cookie "jwt"
//	POST /verify-token  {"token"}
//	GET  /healthz
//	GET  /metrics       when a metrics handler is configured
//
// Failures are written as {"error": message}. Every response carries an
// X-Request-ID header.
package httpapi
