// Package redis implements the revocation and two-factor challenge stores
// on Redis.
//
// Keys are namespaced by a configurable prefix:
//
//	<prefix>:bt:<sha256(token)>  -> email           (no expiry)
//	<prefix>:2fa:<email>         -> challenge record (optional TTL)
//
// Challenge records use a versioned binary encoding so the layout can
// change without misreading old entries. Backend failures are wrapped with
// the REDIS_BACKEND_FAILED oops code; redis.Nil maps to the domain
// not-found errors.
package redis
