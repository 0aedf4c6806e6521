// Package jwt issues and validates session tokens.
//
// [Manager] owns signing keys and the strict parse options. [Codec] adds
// the revocation check: signature and expiry are verified locally before
// the revocation list is consulted.
package jwt
