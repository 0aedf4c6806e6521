// Package domain holds the validated value types and the store contracts
// shared by every authservice backend.
//
// Values are constructed only through their Parse functions, so a value of
// type Email, Password, LoginAttemptID or TwoFACode always satisfies its
// invariant.
//
// # What this package must NOT do
//
//   - Import any store, transport or engine package.
//   - Hold state.
package domain
