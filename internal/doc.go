// Package internal contains helpers private to authservice: secure random
// code generation and token fingerprinting.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - errutil: structured logging of oops errors
//   - flows: pure-function flow orchestrators for every Engine operation
//   - logging: slog handler carrying service, version and trace ids
//
// # What this package must NOT do
//
//   - Export types that appear in the public authservice API.
package internal
