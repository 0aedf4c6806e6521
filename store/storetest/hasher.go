// Package storetest provides a fast password hasher and behavioural test
// suites shared by every store backend.
package storetest

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
	"sync/atomic"
)

const fakePrefix = "sha256$"

// ErrFakeMalformed is returned by Hasher.Verify for hashes it did not produce.
var ErrFakeMalformed = errors.New("fake hasher: malformed hash")

// Hasher is a deterministic PasswordHasher for tests. It is not salted and
// must never be used outside tests.
type Hasher struct {
	missing atomic.Int64
	verify  atomic.Int64
}

func (h *Hasher) Hash(_ context.Context, plaintext string) (string, error) {
	sum := sha256.Sum256([]byte(plaintext))
	return fakePrefix + hex.EncodeToString(sum[:]), nil
}

func (h *Hasher) Verify(ctx context.Context, plaintext, encoded string) (bool, error) {
	h.verify.Add(1)
	if !strings.HasPrefix(encoded, fakePrefix) {
		return false, ErrFakeMalformed
	}
	want, _ := h.Hash(ctx, plaintext)
	return subtle.ConstantTimeCompare([]byte(want), []byte(encoded)) == 1, nil
}

func (h *Hasher) VerifyMissing(ctx context.Context, plaintext string) {
	h.missing.Add(1)
	_, _ = h.Hash(ctx, plaintext)
}

// MissingCalls reports how many times VerifyMissing ran.
func (h *Hasher) MissingCalls() int64 { return h.missing.Load() }

// VerifyCalls reports how many times Verify ran.
func (h *Hasher) VerifyCalls() int64 { return h.verify.Load() }
