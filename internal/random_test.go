package internal

import (
	"strings"
	"testing"
)

func TestNewOTPDigitsOnly(t *testing.T) {
	for i := 0; i < 200; i++ {
		otp, err := NewOTP(6)
		if err != nil {
			t.Fatalf("NewOTP failed: %v", err)
		}
		if len(otp) != 6 {
			t.Fatalf("expected 6 digits, got %q", otp)
		}
		if strings.Trim(otp, "0123456789") != "" {
			t.Fatalf("expected digits only, got %q", otp)
		}
	}
}

func TestNewOTPRejectsDigitCount(t *testing.T) {
	if _, err := NewOTP(5); err == nil {
		t.Fatal("expected error for 5 digits")
	}
	if _, err := NewOTP(11); err == nil {
		t.Fatal("expected error for 11 digits")
	}
}

func TestTokenFingerprintStable(t *testing.T) {
	a := TokenFingerprint("token-a")
	if a != TokenFingerprint("token-a") {
		t.Fatal("expected stable fingerprint")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a == TokenFingerprint("token-b") {
		t.Fatal("expected distinct fingerprints")
	}
}
