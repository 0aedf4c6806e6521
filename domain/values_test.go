package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestParseEmail(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "valid", raw: "a@b.com"},
		{name: "keeps case", raw: "Mixed@Case.COM"},
		{name: "empty", raw: "", wantErr: true},
		{name: "missing at", raw: "ab.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEmail(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEmail) {
					t.Fatalf("expected ErrInvalidEmail, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEmail failed: %v", err)
			}
			if string(got) != tt.raw {
				t.Fatalf("expected byte-exact email %q, got %q", tt.raw, got)
			}
		})
	}
}

func TestParsePassword(t *testing.T) {
	if _, err := ParsePassword("1234567"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword for 7 chars, got %v", err)
	}
	if _, err := ParsePassword("password"); err != nil {
		t.Fatalf("expected 8 chars to pass, got %v", err)
	}
	// Eight runes, more than eight bytes.
	if _, err := ParsePassword("pässwörd"); err != nil {
		t.Fatalf("expected 8 runes to pass, got %v", err)
	}
}

func TestPasswordRedacted(t *testing.T) {
	p, err := ParsePassword("password1")
	if err != nil {
		t.Fatalf("ParsePassword failed: %v", err)
	}
	if strings.Contains(fmt.Sprintf("%v %s", p, p), "password1") {
		t.Fatal("expected formatted password to be redacted")
	}
	if p.Expose() != "password1" {
		t.Fatal("expected Expose to return plaintext")
	}
}

func TestParseLoginAttemptID(t *testing.T) {
	id := NewLoginAttemptID()
	if _, err := ParseLoginAttemptID(id.String()); err != nil {
		t.Fatalf("expected generated id to parse, got %v", err)
	}
	if _, err := ParseLoginAttemptID("not-a-uuid"); !errors.Is(err, ErrInvalidLoginAttemptID) {
		t.Fatalf("expected ErrInvalidLoginAttemptID, got %v", err)
	}
	if NewLoginAttemptID() == NewLoginAttemptID() {
		t.Fatal("expected fresh ids")
	}
}

func TestParseTwoFACode(t *testing.T) {
	valid := []string{"123456", "000000", "999999"}
	for _, code := range valid {
		if _, err := ParseTwoFACode(code); err != nil {
			t.Fatalf("expected %q valid, got %v", code, err)
		}
	}

	invalid := []string{"", "12345", "1234567", "12a456", "１２３４５６"}
	for _, code := range invalid {
		if _, err := ParseTwoFACode(code); !errors.Is(err, ErrInvalidTwoFACode) {
			t.Fatalf("expected %q invalid, got %v", code, err)
		}
	}
}

func TestNewTwoFACodeParses(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := NewTwoFACode()
		if err != nil {
			t.Fatalf("NewTwoFACode failed: %v", err)
		}
		if _, err := ParseTwoFACode(code.String()); err != nil {
			t.Fatalf("generated code %q failed to parse: %v", code, err)
		}
	}
}
