package auth

import (
	"errors"
	"testing"
	"time"
)

func TestGate(t *testing.T) {
	gate, err := NewGate("open sesame")
	if err != nil {
		t.Fatalf("NewGate failed: %v", err)
	}

	if err := gate.Verify("open sesame"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := gate.Verify("wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("expected ErrInvalidPassword, got %v", err)
	}
	if err := gate.Verify(""); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("expected ErrInvalidPassword for empty attempt, got %v", err)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if err := m.Validate(token); err != nil {
		t.Errorf("freshly generated token rejected: %v", err)
	}
}

func TestJWTRejectsBadTokens(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	tests := []struct {
		name  string
		token func() string
	}{
		{"garbage", func() string { return "not.a.token" }},
		{"wrong secret", func() string {
			other := NewJWTManager("different-secret", time.Hour)
			token, err := other.Generate()
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			return token
		}},
		{"expired", func() string {
			expired := NewJWTManager("test-secret", -time.Minute)
			token, err := expired.Generate()
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			return token
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Validate(tt.token())
			if !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
