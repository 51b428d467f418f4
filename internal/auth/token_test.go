package auth

import (
	"errors"
	"testing"
	"time"
)

func TestCodecRoundtrip(t *testing.T) {
	codec, err := NewCodec("test-secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	token, exp, err := codec.IssueAccess("42")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expiry %v is not in the future", exp)
	}
	claims, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claims.Subject != "42" {
		t.Errorf("subject = %q, want %q", claims.Subject, "42")
	}
	if claims.Kind() != TokenAccess {
		t.Errorf("kind = %q, want %q", claims.Kind(), TokenAccess)
	}
	if claims.ID == "" {
		t.Error("token id is empty")
	}
}

func TestCodecRejectsExpired(t *testing.T) {
	// A mutable clock: issue at t0, then decode a minute past expiry.
	current := time.Now()
	codec, err := NewCodec("test-secret", WithCodecClock(func() time.Time { return current }))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	token, _, err := codec.Issue("42", TokenAccess, time.Second)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	current = current.Add(time.Minute)
	if _, err := codec.Decode(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Decode after expiry = %v, want ErrInvalidToken", err)
	}
}

func TestCodecRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewCodec("secret-a")
	verifier, _ := NewCodec("secret-b")
	token, _, err := issuer.IssueRefresh("7")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if _, err := verifier.Decode(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Decode with wrong secret = %v, want ErrInvalidToken", err)
	}
}

func TestCodecRejectsGarbage(t *testing.T) {
	codec, _ := NewCodec("test-secret")
	for _, tok := range []string{"", "   ", "not.a.jwt", "a.b"} {
		if _, err := codec.Decode(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Decode(%q) = %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestCodecRejectsUnknownKind(t *testing.T) {
	codec, _ := NewCodec("test-secret")
	token, _, err := codec.Issue("42", TokenKind("session"), time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := codec.Decode(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Decode unknown kind = %v, want ErrInvalidToken", err)
	}
}

func TestNewCodecRequiresSecret(t *testing.T) {
	if _, err := NewCodec("  "); err == nil {
		t.Fatal("expected error for blank secret")
	}
}

func TestCodecTTLOptions(t *testing.T) {
	codec, err := NewCodec("test-secret",
		WithAccessTTL(5*time.Minute),
		WithRefreshTTL(48*time.Hour),
	)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	if codec.AccessTTL() != 5*time.Minute {
		t.Errorf("AccessTTL = %v, want 5m", codec.AccessTTL())
	}
	if codec.RefreshTTL() != 48*time.Hour {
		t.Errorf("RefreshTTL = %v, want 48h", codec.RefreshTTL())
	}
}
