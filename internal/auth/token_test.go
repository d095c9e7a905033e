package auth

import (
	"strings"
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := SignSessionToken(secret, 42, time.Now())
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	uid, err := VerifySessionToken(secret, token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if uid != 42 {
		t.Fatalf("expected user id 42, got %d", uid)
	}
}

func TestSessionTokenExpired(t *testing.T) {
	secret := []byte("test-secret")

	issuedAt := time.Now().Add(-SessionTTL - time.Minute)
	token, err := SignSessionToken(secret, 42, issuedAt)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := VerifySessionToken(secret, token); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestSessionTokenWrongSecret(t *testing.T) {
	token, err := SignSessionToken([]byte("secret-a"), 42, time.Now())
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := VerifySessionToken([]byte("secret-b"), token); err == nil {
		t.Fatal("expected token signed with another secret to fail")
	}
}

func TestSessionTokenTampered(t *testing.T) {
	secret := []byte("test-secret")

	token, err := SignSessionToken(secret, 42, time.Now())
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", token)
	}
	tampered := parts[0] + ".eyJzdWIiOiI5OTkifQ." + parts[2]

	if _, err := VerifySessionToken(secret, tampered); err == nil {
		t.Fatal("expected tampered token to fail verification")
	}
}

func TestSessionTokenGarbage(t *testing.T) {
	if _, err := VerifySessionToken([]byte("test-secret"), "not-a-token"); err == nil {
		t.Fatal("expected garbage token to fail verification")
	}
}
