package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewJWTManager(secret, time.Hour)
	token, jti, err := m.GenerateAccessToken("Admin TI")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := m.ParseAndValidate(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Name != "Admin TI" || claims.ID != jti {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestAccessTokenRejections(t *testing.T) {
	m := NewJWTManager(secret, time.Minute)
	token, _, err := m.GenerateAccessToken("Admin TI")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := NewJWTManager("ffffffffffffffffffffffffffffffff", time.Minute)
	if _, err := other.ParseAndValidate(token); err == nil {
		t.Fatalf("expected signature error")
	}

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := m.ParseAndValidate(token); err == nil {
		t.Fatalf("expected expiration error")
	}
}

func TestDirectoryAuthenticate(t *testing.T) {
	hash, err := HashWith("segredo-forte", &argon2id.Params{
		Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	dir := NewDirectory(map[string]string{"Admin TI": hash})

	name, err := dir.Authenticate("admin ti", "segredo-forte")
	if err != nil || name != "Admin TI" {
		t.Fatalf("expected canonical name, got %q %v", name, err)
	}
	if _, err := dir.Authenticate("Admin TI", "errada"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := dir.Authenticate("Outro", "segredo-forte"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestWeakHashes(t *testing.T) {
	fast, err := HashWith("segredo-forte", &argon2id.Params{
		Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	strong, err := Hash("segredo-forte")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if !Weak(fast) {
		t.Fatalf("expected low-cost hash to be weak")
	}
	if Weak(strong) {
		t.Fatalf("expected default hash to be accepted")
	}
	if !Weak("nao-e-hash") {
		t.Fatalf("expected malformed hash to be weak")
	}

	dir := NewDirectory(map[string]string{"Bruno": fast, "Ana": "quebrado", "Carla": strong})
	weak := dir.Weak()
	if len(weak) != 2 || weak[0] != "Ana" || weak[1] != "Bruno" {
		t.Fatalf("unexpected weak operators %v", weak)
	}
}
