package crypto

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := BcryptHasher{}

	hash, err := h.Hash("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter2" {
		t.Fatal("hash equals plaintext")
	}

	if !h.Compare("hunter2", hash) {
		t.Error("correct password rejected")
	}
	if h.Compare("wrong", hash) {
		t.Error("wrong password accepted")
	}
}

func TestCompareGarbageHash(t *testing.T) {
	h := BcryptHasher{}
	if h.Compare("anything", "not-a-bcrypt-hash") {
		t.Error("garbage hash accepted")
	}
}

func TestDecodeAdminHash(t *testing.T) {
	h := BcryptHasher{}
	hash, err := h.Hash("admin-secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(hash))

	decoded, err := DecodeAdminHash(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != hash {
		t.Errorf("decoded %q, want %q", decoded, hash)
	}

	if !CheckAdminPassword("admin-secret", decoded) {
		t.Error("correct admin password rejected")
	}
	if CheckAdminPassword("guess", decoded) {
		t.Error("wrong admin password accepted")
	}
}

func TestDecodeAdminHashMissing(t *testing.T) {
	if _, err := DecodeAdminHash(""); !errors.Is(err, ErrAdminHashMissing) {
		t.Errorf("expected ErrAdminHashMissing, got %v", err)
	}
}

func TestDecodeAdminHashInvalidBase64(t *testing.T) {
	if _, err := DecodeAdminHash("%%%not base64%%%"); err == nil {
		t.Error("expected decode error")
	}
}

func TestIDGenerators(t *testing.T) {
	if NewRoomID() == NewRoomID() {
		t.Error("room ids collide")
	}
	if NewConnectionID() == "" {
		t.Error("empty connection id")
	}
	a, b := NewMessageID(), NewMessageID()
	if a == b {
		t.Error("message ids collide")
	}
	// ULIDs sort by creation time.
	if a > b {
		t.Errorf("message ids not monotonic: %s > %s", a, b)
	}
}
