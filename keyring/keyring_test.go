package keyring

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/zalando/go-keyring"

	"github.com/yllada/vpn-access/common"
)

func TestStore_SystemKeyring(t *testing.T) {
	keyring.MockInit()

	s := New(t.TempDir())
	if s.useLocal {
		t.Fatal("expected the system keyring path with a mocked keyring")
	}

	secret := []byte("super-secret")
	if err := s.Store("t1", secret); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, err := s.Get("t1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(got, secret) {
		t.Errorf("Get() = %q, want %q", got, secret)
	}

	if err := s.Delete("t1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get("t1"); !errors.Is(err, common.ErrSecretNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrSecretNotFound", err)
	}
}

func newLocalStore(dir string) *Store {
	s := &Store{dir: dir, useLocal: true}
	s.initLocal()
	return s
}

func TestStore_LocalFallback(t *testing.T) {
	dir := t.TempDir()
	s := newLocalStore(dir)

	secret := []byte{0, 1, 2, 255}
	if err := s.Store("t1", secret); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if !common.FileExists(s.localPath()) {
		t.Fatal("fallback file not written")
	}

	// The file must not leak the secret in the clear.
	data, err := os.ReadFile(s.localPath())
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(data, secret) {
		t.Error("fallback file contains the plaintext secret")
	}

	// A fresh store over the same directory derives the same key and reads
	// the secret back.
	reopened := newLocalStore(dir)
	got, err := reopened.Get("t1")
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if !bytes.Equal(got, secret) {
		t.Errorf("Get() = %v, want %v", got, secret)
	}
}

func TestStore_LocalDelete(t *testing.T) {
	s := newLocalStore(t.TempDir())

	if err := s.Store("t1", []byte("secret")); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := s.Delete("t1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get("t1"); !errors.Is(err, common.ErrSecretNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrSecretNotFound", err)
	}

	// Deleting an absent secret is not an error.
	if err := s.Delete("missing"); err != nil {
		t.Errorf("Delete(missing) error = %v, want nil", err)
	}
}

func TestStore_EmptyTokenID(t *testing.T) {
	s := newLocalStore(t.TempDir())

	if err := s.Store("", []byte("secret")); !errors.Is(err, common.ErrSecretStorage) {
		t.Errorf("Store(\"\") error = %v, want ErrSecretStorage", err)
	}
	if _, err := s.Get(""); !errors.Is(err, common.ErrSecretNotFound) {
		t.Errorf("Get(\"\") error = %v, want ErrSecretNotFound", err)
	}
	if err := s.Delete(""); err != nil {
		t.Errorf("Delete(\"\") error = %v, want nil", err)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	s := newLocalStore(t.TempDir())

	plain := []byte(`{"t1":"c2VjcmV0"}`)
	encrypted, err := s.encrypt(plain)
	if err != nil {
		t.Fatalf("encrypt() error = %v", err)
	}
	if bytes.Equal(encrypted, plain) {
		t.Error("encrypt() returned plaintext")
	}

	decrypted, err := s.decrypt(encrypted)
	if err != nil {
		t.Fatalf("decrypt() error = %v", err)
	}
	if !bytes.Equal(decrypted, plain) {
		t.Errorf("decrypt() = %q, want %q", decrypted, plain)
	}

	if _, err := s.decrypt([]byte("AAAA")); err == nil {
		t.Error("decrypt() of garbage should fail")
	}
}
