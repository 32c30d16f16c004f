// Package keyring provides secure token-secret storage.
// It uses the system keyring when available, falling back to an encrypted
// local file when not.
package keyring

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"

	"github.com/yllada/vpn-access/common"
)

// serviceName is the identifier used in the system keyring.
const serviceName = "vpn-access"

// fallbackFileName holds the encrypted local store when the system
// keyring is unavailable.
const fallbackFileName = ".secrets"

// Store keeps one secret per token id. It implements common.SecretStore.
type Store struct {
	mu       sync.Mutex
	dir      string
	useLocal bool
	local    map[string]string
	key      []byte
}

// New creates a secret store rooted in the given directory. The directory
// is only used for the encrypted fallback file; the system keyring is
// probed first and preferred.
func New(dir string) *Store {
	s := &Store{dir: dir}

	probe := serviceName + "-probe"
	if err := keyring.Set(serviceName, probe, "probe"); err == nil {
		keyring.Delete(serviceName, probe)
	} else {
		s.useLocal = true
		s.initLocal()
	}
	return s
}

// initLocal prepares the encrypted file fallback. The encryption key is
// derived from machine-specific data, so the file only protects against
// casual reads.
func (s *Store) initLocal() {
	hostname, _ := os.Hostname()
	keyData := fmt.Sprintf("%s-%s-%s-%d", serviceName, hostname, machineID(), os.Getuid())
	hash := sha256.Sum256([]byte(keyData))
	s.key = hash[:]

	s.local = make(map[string]string)
	data, err := os.ReadFile(s.localPath())
	if err != nil {
		return
	}
	plain, err := s.decrypt(data)
	if err != nil {
		common.LogWarn("ignoring unreadable secret store: %v", err)
		return
	}
	json.Unmarshal(plain, &s.local)
}

func machineID() string {
	data, err := os.ReadFile("/etc/machine-id")
	if err != nil {
		return "default-machine-id"
	}
	return strings.TrimSpace(string(data))
}

func (s *Store) localPath() string {
	return filepath.Join(s.dir, fallbackFileName)
}

func (s *Store) saveLocal() error {
	data, err := json.Marshal(s.local)
	if err != nil {
		return err
	}
	encrypted, err := s.encrypt(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(s.localPath(), encrypted, 0600)
}

func (s *Store) encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return []byte(base64.StdEncoding.EncodeToString(ciphertext)), nil
}

func (s *Store) decrypt(data []byte) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// Store saves the secret for a token.
func (s *Store) Store(tokenID string, secret []byte) error {
	if tokenID == "" {
		return common.WrapError(common.ErrSecretStorage, "token id cannot be empty")
	}
	encoded := base64.StdEncoding.EncodeToString(secret)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.useLocal {
		if err := keyring.Set(serviceName, tokenID, encoded); err == nil {
			return nil
		}
		// Keyring stopped working mid-flight; switch to the fallback.
		s.useLocal = true
		s.initLocal()
	}

	s.local[tokenID] = encoded
	if err := s.saveLocal(); err != nil {
		return common.WrapError(common.ErrSecretStorage, err.Error())
	}
	return nil
}

// Get retrieves the secret for a token.
func (s *Store) Get(tokenID string) ([]byte, error) {
	if tokenID == "" {
		return nil, common.ErrSecretNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var encoded string
	if s.useLocal {
		var ok bool
		if encoded, ok = s.local[tokenID]; !ok {
			return nil, common.ErrSecretNotFound
		}
	} else {
		var err error
		if encoded, err = keyring.Get(serviceName, tokenID); err != nil {
			return nil, common.ErrSecretNotFound
		}
	}

	secret, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, common.ErrSecretNotFound
	}
	return secret, nil
}

// Delete removes the secret for a token. Deleting an absent secret is not
// an error.
func (s *Store) Delete(tokenID string) error {
	if tokenID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.useLocal {
		delete(s.local, tokenID)
		return s.saveLocal()
	}
	keyring.Delete(serviceName, tokenID)
	return nil
}
