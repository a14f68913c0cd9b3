// Package tokenstore persists the access token between runs.
package tokenstore

import (
	"crypto/rand"
	"encoding/base64"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"pickup/config"
	"pickup/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const (
	sealedPrefix = "sealed:v1:"
	saltSize     = 16
	nonceSize    = 24
	keySize      = 32
)

// ErrWrongKey is returned when a sealed token file cannot be opened with the
// configured encryption key.
var ErrWrongKey = errors.New("token file cannot be decrypted with the configured key")

// Params holds dependencies for the token store, injected by Fx
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewTokenStore creates the file store from configuration. A token file that
// cannot be read, for example with a wrong encryption key, is left in place
// and reported; it is only ever removed by logout or a server 401.
func NewTokenStore(params Params) (service.TokenStore, error) {
	path := params.Config.Session.TokenPath

	store, err := NewFile(path, params.Config.Session.EncryptionKey)
	if err != nil {
		params.Logger.Error("Failed to open token file",
			slog.String("path", path),
			slog.Any("error", err),
		)

		return nil, errors.Wrapf(err, "open token file %s (check session.encryptionKey)", path)
	}

	return store, nil
}

// File keeps the token in one file, sealed with secretbox when a passphrase
// is configured. The token is cached in memory after the first read.
type File struct {
	mu         sync.RWMutex
	path       string
	passphrase string
	token      string
}

// NewFile opens the store at path and loads any token already saved there.
func NewFile(path, passphrase string) (*File, error) {
	f := &File{path: path, passphrase: passphrase}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return f, nil
	case err != nil:
		return nil, errors.Wrapf(err, "read token file %s", path)
	}

	token, err := f.decode(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, err
	}
	f.token = token

	return f, nil
}

// Token returns the stored token.
func (f *File) Token() (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.token, f.token != ""
}

// Save writes the token, replacing any previous one.
func (f *File) Save(token string) error {
	encoded, err := f.encode(token)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return errors.Wrap(err, "create token directory")
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(encoded+"\n"), 0o600); err != nil {
		return errors.Wrap(err, "write token file")
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return errors.Wrap(err, "replace token file")
	}
	f.token = token

	return nil
}

// Clear removes the token. Clearing an empty store is not an error.
func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove token file")
	}
	f.token = ""

	return nil
}

func (f *File) encode(token string) (string, error) {
	if f.passphrase == "" {
		return token, nil
	}

	var salt [saltSize]byte
	if _, err := io.ReadFull(rand.Reader, salt[:]); err != nil {
		return "", errors.Wrap(err, "generate salt")
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", errors.Wrap(err, "generate nonce")
	}
	key, err := deriveKey(f.passphrase, salt[:])
	if err != nil {
		return "", err
	}

	out := make([]byte, 0, saltSize+nonceSize+len(token)+secretbox.Overhead)
	out = append(out, salt[:]...)
	out = append(out, nonce[:]...)
	out = secretbox.Seal(out, []byte(token), &nonce, key)

	return sealedPrefix + base64.RawStdEncoding.EncodeToString(out), nil
}

func (f *File) decode(data string) (string, error) {
	if !strings.HasPrefix(data, sealedPrefix) {
		if f.passphrase != "" && data != "" {
			return "", errors.New("token file is not sealed but an encryption key is configured")
		}

		return data, nil
	}
	if f.passphrase == "" {
		return "", errors.New("token file is sealed but no encryption key is configured")
	}

	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(data, sealedPrefix))
	if err != nil {
		return "", errors.Wrap(err, "decode sealed token")
	}
	if len(raw) < saltSize+nonceSize+secretbox.Overhead {
		return "", errors.New("sealed token is truncated")
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[saltSize:saltSize+nonceSize])
	key, err := deriveKey(f.passphrase, raw[:saltSize])
	if err != nil {
		return "", err
	}

	token, ok := secretbox.Open(nil, raw[saltSize+nonceSize:], &nonce, key)
	if !ok {
		return "", errors.WithStack(ErrWrongKey)
	}

	return string(token), nil
}

func deriveKey(passphrase string, salt []byte) (*[keySize]byte, error) {
	derived, err := scrypt.Key([]byte(passphrase), salt, 1<<15, 8, 1, keySize)
	if err != nil {
		return nil, errors.Wrap(err, "derive token key")
	}

	var key [keySize]byte
	copy(key[:], derived)

	return &key, nil
}

// Memory keeps the token in memory only. Tests use it to create independent
// sessions.
type Memory struct {
	mu    sync.RWMutex
	token string
}

// NewMemory creates a store holding token; an empty token means logged out.
func NewMemory(token string) *Memory {
	return &Memory{token: token}
}

// Token returns the stored token.
func (m *Memory) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.token, m.token != ""
}

// Save replaces the token.
func (m *Memory) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token

	return nil
}

// Clear removes the token.
func (m *Memory) Clear() error {
	return m.Save("")
}

// Module provides the token store FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewTokenStore),
)
