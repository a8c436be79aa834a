// Package filerepo persists the token pair in a file so a session survives
// process restarts. With a key configured the record is sealed with
// NaCl secretbox before it touches the disk.
package filerepo

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-course-client/tokens"
	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

var _ tokens.Repo = (*FileTokenRepo)(nil)

type FileTokenRepo struct {
	path string
	key  *[keySize]byte
	lock sync.Mutex
}

type Option func(*FileTokenRepo) error

// WithHexKey enables at-rest encryption with a hex encoded 32 byte key.
// An empty key leaves the file in plain JSON.
func WithHexKey(hexKey string) Option {
	return func(r *FileTokenRepo) error {
		if hexKey == "" {
			return nil
		}
		raw, err := hex.DecodeString(hexKey)
		if err != nil {
			return fmt.Errorf("token store key must be valid hex: %w", err)
		}
		if len(raw) != keySize {
			return fmt.Errorf("token store key must be %d bytes, got %d", keySize, len(raw))
		}
		var key [keySize]byte
		copy(key[:], raw)
		r.key = &key
		return nil
	}
}

func New(path string, options ...Option) (*FileTokenRepo, error) {
	if path == "" {
		return nil, errors.New("token file path is required")
	}
	r := &FileTokenRepo{path: path}
	for _, opt := range options {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *FileTokenRepo) Get(_ context.Context) (tokens.Pair, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return tokens.Pair{}, nil
	}
	if err != nil {
		return tokens.Pair{}, errors.Wrap(err, "FileTokenRepo.Get ReadFile")
	}

	if r.key != nil {
		if data, err = r.open(data); err != nil {
			return tokens.Pair{}, err
		}
	}
	return tokens.DecodeRecord(data)
}

func (r *FileTokenRepo) Set(_ context.Context, pair tokens.Pair) error {
	data, err := tokens.EncodeRecord(pair)
	if err != nil {
		return err
	}
	if r.key != nil {
		if data, err = r.seal(data); err != nil {
			return err
		}
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	return r.writeAtomic(data)
}

func (r *FileTokenRepo) Clear(_ context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "FileTokenRepo.Clear Remove")
	}
	return nil
}

func (r *FileTokenRepo) writeAtomic(data []byte) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "FileTokenRepo.Set MkdirAll")
	}

	tmp, err := os.CreateTemp(dir, ".auth_tokens-*")
	if err != nil {
		return errors.Wrap(err, "FileTokenRepo.Set CreateTemp")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrap(err, "FileTokenRepo.Set Chmod")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "FileTokenRepo.Set Write")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "FileTokenRepo.Set Close")
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return errors.Wrap(err, "FileTokenRepo.Set Rename")
	}
	return nil
}

// seal returns base64(nonce || secretbox(record)).
func (r *FileTokenRepo) seal(plain []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, errors.Wrap(err, "FileTokenRepo.seal nonce")
	}
	sealed := secretbox.Seal(nonce[:], plain, &nonce, r.key)
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sealed)))
	base64.StdEncoding.Encode(out, sealed)
	return out, nil
}

func (r *FileTokenRepo) open(data []byte) ([]byte, error) {
	sealed := make([]byte, base64.StdEncoding.DecodedLen(len(data)))
	n, err := base64.StdEncoding.Decode(sealed, data)
	if err != nil {
		return nil, errors.Wrap(err, "FileTokenRepo.open decode")
	}
	sealed = sealed[:n]
	if len(sealed) < nonceSize {
		return nil, errors.New("FileTokenRepo.open: sealed record too short")
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, r.key)
	if !ok {
		return nil, errors.New("FileTokenRepo.open: record cannot be decrypted with the configured key")
	}
	return plain, nil
}
