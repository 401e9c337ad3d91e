// Package objectstore persists opaque artifacts on the local filesystem.
package objectstore

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pbooth01/cli2ansible/internal/domain"
	"github.com/pbooth01/cli2ansible/internal/ports"
)

// FileStore implements ports.ObjectStore on a local directory. Keys are
// slash-separated paths rooted under dir; content types are recorded in a
// sidecar file next to each object.
type FileStore struct {
	dir    string
	secret []byte
	mu     sync.Mutex
}

// NewFileStore returns a store rooted at dir, creating it if needed. The
// signing secret seeds presigned-URL tokens; it is generated per store when
// empty.
func NewFileStore(dir string, secret string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".cli2ansible", "artifacts")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if secret == "" {
		secret = dir
	}
	return &FileStore{dir: dir, secret: []byte(secret)}, nil
}

// Dir returns the store's root directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Upload writes the object and returns its storage location.
func (s *FileStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	if contentType != "" {
		if err := os.WriteFile(path+".type", []byte(contentType), 0o644); err != nil {
			return "", err
		}
	}
	return path, nil
}

// Download reads an object back. A missing key maps to
// domain.ErrArtifactNotFound.
func (s *FileStore) Download(ctx context.Context, key string) ([]byte, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("object %q: %w", key, domain.ErrArtifactNotFound)
	}
	return data, err
}

// ContentType returns the stored content type of an object, if any.
func (s *FileStore) ContentType(key string) string {
	path, err := s.pathFor(key)
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path + ".type")
	if err != nil {
		return ""
	}
	return string(data)
}

// Delete removes an object; deleting an absent key is not an error.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	_ = os.Remove(path + ".type")
	return nil
}

// PresignURL returns a file URL carrying an expiry timestamp and an HMAC
// token binding key and expiry, verifiable with VerifyToken.
func (s *FileStore) PresignURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("object %q: %w", key, domain.ErrArtifactNotFound)
	}
	expires := time.Now().Add(expiresIn).Unix()
	query := url.Values{
		"expires": []string{strconv.FormatInt(expires, 10)},
		"token":   []string{s.sign(key, expires)},
	}
	return (&url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(path),
		RawQuery: query.Encode(),
	}).String(), nil
}

// VerifyToken checks a presigned token against the key and expiry it was
// issued for.
func (s *FileStore) VerifyToken(key, token string, expires int64) bool {
	if time.Now().Unix() > expires {
		return false
	}
	expected := s.sign(key, expires)
	return hmac.Equal([]byte(expected), []byte(token))
}

func (s *FileStore) sign(key string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%d", key, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

// pathFor maps a key to a path under dir, rejecting traversal outside it.
func (s *FileStore) pathFor(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.dir, clean), nil
}

var _ ports.ObjectStore = (*FileStore)(nil)
