package objectstore

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/pbooth01/cli2ansible/internal/domain"
)

func tempFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir(), "test-secret")
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	return s
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	s := tempFileStore(t)
	ctx := context.Background()

	payload := []byte("zip bytes")
	if _, err := s.Upload(ctx, "sessions/abc/role.zip", payload, "application/zip"); err != nil {
		t.Fatalf("Upload error: %v", err)
	}

	got, err := s.Download(ctx, "sessions/abc/role.zip")
	if err != nil {
		t.Fatalf("Download error: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("Download = %q", got)
	}
	if ct := s.ContentType("sessions/abc/role.zip"); ct != "application/zip" {
		t.Fatalf("ContentType = %q", ct)
	}
}

func TestDownloadMissingKey(t *testing.T) {
	s := tempFileStore(t)
	_, err := s.Download(context.Background(), "sessions/missing/role.zip")
	if !errors.Is(err, domain.ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := tempFileStore(t)
	ctx := context.Background()
	_, _ = s.Upload(ctx, "a/b", []byte("x"), "")

	if err := s.Delete(ctx, "a/b"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := s.Delete(ctx, "a/b"); err != nil {
		t.Fatalf("second Delete error: %v", err)
	}
}

func TestPresignURLVerifies(t *testing.T) {
	s := tempFileStore(t)
	ctx := context.Background()
	_, _ = s.Upload(ctx, "sessions/abc/recording.cast", []byte("cast"), "application/json")

	signed, err := s.PresignURL(ctx, "sessions/abc/recording.cast", time.Hour)
	if err != nil {
		t.Fatalf("PresignURL error: %v", err)
	}

	u, err := url.Parse(signed)
	if err != nil {
		t.Fatalf("url.Parse error: %v", err)
	}
	expires, err := strconv.ParseInt(u.Query().Get("expires"), 10, 64)
	if err != nil {
		t.Fatalf("missing expires: %v", err)
	}
	token := u.Query().Get("token")
	if !s.VerifyToken("sessions/abc/recording.cast", token, expires) {
		t.Fatal("token should verify for its own key and expiry")
	}
	if s.VerifyToken("sessions/other/recording.cast", token, expires) {
		t.Fatal("token must not verify for a different key")
	}
	if s.VerifyToken("sessions/abc/recording.cast", token, time.Now().Add(-time.Minute).Unix()) {
		t.Fatal("expired token must not verify")
	}
}

func TestPresignURLMissingKey(t *testing.T) {
	s := tempFileStore(t)
	_, err := s.PresignURL(context.Background(), "nope", time.Hour)
	if !errors.Is(err, domain.ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestRejectsTraversalKeys(t *testing.T) {
	s := tempFileStore(t)
	for _, key := range []string{"../escape", "/abs/path", "a/../../b"} {
		if _, err := s.Upload(context.Background(), key, []byte("x"), ""); err == nil || !strings.Contains(err.Error(), "invalid object key") {
			t.Fatalf("key %q: expected rejection, got %v", key, err)
		}
	}
}
