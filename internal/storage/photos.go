// Package storage persists submission photos on local disk.
//
// CONTENT-ADDRESSED STORAGE:
// Files are named by the blake2b-256 digest of their content plus an
// extension derived from the content type. That makes saves idempotent —
// re-uploading the same photo lands on the same file — and makes the
// reference stored on the submission tamper-evident: the name IS the hash.
package storage

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// MaxPhotoSize caps uploads at 10 MiB. The HTTP layer enforces the same
// bound on the multipart form; this one protects direct callers.
const MaxPhotoSize = 10 << 20

// Caller-input failures, distinguishable from disk errors so the service
// layer can map them to validation errors instead of 500s.
var (
	ErrUnsupportedType = errors.New("storage: unsupported content type")
	ErrTooLarge        = errors.New("storage: photo too large")
	ErrEmpty           = errors.New("storage: empty photo")
)

var extByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

// PhotoStore writes photos under a single directory.
type PhotoStore struct {
	dir string
}

// NewPhotoStore creates the upload directory if needed.
func NewPhotoStore(dir string) (*PhotoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: creating upload dir %s: %w", dir, err)
	}
	return &PhotoStore{dir: dir}, nil
}

// Save stores the photo and returns its reference (the content-addressed
// filename). Rejects non-image content types and anything over
// MaxPhotoSize.
func (s *PhotoStore) Save(r io.Reader, contentType string) (string, error) {
	ext, ok := extByContentType[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}

	// Read one byte past the cap so we can tell "exactly at the limit"
	// from "over it".
	data, err := io.ReadAll(io.LimitReader(r, MaxPhotoSize+1))
	if err != nil {
		return "", fmt.Errorf("storage: reading photo: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if len(data) > MaxPhotoSize {
		return "", fmt.Errorf("%w: exceeds %d bytes", ErrTooLarge, MaxPhotoSize)
	}

	sum := blake2b.Sum256(data)
	ref := hex.EncodeToString(sum[:]) + ext

	path := filepath.Join(s.dir, ref)
	if _, err := os.Stat(path); err == nil {
		// Same content, same name — already stored.
		return ref, nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: writing photo %s: %w", ref, err)
	}
	return ref, nil
}

// Open returns the stored photo for serving. The ref is validated against
// path traversal — it must be a bare filename we produced.
func (s *PhotoStore) Open(ref string) (*os.File, error) {
	if ref == "" || ref != filepath.Base(ref) || strings.Contains(ref, "..") {
		return nil, fmt.Errorf("storage: invalid photo ref %q", ref)
	}
	f, err := os.Open(filepath.Join(s.dir, ref))
	if err != nil {
		return nil, fmt.Errorf("storage: opening photo %s: %w", ref, err)
	}
	return f, nil
}
