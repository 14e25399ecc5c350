package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StoredFile references a persisted research artifact. Callers keep the
// reference pair only, never the bytes.
type StoredFile struct {
	FileRef        string
	ExternalFileID string
}

// LocalStorage persists research artifacts on disk under a base directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./artifacts"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifacts directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Save persists the artifact bytes and returns its reference pair.
// The stored name is namespaced by a generated id so uploads never collide.
func (s *LocalStorage) Save(filename string, data []byte) (*StoredFile, error) {
	externalID := uuid.NewString()
	ref := filepath.Join(externalID, sanitize(filename))
	path := s.resolve(ref)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("prepare artifact directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write artifact file: %w", err)
	}
	return &StoredFile{FileRef: ref, ExternalFileID: externalID}, nil
}

// SaveStream copies from reader into a new artifact file.
func (s *LocalStorage) SaveStream(filename string, r io.Reader) (*StoredFile, error) {
	externalID := uuid.NewString()
	ref := filepath.Join(externalID, sanitize(filename))
	path := s.resolve(ref)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("prepare artifact directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create artifact file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return nil, fmt.Errorf("write artifact stream: %w", err)
	}
	return &StoredFile{FileRef: ref, ExternalFileID: externalID}, nil
}

// Open returns a read-only handle for the stored artifact.
func (s *LocalStorage) Open(fileRef string) (*os.File, error) {
	file, err := os.Open(s.resolve(fileRef))
	if err != nil {
		return nil, fmt.Errorf("open artifact file: %w", err)
	}
	return file, nil
}

// Delete removes a stored artifact if present.
func (s *LocalStorage) Delete(fileRef string) error {
	if err := os.Remove(s.resolve(fileRef)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete artifact file: %w", err)
	}
	return nil
}

// Path exposes the underlying absolute path (useful for debugging).
func (s *LocalStorage) Path(fileRef string) string {
	return s.resolve(fileRef)
}

func (s *LocalStorage) resolve(fileRef string) string {
	if filepath.IsAbs(fileRef) {
		return fileRef
	}
	return filepath.Join(s.baseDir, fileRef)
}

func sanitize(filename string) string {
	base := filepath.Base(filename)
	base = strings.ReplaceAll(base, "..", "")
	if base == "" || base == "." {
		base = "artifact"
	}
	return base
}
