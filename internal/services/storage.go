package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StorageService is the blob storage collaborator. Files are stored
// content-addressed so concurrent uploads can never collide.
type StorageService struct {
	baseDir string
}

// NewStorageService creates a disk-backed store rooted at baseDir.
func NewStorageService(baseDir string) *StorageService {
	return &StorageService{baseDir: baseDir}
}

// Store persists the bytes and returns an opaque handle (a URL path). The
// handle is derived from the content hash, so identical uploads share one
// blob and distinct uploads can never overwrite each other.
func (s *StorageService) Store(data []byte, originalName string) (string, error) {
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	sum := sha256.Sum256(data)
	name := hex.EncodeToString(sum[:]) + sanitizeExt(originalName)
	path := filepath.Join(s.baseDir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}

	return "/" + filepath.ToSlash(filepath.Join(s.baseDir, name)), nil
}

// Delete removes a previously stored blob. Missing files are not an error.
func (s *StorageService) Delete(handle string) error {
	name := filepath.Base(handle)
	if name == "." || name == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(s.baseDir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".pdf":
		return ext
	default:
		return ""
	}
}
