// Package storage provides the blob store the attachment flow uploads
// into. Files land on local disk and are addressable under a public
// base URL served by the HTTP layer.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// BlobStore accepts file content plus a relative path and returns a
// public URL for the stored blob.
type BlobStore interface {
	Upload(ctx context.Context, content io.Reader, blobPath string, overwrite bool) (string, error)
	Delete(ctx context.Context, blobPath string) error
}

// DiskStore writes blobs under a root directory.
type DiskStore struct {
	root    string
	baseURL string
	logger  *zap.Logger
}

// NewDiskStore constructs the store, creating the root directory.
func NewDiskStore(root, baseURL string, logger *zap.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &DiskStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}, nil
}

// Root returns the directory blobs are written to, for static serving.
func (s *DiskStore) Root() string {
	return s.root
}

// Upload stores the content and returns its public URL. When
// overwrite is false an existing blob at the same path is an error.
func (s *DiskStore) Upload(ctx context.Context, content io.Reader, blobPath string, overwrite bool) (string, error) {
	cleaned, err := s.resolve(blobPath)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(cleaned), 0o755); err != nil {
		return "", fmt.Errorf("create blob dir: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	file, err := os.OpenFile(cleaned, flags, 0o644)
	if err != nil {
		return "", fmt.Errorf("open blob: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		_ = os.Remove(cleaned)
		return "", fmt.Errorf("write blob: %w", err)
	}

	url := s.baseURL + "/" + path.Clean(strings.TrimLeft(blobPath, "/"))
	s.logger.Debug("blob stored", zap.String("path", blobPath), zap.String("url", url))
	return url, nil
}

// Delete removes a blob. Deleting an absent path is not an error.
func (s *DiskStore) Delete(ctx context.Context, blobPath string) error {
	cleaned, err := s.resolve(blobPath)
	if err != nil {
		return err
	}
	if err := os.Remove(cleaned); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *DiskStore) resolve(blobPath string) (string, error) {
	cleaned := path.Clean(strings.TrimLeft(blobPath, "/"))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("invalid blob path %q", blobPath)
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}
