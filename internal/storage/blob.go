package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// BlobStore is the CV attachment collaborator: store bytes under a path,
// hand back a public URL.
type BlobStore interface {
	Upload(ctx context.Context, path string, data []byte) (string, error)
	PublicURL(path string) string
}

// DiskStore keeps blobs on the local filesystem, served under /files/.
type DiskStore struct {
	root    string
	baseURL string
	logger  *zap.Logger
}

func NewDiskStore(root, baseURL string, logger *zap.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob dir: %w", err)
	}
	return &DiskStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}, nil
}

// Root is the directory the HTTP layer mounts as /files/.
func (s *DiskStore) Root() string { return s.root }

func (s *DiskStore) Upload(_ context.Context, path string, data []byte) (string, error) {
	clean := filepath.Clean(path)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid blob path %q", path)
	}

	full := filepath.Join(s.root, clean)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("creating blob subdir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("writing blob: %w", err)
	}

	s.logger.Debug("blob stored",
		zap.String("path", clean),
		zap.Int("size", len(data)))
	return clean, nil
}

func (s *DiskStore) PublicURL(path string) string {
	return s.baseURL + "/files/" + filepath.ToSlash(filepath.Clean(path))
}
