package upload

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrUnsupportedFileType = errors.New("unsupported file type")

// allowedExtensions mirrors the document types the admission form accepts.
var allowedExtensions = map[string]bool{
	".txt":  true,
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// Storage persists named binary blobs and hands back an opaque reference.
// The workflows only ever store and echo the reference.
type Storage interface {
	Save(name string, r io.Reader) (string, error)
}

type LocalStorage struct {
	dir    string
	logger *slog.Logger
}

func NewLocalStorage(dir string, logger *slog.Logger) (*LocalStorage, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{dir: dir, logger: logger}, nil
}

// Save writes the blob under a collision-free name and returns its path.
func (s *LocalStorage) Save(name string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}

	filename := uuid.New().String() + "_" + filepath.Base(name)
	path := filepath.Join(s.dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	s.logger.Info("document stored", "path", path)
	return path, nil
}
