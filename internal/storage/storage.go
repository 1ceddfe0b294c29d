package storage

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var (
	ImageExtensions    = []string{".jpg", ".jpeg", ".png", ".webp"}
	DocumentExtensions = []string{".pdf", ".jpg", ".jpeg", ".png", ".doc", ".docx", ".xls", ".xlsx", ".dwg", ".zip"}
)

var ErrOutsideRoot = errors.New("path escapes upload directory")

// Local keeps uploads on disk under a root directory. Stored names are
// random so client file names never reach the filesystem.
type Local struct {
	root     string
	maxBytes int64
}

func NewLocal(root string, maxMB int) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{root: abs, maxBytes: int64(maxMB) << 20}, nil
}

// Save validates the upload and writes it to <root>/<dir>/<uuid><ext>.
// It returns the path relative to root, which is what gets persisted.
func (s *Local) Save(c *fiber.Ctx, fh *multipart.FileHeader, dir string, allowed []string) (string, error) {
	if fh.Size > s.maxBytes {
		return "", fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("File is larger than %d MB", s.maxBytes>>20))
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !AllowedExtension(ext, allowed) {
		return "", fiber.NewError(fiber.StatusBadRequest, "File type "+ext+" is not allowed")
	}

	rel := filepath.Join(dir, uuid.NewString()+ext)
	full, err := s.Path(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := c.SaveFile(fh, full); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return rel, nil
}

// Path resolves a stored relative path to an absolute one inside root.
func (s *Local) Path(rel string) (string, error) {
	full := filepath.Join(s.root, filepath.Clean("/"+rel))
	if full != s.root && !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return full, nil
}

// Remove deletes a stored file; a missing file is not an error.
func (s *Local) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	full, err := s.Path(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func AllowedExtension(ext string, allowed []string) bool {
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
