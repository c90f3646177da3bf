package handler

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// UploadURLPrefix is where stored files are served from.
const UploadURLPrefix = "/uploads/"

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// UploadStore writes images under a directory and names them <base>-<uuid><ext>.
type UploadStore struct {
	dir string
}

func NewUploadStore(dir string) *UploadStore {
	return &UploadStore{dir: dir}
}

func (s *UploadStore) Dir() string { return s.dir }

// Save copies src into a new file and returns its public URL.
func (s *UploadStore) Save(src io.Reader, filename string) (string, error) {
	name := storedName(filename)
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("error creating upload: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("error writing upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("error closing upload: %w", err)
	}
	return UploadURLPrefix + name, nil
}

// Remove deletes a file previously returned by Save. URLs outside the upload prefix and
// files already gone are ignored.
func (s *UploadStore) Remove(url string) error {
	if !strings.HasPrefix(url, UploadURLPrefix) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(url)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func storedName(filename string) string {
	filename = filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(filename))
	if unsafeName.MatchString(strings.TrimPrefix(ext, ".")) {
		ext = ""
	}
	base := strings.Trim(unsafeName.ReplaceAllString(strings.TrimSuffix(filename, filepath.Ext(filename)), "-"), "-")
	if base == "" {
		base = "image"
	}
	return base + "-" + uuid.NewString() + ext
}
