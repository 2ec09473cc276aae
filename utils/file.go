package utils

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalUploader writes uploads under a directory on disk. It serves local runs without R2 credentials;
// the directory is exposed by the HTTP server under baseURL.
type LocalUploader struct {
	dir     string
	baseURL string
}

func NewLocalUploader(dir, baseURL string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalUploader{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload saves body to <dir>/<key>, creating parent directories as needed.
func (u *LocalUploader) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	clean := filepath.Clean("/" + key)
	dest := filepath.Join(u.dir, clean)

	if err := os.MkdirAll(filepath.Dir(dest), os.ModePerm); err != nil {
		return "", err
	}
	dst, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, body); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", key, err)
	}
	return u.baseURL + filepath.ToSlash(clean), nil
}
