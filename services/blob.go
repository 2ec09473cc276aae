package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// BlobStore keeps uploaded images and returns their public URL.
type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// Upload is an image received from a player.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

func uploadExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return ".jpg"
	}
	return ext
}

// paymentProofKey is payments/<user>/<unix-ms>.<ext>.
func paymentProofKey(userID string, at time.Time, filename string) string {
	return fmt.Sprintf("payments/%s/%d%s", userID, at.UnixMilli(), uploadExt(filename))
}

// avatarKey is avatars/<user>-<unix-ms>.<ext>.
func avatarKey(userID string, at time.Time, filename string) string {
	return fmt.Sprintf("avatars/%s-%d%s", userID, at.UnixMilli(), uploadExt(filename))
}
