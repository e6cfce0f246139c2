package object

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"path"
	"strings"
	"time"
)

// ErrNotFound is returned by Download when no object exists at the path.
var ErrNotFound = errors.New("object not found")

// BlobStore stores source documents under opaque string paths.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, fileName string) (string, error)
	Download(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

const uploadsDir = "uploads"

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewUploadPath builds uploads/<unix-ms>-<rand6>.<ext> for a new document.
func NewUploadPath(fileName string, now time.Time) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(strings.TrimSpace(fileName))), ".")
	name := fmt.Sprintf("%d-%s", now.UnixMilli(), randomSuffix(6))
	if ext != "" {
		name += "." + ext
	}
	return path.Join(uploadsDir, name)
}

// CleanKey rejects absolute and traversing keys and normalizes separators.
func CleanKey(key string) (string, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if trimmed == "" {
		return "", errors.New("empty storage key")
	}
	clean := path.Clean(trimmed)
	if strings.HasPrefix(clean, "/") || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return clean, nil
}

func randomSuffix(n int) string {
	var b strings.Builder
	max := big.NewInt(int64(len(suffixAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			b.WriteByte(suffixAlphabet[time.Now().UnixNano()%int64(len(suffixAlphabet))])
			continue
		}
		b.WriteByte(suffixAlphabet[idx.Int64()])
	}
	return b.String()
}
