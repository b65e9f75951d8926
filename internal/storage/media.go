package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var ErrUnsupportedMedia = errors.New("unsupported media type")

// AllowedExtensions lists the media kinds a question may carry.
var AllowedExtensions = map[string]bool{
	"pdf": true, "png": true, "jpg": true, "jpeg": true, "mp3": true,
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SecureFilename reduces name to a safe base name.
func SecureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

func Allowed(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return AllowedExtensions[ext]
}

// SaveMedia stores an uploaded file and returns the media reference that
// gets recorded on a question. The bytes never go through the engine.
func SaveMedia(ctx context.Context, bs BlobStore, filename string, r io.Reader) (string, error) {
	safe := SecureFilename(filename)
	if safe == "" || !Allowed(safe) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMedia, filename)
	}
	key := "uploads/" + uuid.NewString() + "_" + safe
	return bs.Put(ctx, key, r)
}
