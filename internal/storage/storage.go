// Package storage keeps uploaded images in S3 or MongoDB GridFS.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no stored file has the requested name.
var ErrNotFound = errors.New("file not found")

// FileStore stores flat-named files.
type FileStore interface {
	// Put stores data under name and returns its public URL.
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
	// Open streams a stored file. The caller closes the reader.
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, name string) error
	// URL is the public URL of name.
	URL(name string) string
}

// NewName derives a unique stored name from an uploaded file name, keeping
// its extension. The returned publicID is the name without extension.
func NewName(original string) (publicID, name string) {
	publicID = uuid.NewString()
	ext := strings.ToLower(path.Ext(original))
	if !validExt.MatchString(ext) {
		ext = ""
	}
	return publicID, publicID + ext
}

// ThumbnailName is the stored name of the thumbnail of name.
func ThumbnailName(name string) string {
	return "thumb-" + strings.TrimSuffix(name, path.Ext(name)) + ".jpg"
}

var (
	validExt  = regexp.MustCompile(`^\.[a-z0-9]{1,5}$`)
	validName = regexp.MustCompile(`^(thumb-)?[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}(\.[a-z0-9]{1,5})?$`)
)

// ValidName reports whether name could have been produced by NewName or ThumbnailName.
func ValidName(name string) bool {
	return validName.MatchString(name)
}
