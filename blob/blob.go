// Package blob stores uploaded images and turns stored references back into
// URLs a browser can fetch.
package blob

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("blob not found")
	ErrInvalidRef = errors.New("invalid blob reference")
)

// Store is implemented by every blob backend. References returned by Put are
// persisted in rows and must be accepted by Resolve and Remove.
type Store interface {
	// Put writes data under name and returns the reference to persist.
	Put(ctx context.Context, name string, data []byte) (string, error)
	// Resolve returns a URL for ref. It fails with ErrNotFound when the
	// blob no longer exists.
	Resolve(ctx context.Context, ref string) (string, error)
	// Remove deletes the blob behind ref.
	Remove(ctx context.Context, ref string) error
}

// IsExternal reports whether ref is already a fetchable URL (an externally
// hosted image or inline data) rather than a name inside a store.
func IsExternal(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "data:")
}

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	dotRuns     = regexp.MustCompile(`\.{2,}`)
)

// ObjectName derives a storage name from the uploaded filename:
// "<unix millis>-<sanitized base name>".
func ObjectName(original string, now time.Time) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	base = unsafeChars.ReplaceAllString(base, "-")
	base = dotRuns.ReplaceAllString(base, ".")
	base = strings.Trim(base, ".-")
	if base == "" {
		base = uuid.NewString()
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), base)
}

// ValidateName rejects references that could escape a store's namespace.
// Separators are never allowed, so only the bare names "." and ".." need
// special casing.
func ValidateName(ref string) error {
	if ref == "" || ref == "." || ref == ".." || strings.ContainsAny(ref, `/\`) || strings.ContainsRune(ref, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	return nil
}

// DetectContentType sniffs data, falling back to the filename extension when
// the content is not recognised.
func DetectContentType(data []byte, name string) string {
	mt := mimetype.Detect(data)
	if mt.Is("application/octet-stream") {
		if byExt := extensionMime(name); byExt != "" {
			return byExt
		}
	}
	return mt.String()
}

// IsImage reports whether data looks like an image.
func IsImage(data []byte) bool {
	return strings.HasPrefix(mimetype.Detect(data).String(), "image/")
}

func extensionMime(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	}
	return ""
}
