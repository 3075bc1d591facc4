package storage

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Key prefixes for the two kinds of uploads.
const (
	PrefixPhotos = "photos"
	PrefixPosts  = "posts"
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// NewObjectKey returns a fresh key of the form
// <prefix>/<yyyy>/<mm>/<dd>/<uuid><ext>.
func NewObjectKey(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s/%04d/%02d/%02d/%s%s", prefix, now.Year(), now.Month(), now.Day(), uuid.New(), ext)
}

// DetectImage sniffs the first bytes of an upload. ok is false for anything
// that is not a supported image type.
func DetectImage(head []byte) (contentType, ext string, ok bool) {
	contentType = http.DetectContentType(head)
	ext, ok = imageExtensions[contentType]
	return contentType, ext, ok
}
