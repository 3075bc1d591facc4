package services

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/dmitrijs2005/mediabox/internal/server/storage"
)

// ObjectStore is the blob storage used for images.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string) (string, error)
}

// Upload is an image received from a client.
type Upload struct {
	Filename string
	Body     io.Reader
}

// storeImage validates an upload (size limit, image type sniffed from the
// content, not the filename) and stores it under a fresh key.
func storeImage(ctx context.Context, store ObjectStore, prefix string, up Upload, maxSize int64, now time.Time) (string, error) {
	data, err := io.ReadAll(io.LimitReader(up.Body, maxSize+1))
	if err != nil {
		return "", validationError("read upload: %v", err)
	}
	if len(data) == 0 {
		return "", validationError("uploaded file is empty")
	}
	if int64(len(data)) > maxSize {
		return "", validationError("uploaded file exceeds %d bytes", maxSize)
	}

	contentType, ext, ok := storage.DetectImage(data)
	if !ok {
		return "", validationError("unsupported file type %s", contentType)
	}

	key := storage.NewObjectKey(prefix, ext, now)
	if err := store.Put(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", err
	}
	return key, nil
}
