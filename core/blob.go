package core

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Upload is a file received from a client, ready to be stored.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// BlobStore stores uploaded files and returns a durable retrieval URL.
type BlobStore interface {
	Put(ctx context.Context, key string, up Upload) (string, error)
}

// BlobKey builds a unique object key under prefix, keeping the original file name readable.
func BlobKey(prefix, filename string) string {
	name := strings.ReplaceAll(path.Base(CleanString(filename)), " ", "_")
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	return path.Join(prefix, uuid.New().String()+"-"+name)
}
