package blobsvc

import (
	"context"
	"io"

	"github.com/kurin/blazer/b2"
	"github.com/pkg/errors"

	"github.com/PARTHSHARMA4010/ClarityAI/core"
)

// B2Store uploads files to a Backblaze B2 bucket.
type B2Store struct {
	bucket *b2.Bucket
}

var _ core.BlobStore = (*B2Store)(nil)

func NewB2Store(ctx context.Context, accountID, appKey, bucketName string) (*B2Store, error) {
	client, err := b2.NewClient(ctx, accountID, appKey)
	if err != nil {
		return nil, errors.Wrap(err, "creating b2 client")
	}
	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, errors.Wrap(err, "getting b2 bucket")
	}
	return &B2Store{bucket: bucket}, nil
}

func (s *B2Store) Put(ctx context.Context, key string, up core.Upload) (string, error) {
	obj := s.bucket.Object(key)
	w := obj.NewWriter(ctx).WithAttrs(&b2.Attrs{ContentType: up.ContentType})

	if _, err := io.Copy(w, up.Content); err != nil {
		_ = w.Close()
		return "", errors.Wrap(err, "writing b2 object")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "closing b2 writer")
	}
	return obj.URL(), nil
}
