package blobsvc

import (
	"context"
	"fmt"

	"github.com/PARTHSHARMA4010/ClarityAI/core"
)

// New returns the blob store selected by conf.Blob.Backend.
func New(ctx context.Context, conf *core.Config) (core.BlobStore, error) {
	switch conf.Blob.Backend {
	case "", "memory":
		return NewMemoryStore("memory://" + conf.Blob.Bucket), nil
	case "b2":
		return NewB2Store(ctx, conf.Blob.B2AccountID, conf.Blob.B2AppKey, conf.Blob.Bucket)
	case "s3":
		return NewS3Store(S3Options{
			Bucket:          conf.Blob.Bucket,
			Region:          conf.Blob.S3Region,
			Endpoint:        conf.Blob.S3Endpoint,
			AccessKeyID:     conf.Blob.S3AccessKeyID,
			SecretAccessKey: conf.Blob.S3SecretAccessKey,
		})
	default:
		return nil, fmt.Errorf("unknown blob backend %q", conf.Blob.Backend)
	}
}
