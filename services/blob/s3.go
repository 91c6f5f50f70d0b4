package blobsvc

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"

	"github.com/PARTHSHARMA4010/ClarityAI/core"
)

// S3Store uploads files to an S3 (or S3 compatible) bucket.
type S3Store struct {
	bucket   string
	uploader *s3manager.Uploader
}

var _ core.BlobStore = (*S3Store)(nil)

type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string // optional, for S3 compatible services
	AccessKeyID     string
	SecretAccessKey string
}

func NewS3Store(opts S3Options) (*S3Store, error) {
	cfg := aws.NewConfig().WithRegion(opts.Region)
	if opts.Endpoint != "" {
		cfg = cfg.WithEndpoint(opts.Endpoint).WithS3ForcePathStyle(true)
	}
	if opts.AccessKeyID != "" {
		cfg = cfg.WithCredentials(credentials.NewStaticCredentials(opts.AccessKeyID, opts.SecretAccessKey, ""))
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "creating aws session")
	}
	return &S3Store{bucket: opts.Bucket, uploader: s3manager.NewUploader(sess)}, nil
}

func (s *S3Store) Put(ctx context.Context, key string, up core.Upload) (string, error) {
	input := &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   up.Content,
	}
	if up.ContentType != "" {
		input.ContentType = aws.String(up.ContentType)
	}

	out, err := s.uploader.UploadWithContext(ctx, input)
	if err != nil {
		return "", errors.Wrap(err, "uploading to s3")
	}
	return out.Location, nil
}
