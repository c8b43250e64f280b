package faq

import (
	"context"
	"io"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig connection info for a s3 compatible object storage
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
}

// MinioSource reads the faq document from an object on every Load
type MinioSource struct {
	bucket, key string
	format      Format
	fetch       func(ctx context.Context) (io.ReadCloser, error)
}

// NewMinioSource create new object storage source
func NewMinioSource(cfg MinioConfig, bucket, key string) (*MinioSource, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("minio endpoint is empty")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, errors.Wrap(err, "new minio client")
	}

	s := &MinioSource{
		bucket: bucket,
		key:    key,
		format: FormatFromPath(key),
	}
	s.fetch = func(ctx context.Context) (io.ReadCloser, error) {
		obj, err := cli.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
		if err != nil {
			return nil, errors.Wrap(err, "get object")
		}

		return obj, nil
	}

	return s, nil
}

// Load downloads and parses the object
func (s *MinioSource) Load(ctx context.Context) LoadResult {
	body, err := s.fetch(ctx)
	if err != nil {
		return unavailable(errors.Wrapf(err, "fetch s3://%s/%s", s.bucket, s.key))
	}
	defer body.Close() // nolint: errcheck

	raw, err := io.ReadAll(body)
	if err != nil {
		return unavailable(errors.Wrapf(err, "read s3://%s/%s", s.bucket, s.key))
	}

	entries, err := Parse(raw, s.format)
	if err != nil {
		return malformed(errors.Wrapf(err, "parse s3://%s/%s", s.bucket, s.key))
	}

	return loaded(entries)
}
