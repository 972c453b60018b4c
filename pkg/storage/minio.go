// Package storage ships debug rasters to an S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"path"
	"time"

	"github.com/disintegration/imaging"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// Prefix is prepended to every object name.
	Prefix string
}

type putter interface {
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinioSink implements ocr.DebugSink.
type MinioSink struct {
	client putter
	bucket string
	prefix string
	now    func() time.Time
}

// NewMinioSink connects to the endpoint and verifies the bucket exists.
func NewMinioSink(ctx context.Context, opts Options) (*MinioSink, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", opts.Bucket)
	}
	return &MinioSink{client: client, bucket: opts.Bucket, prefix: opts.Prefix, now: time.Now}, nil
}

// objectName lays objects out as {prefix}/YYYY/MM/DD/{name}.
func (s *MinioSink) objectName(name string) string {
	t := s.now()
	day := fmt.Sprintf("%d/%02d/%02d", t.Year(), t.Month(), t.Day())
	return path.Join(s.prefix, day, name)
}

func (s *MinioSink) SaveDebug(ctx context.Context, name string, img image.Image) error {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	object := s.objectName(name)
	_, err := s.client.PutObject(ctx, s.bucket, object, &buf, int64(buf.Len()), minio.PutObjectOptions{
		ContentType: "image/png",
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", object, err)
	}
	return nil
}
