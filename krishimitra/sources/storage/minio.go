package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"krishimitra/krishimitra/config"
)

// ImageStore archives pest/disease photos before they are relayed to the
// detection backend, so a misdiagnosis can be investigated later.
type ImageStore struct {
	client *minio.Client
	bucket string
}

func NewImageStore(cfg config.Config) (*ImageStore, error) {
	if cfg.MinIOEndpoint == "" {
		return nil, nil
	}
	client, err := minio.New(
		cfg.MinIOEndpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: false,
		},
	)
	if err != nil {
		return nil, err
	}
	exists, err := client.BucketExists(context.Background(), cfg.MinIOBucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}
	return &ImageStore{client: client, bucket: cfg.MinIOBucket}, nil
}

// SaveUpload stores the raw image bytes keyed by content hash and day, and
// returns the object key. A nil store is a no-op.
func (s *ImageStore) SaveUpload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if s == nil {
		return "", nil
	}
	hash := fmt.Sprintf("%x", md5.Sum(data))
	key := filepath.Join("uploads", time.Now().Format("2006-01-02"), hash+filepath.Ext(filename))

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	return key, nil
}
