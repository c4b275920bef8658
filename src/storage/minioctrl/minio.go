package minioctrl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	DefaultBucket = "csv-datasets"

	// URLScheme prefixes object references accepted by ParseObjectURL
	URLScheme = "minio://"
)

type MinioService struct {
	client *minio.Client
}

func NewMinioService(endpoint, accessKeyID, secretAccessKey string, useSSL bool) (*MinioService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioService{
		client: client,
	}, nil
}

func (s *MinioService) EnsureBucketExists(ctx context.Context, bucketName string) error {
	exists, err := s.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

func (s *MinioService) GetObject(ctx context.Context, bucketName, objectName string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object data: %w", err)
	}

	return data, nil
}

func (s *MinioService) PutObject(ctx context.Context, bucketName, objectName string, data []byte) error {
	_, err := s.client.PutObject(ctx, bucketName, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: ContentType(objectName),
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}

	return nil
}

// ContentType guesses the stored content type from the object name
func ContentType(objectName string) string {
	switch strings.ToLower(path.Ext(objectName)) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// ParseObjectURL splits minio://bucket/object into its parts
func ParseObjectURL(minioURL string) (bucket, object string, ok bool) {
	if !strings.HasPrefix(minioURL, URLScheme) {
		return "", "", false
	}
	parts := strings.SplitN(strings.TrimPrefix(minioURL, URLScheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Archive stores session files under one bucket
type Archive struct {
	svc    *MinioService
	bucket string
}

func NewArchive(ctx context.Context, svc *MinioService, bucket string) (*Archive, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	if err := svc.EnsureBucketExists(ctx, bucket); err != nil {
		return nil, err
	}
	return &Archive{svc: svc, bucket: bucket}, nil
}

func (a *Archive) Put(ctx context.Context, key string, data []byte) error {
	return a.svc.PutObject(ctx, a.bucket, key, data)
}
