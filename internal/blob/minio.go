package blob

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore keeps uploads as objects in a MinIO bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		log.Printf("Created bucket: %s", bucket)
	}

	return &MinioStore{client: client, bucket: bucket}, nil
}

func (m *MinioStore) Save(r io.Reader, size int64, name, contentType string) error {
	_, err := m.client.PutObject(
		context.Background(),
		m.bucket,
		name,
		r,
		size,
		minio.PutObjectOptions{ContentType: contentType},
	)
	return err
}

func (m *MinioStore) Open(name string) (io.ReadCloser, error) {
	return m.client.GetObject(context.Background(), m.bucket, name, minio.GetObjectOptions{})
}

func (m *MinioStore) Remove(name string) error {
	return m.client.RemoveObject(context.Background(), m.bucket, name, minio.RemoveObjectOptions{})
}

func (m *MinioStore) URL(name string) string {
	return "/files/" + name
}
