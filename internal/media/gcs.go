package media

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const publicStorageHost = "https://storage.googleapis.com"

// GCSStore uploads objects to a Cloud Storage bucket and returns their
// public URL.
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore authenticates with the service account key at credentialsFile,
// or with application default credentials when it is empty.
func NewGCSStore(ctx context.Context, bucket string, credentialsFile string, opts ...option.ClientOption) (*GCSStore, error) {
	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); err != nil {
			return nil, fmt.Errorf("service account key not readable at %s: %w", credentialsFile, err)
		}
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func (store *GCSStore) Put(ctx context.Context, folder string, filename string, body io.Reader) (string, error) {
	name, contentType, err := ObjectName(folder, filename)
	if err != nil {
		return "", err
	}

	writer := store.client.Bucket(store.bucket).Object(name).NewWriter(ctx)
	writer.ContentType = contentType
	writer.CacheControl = "public, max-age=31536000, immutable"
	if _, err := io.Copy(writer, body); err != nil {
		writer.Close()
		return "", fmt.Errorf("upload %s to gs://%s: %w", name, store.bucket, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finish upload %s to gs://%s: %w", name, store.bucket, err)
	}
	return fmt.Sprintf("%s/%s/%s", publicStorageHost, store.bucket, name), nil
}

func (store *GCSStore) Close() error {
	return store.client.Close()
}
