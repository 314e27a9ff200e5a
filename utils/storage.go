package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ObjectStorage is the seam between the reconciliation code and the storage
// provider. Handlers construct a GCSStorage; tests substitute an in-memory fake.
type ObjectStorage interface {
	// Upload writes data under objectKey and returns the public access URL.
	Upload(ctx context.Context, objectKey string, data []byte, contentType string) (string, error)
	// Remove deletes the object. Removing a missing object is not an error.
	Remove(ctx context.Context, objectKey string) error
	Exists(ctx context.Context, objectKey string) (bool, error)
}

type GCSStorage struct {
	bucket string
}

func NewGCSStorage() *GCSStorage {
	return &GCSStorage{bucket: os.Getenv("GCS_BUCKET")}
}

// getGoogleClient initializes a Google Cloud Storage client.
// Prefer ADC (Cloud Run service account / GOOGLE_APPLICATION_CREDENTIALS).
// If you need to provide explicit JSON (e.g. locally), set GCS_CREDENTIALS_JSON.
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		client, err := storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (s *GCSStorage) Upload(ctx context.Context, objectKey string, data []byte, contentType string) (string, error) {
	if s.bucket == "" {
		return "", errors.New("GCS_BUCKET is required")
	}

	client, err := getGoogleClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	wc := client.Bucket(s.bucket).Object(objectKey).NewWriter(ctx)
	wc.ContentType = contentType
	wc.Metadata = map[string]string{
		"x-goog-acl": "public-read",
	}

	if _, err := wc.Write(data); err != nil {
		return "", fmt.Errorf("failed to upload object to Google Cloud Storage: %v", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %v", err)
	}

	return BuildObjectAccessURL(objectKey), nil
}

func (s *GCSStorage) Remove(ctx context.Context, objectKey string) error {
	client, err := getGoogleClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	err = client.Bucket(s.bucket).Object(objectKey).Delete(ctx)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return nil
		}
		return err
	}
	return nil
}

func (s *GCSStorage) Exists(ctx context.Context, objectKey string) (bool, error) {
	client, err := getGoogleClient(ctx)
	if err != nil {
		return false, err
	}
	defer client.Close()

	// Attrs checks existence without downloading content
	_, err = client.Bucket(s.bucket).Object(objectKey).Attrs(ctx)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
