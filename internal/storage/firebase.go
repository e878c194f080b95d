// ===============================
// internal/storage/firebase.go - Firebase Storage bucket
// ===============================

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	gcs "cloud.google.com/go/storage"
	fbstorage "firebase.google.com/go/v4/storage"
	"github.com/google/uuid"
)

// FirebaseBucket stores objects in the project's default bucket and hands out
// tokenized download URLs, the same URLs the Firebase client SDKs produce.
type FirebaseBucket struct {
	bucket *gcs.BucketHandle
	name   string
}

func NewFirebaseBucket(client *fbstorage.Client, bucketName string) (*FirebaseBucket, error) {
	if bucketName == "" {
		return nil, errors.New("FIREBASE_STORAGE_BUCKET is required for the firebase storage driver")
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %s: %w", bucketName, err)
	}
	return &FirebaseBucket{bucket: bucket, name: bucketName}, nil
}

func (b *FirebaseBucket) Upload(ctx context.Context, objectPath, contentType string, body io.Reader) (string, error) {
	token := uuid.New().String()

	w := b.bucket.Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{"firebaseStorageDownloadTokens": token}

	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to upload %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectPath, err)
	}

	return DownloadURL(b.name, objectPath, token), nil
}

func (b *FirebaseBucket) Delete(ctx context.Context, objectPath string) error {
	err := b.bucket.Object(objectPath).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete %s: %w", objectPath, err)
	}
	return nil
}

// DownloadURL builds a firebasestorage.googleapis.com media link
func DownloadURL(bucket, objectPath, token string) string {
	u := fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media",
		bucket, url.PathEscape(objectPath))
	if token != "" {
		u += "&token=" + url.QueryEscape(token)
	}
	return u
}
