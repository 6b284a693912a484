// Package gcsuploader moves statement files in and out of Google Cloud Storage.
package gcsuploader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// uploadTimeout bounds a single object upload.
const uploadTimeout = 2 * time.Minute

// StorageService uploads and fetches statement objects.
type StorageService interface {
	// UploadFile uploads a local file and returns its gs:// URI.
	UploadFile(ctx context.Context, bucketName, objectName, filePath string) (string, error)
	// FetchFromGCS downloads the bytes behind a gs:// URI.
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)
}

// GCSStorageService is the StorageService backed by Cloud Storage.
// A nil client makes every call open and close its own client.
type GCSStorageService struct {
	client *storage.Client
}

// NewGCSStorageService creates a service that shares client across calls.
func NewGCSStorageService(client *storage.Client) *GCSStorageService {
	return &GCSStorageService{client: client}
}

// UploadFile implements StorageService.
func (s *GCSStorageService) UploadFile(ctx context.Context, bucketName, objectName, filePath string) (string, error) {
	if s.client == nil {
		return UploadFile(ctx, bucketName, objectName, filePath)
	}
	return UploadFileWithClient(ctx, s.client, bucketName, objectName, filePath)
}

// FetchFromGCS implements StorageService.
func (s *GCSStorageService) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	if s.client == nil {
		return FetchFromGCS(ctx, gcsURI)
	}
	return FetchFromGCSWithClient(ctx, s.client, gcsURI)
}

// Fetch lets the service act as a document source for the parser.
func (s *GCSStorageService) Fetch(ctx context.Context, gcsURI string) ([]byte, error) {
	return s.FetchFromGCS(ctx, gcsURI)
}

// UploadFile uploads a local file to a GCS bucket under the given object name.
// It assumes Application Default Credentials are configured.
func UploadFile(ctx context.Context, bucketName, objectName, filePath string) (string, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	return UploadFileWithClient(ctx, client, bucketName, objectName, filePath)
}

// UploadFileWithClient uploads a local file using the provided client.
func UploadFileWithClient(ctx context.Context, client *storage.Client, bucketName, objectName, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open file %q: %w", filePath, err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	w.ContentType = ContentType(filePath)

	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy file to GCS writer: %w", err)
	}

	// Close to finalize the upload
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", bucketName, objectName), nil
}

// FetchFromGCS downloads the file bytes from the given GCS URI.
func FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	if _, _, err := ParseURI(gcsURI); err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetchFromGCS: creating storage client: %w", err)
	}
	defer client.Close()

	return FetchFromGCSWithClient(ctx, client, gcsURI)
}

// FetchFromGCSWithClient downloads the file bytes using the provided client.
func FetchFromGCSWithClient(ctx context.Context, client *storage.Client, gcsURI string) ([]byte, error) {
	bucketName, objectPath, err := ParseURI(gcsURI)
	if err != nil {
		return nil, err
	}

	rc, err := client.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetchFromGCS: reading object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("fetchFromGCS: reading bytes: %w", err)
	}

	return data, nil
}

// IsGCSURI reports whether s names a Cloud Storage object.
func IsGCSURI(s string) bool {
	return strings.HasPrefix(s, "gs://")
}

// ParseURI splits gs://bucket/path/to/object into bucket and object path.
func ParseURI(gcsURI string) (bucket, object string, err error) {
	if !IsGCSURI(gcsURI) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", gcsURI)
	}
	parts := strings.SplitN(strings.TrimPrefix(gcsURI, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", gcsURI)
	}
	return parts[0], parts[1], nil
}

// ExtractFilenameFromGCSURI extracts the filename from a GCS URI.
// e.g., "gs://bucket/folder/file.pdf" → "file.pdf"
func ExtractFilenameFromGCSURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}

// StatementObjectName is the default object name for an uploaded statement:
// statements/YYYY/MM/DD/<file name>.
func StatementObjectName(filePath string, now time.Time) string {
	return path.Join("statements", now.UTC().Format("2006/01/02"), path.Base(strings.ReplaceAll(filePath, "\\", "/")))
}

// ContentType guesses the MIME type of a statement file from its extension.
func ContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
