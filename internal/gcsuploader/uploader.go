// Package gcsuploader reads and writes SMS export files in Google Cloud Storage.
package gcsuploader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

const uploadTimeout = 2 * time.Minute

// Client holds one storage client for the life of the process.
type Client struct {
	storage *storage.Client
}

// NewClient opens a storage client using Application Default Credentials.
func NewClient(ctx context.Context) (*Client, error) {
	c, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewClient: creating storage client: %w", err)
	}
	return &Client{storage: c}, nil
}

func (c *Client) Close() error {
	return c.storage.Close()
}

// ParseURI splits gs://bucket/path/to/object into bucket and object name.
func ParseURI(gcsURI string) (bucket, object string, err error) {
	if !strings.HasPrefix(gcsURI, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", gcsURI)
	}
	parts := strings.SplitN(strings.TrimPrefix(gcsURI, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", gcsURI)
	}
	return parts[0], parts[1], nil
}

// URI is the inverse of ParseURI.
func URI(bucket, object string) string {
	return "gs://" + bucket + "/" + object
}

// Filename returns the last path element of a gs:// URI.
func Filename(gcsURI string) string {
	_, object, err := ParseURI(gcsURI)
	if err != nil {
		return strings.TrimPrefix(gcsURI, "gs://")
	}
	return path.Base(object)
}

// ExportObjectName places an uploaded export under a dated prefix,
// e.g. sms-exports/2026/02/15/inbox.json.
func ExportObjectName(now time.Time, filename string) string {
	return path.Join("sms-exports", now.Format("2006/01/02"), path.Base(filename))
}

// Fetch downloads the object named by gcsURI.
func (c *Client) Fetch(ctx context.Context, gcsURI string) ([]byte, error) {
	bucket, object, err := ParseURI(gcsURI)
	if err != nil {
		return nil, fmt.Errorf("Fetch: %w", err)
	}

	rc, err := c.storage.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading bytes: %w", err)
	}
	return data, nil
}

// UploadFile copies a local file to bucket/objectName.
func (c *Client) UploadFile(ctx context.Context, bucketName, objectName, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("UploadFile: open %q: %w", filePath, err)
	}
	defer f.Close()

	return c.upload(ctx, bucketName, objectName, f)
}

// UploadBytes writes data to bucket/objectName.
func (c *Client) UploadBytes(ctx context.Context, bucketName, objectName string, data []byte) error {
	return c.upload(ctx, bucketName, objectName, bytes.NewReader(data))
}

func (c *Client) upload(ctx context.Context, bucketName, objectName string, r io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := c.storage.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload: copy to %s/%s: %w", bucketName, objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("upload: finalize %s/%s: %w", bucketName, objectName, err)
	}
	return nil
}
