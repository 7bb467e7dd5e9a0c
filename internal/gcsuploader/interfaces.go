package gcsuploader

import "context"

// StorageService moves message exports in and out of Cloud Storage.
type StorageService interface {
	// FetchFromGCS downloads the object named by a gs:// URI.
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)

	// UploadFile copies a local file to bucket/objectName.
	UploadFile(ctx context.Context, bucketName, objectName, filePath string) error
}

// GCSStorageService implements StorageService on a shared storage client.
type GCSStorageService struct {
	client *Client
}

// NewGCSStorageService wraps an open client.
func NewGCSStorageService(client *Client) *GCSStorageService {
	return &GCSStorageService{client: client}
}

func (s *GCSStorageService) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	return s.client.Fetch(ctx, gcsURI)
}

func (s *GCSStorageService) UploadFile(ctx context.Context, bucketName, objectName, filePath string) error {
	return s.client.UploadFile(ctx, bucketName, objectName, filePath)
}
