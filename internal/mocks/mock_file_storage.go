package mocks

import (
	"context"
	"time"

	"gymsync/backend/internal/storage"
)

// MockFileStorage implements storage.FileStorage for testing.
type MockFileStorage struct {
	GenerateUploadURLFunc   func(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error)
	GenerateDownloadURLFunc func(ctx context.Context, objectKey string, expires time.Duration) (string, error)
	DeleteObjectFunc        func(ctx context.Context, objectKey string) error

	DeletedKeys []string
}

func NewMockFileStorage() *MockFileStorage {
	return &MockFileStorage{}
}

func (m *MockFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	if m.GenerateUploadURLFunc != nil {
		return m.GenerateUploadURLFunc(ctx, objectKey, contentType, expires)
	}
	return "https://storage.test/upload/" + objectKey, nil
}

func (m *MockFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	if m.GenerateDownloadURLFunc != nil {
		return m.GenerateDownloadURLFunc(ctx, objectKey, expires)
	}
	return "https://storage.test/download/" + objectKey, nil
}

func (m *MockFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	m.DeletedKeys = append(m.DeletedKeys, objectKey)
	if m.DeleteObjectFunc != nil {
		return m.DeleteObjectFunc(ctx, objectKey)
	}
	return nil
}

var _ storage.FileStorage = (*MockFileStorage)(nil)
