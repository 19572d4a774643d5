package document

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cvassistant/backend/internal/domain/shared"
	"github.com/cvassistant/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockObjectStore is a mock implementation of ObjectStore
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) PutObject(ctx context.Context, key string, body []byte, contentType string, metadata map[string]string) error {
	args := m.Called(ctx, key, body, contentType, metadata)
	return args.Error(0)
}

func (m *MockObjectStore) ObjectURL(key string) string {
	return m.Called(key).String(0)
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

func TestUploadService_Upload(t *testing.T) {
	store := storage.NewMemoryObjectStorage("cv-bucket")
	svc := NewUploadService(store, "uploads/dev/", zaptest.NewLogger(t))
	svc.now = fixedNow

	result, err := svc.Upload(context.Background(), UploadRequest{
		Content:     []byte("%PDF-1.7"),
		Filename:    "My Resume.PDF",
		ContentType: "application/pdf",
		Category:    strPtr("Data Scientist"),
	})
	require.NoError(t, err)

	assert.Equal(t, "uploads/dev/my_resume.pdf", result.Key)
	assert.Equal(t, "my_resume.pdf", result.Filename)
	assert.Equal(t, store.ObjectURL("uploads/dev/my_resume.pdf"), result.URL)
	assert.Equal(t, 2, store.Len())

	obj, ok := store.Object("uploads/dev/my_resume.pdf")
	require.True(t, ok)
	assert.Equal(t, []byte("%PDF-1.7"), obj.Body)
	assert.Equal(t, "application/pdf", obj.ContentType)
	assert.Equal(t, map[string]string{
		MetaOriginalFilename: "my_resume.pdf",
		MetaUploadedAt:       "2026-03-14T09:26:53Z",
	}, obj.Metadata)

	sidecar, ok := store.Object("uploads/dev/my_resume.pdf.metadata.json")
	require.True(t, ok)
	assert.Equal(t, "application/json", sidecar.ContentType)
	assert.JSONEq(t, `{"metadataAttributes":{"category":"Data Scientist"}}`, string(sidecar.Body))
}

func TestUploadService_Upload_NonASCIIFilenameMetadata(t *testing.T) {
	store := storage.NewMemoryObjectStorage("cv-bucket")
	svc := NewUploadService(store, "uploads/dev/", nil)

	result, err := svc.Upload(context.Background(), UploadRequest{
		Content:  []byte("%PDF-1.7"),
		Filename: "Ünïcödé Résumé.PDF",
		Category: strPtr("Legal Counsel"),
	})
	require.NoError(t, err)
	assert.Equal(t, "uploads/dev/ncd_rsum.pdf", result.Key)

	obj, ok := store.Object(result.Key)
	require.True(t, ok)
	assert.Equal(t, "ncd_rsum.pdf", obj.Metadata[MetaOriginalFilename])
}

func TestUploadService_Upload_DefaultContentTypeAndNullCategory(t *testing.T) {
	store := storage.NewMemoryObjectStorage("")
	svc := NewUploadService(store, "", nil)

	_, err := svc.Upload(context.Background(), UploadRequest{Content: []byte("hi"), Filename: "notes.txt"})
	require.NoError(t, err)

	obj, ok := store.Object("notes.txt")
	require.True(t, ok)
	assert.Equal(t, "application/octet-stream", obj.ContentType)

	sidecar, ok := store.Object("notes.txt.metadata.json")
	require.True(t, ok)
	assert.JSONEq(t, `{"metadataAttributes":{"category":null}}`, string(sidecar.Body))
}

func TestUploadService_Upload_SameNameOverwrites(t *testing.T) {
	store := storage.NewMemoryObjectStorage("cv-bucket")
	svc := NewUploadService(store, "", nil)

	for _, body := range []string{"first", "second"} {
		_, err := svc.Upload(context.Background(), UploadRequest{Content: []byte(body), Filename: "CV.pdf"})
		require.NoError(t, err)
	}

	obj, _ := store.Object("cv.pdf")
	assert.Equal(t, []byte("second"), obj.Body)
	assert.Equal(t, 2, store.Len())
}

func TestUploadService_Upload_RejectsExtension(t *testing.T) {
	store := new(MockObjectStore)
	svc := NewUploadService(store, "", nil)

	_, err := svc.Upload(context.Background(), UploadRequest{Content: []byte("MZ"), Filename: "resume.exe"})
	require.Error(t, err)
	assert.True(t, shared.IsInvalidInput(err))
	assert.Equal(t, "Allowed file types: .pdf, .docx, .txt, .doc", err.Error())
	store.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadService_Upload_DocumentWriteFails(t *testing.T) {
	store := new(MockObjectStore)
	svc := NewUploadService(store, "", nil)

	store.On("PutObject", mock.Anything, "cv.pdf", mock.Anything, "application/pdf", mock.Anything).
		Return(errors.New("AccessDenied")).Once()

	_, err := svc.Upload(context.Background(), UploadRequest{Content: []byte("x"), Filename: "cv.pdf", ContentType: "application/pdf"})
	require.Error(t, err)
	assert.False(t, shared.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "AccessDenied")
	store.AssertNumberOfCalls(t, "PutObject", 1)
}

func TestUploadService_Upload_SidecarFailureLeavesDocument(t *testing.T) {
	store := new(MockObjectStore)
	svc := NewUploadService(store, "", nil)

	store.On("PutObject", mock.Anything, "cv.pdf", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	store.On("PutObject", mock.Anything, "cv.pdf.metadata.json", mock.Anything, "application/json", mock.Anything).
		Return(errors.New("SlowDown")).Once()

	_, err := svc.Upload(context.Background(), UploadRequest{Content: []byte("x"), Filename: "cv.pdf", Category: strPtr("DevOps")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metadata sidecar")
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "ObjectURL", mock.Anything)
}
