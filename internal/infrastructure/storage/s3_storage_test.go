package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/motorshop/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeS3 serves path-style object requests for one bucket from memory
type fakeS3 struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	if len(parts) < 2 || parts[1] == "" {
		// Bucket level requests
		w.WriteHeader(http.StatusOK)
		return
	}
	key := parts[1]

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = body
		f.contentTypes[key] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if _, ok := f.objects[key]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		data, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", f.contentTypes[key])
		_, _ = w.Write(data)
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestS3(t *testing.T) (*S3ObjectStorage, *fakeS3) {
	t.Helper()
	t.Setenv("AWS_CONFIG_FILE", "/dev/null")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/dev/null")

	fake := &fakeS3{objects: map[string][]byte{}, contentTypes: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := NewS3ObjectStorage(&config.StorageConfig{
		Endpoint:        srv.URL,
		Region:          "ap-south-1",
		Bucket:          "invoices",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
	}, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return s, fake
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(&config.StorageConfig{AccessKeyID: "k", SecretAccessKey: "s"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing credentials return error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(&config.StorageConfig{Bucket: "b", AccessKeyID: "k"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret access key")
	})

	t.Run("endpoint without scheme gets https", func(t *testing.T) {
		s, err := NewS3ObjectStorage(&config.StorageConfig{
			Bucket: "b", AccessKeyID: "k", SecretAccessKey: "s", Endpoint: "minio.local:9000", UsePathStyle: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "b", s.Bucket())

		u, err := s.PresignGet(context.Background(), "invoices/a.pdf", time.Minute)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(u, "https://minio.local:9000/b/invoices/a.pdf?"), u)
	})
}

func TestS3ObjectStorage_PutGetExistsDelete(t *testing.T) {
	s, fake := newTestS3(t)
	ctx := context.Background()
	key := "invoices/tenant-1/INV-2026-00001.pdf"

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)

	require.NoError(t, s.Put(ctx, key, []byte("%PDF-1.4 body"), "application/pdf"))
	assert.Equal(t, []byte("%PDF-1.4 body"), fake.objects[key])
	assert.Equal(t, "application/pdf", fake.contentTypes[key])

	exists, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 body"), data)

	require.NoError(t, s.Delete(ctx, key))
	assert.NotContains(t, fake.objects, key)
}

func TestS3ObjectStorage_EnsureBucketExisting(t *testing.T) {
	s, _ := newTestS3(t)
	assert.NoError(t, s.EnsureBucket(context.Background()))
}

func TestS3ObjectStorage_EmptyKey(t *testing.T) {
	s, _ := newTestS3(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.Put(ctx, "", nil, ""), ErrEmptyKey)
	_, err := s.Get(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
	_, err = s.Exists(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.ErrorIs(t, s.Delete(ctx, ""), ErrEmptyKey)
	_, err = s.PresignGet(ctx, "", time.Minute)
	assert.ErrorIs(t, err, ErrEmptyKey)
}
