package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/krishkalaria12/imagehost/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	key, filename := OriginalKey("user-1", "png")
	assert.True(t, strings.HasPrefix(key, "images/user-1/"))
	assert.True(t, strings.HasSuffix(key, "/"+filename))
	assert.True(t, strings.HasSuffix(filename, ".png"))

	derived := TransformedKey("user-1", "webp")
	assert.True(t, strings.HasPrefix(derived, "images/user-1/transformed/"))
	assert.True(t, strings.HasSuffix(derived, ".webp"))
	assert.NotEqual(t, derived, TransformedKey("user-1", "webp"))
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/images/a.png", publicURL("https://cdn.example.com/", "images/a.png"))
	assert.Equal(t, "https://cdn.example.com/images/a.png", publicURL("https://cdn.example.com", "images/a.png"))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("https://cdn.example.com")

	url, err := s.Put(ctx, []byte("abc"), "images/u/x.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/images/u/x.png", url)
	assert.Equal(t, "image/png", s.ContentType("images/u/x.png"))

	data, err := s.Get(ctx, "images/u/x.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)

	require.NoError(t, s.Delete(ctx, "images/u/x.png"))
	_, err = s.Get(ctx, "images/u/x.png")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.Equal(t, 0, s.Len())
}

// fakeS3 serves path-style PUT, GET and DELETE for one bucket.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.TrimPrefix(r.URL.Path, "/bucket/")
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = body
		f.types[key] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", f.types[key])
		_, _ = w.Write(body)
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3Store(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx := context.Background()
	s, err := NewS3Store(ctx, config.StorageConfig{
		Bucket:            "bucket",
		S3Endpoint:        srv.URL,
		S3Region:          "us-east-1",
		S3AccessKeyID:     "key",
		S3SecretAccessKey: "secret",
	})
	require.NoError(t, err)

	url, err := s.Put(ctx, []byte("pixels"), "images/u/a.jpeg", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/bucket/images/u/a.jpeg", url)
	assert.Equal(t, "image/jpeg", fake.types["images/u/a.jpeg"])

	data, err := s.Get(ctx, "images/u/a.jpeg")
	require.NoError(t, err)
	assert.Equal(t, []byte("pixels"), data)

	require.NoError(t, s.Delete(ctx, "images/u/a.jpeg"))
	_, err = s.Get(ctx, "images/u/a.jpeg")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)

	s, err := New(context.Background(), config.StorageConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
}
