package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salemre/backend/internal/config"
)

func TestNewNameKeepsExtension(t *testing.T) {
	id, name := NewName("Front View.JPG")
	assert.Len(t, id, 36)
	assert.Equal(t, id+".jpg", name)
	assert.True(t, ValidName(name))
	assert.True(t, ValidName(ThumbnailName(name)))
	assert.Equal(t, "thumb-"+id+".jpg", ThumbnailName(name))
}

func TestNewNameDropsOddExtensions(t *testing.T) {
	id, name := NewName("archive.tar.gz?x=1")
	assert.Equal(t, id, name)
}

func TestValidNameRejectsTraversal(t *testing.T) {
	assert.False(t, ValidName("../etc/passwd"))
	assert.False(t, ValidName(""))
	assert.False(t, ValidName("not-a-uuid.png"))
}

// fakeS3 is a minimal path-style object server.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = body
		f.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", f.types[r.URL.Path])
		_, _ = w.Write(body)
	case http.MethodDelete:
		delete(f.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestS3(t *testing.T) (*S3Storage, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		AwsRegion:          "us-east-1",
		AwsAccessKeyID:     "test",
		AwsSecretAccessKey: "test",
		AwsS3Bucket:        "images",
		AwsS3Endpoint:      srv.URL,
		ImageBaseS3URL:     "https://cdn.example.com/",
	}
	client, err := NewS3Client(context.Background(), cfg)
	require.NoError(t, err)
	return NewS3Storage(client, cfg), fake
}

func TestS3PutOpenDelete(t *testing.T) {
	ctx := context.Background()
	s, fake := newTestS3(t)

	url, err := s.Put(ctx, "a.png", "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/uploads/a.png", url)
	assert.Contains(t, fake.objects, "/images/uploads/a.png")

	rc, contentType, err := s.Open(ctx, "a.png")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "png-bytes", string(data))
	assert.True(t, strings.HasPrefix(contentType, "image/png"))

	require.NoError(t, s.Delete(ctx, "a.png"))
	_, _, err = s.Open(ctx, "a.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3DefaultURL(t *testing.T) {
	s := NewS3Storage(nil, &config.Config{AwsS3Bucket: "b", AwsRegion: "eu-west-1"})
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com/uploads/x.jpg", s.URL("x.jpg"))
}
