package entities

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPhotoNormalizesURLs(t *testing.T) {
	cases := map[string]string{
		"abc123.jpg": "abc123.jpg",
		"https://prod-mercadona.imgix.net/images/abc123.jpg": "abc123.jpg",
		"https://example.com/deep/path/photo.png?w=100":      "photo.png",
	}
	for input, expected := range cases {
		assert.Equal(t, expected, NewPhoto(input).FileName(), "input %q", input)
	}
}

func TestPhotoURLTemplating(t *testing.T) {
	photo := NewPhoto("abc123.jpg")

	assert.Equal(t, "https://prod-mercadona.imgix.net/images/abc123.jpg", photo.URL())
	assert.Equal(t,
		"https://prod-mercadona.imgix.net/images/abc123.jpg?fit=crop&h=300&w=200",
		photo.Sized(200, 300, ""))
	assert.Equal(t,
		"https://prod-mercadona.imgix.net/images/abc123.jpg?fit=fit&h=50&w=80",
		photo.Sized(80, 50, "fit"))
}

func TestPhotoSaveWritesFile(t *testing.T) {
	content := []byte("jpeg-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer server.Close()

	photo := NewPhoto("abc123.jpg")
	destination := filepath.Join(t.TempDir(), "nested", "photo.jpg")
	require.NoError(t, photo.download(context.Background(), server.URL, destination))

	written, err := os.ReadFile(destination)
	require.NoError(t, err)
	assert.Equal(t, content, written)
}

func TestPhotoSaveRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	photo := NewPhoto("missing.jpg")
	destination := filepath.Join(t.TempDir(), "photo.jpg")
	err := photo.download(context.Background(), server.URL, destination)
	require.Error(t, err)
	assert.NoFileExists(t, destination)
}
