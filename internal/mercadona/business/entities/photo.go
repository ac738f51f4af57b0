package entities

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"
)

// PhotoBaseURL is the imgix CDN prefix serving product images.
const PhotoBaseURL = "https://prod-mercadona.imgix.net/images/"

// Photo is an immutable reference to a product image on the CDN. It is
// a value object: no lazy loading, no context binding.
type Photo struct {
	fileName string
	client   *http.Client
}

// NewPhoto accepts either a bare file name
// ("cea11c6ef934dff6c6a018df3b757b8d.jpg") or a full URL, which is
// stripped down to its path's base name.
func NewPhoto(fileNameOrURL string) *Photo {
	fileName := fileNameOrURL
	if parsed, err := url.Parse(fileNameOrURL); err == nil {
		switch parsed.Scheme {
		case "http", "https", "ftp":
			fileName = path.Base(parsed.Path)
		}
	}
	return &Photo{
		fileName: fileName,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *Photo) FileName() string {
	return p.fileName
}

func (p *Photo) URL() string {
	return PhotoBaseURL + p.fileName
}

// Sized returns the CDN URL for a resized variant. fitMode is "crop" or
// "fit"; imgix does the actual resizing.
func (p *Photo) Sized(width, height int, fitMode string) string {
	if fitMode == "" {
		fitMode = "crop"
	}
	return fmt.Sprintf("%s?fit=%s&h=%d&w=%d", p.URL(), fitMode, height, width)
}

// Save downloads the photo at its original size to the given path,
// creating parent directories as needed.
func (p *Photo) Save(ctx context.Context, destination string) error {
	return p.download(ctx, p.URL(), destination)
}

// SaveSized downloads a resized variant of the photo.
func (p *Photo) SaveSized(ctx context.Context, destination string, width, height int, fitMode string) error {
	return p.download(ctx, p.Sized(width, height, fitMode), destination)
}

func (p *Photo) download(ctx context.Context, photoURL, destination string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, photoURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("non-OK status: %d", resp.StatusCode)
	}

	if dir := filepath.Dir(destination); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	file, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", destination, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return fmt.Errorf("failed to write photo to %s: %w", destination, err)
	}
	return nil
}
