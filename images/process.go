package images

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const maxDownloadBytes = 32 << 20

// Processor downloads generated images and re-encodes them as WebP.
type Processor struct {
	client   *http.Client
	maxWidth int
	quality  float32
}

func NewProcessor(client *http.Client, maxWidth int, quality float32) *Processor {
	if client == nil {
		client = http.DefaultClient
	}
	return &Processor{client: client, maxWidth: maxWidth, quality: quality}
}

// Fetch downloads url and returns the re-encoded WebP bytes.
func (p *Processor) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download image: status %d", resp.StatusCode)
	}
	return Encode(io.LimitReader(resp.Body, maxDownloadBytes), p.maxWidth, p.quality)
}

// Encode decodes any supported raster format, shrinks it to maxWidth keeping
// the aspect ratio, and encodes it as lossy WebP. Narrower images are not
// upscaled.
func Encode(r io.Reader, maxWidth int, quality float32) ([]byte, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}
