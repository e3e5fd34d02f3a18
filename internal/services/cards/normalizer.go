package cards

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"log"
	"math"
	"net/http"
	"time"

	xdraw "golang.org/x/image/draw"
)

const (
	// Screenshots at or under this size are inlined as-is.
	maxInlineBytes = 600 * 1024
	// Larger screenshots are downscaled so neither dimension exceeds this.
	maxDimension = 800
	jpegQuality  = 85
	// Hard cap on the fetch so a hostile URL cannot exhaust memory.
	maxFetchBytes = 8 << 20
)

// Normalizer turns a remote screenshot into a data URI that can be
// embedded into the card SVG. Everything here is best effort: card
// generation must proceed without an image when normalization fails.
type Normalizer struct {
	httpClient *http.Client
}

// NewNormalizer creates a new instance of Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Normalize fetches the screenshot and returns it as a data URI.
// Small images are inlined untouched; large ones are decoded, downscaled
// uniformly to at most 800px on the larger side and re-encoded as JPEG.
// Any fetch or decode problem returns ("", false) instead of an error.
func (n *Normalizer) Normalize(rawURL string) (string, bool) {
	if rawURL == "" {
		return "", false
	}

	resp, err := n.httpClient.Get(rawURL)
	if err != nil {
		log.Printf("Normalizer Info: screenshot fetch failed, card will have no image: %v", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Normalizer Info: screenshot fetch returned status %d", resp.StatusCode)
		return "", false
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil || int64(len(data)) > maxFetchBytes {
		log.Printf("Normalizer Info: screenshot body unreadable or over %d bytes", maxFetchBytes)
		return "", false
	}

	if len(data) <= maxInlineBytes {
		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}
		return dataURI(contentType, data), true
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Printf("Normalizer Info: screenshot decode failed: %v", err)
		return "", false
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return "", false
	}

	scale := 1.0
	if w > maxDimension || h > maxDimension {
		scale = float64(maxDimension) / float64(max(w, h))
	}
	dw := max(1, int(math.Round(float64(w)*scale)))
	dh := max(1, int(math.Round(float64(h)*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		log.Printf("Normalizer Info: screenshot re-encode failed: %v", err)
		return "", false
	}
	return dataURI("image/jpeg", buf.Bytes()), true
}

func dataURI(contentType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}
