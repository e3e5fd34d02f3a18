package cards

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNormalize_SmallImageInlinedDirectly checks that anything at or
// under the inline threshold comes back byte-identical, without decoding.
func TestNormalize_SmallImageInlinedDirectly(t *testing.T) {
	payload := []byte("tiny-but-not-even-a-real-image")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(payload)
	}))
	defer srv.Close()

	uri, ok := NewNormalizer().Normalize(srv.URL)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

// TestNormalize_LargeImageDownscaled feeds a noise PNG well over the
// threshold and expects a JPEG whose larger dimension is capped at 800
// with the aspect ratio preserved.
func TestNormalize_LargeImageDownscaled(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1200, 900))
	rng := rand.New(rand.NewSource(1))
	for y := 0; y < 900; y++ {
		for x := 0; x < 1200; x++ {
			src.Set(x, y, color.RGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))
	require.Greater(t, buf.Len(), maxInlineBytes, "noise PNG must exceed the inline threshold")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	uri, ok := NewNormalizer().Normalize(srv.URL)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/jpeg;base64,"))
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 600, cfg.Height)
}

func TestNormalize_FetchFailureReturnsNoImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	n := NewNormalizer()

	_, ok := n.Normalize(srv.URL)
	assert.False(t, ok)

	_, ok = n.Normalize("")
	assert.False(t, ok)

	_, ok = n.Normalize("http://127.0.0.1:1/nope")
	assert.False(t, ok)
}

// TestNormalize_UndecodableLargeBlob checks that a big blob that is not
// an image degrades to "no image" instead of an error.
func TestNormalize_UndecodableLargeBlob(t *testing.T) {
	blob := bytes.Repeat([]byte("x"), maxInlineBytes+1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(blob)
	}))
	defer srv.Close()

	_, ok := NewNormalizer().Normalize(srv.URL)
	assert.False(t, ok)
}
