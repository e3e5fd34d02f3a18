package cards

import (
	"net/http"
	"time"
)

// Prober checks whether a public URL is actually serving. Upload success
// alone is not enough: a card in a non-public bucket resolves to a URL
// that returns 400, so reachability gets its own check.
type Prober interface {
	Reachable(url string) bool
}

// HTTPProber probes with a HEAD request.
type HTTPProber struct {
	httpClient *http.Client
}

// NewHTTPProber creates a new instance of HTTPProber.
func NewHTTPProber() *HTTPProber {
	return &HTTPProber{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Reachable reports whether a HEAD request to the URL succeeds.
func (p *HTTPProber) Reachable(url string) bool {
	resp, err := p.httpClient.Head(url)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 400
}
