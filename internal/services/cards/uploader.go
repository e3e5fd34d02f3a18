package cards

import (
	"fmt"
	"log"

	"github.com/xaytheon/xaytheon-backend/internal/database"
)

// FailureKind classifies how card persistence went wrong.
// "uploaded_unreachable" means the storage call succeeded but the public
// URL never confirmed serving, which callers report differently from an
// outright upload failure.
type FailureKind string

const (
	FailureNone        FailureKind = ""
	FailureUpload      FailureKind = "upload_failed"
	FailureUnreachable FailureKind = "uploaded_unreachable"
)

// UploadResult is the structured outcome of persisting a card. SVG always
// carries the rendered bytes so a caller can offer a manual download when
// every remote path failed.
type UploadResult struct {
	URL     string
	Failure FailureKind
	Message string
	SVG     []byte
}

// Target is one candidate storage location for a card.
type Target struct {
	Bucket string
	// PathFormat takes owner and contribution id, in that order.
	PathFormat string
}

func (t Target) path(owner, id string) string {
	return fmt.Sprintf(t.PathFormat, owner, id)
}

// DefaultTargets returns the ordered sink list: the dedicated card bucket
// first, then the screenshot bucket under a cards/ prefix.
func DefaultTargets(cardBucket, screenshotBucket string) []Target {
	return []Target{
		{Bucket: cardBucket, PathFormat: "%s/%s.svg"},
		{Bucket: screenshotBucket, PathFormat: "cards/%s/%s.svg"},
	}
}

// Uploader persists rendered cards, trying each target in order.
type Uploader struct {
	blobs   database.BlobStore
	prober  Prober
	targets []Target
}

// NewUploader creates a new instance of Uploader.
func NewUploader(blobs database.BlobStore, prober Prober, targets []Target) *Uploader {
	return &Uploader{blobs: blobs, prober: prober, targets: targets}
}

// Upload writes the card to the first target that accepts it, resolves
// the public URL and verifies it is serving. All failures come back as a
// structured result; this never panics or returns an error.
func (u *Uploader) Upload(owner, id string, svg []byte) UploadResult {
	var lastErr error
	for _, target := range u.targets {
		path := target.path(owner, id)
		if err := u.blobs.Upload(target.Bucket, path, svg, "image/svg+xml", true); err != nil {
			lastErr = err
			log.Printf("Uploader Info: upload to %s/%s failed, trying next target: %v", target.Bucket, path, err)
			continue
		}

		url := u.blobs.PublicURL(target.Bucket, path)
		if !u.prober.Reachable(url) {
			log.Printf("Uploader Error: card stored at %s/%s but public URL not confirmed serving", target.Bucket, path)
			return UploadResult{
				URL:     url,
				Failure: FailureUnreachable,
				Message: "card uploaded but its public URL is not serving; check that the bucket is public",
				SVG:     svg,
			}
		}
		return UploadResult{URL: url, SVG: svg}
	}

	msg := "card upload failed on every storage target; download the SVG manually instead"
	if lastErr != nil {
		msg = fmt.Sprintf("%s (last error: %v)", msg, lastErr)
	}
	return UploadResult{Failure: FailureUpload, Message: msg, SVG: svg}
}
