package cards

import "github.com/xaytheon/xaytheon-backend/internal/database"

// Locator looks up the public URL of a previously generated card without
// regenerating it, probing the same target list the Uploader writes to.
type Locator struct {
	blobs   database.BlobStore
	prober  Prober
	targets []Target
}

// NewLocator creates a new instance of Locator.
func NewLocator(blobs database.BlobStore, prober Prober, targets []Target) *Locator {
	return &Locator{blobs: blobs, prober: prober, targets: targets}
}

// Locate returns the first reachable card URL for (owner, id), or
// ("", false) when no target is serving one.
func (l *Locator) Locate(owner, id string) (string, bool) {
	for _, target := range l.targets {
		url := l.blobs.PublicURL(target.Bucket, target.path(owner, id))
		if url != "" && l.prober.Reachable(url) {
			return url, true
		}
	}
	return "", false
}
