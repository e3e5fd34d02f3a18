package contributions

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaytheon/xaytheon-backend/internal/models"
	"github.com/xaytheon/xaytheon-backend/internal/services/cards"
)

const fakeBaseURL = "https://example.supabase.co/storage/v1/object/public"

type fakeRepo struct {
	rows    []models.Contribution
	nextID  int
	lastIns *models.NewContribution
}

func (f *fakeRepo) Insert(rec models.NewContribution) (*models.Contribution, error) {
	f.nextID++
	f.lastIns = &rec
	row := models.Contribution{
		ID:            "id-" + strings.Repeat("1", f.nextID),
		UserID:        rec.UserID,
		Project:       rec.Project,
		Link:          rec.Link,
		Program:       rec.Program,
		Date:          rec.Date,
		Type:          rec.Type,
		Description:   rec.Description,
		Tech:          rec.Tech,
		ScreenshotURL: rec.ScreenshotURL,
		CreatedAt:     "2024-01-01T00:00:00Z",
	}
	f.rows = append(f.rows, row)
	return &row, nil
}

func (f *fakeRepo) SelectByUser(userID string) ([]models.Contribution, error) {
	var out []models.Contribution
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetByID(userID, id string) (*models.Contribution, error) {
	for _, r := range f.rows {
		if r.UserID == userID && r.ID == id {
			row := r
			return &row, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) Delete(userID, id string) error {
	kept := f.rows[:0]
	for _, r := range f.rows {
		if !(r.UserID == userID && r.ID == id) {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return nil
}

type fakeBlobStore struct {
	objects     map[string][]byte
	failBuckets map[string]bool
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{
		objects:     make(map[string][]byte),
		failBuckets: make(map[string]bool),
	}
}

func (f *fakeBlobStore) Upload(bucket, path string, data []byte, contentType string, upsert bool) error {
	if f.failBuckets[bucket] {
		return errors.New("bucket rejected upload")
	}
	f.objects[bucket+"/"+path] = data
	return nil
}

func (f *fakeBlobStore) PublicURL(bucket, path string) string {
	return fakeBaseURL + "/" + bucket + "/" + path
}

type fakeProber struct{ store *fakeBlobStore }

func (p *fakeProber) Reachable(url string) bool {
	_, ok := p.store.objects[strings.TrimPrefix(url, fakeBaseURL+"/")]
	return ok
}

type fakeNotifier struct{ changed []string }

func (n *fakeNotifier) ContributionsChanged(userID string) {
	n.changed = append(n.changed, userID)
}

func newTestService(repo *fakeRepo, store *fakeBlobStore) (*Service, *fakeNotifier) {
	prober := &fakeProber{store: store}
	targets := cards.DefaultTargets("contrib-cards", "contrib-screens")
	notifier := &fakeNotifier{}
	svc := NewService(
		repo, store, cards.NewNormalizer(),
		cards.NewUploader(store, prober, targets),
		cards.NewLocator(store, prober, targets),
		notifier, "contrib-screens", "https://xaytheon.dev",
	)
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }
	return svc, notifier
}

func TestSave_TrimsFieldsAndGeneratesCard(t *testing.T) {
	repo := &fakeRepo{}
	store := newFakeBlobStore()
	svc, notifier := newTestService(repo, store)

	result, err := svc.Save("user-1", Input{
		Project: "  Bot  ",
		Type:    " Hackathon ",
		Link:    "https://github.com/someone/bot",
	}, nil)

	require.NoError(t, err)
	require.NotNil(t, result.Contribution)
	assert.Equal(t, "Bot", result.Contribution.Project)
	assert.Equal(t, "Hackathon", result.Contribution.Type)

	require.NotNil(t, result.Card)
	assert.Equal(t, cards.FailureNone, result.Card.Failure)
	assert.Contains(t, result.Card.URL, "contrib-cards/user-1/")
	assert.Equal(t, []string{"user-1"}, notifier.changed)
}

func TestSave_RequiresProject(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := newTestService(repo, newFakeBlobStore())

	_, err := svc.Save("user-1", Input{Project: "   "}, nil)

	assert.ErrorIs(t, err, ErrProjectRequired)
	assert.Empty(t, repo.rows)
}

// TestSave_SurvivesCardFailure checks that a broken storage backend does
// not lose the saved contribution.
func TestSave_SurvivesCardFailure(t *testing.T) {
	repo := &fakeRepo{}
	store := newFakeBlobStore()
	store.failBuckets["contrib-cards"] = true
	store.failBuckets["contrib-screens"] = true
	svc, _ := newTestService(repo, store)

	result, err := svc.Save("user-1", Input{Project: "Bot"}, nil)

	require.NoError(t, err)
	require.NotNil(t, result.Contribution)
	require.NotNil(t, result.Card)
	assert.Equal(t, cards.FailureUpload, result.Card.Failure)
	assert.Len(t, repo.rows, 1, "the contribution must stay saved")
}

func TestSave_ScreenshotUploadBestEffort(t *testing.T) {
	repo := &fakeRepo{}
	store := newFakeBlobStore()
	svc, _ := newTestService(repo, store)

	shot := &Screenshot{Filename: "my shot (1).png", ContentType: "image/png", Data: []byte("png-bytes")}
	result, err := svc.Save("user-1", Input{Project: "Bot"}, shot)

	require.NoError(t, err)
	url := result.Contribution.ScreenshotURL
	assert.Contains(t, url, "contrib-screens/user-1/")
	assert.Contains(t, url, "my_shot__1_.png", "unsafe filename characters must be replaced")

	// A failing screenshot bucket saves the record without a screenshot.
	store2 := newFakeBlobStore()
	store2.failBuckets["contrib-screens"] = true
	svc2, _ := newTestService(repo, store2)
	result2, err := svc2.Save("user-1", Input{Project: "Bot"}, shot)
	require.NoError(t, err)
	assert.Empty(t, result2.Contribution.ScreenshotURL)
}

// TestDelete_WithoutConfirmationLeavesStoreUnchanged covers the
// confirm-before-delete requirement.
func TestDelete_WithoutConfirmationLeavesStoreUnchanged(t *testing.T) {
	repo := &fakeRepo{}
	svc, notifier := newTestService(repo, newFakeBlobStore())
	saved, err := svc.Save("user-1", Input{Project: "Bot"}, nil)
	require.NoError(t, err)
	notifier.changed = nil

	err = svc.Delete("user-1", saved.Contribution.ID, false)

	assert.ErrorIs(t, err, ErrConfirmationRequired)
	assert.Len(t, repo.rows, 1)
	assert.Empty(t, notifier.changed)
}

func TestDelete_Confirmed(t *testing.T) {
	repo := &fakeRepo{}
	svc, notifier := newTestService(repo, newFakeBlobStore())
	saved, err := svc.Save("user-1", Input{Project: "Bot"}, nil)
	require.NoError(t, err)
	notifier.changed = nil

	require.NoError(t, svc.Delete("user-1", saved.Contribution.ID, true))
	assert.Empty(t, repo.rows)
	assert.Equal(t, []string{"user-1"}, notifier.changed)
}

func TestMarkdown_UsesExistingCard(t *testing.T) {
	repo := &fakeRepo{}
	store := newFakeBlobStore()
	svc, _ := newTestService(repo, store)
	saved, err := svc.Save("user-1", Input{Project: "Bot"}, nil)
	require.NoError(t, err)
	id := saved.Contribution.ID

	snippet, err := svc.Markdown("user-1", id)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(snippet, "[![Bot]("))
	assert.Contains(t, snippet, "contrib-cards/user-1/"+id+".svg?v=1700000000")
	assert.True(t, strings.HasSuffix(snippet, "](https://xaytheon.dev#contrib-"+id+")"))
}

func TestMarkdown_UnknownContribution(t *testing.T) {
	svc, _ := newTestService(&fakeRepo{}, newFakeBlobStore())

	_, err := svc.Markdown("user-1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
