package contributions

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/xaytheon/xaytheon-backend/internal/database"
	"github.com/xaytheon/xaytheon-backend/internal/models"
	"github.com/xaytheon/xaytheon-backend/internal/services/cards"
)

var (
	// ErrConfirmationRequired is returned when a delete arrives without
	// the explicit confirmation flag. The store is left untouched.
	ErrConfirmationRequired = errors.New("delete requires confirmation")
	// ErrProjectRequired is the only field validation performed; the rest
	// is left to backend constraints.
	ErrProjectRequired = errors.New("project name is required")
	// ErrNotFound is returned when a contribution does not exist for the user.
	ErrNotFound = errors.New("contribution not found")
)

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Input carries the trimmed form fields for a new contribution.
type Input struct {
	Project     string
	Link        string
	Program     string
	Date        string
	Type        string
	Description string
	Tech        string
}

// Screenshot is an optional uploaded screenshot file.
type Screenshot struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CardOutcome summarizes the best-effort card generation that runs after
// a save. A failed card never fails the save itself.
type CardOutcome struct {
	URL     string            `json:"url,omitempty"`
	Failure cards.FailureKind `json:"failure,omitempty"`
	Message string            `json:"message,omitempty"`
}

// SaveResult is what a successful save returns.
type SaveResult struct {
	Contribution *models.Contribution `json:"contribution"`
	Card         *CardOutcome         `json:"card,omitempty"`
}

// Notifier is told after every successful mutation so connected clients
// can rebuild their list.
type Notifier interface {
	ContributionsChanged(userID string)
}

// Service sequences the user actions against the repository, the blob
// store and the card pipeline.
type Service struct {
	repo             database.ContributionRepository
	blobs            database.BlobStore
	normalizer       *cards.Normalizer
	uploader         *cards.Uploader
	locator          *cards.Locator
	notifier         Notifier
	screenshotBucket string
	siteURL          string
	now              func() time.Time
}

// NewService creates a new instance of Service. notifier may be nil.
func NewService(
	repo database.ContributionRepository,
	blobs database.BlobStore,
	normalizer *cards.Normalizer,
	uploader *cards.Uploader,
	locator *cards.Locator,
	notifier Notifier,
	screenshotBucket string,
	siteURL string,
) *Service {
	return &Service{
		repo:             repo,
		blobs:            blobs,
		normalizer:       normalizer,
		uploader:         uploader,
		locator:          locator,
		notifier:         notifier,
		screenshotBucket: screenshotBucket,
		siteURL:          siteURL,
		now:              time.Now,
	}
}

// Save stores a new contribution. The screenshot upload and the card
// generation are both best effort: their failure leaves the saved record
// intact and visible.
func (s *Service) Save(userID string, in Input, shot *Screenshot) (*SaveResult, error) {
	in = trimInput(in)
	if in.Project == "" {
		return nil, ErrProjectRequired
	}

	screenshotURL := s.uploadScreenshot(userID, shot)

	rec := models.NewContribution{
		UserID:        userID,
		Project:       in.Project,
		Link:          in.Link,
		Program:       in.Program,
		Type:          in.Type,
		Description:   in.Description,
		Tech:          in.Tech,
		ScreenshotURL: screenshotURL,
	}
	if in.Date != "" {
		rec.Date = &in.Date
	}

	saved, err := s.repo.Insert(rec)
	if err != nil {
		return nil, fmt.Errorf("save failed: %w", err)
	}

	result := &SaveResult{Contribution: saved}
	if outcome := s.generateCard(*saved); outcome != nil {
		result.Card = outcome
	}

	s.notifyChanged(userID)
	return result, nil
}

// List returns the user's contributions, newest first. The caller
// rebuilds its view wholesale from this.
func (s *Service) List(userID string) ([]models.Contribution, error) {
	return s.repo.SelectByUser(userID)
}

// Delete removes a contribution. Without confirmed it refuses and leaves
// the store unchanged.
func (s *Service) Delete(userID, id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := s.repo.Delete(userID, id); err != nil {
		return err
	}
	s.notifyChanged(userID)
	return nil
}

// GenerateCard renders and persists the card for an existing
// contribution, returning the structured outcome.
func (s *Service) GenerateCard(userID, id string) (cards.UploadResult, error) {
	rec, err := s.repo.GetByID(userID, id)
	if err != nil {
		return cards.UploadResult{}, err
	}
	if rec == nil {
		return cards.UploadResult{}, ErrNotFound
	}

	imageURI, _ := s.normalizer.Normalize(rec.ScreenshotURL)
	svg := cards.Render(*rec, imageURI)
	return s.uploader.Upload(userID, id, svg), nil
}

// LocateCard returns the public URL of an already generated card.
func (s *Service) LocateCard(userID, id string) (string, bool) {
	return s.locator.Locate(userID, id)
}

// Markdown builds the embeddable snippet for a contribution's card:
// a cache-busted image link wrapped in a deep link back to the page.
// If no card exists yet one is generated first.
func (s *Service) Markdown(userID, id string) (string, error) {
	rec, err := s.repo.GetByID(userID, id)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", ErrNotFound
	}

	url, ok := s.locator.Locate(userID, id)
	if !ok {
		imageURI, _ := s.normalizer.Normalize(rec.ScreenshotURL)
		result := s.uploader.Upload(userID, id, cards.Render(*rec, imageURI))
		if result.Failure != cards.FailureNone {
			return "", fmt.Errorf("no card available: %s", result.Message)
		}
		url = result.URL
	}

	alt := rec.Project
	if alt == "" {
		alt = "contribution"
	}
	return fmt.Sprintf("[![%s](%s?v=%d)](%s#contrib-%s)", alt, url, s.now().Unix(), s.siteURL, id), nil
}

// uploadScreenshot stores the screenshot and returns its public URL, or
// "" when there is nothing to upload or the upload fails.
func (s *Service) uploadScreenshot(userID string, shot *Screenshot) string {
	if shot == nil || len(shot.Data) == 0 {
		return ""
	}
	name := unsafeFileChars.ReplaceAllString(shot.Filename, "_")
	path := fmt.Sprintf("%s/%d_%s", userID, s.now().UnixMilli(), name)

	contentType := shot.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.blobs.Upload(s.screenshotBucket, path, shot.Data, contentType, false); err != nil {
		log.Printf("ContributionService Info: screenshot upload failed, saving without it: %v", err)
		return ""
	}
	return s.blobs.PublicURL(s.screenshotBucket, path)
}

func (s *Service) generateCard(rec models.Contribution) *CardOutcome {
	imageURI, _ := s.normalizer.Normalize(rec.ScreenshotURL)
	result := s.uploader.Upload(rec.UserID, rec.ID, cards.Render(rec, imageURI))
	outcome := &CardOutcome{URL: result.URL, Failure: result.Failure, Message: result.Message}
	if result.Failure != cards.FailureNone {
		log.Printf("ContributionService Info: card generation for %s did not complete: %s", rec.ID, result.Message)
	}
	return outcome
}

func (s *Service) notifyChanged(userID string) {
	if s.notifier != nil {
		s.notifier.ContributionsChanged(userID)
	}
}

func trimInput(in Input) Input {
	return Input{
		Project:     strings.TrimSpace(in.Project),
		Link:        strings.TrimSpace(in.Link),
		Program:     strings.TrimSpace(in.Program),
		Date:        strings.TrimSpace(in.Date),
		Type:        strings.TrimSpace(in.Type),
		Description: strings.TrimSpace(in.Description),
		Tech:        strings.TrimSpace(in.Tech),
	}
}
