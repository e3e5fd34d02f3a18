package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/go-github/v59/github"
	"github.com/robfig/cron/v3"
	"golang.org/x/oauth2"
)

// Repo is one entry of the portfolio's public repository list.
type Repo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Language    string `json:"language"`
	Stars       int    `json:"stars"`
}

// GitHubService provides the cached repository list for the portfolio
// page. The cache is refreshed on a schedule; a failed refresh keeps the
// last good snapshot.
type GitHubService struct {
	client   *github.Client
	username string

	mu        sync.RWMutex
	repos     []Repo
	fetchedAt time.Time
}

// NewGitHubService creates a new instance of GitHubService. The token is
// optional; without it requests count against the unauthenticated rate
// limit.
func NewGitHubService(username, token string) *GitHubService {
	var httpClient = oauth2.NewClient(context.Background(), nil)
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	} else {
		log.Println("GitHubService Info: no GITHUB_TOKEN set, using unauthenticated rate limits")
	}
	return &GitHubService{
		client:   github.NewClient(httpClient),
		username: username,
	}
}

// Refresh fetches the user's public repositories, most recently updated
// first, skipping forks.
func (s *GitHubService) Refresh() error {
	if s.username == "" {
		return fmt.Errorf("no GitHub username configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	opts := &github.RepositoryListByUserOptions{
		Type:        "owner",
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: 50},
	}
	ghRepos, _, err := s.client.Repositories.ListByUser(ctx, s.username, opts)
	if err != nil {
		log.Printf("GitHubService Error: repo list fetch failed: %v", err)
		return fmt.Errorf("failed to fetch repositories for %s: %w", s.username, err)
	}

	repos := make([]Repo, 0, len(ghRepos))
	for _, r := range ghRepos {
		if r.GetFork() {
			continue
		}
		repos = append(repos, Repo{
			Name:        r.GetName(),
			Description: r.GetDescription(),
			URL:         r.GetHTMLURL(),
			Language:    r.GetLanguage(),
			Stars:       r.GetStargazersCount(),
		})
	}

	s.mu.Lock()
	s.repos = repos
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	log.Printf("GitHubService Info: cached %d repositories for %s", len(repos), s.username)
	return nil
}

// Repos returns the cached snapshot and when it was fetched.
func (s *GitHubService) Repos() ([]Repo, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repos, s.fetchedAt
}

// StartRefreshing does an initial refresh and schedules periodic ones.
// The returned cron is already started.
func (s *GitHubService) StartRefreshing(spec string) (*cron.Cron, error) {
	if err := s.Refresh(); err != nil {
		log.Printf("GitHubService Info: initial refresh failed, serving an empty list until the next run: %v", err)
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if err := s.Refresh(); err != nil {
			log.Printf("GitHubService Info: scheduled refresh failed: %v", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid repo refresh schedule %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
