package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/xaytheon/xaytheon-backend/internal/services"
)

// PublicHandlerFunc serves the unauthenticated health endpoint.
// GET /api/public
func PublicHandlerFunc(w http.ResponseWriter, r *http.Request) {
	log.Println("Request to public endpoint: /api/public")
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "Hello, this is public content! (From /api/public)")
}

// RepoHandler serves the cached portfolio repository list.
type RepoHandler struct {
	GitHubService *services.GitHubService
}

// NewRepoHandler creates a new instance of RepoHandler.
func NewRepoHandler(ghService *services.GitHubService) *RepoHandler {
	return &RepoHandler{GitHubService: ghService}
}

// ListReposHandler returns the cached repo snapshot.
// GET /api/repos
func (h *RepoHandler) ListReposHandler(w http.ResponseWriter, r *http.Request) {
	repos, fetchedAt := h.GitHubService.Repos()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"repos":      repos,
		"fetched_at": fetchedAt.Format(time.RFC3339),
	})
}
