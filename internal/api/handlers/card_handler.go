package handlers

import (
	"encoding/base64"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/xaytheon/xaytheon-backend/internal/api/middleware"
	"github.com/xaytheon/xaytheon-backend/internal/services/cards"
	"github.com/xaytheon/xaytheon-backend/internal/services/contributions"
)

// CardHandler handles generation and lookup of the shareable SVG cards.
type CardHandler struct {
	Service *contributions.Service
}

// NewCardHandler creates a new instance of CardHandler.
func NewCardHandler(service *contributions.Service) *CardHandler {
	return &CardHandler{Service: service}
}

type cardResponse struct {
	URL     string            `json:"url,omitempty"`
	Failure cards.FailureKind `json:"failure,omitempty"`
	Message string            `json:"message,omitempty"`
	// SVGBase64 is set on failure so the page can offer a manual download.
	SVGBase64 string `json:"svg_base64,omitempty"`
}

// GenerateCardHandler renders the card and persists it, reporting the
// structured outcome either way.
// POST /api/protected/contributions/{id}/card
func (h *CardHandler) GenerateCardHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Please sign in.")
		return
	}
	id := mux.Vars(r)["id"]

	result, err := h.Service.GenerateCard(userID, id)
	if err != nil {
		if errors.Is(err, contributions.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "contribution not found")
			return
		}
		log.Printf("CardHandler Error: generate failed for %s: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Card generation failed: "+err.Error())
		return
	}

	resp := cardResponse{URL: result.URL, Failure: result.Failure, Message: result.Message}
	status := http.StatusOK
	if result.Failure != cards.FailureNone {
		resp.SVGBase64 = base64.StdEncoding.EncodeToString(result.SVG)
		status = http.StatusBadGateway
	}
	writeJSON(w, status, resp)
}

// LocateCardHandler returns the public URL of an existing card without
// regenerating it.
// GET /api/protected/contributions/{id}/card
func (h *CardHandler) LocateCardHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Please sign in.")
		return
	}
	id := mux.Vars(r)["id"]

	url, found := h.Service.LocateCard(userID, id)
	if !found {
		writeJSONError(w, http.StatusNotFound, "no card generated yet")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// MarkdownHandler returns the embeddable markdown snippet for a card,
// generating the card first if none exists.
// GET /api/protected/contributions/{id}/markdown
func (h *CardHandler) MarkdownHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Please sign in.")
		return
	}
	id := mux.Vars(r)["id"]

	snippet, err := h.Service.Markdown(userID, id)
	if err != nil {
		if errors.Is(err, contributions.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "contribution not found")
			return
		}
		log.Printf("CardHandler Error: markdown failed for %s: %v", id, err)
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"markdown": snippet})
}
