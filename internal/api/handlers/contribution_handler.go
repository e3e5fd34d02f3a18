package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/xaytheon/xaytheon-backend/internal/api/middleware"
	"github.com/xaytheon/xaytheon-backend/internal/services/contributions"
)

// Screenshot uploads larger than this are rejected at the handler.
const maxScreenshotBytes = 10 << 20

// ContributionHandler handles HTTP requests for the contributions form
// and list.
type ContributionHandler struct {
	Service *contributions.Service
}

// NewContributionHandler creates a new instance of ContributionHandler.
func NewContributionHandler(service *contributions.Service) *ContributionHandler {
	return &ContributionHandler{Service: service}
}

// SaveContributionHandler stores a new contribution.
// POST /api/protected/contributions (multipart form)
func (h *ContributionHandler) SaveContributionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Please sign in to save.")
		return
	}

	if err := r.ParseMultipartForm(maxScreenshotBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	input := contributions.Input{
		Project:     r.FormValue("project"),
		Link:        r.FormValue("link"),
		Program:     r.FormValue("program"),
		Date:        r.FormValue("date"),
		Type:        r.FormValue("type"),
		Description: r.FormValue("description"),
		Tech:        r.FormValue("tech"),
	}

	var shot *contributions.Screenshot
	if file, header, err := r.FormFile("screenshot"); err == nil {
		defer file.Close()
		data, readErr := io.ReadAll(io.LimitReader(file, maxScreenshotBytes))
		if readErr == nil && len(data) > 0 {
			shot = &contributions.Screenshot{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Data:        data,
			}
		}
	}

	result, err := h.Service.Save(userID, input, shot)
	if err != nil {
		if errors.Is(err, contributions.ErrProjectRequired) {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("ContributionHandler Error: save failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Save failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// ListContributionsHandler returns the signed-in user's contributions,
// newest first.
// GET /api/protected/contributions
func (h *ContributionHandler) ListContributionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Please sign in.")
		return
	}

	rows, err := h.Service.List(userID)
	if err != nil {
		log.Printf("ContributionHandler Error: list failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Load failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"contributions": rows})
}

// DeleteContributionHandler removes one contribution. It refuses without
// the explicit confirm flag and leaves the record untouched.
// DELETE /api/protected/contributions/{id}?confirm=true
func (h *ContributionHandler) DeleteContributionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Please sign in.")
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "contribution id is required")
		return
	}

	confirmed := r.URL.Query().Get("confirm") == "true"
	if err := h.Service.Delete(userID, id, confirmed); err != nil {
		if errors.Is(err, contributions.ErrConfirmationRequired) {
			writeJSONError(w, http.StatusPreconditionRequired, "Delete this contribution? Re-send with confirm=true.")
			return
		}
		log.Printf("ContributionHandler Error: delete failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Delete failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
