package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/xaytheon/xaytheon-backend/internal/services/scene"
)

// SceneHandler exposes the hero scene state to the page renderer.
type SceneHandler struct {
	Controller *scene.Controller
}

// NewSceneHandler creates a new instance of SceneHandler.
func NewSceneHandler(controller *scene.Controller) *SceneHandler {
	return &SceneHandler{Controller: controller}
}

// GetSceneHandler returns the current scene snapshot.
// GET /api/scene
func (h *SceneHandler) GetSceneHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Controller.Snapshot())
}

// SetShapeHandler swaps the current object for a primitive.
// POST /api/scene/shape {"shape": "cube"}
func (h *SceneHandler) SetShapeHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Shape string `json:"shape"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.Controller.SetPrimitive(body.Shape); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.Controller.Snapshot())
}

// LoadModelHandler swaps in a model by name with its bounding box, so
// the state carries the centered/scaled transform and camera framing.
// POST /api/scene/model {"name": "prism.glb", "bounds": {...}}
func (h *SceneHandler) LoadModelHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name   string     `json:"name"`
		Bounds scene.Box3 `json:"bounds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.Controller.LoadModel(body.Name, body.Bounds); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.Controller.Snapshot())
}

// ClearSceneHandler empties the scene.
// POST /api/scene/clear
func (h *SceneHandler) ClearSceneHandler(w http.ResponseWriter, r *http.Request) {
	h.Controller.Clear()
	writeJSON(w, http.StatusOK, h.Controller.Snapshot())
}
