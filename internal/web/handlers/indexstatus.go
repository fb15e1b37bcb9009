package handlers

import (
	"context"
	"net/http"

	"github.com/kozaktomas/face-gate/internal/index"
)

// IndexManager is the part of the index the HTTP layer drives directly.
type IndexManager interface {
	Rebuild(ctx context.Context) error
	Status() index.Status
}

// IndexHandler exposes index maintenance endpoints.
type IndexHandler struct {
	index IndexManager
}

// NewIndexHandler creates a new index handler.
func NewIndexHandler(idx IndexManager) *IndexHandler {
	return &IndexHandler{index: idx}
}

// Rebuild forces a full index rebuild from the stored identities.
func (h *IndexHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	if err := h.index.Rebuild(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to rebuild index")
		return
	}
	respondJSON(w, http.StatusOK, h.index.Status())
}

// Status reports the current index state.
func (h *IndexHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.index.Status())
}
