package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-gate/internal/store"
)

// IdentitiesHandler exposes the registered identity records.
type IdentitiesHandler struct {
	store *store.Store
	index Invalidator
}

// NewIdentitiesHandler creates a new identities handler.
func NewIdentitiesHandler(st *store.Store, index Invalidator) *IdentitiesHandler {
	return &IdentitiesHandler{
		store: st,
		index: index,
	}
}

// List returns all registered identities.
func (h *IdentitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	identities, err := h.store.List()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list identities")
		return
	}
	if identities == nil {
		identities = []store.Identity{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"identities": identities,
		"count":      len(identities),
	})
}

// Get returns a single identity record.
func (h *IdentitiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := h.store.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			respondError(w, http.StatusNotFound, "identity not found")
		case errors.Is(err, store.ErrInvalidID):
			respondError(w, http.StatusBadRequest, "invalid identity id")
		default:
			respondError(w, http.StatusInternalServerError, "failed to load identity")
		}
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// Delete removes an identity and invalidates the cached index.
func (h *IdentitiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.Delete(id); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			respondError(w, http.StatusNotFound, "identity not found")
		case errors.Is(err, store.ErrInvalidID):
			respondError(w, http.StatusBadRequest, "invalid identity id")
		default:
			respondError(w, http.StatusInternalServerError, "failed to delete identity")
		}
		return
	}

	if err := h.index.Invalidate(); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to invalidate index cache")
		return
	}

	log.Printf("deleted identity %s", sanitizeForLog(id))
	respondJSON(w, http.StatusOK, map[string]string{
		"status": StatusSuccess,
	})
}
