package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/kozaktomas/face-gate/internal/constants"
	"github.com/kozaktomas/face-gate/internal/imaging"
	"github.com/kozaktomas/face-gate/internal/index"
	"github.com/kozaktomas/face-gate/internal/recognizer"
)

// FaceEmbedder turns an uploaded image into a face embedding.
type FaceEmbedder interface {
	Embed(ctx context.Context, image []byte) ([]float32, error)
}

// Searcher finds the identities closest to a query embedding.
type Searcher interface {
	Search(ctx context.Context, query []float32, k int) ([]index.Match, error)
}

// IdentifyHandler handles face identification requests.
type IdentifyHandler struct {
	embedder  FaceEmbedder
	searcher  Searcher
	threshold float64
}

// NewIdentifyHandler creates a new identify handler. The threshold is the
// maximum cosine distance at which a candidate still counts as a match.
func NewIdentifyHandler(embedder FaceEmbedder, searcher Searcher, threshold float64) *IdentifyHandler {
	if threshold <= 0 {
		threshold = constants.DefaultDistanceThreshold
	}
	return &IdentifyHandler{
		embedder:  embedder,
		searcher:  searcher,
		threshold: threshold,
	}
}

// IdentifyResponse is the response payload for a successful identification.
type IdentifyResponse struct {
	Status   string  `json:"status"`
	UserID   string  `json:"user_id,omitempty"`
	Distance float64 `json:"distance,omitempty"`
}

// Identify computes the query face embedding via the recognizer, searches
// the index over the registered identities and reports the best match.
func (h *IdentifyHandler) Identify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	data, errMsg := readImageFile(r)
	if errMsg != "" {
		respondError(w, http.StatusBadRequest, errMsg)
		return
	}

	prepared, err := imaging.Prepare(data, constants.MaxImageSize)
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is not a valid image")
		return
	}

	ctx := r.Context()
	embedding, err := h.embedder.Embed(ctx, prepared)
	if err != nil {
		if errors.Is(err, recognizer.ErrNoFace) {
			respondJSON(w, http.StatusOK, IdentifyResponse{Status: StatusNoMatch})
			return
		}
		log.Printf("identification failed: %v", err)
		respondStatusError(w, http.StatusInternalServerError, "identification failed")
		return
	}

	matches, err := h.searcher.Search(ctx, embedding, constants.DefaultSearchLimit)
	if err != nil {
		log.Printf("index search failed: %v", err)
		respondStatusError(w, http.StatusInternalServerError, "identification failed")
		return
	}

	if len(matches) == 0 || matches[0].Distance > h.threshold {
		respondJSON(w, http.StatusOK, IdentifyResponse{Status: StatusNoMatch})
		return
	}

	best := matches[0]
	log.Printf("match found: %s (distance %.4f)", sanitizeForLog(best.Identity), best.Distance)
	respondJSON(w, http.StatusOK, IdentifyResponse{
		Status:   StatusMatchFound,
		UserID:   best.Identity,
		Distance: best.Distance,
	})
}
