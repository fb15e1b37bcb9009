package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/kozaktomas/face-gate/internal/constants"
	"github.com/kozaktomas/face-gate/internal/imaging"
	"github.com/kozaktomas/face-gate/internal/store"
)

// Invalidator drops the derived index state after the identity set changed.
type Invalidator interface {
	Invalidate() error
}

// RegisterHandler handles identity registration.
type RegisterHandler struct {
	store *store.Store
	index Invalidator
}

// NewRegisterHandler creates a new register handler.
func NewRegisterHandler(st *store.Store, index Invalidator) *RegisterHandler {
	return &RegisterHandler{
		store: st,
		index: index,
	}
}

// readImageFile extracts and validates the uploaded image from the multipart
// form. Returns an error message suitable for the client when it fails.
func readImageFile(r *http.Request) ([]byte, string) {
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, "file is required"
	}
	defer file.Close()

	// Read one byte past the limit so oversize uploads are rejected instead
	// of silently truncated into a corrupt reference image.
	data, err := io.ReadAll(io.LimitReader(file, constants.MaxUploadSize+1))
	if err != nil {
		return nil, "failed to read file"
	}
	if int64(len(data)) > constants.MaxUploadSize {
		return nil, "file is too large"
	}
	if _, _, err := imaging.Validate(data); err != nil {
		return nil, "file is not a valid image"
	}
	return data, ""
}

// Register stores the reference image for an identity and invalidates the
// cached index so the next identification sees the change. Re-registering an
// existing identity overwrites its reference image.
func (h *RegisterHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	userID := r.FormValue("user_id")
	if userID == "" {
		userID = uuid.New().String()
	}

	id, err := store.NormalizeID(userID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	data, errMsg := readImageFile(r)
	if errMsg != "" {
		respondError(w, http.StatusBadRequest, errMsg)
		return
	}

	if err := h.store.Save(id, data); err != nil {
		if errors.Is(err, store.ErrInvalidID) {
			respondError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to store reference image")
		return
	}

	// The cached index no longer reflects the identity set. Deleting it here
	// forces a rebuild on the next identification.
	if err := h.index.Invalidate(); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to invalidate index cache")
		return
	}

	log.Printf("registered identity %s", sanitizeForLog(id))
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  StatusSuccess,
		"user_id": id,
	})
}
