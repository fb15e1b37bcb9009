// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Identity store constants
const (
	// ReferenceImageName is the file name of the single reference image kept per identity
	ReferenceImageName = "face.jpg"

	// DefaultDataDir is the identity store root when no env override is set
	DefaultDataDir = "face_db"

	// IndexFileName is the file name of the cached embedding index artifact
	IndexFileName = "index.bin"
)

// Matching constants
const (
	// DefaultDistanceThreshold is the maximum cosine distance for a match
	// when neither the env var nor a model preset provides one.
	// Lower values = stricter matching
	DefaultDistanceThreshold = 0.5

	// DefaultSearchLimit is the number of nearest neighbours fetched per identification
	DefaultSearchLimit = 5
)

// Processing constants
const (
	// RebuildWorkerPoolSize is the number of parallel workers used when
	// embedding stored reference images during an index rebuild
	RebuildWorkerPoolSize = 5

	// MaxImageSize is the maximum dimension (width or height) for images
	// shipped to the recognizer; larger images are downscaled first
	MaxImageSize = 1920
)

// Upload constants
const (
	// MaxUploadSize is the maximum multipart upload size in bytes (20MB)
	MaxUploadSize = 20 << 20
)
