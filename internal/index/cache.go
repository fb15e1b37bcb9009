package index

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Metadata describes a cached index artifact and is stored in a sidecar
// .meta file used for staleness detection.
type Metadata struct {
	IdentityCount int       `json:"identity_count"`
	Model         string    `json:"model"`
	BuildTime     time.Time `json:"build_time"`
	Version       int       `json:"version"` // For future compatibility
}

const cacheVersion = 1

// saveCache writes the serialized embeddings and their metadata to disk.
func saveCache(path string, entries map[string]*Entry, meta Metadata) error {
	records := make([]Entry, 0, len(entries))
	for _, e := range entries {
		records = append(records, *e)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(records); err != nil {
		return fmt.Errorf("failed to encode index entries: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}

	meta.Version = cacheVersion
	metaData, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(path+".meta", metaData, 0o600); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}
	return nil
}

// loadCache reads a cached index artifact from disk. Returns os.ErrNotExist
// when no cache file is present.
func loadCache(path string) (map[string]*Entry, Metadata, error) {
	var meta Metadata

	data, err := os.ReadFile(path) //nolint:gosec // path is from trusted config
	if err != nil {
		return nil, meta, err
	}

	var records []Entry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&records); err != nil {
		return nil, meta, fmt.Errorf("failed to decode index entries: %w", err)
	}

	metaData, err := os.ReadFile(path + ".meta") //nolint:gosec // path is from trusted config
	if err != nil {
		return nil, meta, fmt.Errorf("failed to read metadata file: %w", err)
	}
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, meta, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	if meta.Version != cacheVersion {
		return nil, meta, fmt.Errorf("unsupported index cache version %d", meta.Version)
	}
	if meta.IdentityCount != len(records) {
		return nil, meta, fmt.Errorf("index cache metadata mismatch: %d entries, metadata says %d",
			len(records), meta.IdentityCount)
	}

	entries := make(map[string]*Entry, len(records))
	for i := range records {
		entries[records[i].Identity] = &records[i]
	}
	return entries, meta, nil
}

// removeCache deletes the cache artifact and its sidecar (best-effort).
func removeCache(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove index file: %w", err)
	}
	if err := os.Remove(path + ".meta"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove metadata file: %w", err)
	}
	return nil
}

// cacheExists reports whether a cache artifact is present on disk.
func cacheExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
