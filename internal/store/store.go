// Package store persists identity records on the filesystem. Each identity
// is a directory under the store root holding a single reference image,
// overwritten on re-registration.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/kozaktomas/face-gate/internal/constants"
)

var (
	// ErrNotFound is returned when an identity has no stored reference image.
	ErrNotFound = errors.New("identity not found")

	// ErrInvalidID is returned when an identity ID cannot be used as a folder name.
	ErrInvalidID = errors.New("invalid identity id")
)

// Identity describes a registered identity record.
type Identity struct {
	ID        string    `json:"user_id"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is a folder-per-identity image store rooted at a single directory.
type Store struct {
	root string
}

// New creates a store rooted at the given directory, creating it if needed.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("creating store root: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the store root directory.
func (s *Store) Root() string {
	return s.root
}

// ImagePath returns the deterministic path of an identity's reference image.
// The ID must already be normalized.
func (s *Store) ImagePath(id string) string {
	return filepath.Join(s.root, id, constants.ReferenceImageName)
}

// Save writes the reference image for an identity, overwriting any previous
// one. The write is atomic: data goes to a temp file in the identity folder
// first and is renamed into place.
func (s *Store) Save(id string, image []byte) error {
	id, err := NormalizeID(id)
	if err != nil {
		return err
	}

	dir := filepath.Join(s.root, id)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating identity folder: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".face-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(image); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing reference image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.ImagePath(id)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing reference image: %w", err)
	}
	return nil
}

// Read returns the reference image bytes for an identity.
func (s *Store) Read(id string) ([]byte, error) {
	id, err := NormalizeID(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.ImagePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading reference image: %w", err)
	}
	return data, nil
}

// Get returns the identity record without loading the image bytes.
func (s *Store) Get(id string) (Identity, error) {
	id, err := NormalizeID(id)
	if err != nil {
		return Identity{}, err
	}
	info, err := os.Stat(s.ImagePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return Identity{}, ErrNotFound
		}
		return Identity{}, fmt.Errorf("stating reference image: %w", err)
	}
	return Identity{ID: id, Size: info.Size(), UpdatedAt: info.ModTime()}, nil
}

// Exists reports whether the identity has a stored reference image.
func (s *Store) Exists(id string) bool {
	_, err := s.Get(id)
	return err == nil
}

// Delete removes an identity folder and everything in it.
func (s *Store) Delete(id string) error {
	id, err := NormalizeID(id)
	if err != nil {
		return err
	}
	dir := filepath.Join(s.root, id)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return ErrNotFound
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing identity folder: %w", err)
	}
	return nil
}

// List returns all registered identities sorted by ID. Entries without a
// reference image (e.g. leftover empty folders) are skipped, as are cache
// artifacts living next to the identity folders.
func (s *Store) List() ([]Identity, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("reading store root: %w", err)
	}

	var ids []Identity
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := os.Stat(filepath.Join(s.root, entry.Name(), constants.ReferenceImageName))
		if err != nil {
			continue
		}
		ids = append(ids, Identity{
			ID:        entry.Name(),
			Size:      info.Size(),
			UpdatedAt: info.ModTime(),
		})
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i].ID < ids[j].ID })
	return ids, nil
}

// Count returns the number of registered identities.
func (s *Store) Count() (int, error) {
	ids, err := s.List()
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}
