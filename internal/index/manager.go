package index

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/coder/hnsw"
	"github.com/kozaktomas/face-gate/internal/constants"
	"github.com/kozaktomas/face-gate/internal/store"
)

// Source lists stored identities and loads their reference images.
type Source interface {
	List() ([]store.Identity, error)
	Read(id string) ([]byte, error)
}

// Embedder computes the reference face embedding for an image.
type Embedder interface {
	Embed(ctx context.Context, image []byte) ([]float32, error)
	Model() string
}

// Status reports the current state of the index.
type Status struct {
	Ready        bool      `json:"ready"`
	Identities   int       `json:"identities"`
	Skipped      int       `json:"skipped"`
	Model        string    `json:"model,omitempty"`
	BuildTime    time.Time `json:"build_time,omitzero"`
	CachePresent bool      `json:"cache_present"`
}

// Manager owns the in-memory HNSW graph and its on-disk cache artifact.
// The graph is rebuilt lazily: Invalidate drops everything, the next search
// loads the cache or re-embeds all stored identities.
type Manager struct {
	source   Source
	embedder Embedder
	path     string // cache artifact path, empty disables persistence

	mu      sync.RWMutex
	graph   *hnsw.Graph[string]
	entries map[string]*Entry // nil means not loaded
	skipped int               // identities whose reference image yielded no embedding
	builtAt time.Time
}

// NewManager creates an index manager. The index stays empty until the first
// Ensure, Rebuild, or Search call.
func NewManager(source Source, embedder Embedder, path string) *Manager {
	return &Manager{
		source:   source,
		embedder: embedder,
		path:     path,
	}
}

// Invalidate drops the in-memory graph and deletes the cache artifact.
// Called after every change to the identity set.
func (m *Manager) Invalidate() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.graph = nil
	m.entries = nil
	m.skipped = 0
	m.builtAt = time.Time{}
	return removeCache(m.path)
}

// Ensure makes the index ready for searching, loading the disk cache when
// present and otherwise rebuilding from the store. Concurrent callers block
// until one of them has finished the work.
func (m *Manager) Ensure(ctx context.Context) error {
	m.mu.RLock()
	loaded := m.entries != nil
	m.mu.RUnlock()
	if loaded {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries != nil {
		return nil
	}

	if cacheExists(m.path) {
		entries, meta, err := loadCache(m.path)
		if err == nil && meta.Model != m.embedder.Model() {
			// Embeddings from different models are not comparable.
			err = fmt.Errorf("index cache built with model %q, current model is %q",
				meta.Model, m.embedder.Model())
		}
		if err == nil {
			m.entries = entries
			m.graph = buildGraph(entries)
			m.builtAt = meta.BuildTime
			m.skipped = 0
			return nil
		}
		// Corrupt or stale cache: fall through to a full rebuild.
		log.Printf("discarding unusable index cache: %v", err)
		_ = removeCache(m.path)
	}

	return m.rebuildLocked(ctx)
}

// Rebuild re-embeds every stored identity and replaces the index,
// regardless of any existing cache.
func (m *Manager) Rebuild(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rebuildLocked(ctx)
}

// rebuildLocked does the actual rebuild. Caller must hold m.mu.
func (m *Manager) rebuildLocked(ctx context.Context) error {
	identities, err := m.source.List()
	if err != nil {
		return fmt.Errorf("listing identities: %w", err)
	}

	entries := make(map[string]*Entry, len(identities))
	var skipped int

	var (
		wg      sync.WaitGroup
		results sync.Mutex
	)
	sem := make(chan struct{}, constants.RebuildWorkerPoolSize)

	for _, identity := range identities {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			image, err := m.source.Read(id)
			if err != nil {
				results.Lock()
				skipped++
				results.Unlock()
				return
			}

			embedding, err := m.embedder.Embed(ctx, image)
			if err != nil {
				// Reference image without a usable face: leave the
				// identity out of the index rather than failing the build.
				results.Lock()
				skipped++
				results.Unlock()
				return
			}

			results.Lock()
			entries[id] = &Entry{
				Identity:  id,
				Embedding: embedding,
				Dim:       len(embedding),
				Model:     m.embedder.Model(),
				CreatedAt: time.Now(),
			}
			results.Unlock()
		}(identity.ID)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	m.entries = entries
	m.graph = buildGraph(entries)
	m.skipped = skipped
	m.builtAt = time.Now()

	if m.path != "" {
		meta := Metadata{
			IdentityCount: len(entries),
			Model:         m.embedder.Model(),
			BuildTime:     m.builtAt,
		}
		if err := saveCache(m.path, entries, meta); err != nil {
			// The cache is an optimization; the in-memory index is intact.
			log.Printf("warning: failed to save index cache: %v", err)
		}
	}
	return nil
}

// Search returns up to k identities closest to the query embedding, ordered
// by cosine distance. An empty result means no registered identity matched.
func (m *Manager) Search(ctx context.Context, query []float32, k int) ([]Match, error) {
	if err := m.Ensure(ctx); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.graph == nil || len(m.entries) == 0 {
		return nil, nil
	}
	if k <= 0 {
		k = constants.DefaultSearchLimit
	}

	neighbors := m.graph.Search(query, k)
	matches := make([]Match, 0, len(neighbors))
	for _, n := range neighbors {
		if _, ok := m.entries[n.Key]; !ok {
			continue
		}
		matches = append(matches, Match{
			Identity: n.Key,
			Distance: CosineDistance(query, n.Value),
		})
	}
	return matches, nil
}

// Save persists the current index to the cache artifact, used during shutdown.
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.path == "" || m.entries == nil {
		return nil
	}
	return saveCache(m.path, m.entries, Metadata{
		IdentityCount: len(m.entries),
		Model:         m.embedder.Model(),
		BuildTime:     m.builtAt,
	})
}

// Count returns the number of indexed identities.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Status reports whether the index is loaded and what it contains.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Status{
		Ready:        m.entries != nil,
		Identities:   len(m.entries),
		Skipped:      m.skipped,
		Model:        m.embedder.Model(),
		BuildTime:    m.builtAt,
		CachePresent: cacheExists(m.path),
	}
}
