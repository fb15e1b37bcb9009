// Package index maintains the embedding index over registered identities.
// The index is a derived, disposable artifact: it is invalidated whenever
// the identity set changes and rebuilt lazily from the store on next use.
package index

import (
	"time"

	"github.com/coder/hnsw"
)

// HNSWMaxNeighbors is the M parameter of the HNSW graph.
const HNSWMaxNeighbors = 16

// Entry is one identity's reference embedding held by the index.
type Entry struct {
	Identity  string
	Embedding []float32
	Dim       int
	Model     string
	CreatedAt time.Time
}

// Match is a ranked search result.
type Match struct {
	Identity string  `json:"user_id"`
	Distance float64 `json:"distance"`
}

// newGraph creates an empty HNSW graph with cosine distance.
func newGraph() *hnsw.Graph[string] {
	g := hnsw.NewGraph[string]()
	g.M = HNSWMaxNeighbors
	g.Ml = 1.0 / float64(HNSWMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.CosineDistance
	return g
}

// buildGraph builds a graph from entries. Entries without an embedding are skipped.
func buildGraph(entries map[string]*Entry) *hnsw.Graph[string] {
	g := newGraph()
	for id, e := range entries {
		if len(e.Embedding) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(id, e.Embedding))
	}
	return g
}
