package cmd

import (
	"fmt"

	"github.com/kozaktomas/face-gate/internal/config"
	"github.com/kozaktomas/face-gate/internal/index"
	"github.com/kozaktomas/face-gate/internal/recognizer"
	"github.com/kozaktomas/face-gate/internal/store"
)

// buildDeps wires the store, recognizer client and index manager from config.
// Every command that touches identities goes through this.
func buildDeps(cfg *config.Config) (*store.Store, *recognizer.Client, *index.Manager, error) {
	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening identity store: %w", err)
	}
	rec := recognizer.NewClient(cfg.Recognizer.URL, cfg.ModelName())
	idx := index.NewManager(st, rec, cfg.Store.IndexPath)
	return st, rec, idx, nil
}
