package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/kozaktomas/face-gate/internal/config"
	"github.com/kozaktomas/face-gate/internal/imaging"
	"github.com/kozaktomas/face-gate/internal/store"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Bulk-register identities from a directory tree",
	Long: `Import registers every subdirectory of <dir> as an identity, using the
first image file found inside it as the reference image. The layout matches
the identity store itself: <dir>/<user-id>/<image>.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Int("concurrency", 5, "Number of parallel imports")
}

// imageExtensions are the file extensions considered importable.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// findReferenceImage returns the first image file inside an identity folder.
func findReferenceImage(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no image file in %s", dir)
	}
	sort.Strings(names)
	return filepath.Join(dir, names[0]), nil
}

// collectImportFolders lists the identity folders under the import root.
func collectImportFolders(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading import directory: %w", err)
	}
	var folders []string
	for _, entry := range entries {
		if entry.IsDir() {
			folders = append(folders, entry.Name())
		}
	}
	sort.Strings(folders)
	return folders, nil
}

// importIdentity registers a single identity folder into the store.
func importIdentity(st *store.Store, root, folder string) error {
	id, err := store.NormalizeID(folder)
	if err != nil {
		return fmt.Errorf("invalid identity folder name %q", folder)
	}

	imagePath, err := findReferenceImage(filepath.Join(root, folder))
	if err != nil {
		return err
	}

	data, err := os.ReadFile(imagePath) //nolint:gosec // path discovered under operator-provided root
	if err != nil {
		return fmt.Errorf("reading %s: %w", imagePath, err)
	}
	if _, _, err := imaging.Validate(data); err != nil {
		return fmt.Errorf("%s is not a valid image: %w", imagePath, err)
	}

	return st.Save(id, data)
}

func runImport(cmd *cobra.Command, args []string) error {
	root := args[0]

	cfg := config.Load()
	st, _, idx, err := buildDeps(cfg)
	if err != nil {
		return err
	}

	folders, err := collectImportFolders(root)
	if err != nil {
		return err
	}
	if len(folders) == 0 {
		fmt.Println("Nothing to import")
		return nil
	}

	fmt.Printf("Importing %d identities into %s\n\n", len(folders), st.Root())

	bar := progressbar.NewOptions(len(folders),
		progressbar.OptionSetDescription("Importing"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("identities"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	concurrency := mustGetInt(cmd, "concurrency")
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu         sync.Mutex
		imported   int
		importErrs []string
	)
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, folder := range folders {
		wg.Add(1)
		go func(folder string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			err := importIdentity(st, root, folder)
			mu.Lock()
			if err != nil {
				importErrs = append(importErrs, err.Error())
			} else {
				imported++
			}
			mu.Unlock()
			bar.Add(1)
		}(folder)
	}
	wg.Wait()

	// One invalidation covers the whole batch.
	if err := idx.Invalidate(); err != nil {
		return fmt.Errorf("invalidating index cache: %w", err)
	}

	fmt.Printf("\n\nImported %d identities, %d failed\n", imported, len(importErrs))
	for _, msg := range importErrs {
		fmt.Printf("  - %s\n", msg)
	}
	return nil
}
