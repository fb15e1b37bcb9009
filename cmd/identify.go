package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/kozaktomas/face-gate/internal/config"
	"github.com/kozaktomas/face-gate/internal/constants"
	"github.com/kozaktomas/face-gate/internal/imaging"
	"github.com/kozaktomas/face-gate/internal/recognizer"
	"github.com/spf13/cobra"
)

var identifyCmd = &cobra.Command{
	Use:   "identify <image>",
	Short: "Identify the face in an image",
	Long: `Identify computes the embedding of the most prominent face in the image
and searches the registered identities for the closest match.`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)

	identifyCmd.Flags().Int("top", 1, "Number of candidates to print")
}

func runIdentify(cmd *cobra.Command, args []string) error {
	imagePath := args[0]

	cfg := config.Load()
	_, rec, idx, err := buildDeps(cfg)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(imagePath) //nolint:gosec // operator-provided path
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}
	prepared, err := imaging.Prepare(data, constants.MaxImageSize)
	if err != nil {
		return fmt.Errorf("%s is not a valid image: %w", imagePath, err)
	}

	ctx := cmd.Context()
	embedding, err := rec.Embed(ctx, prepared)
	if err != nil {
		if errors.Is(err, recognizer.ErrNoFace) {
			fmt.Println("No face detected in the image")
			return nil
		}
		return fmt.Errorf("computing embedding: %w", err)
	}

	top := mustGetInt(cmd, "top")
	matches, err := idx.Search(ctx, embedding, max(top, constants.DefaultSearchLimit))
	if err != nil {
		return fmt.Errorf("searching index: %w", err)
	}

	threshold := cfg.MatchThreshold()
	if len(matches) == 0 || matches[0].Distance > threshold {
		fmt.Println("No match found")
		return nil
	}

	fmt.Printf("Match: %s (distance %.4f, threshold %.3f)\n", matches[0].Identity, matches[0].Distance, threshold)
	for i := 1; i < len(matches) && i < top; i++ {
		fmt.Printf("  runner-up: %s (distance %.4f)\n", matches[i].Identity, matches[i].Distance)
	}
	return nil
}
