package cmd

import (
	"fmt"
	"os"

	"github.com/kozaktomas/face-gate/internal/config"
	"github.com/kozaktomas/face-gate/internal/imaging"
	"github.com/kozaktomas/face-gate/internal/store"
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <user-id> <image>",
	Short: "Register an identity from an image file",
	Long: `Register stores the given image as the reference face for an identity.
Re-registering an existing identity overwrites its reference image and
invalidates the cached embedding index.`,
	Args: cobra.ExactArgs(2),
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	userID, imagePath := args[0], args[1]

	cfg := config.Load()
	st, _, idx, err := buildDeps(cfg)
	if err != nil {
		return err
	}

	id, err := store.NormalizeID(userID)
	if err != nil {
		return fmt.Errorf("invalid user id %q", userID)
	}

	data, err := os.ReadFile(imagePath) //nolint:gosec // operator-provided path
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}
	if _, _, err := imaging.Validate(data); err != nil {
		return fmt.Errorf("%s is not a valid image: %w", imagePath, err)
	}

	existed := st.Exists(id)
	if err := st.Save(id, data); err != nil {
		return fmt.Errorf("storing reference image: %w", err)
	}
	if err := idx.Invalidate(); err != nil {
		return fmt.Errorf("invalidating index cache: %w", err)
	}

	if existed {
		fmt.Printf("Updated reference image for %s\n", id)
	} else {
		fmt.Printf("Registered %s\n", id)
	}
	return nil
}
