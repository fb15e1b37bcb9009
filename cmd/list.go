package cmd

import (
	"fmt"

	"github.com/kozaktomas/face-gate/internal/config"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered identities",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	st, _, _, err := buildDeps(cfg)
	if err != nil {
		return err
	}

	identities, err := st.List()
	if err != nil {
		return fmt.Errorf("listing identities: %w", err)
	}

	if len(identities) == 0 {
		fmt.Println("No identities registered")
		return nil
	}

	fmt.Printf("%-30s %10s  %s\n", "USER ID", "SIZE", "UPDATED")
	for _, identity := range identities {
		fmt.Printf("%-30s %10d  %s\n",
			identity.ID, identity.Size, identity.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("\n%d identities\n", len(identities))
	return nil
}
