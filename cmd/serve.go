package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/face-gate/internal/config"
	"github.com/kozaktomas/face-gate/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Face Gate web server.
The server exposes the register and identify endpoints plus a small
management API over the identity store and the embedding index.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().Bool("warm", false, "Build or load the embedding index before accepting requests")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command, cfg *config.Config) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if !cmd.Flags().Changed("port") && cfg.Web.Port != 0 {
		port = cfg.Web.Port
	}
	if envHost := cfg.Web.Host; envHost != "" && !cmd.Flags().Changed("host") {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	st, rec, idx, err := buildDeps(cfg)
	if err != nil {
		return err
	}

	count, err := st.Count()
	if err != nil {
		return fmt.Errorf("reading identity store: %w", err)
	}
	fmt.Printf("Identity store at %s (%d identities)\n", st.Root(), count)
	fmt.Printf("Recognizer model: %s (match threshold %.3f)\n", cfg.ModelName(), cfg.MatchThreshold())

	if mustGetBool(cmd, "warm") {
		fmt.Println("Warming embedding index...")
		if err := idx.Ensure(cmd.Context()); err != nil {
			fmt.Printf("Warning: failed to warm index: %v\n", err)
			fmt.Println("The index will be rebuilt on the first identification instead")
		} else {
			fmt.Printf("Embedding index ready with %d identities\n", idx.Count())
		}
	}

	port, host := resolveServeHostPort(cmd, cfg)
	server := web.NewServer(cfg, port, host, st, rec, idx)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		if err := idx.Save(); err != nil {
			fmt.Printf("Warning: failed to save index cache: %v\n", err)
		} else {
			fmt.Println("Embedding index saved to disk")
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Face Gate on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
